package annoy

import "errors"

var (
	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("annoy: vector dimension does not match index dimension")
	// ErrItemNotFound indicates an item id with no registered vector.
	ErrItemNotFound = errors.New("annoy: item id not present in the index")
	// ErrEmptyIndex indicates a build attempt with no items added.
	ErrEmptyIndex = errors.New("annoy: index has no items")
	// ErrNotBuilt indicates a query against an index that has not been built.
	ErrNotBuilt = errors.New("annoy: index has not been built")
	// ErrAlreadyBuilt indicates a mutation attempt after the index was built.
	ErrAlreadyBuilt = errors.New("annoy: index is already built")
	// ErrInvalidArgument indicates an argument outside its documented range.
	ErrInvalidArgument = errors.New("annoy: invalid argument")
)
