package annoy

import "github.com/patrikhermansson/goannoy/core"

// Node is the single arena record type. Its role is encoded in NDescendants:
// 1 is an item leaf, 2 up to the bucket threshold a bucket of item ids, and
// anything larger an internal split.
type Node[T core.Scalar] struct {
	// NDescendants counts the items reachable below this node.
	NDescendants int
	// Children holds the two child arena ids of a split. For a bucket it is
	// reinterpreted as the list of contained item ids, NDescendants long.
	Children []int64
	// V is the item vector for a leaf and the split hyperplane normal for an
	// internal node. Hamming packs the selected bit index into V[0].
	V []T
	// A is the hyperplane offset of a split, so that a point y lies on the
	// positive side when dot(V, y)+A > 0. Zero for angular and Hamming.
	A float64
}

// newNode returns a zero-initialized node of dimension f.
func newNode[T core.Scalar](f int) *Node[T] {
	return &Node[T]{
		Children: []int64{0, 0},
		V:        make([]T, f),
	}
}

// reset turns the node into an item leaf holding a copy of v.
func (n *Node[T]) reset(v []T) {
	n.Children = []int64{0, 0}
	n.NDescendants = 1
	n.V = append(n.V[:0], v...)
	n.A = 0
}
