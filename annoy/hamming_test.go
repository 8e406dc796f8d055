package annoy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrikhermansson/goannoy/annoy"
)

func TestHammingDistance(t *testing.T) {
	m := annoy.Hamming[uint64]{}

	assert.Equal(t, 1.0, m.Distance([]uint64{1, 1, 1}, []uint64{1, 1, 0}))
	assert.Equal(t, 0.0, m.Distance([]uint64{5, 9}, []uint64{5, 9}))
	assert.Equal(t, 2.0, m.Distance([]uint64{0b1010}, []uint64{0b0110}))
}

func TestHammingNormalizedDistance(t *testing.T) {
	m := annoy.Hamming[uint64]{}

	assert.Equal(t, 7.0, m.NormalizedDistance(7), "bit counts are reported unchanged")
}

func TestHammingMargin(t *testing.T) {
	m := annoy.Hamming[uint64]{}

	// Bit 0 addresses the most significant bit of the first 32-bit word.
	n := &annoy.Node[uint64]{V: []uint64{0, 0}}
	assert.Positive(t, m.Margin(n, []uint64{1 << 31, 0}))
	assert.Zero(t, m.Margin(n, []uint64{0, 0}))

	// Bit 33 addresses the second bit of the second word.
	n.V[0] = 33
	assert.Positive(t, m.Margin(n, []uint64{0, 1 << 30}))
	assert.Zero(t, m.Margin(n, []uint64{1 << 31, 0}))
}

func TestHammingSide(t *testing.T) {
	m := annoy.Hamming[uint64]{}
	n := &annoy.Node[uint64]{V: []uint64{0}}

	assert.Equal(t, 1, m.Side(n, []uint64{1 << 31}, nil))
	assert.Equal(t, 0, m.Side(n, []uint64{0}, nil))
}

func TestHammingCreateSplitSeparates(t *testing.T) {
	m := annoy.Hamming[uint64]{}
	rng := rand.New(rand.NewSource(5))

	children := []*annoy.Node[uint64]{
		{V: []uint64{1 << 31, 0}},
		{V: []uint64{1 << 31, 0}},
		{V: []uint64{0, 0}},
	}

	split := &annoy.Node[uint64]{V: make([]uint64, 2)}
	m.CreateSplit(children, split, 2, rng)

	assert.NotEqual(t, m.Side(split, children[0].V, rng), m.Side(split, children[2].V, rng),
		"the chosen bit separates the candidates")
}

func TestHammingInt64Scalars(t *testing.T) {
	m := annoy.Hamming[int64]{}

	assert.Equal(t, 1.0, m.Distance([]int64{1, 1, 1}, []int64{1, 1, 0}))
}
