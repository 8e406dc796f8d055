package annoy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrikhermansson/goannoy/annoy"
)

func TestManhattanDistance(t *testing.T) {
	m := annoy.Manhattan[float64]{}

	assert.Equal(t, 3.0, m.Distance([]float64{1, 2}, []float64{2, 4}))
	assert.Equal(t, 0.0, m.Distance([]float64{1, 1}, []float64{1, 1}))
}

func TestManhattanNormalizedDistance(t *testing.T) {
	m := annoy.Manhattan[float64]{}

	assert.Equal(t, 3.0, m.NormalizedDistance(3), "L1 is reported unchanged")
	assert.Equal(t, 0.0, m.NormalizedDistance(-0.5), "negative raw values clamp to zero")
}

func TestManhattanMarginAndSide(t *testing.T) {
	m := annoy.Manhattan[float64]{}
	n := &annoy.Node[float64]{V: []float64{1, -1}, A: 0.5}

	assert.Equal(t, 0.5, m.Margin(n, []float64{2, 2}))
	assert.Equal(t, 1, m.Side(n, []float64{2, 2}, nil))
	assert.Equal(t, 0, m.Side(n, []float64{-2, 2}, nil))
}

func TestManhattanCreateSplitSeparatesClusters(t *testing.T) {
	m := annoy.Manhattan[float64]{}
	rng := rand.New(rand.NewSource(7))

	var children []*annoy.Node[float64]
	for i := 0; i < 4; i++ {
		children = append(children, &annoy.Node[float64]{V: []float64{float64(i) * 0.2, 0}})
	}
	for i := 0; i < 4; i++ {
		children = append(children, &annoy.Node[float64]{V: []float64{20 + float64(i)*0.2, 20}})
	}

	split := &annoy.Node[float64]{V: make([]float64, 2)}
	m.CreateSplit(children, split, 2, rng)

	assert.NotEqual(t, m.Side(split, []float64{0, 0}, rng), m.Side(split, []float64{20, 20}, rng))
}
