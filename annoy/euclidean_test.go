package annoy_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrikhermansson/goannoy/annoy"
)

func TestEuclideanDistance(t *testing.T) {
	m := annoy.Euclidean[float64]{}

	d := m.Distance([]float64{1, 2}, []float64{2, 4})
	assert.Equal(t, 5.0, d, "raw distance is squared")

	assert.Equal(t, 0.0, m.Distance([]float64{3, 3}, []float64{3, 3}))
}

func TestEuclideanNormalizedDistance(t *testing.T) {
	m := annoy.Euclidean[float64]{}

	assert.InDelta(t, math.Sqrt(5), m.NormalizedDistance(5), 1e-12)
	assert.Equal(t, 0.0, m.NormalizedDistance(-1e-9), "negative raw values clamp to zero")
}

func TestEuclideanMarginAndSide(t *testing.T) {
	m := annoy.Euclidean[float64]{}
	n := &annoy.Node[float64]{V: []float64{2, 4}}

	assert.Equal(t, 10.0, m.Margin(n, []float64{1, 2}))
	assert.Equal(t, 1, m.Side(n, []float64{1, 2}, nil))
	assert.Equal(t, 0, m.Side(n, []float64{-1, -2}, nil))

	// Zero margin falls back to a coin flip.
	rng := rand.New(rand.NewSource(1))
	zero := &annoy.Node[float64]{V: []float64{0, 0}}
	side := m.Side(zero, []float64{1, 2}, rng)
	assert.Contains(t, []int{0, 1}, side)
}

func TestEuclideanCreateSplitSeparatesClusters(t *testing.T) {
	m := annoy.Euclidean[float64]{}
	rng := rand.New(rand.NewSource(42))

	var children []*annoy.Node[float64]
	for i := 0; i < 5; i++ {
		children = append(children, &annoy.Node[float64]{V: []float64{float64(i) * 0.1, float64(i) * 0.1}})
	}
	for i := 0; i < 5; i++ {
		children = append(children, &annoy.Node[float64]{V: []float64{10 + float64(i)*0.1, 10 + float64(i)*0.1}})
	}

	split := &annoy.Node[float64]{V: make([]float64, 2)}
	m.CreateSplit(children, split, 2, rng)

	require.InDelta(t, 1.0, math.Hypot(split.V[0], split.V[1]), 1e-9,
		"split normal is unit length")
	assert.NotEqual(t, m.Side(split, []float64{0, 0}, rng), m.Side(split, []float64{10, 10}, rng),
		"the two clusters land on different sides")
}

func TestEuclideanFloat32(t *testing.T) {
	m := annoy.Euclidean[float32]{}

	d := m.Distance([]float32{1, 2}, []float32{2, 4})
	assert.Equal(t, 5.0, d)
}
