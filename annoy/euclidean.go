package annoy

import (
	"math"
	"math/rand"

	"github.com/patrikhermansson/goannoy/core"
)

// Euclidean is the L2 metric. Distance returns the squared Euclidean
// distance; NormalizedDistance takes the root.
type Euclidean[T core.Float] struct{}

func (Euclidean[T]) Name() string { return "euclidean" }

func (Euclidean[T]) Distance(x, y []T) float64 {
	var d float64
	for i := range x {
		v := float64(x[i]) - float64(y[i])
		d += v * v
	}
	return d
}

func (Euclidean[T]) Margin(n *Node[T], y []T) float64 {
	dot := n.A
	for z := range y {
		dot += float64(n.V[z]) * float64(y[z])
	}
	return dot
}

func (e Euclidean[T]) Side(n *Node[T], y []T, rng *rand.Rand) int {
	if dot := e.Margin(n, y); dot != 0 {
		if dot > 0 {
			return 1
		}
		return 0
	}
	return rng.Intn(2)
}

func (e Euclidean[T]) CreateSplit(children []*Node[T], n *Node[T], f int, rng *rand.Rand) {
	iv, jv := twoMeans[T](e, children, f, rng)

	for z := 0; z < f; z++ {
		n.V[z] = iv[z] - jv[z]
	}
	normalize(n.V)

	// Offset places the hyperplane through the midpoint of the two centroids.
	n.A = 0
	for z := 0; z < f; z++ {
		n.A += -float64(n.V[z]) * (float64(iv[z]) + float64(jv[z])) / 2
	}
}

func (Euclidean[T]) NormalizedDistance(raw float64) float64 {
	return math.Sqrt(math.Max(raw, 0))
}
