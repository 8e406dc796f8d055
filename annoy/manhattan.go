package annoy

import (
	"math"
	"math/rand"

	"github.com/patrikhermansson/goannoy/core"
)

// Manhattan is the L1 metric. Splits are still chosen by the two-means
// centroid bisector, the same construction the Euclidean metric uses.
type Manhattan[T core.Float] struct{}

func (Manhattan[T]) Name() string { return "manhattan" }

func (Manhattan[T]) Distance(x, y []T) float64 {
	var d float64
	for i := range x {
		d += math.Abs(float64(x[i]) - float64(y[i]))
	}
	return d
}

func (Manhattan[T]) Margin(n *Node[T], y []T) float64 {
	dot := n.A
	for z := range y {
		dot += float64(n.V[z]) * float64(y[z])
	}
	return dot
}

func (m Manhattan[T]) Side(n *Node[T], y []T, rng *rand.Rand) int {
	if dot := m.Margin(n, y); dot != 0 {
		if dot > 0 {
			return 1
		}
		return 0
	}
	return rng.Intn(2)
}

func (m Manhattan[T]) CreateSplit(children []*Node[T], n *Node[T], f int, rng *rand.Rand) {
	iv, jv := twoMeans[T](m, children, f, rng)

	for z := 0; z < f; z++ {
		n.V[z] = iv[z] - jv[z]
	}
	normalize(n.V)

	n.A = 0
	for z := 0; z < f; z++ {
		n.A += -float64(n.V[z]) * (float64(iv[z]) + float64(jv[z])) / 2
	}
}

func (Manhattan[T]) NormalizedDistance(raw float64) float64 {
	return math.Max(raw, 0)
}
