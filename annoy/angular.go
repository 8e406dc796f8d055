package annoy

import (
	"math"
	"math/rand"

	"github.com/patrikhermansson/goannoy/core"
)

// angularMax is the raw distance reported for degenerate pairs, where one of
// the vectors has zero norm and the cosine is undefined.
const angularMax = 2.0

// Angular is the cosine metric. The raw distance is 2 - 2*cos(x, y); the
// split hyperplane always passes through the origin.
type Angular[T core.Float] struct{}

func (Angular[T]) Name() string { return "angular" }

func (Angular[T]) Distance(x, y []T) float64 {
	var pp, qq, pq float64
	for z := range x {
		pp += float64(x[z]) * float64(x[z])
		qq += float64(y[z]) * float64(y[z])
		pq += float64(x[z]) * float64(y[z])
	}

	ppqq := pp * qq
	if ppqq > 0 {
		return 2 - 2*pq/math.Sqrt(ppqq)
	}
	return angularMax
}

func (Angular[T]) Margin(n *Node[T], y []T) float64 {
	var dot float64
	for z := range y {
		dot += float64(n.V[z]) * float64(y[z])
	}
	return dot
}

func (a Angular[T]) Side(n *Node[T], y []T, rng *rand.Rand) int {
	if dot := a.Margin(n, y); dot != 0 {
		if dot > 0 {
			return 1
		}
		return 0
	}
	return rng.Intn(2)
}

func (a Angular[T]) CreateSplit(children []*Node[T], n *Node[T], f int, rng *rand.Rand) {
	iv, jv := twoMeans[T](a, children, f, rng)

	for z := 0; z < f; z++ {
		n.V[z] = iv[z] - jv[z]
	}
	normalize(n.V)
	// No offset: the hyperplane passes through the origin.
}

func (Angular[T]) NormalizedDistance(raw float64) float64 {
	return math.Sqrt(math.Max(raw, 0))
}
