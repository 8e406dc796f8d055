package annoy

import (
	"math"
	"math/rand"

	"github.com/patrikhermansson/goannoy/core"
)

// iterationSteps is the number of refinement rounds run by the two-means
// heuristic when picking a split hyperplane.
const iterationSteps = 200

// Metric specializes the tree builder and the query engine for one distance
// function. Distance may return a raw (for example squared) value; the
// user-visible value is obtained through NormalizedDistance.
type Metric[T core.Scalar] interface {
	// Name returns the human-readable metric name.
	Name() string

	// Distance computes the raw distance between two vectors of equal length.
	Distance(x, y []T) float64

	// Margin returns the signed distance of y to the split stored in n.
	Margin(n *Node[T], y []T) float64

	// Side maps y to child 0 or 1 of the split stored in n. Deterministic
	// when the margin is nonzero. On a zero margin the float metrics flip an
	// unbiased coin; Hamming returns child 0 (the selected bit is clear).
	Side(n *Node[T], y []T, rng *rand.Rand) int

	// CreateSplit fills n.V (and n.A where applicable) with a hyperplane
	// separating the given candidate nodes.
	CreateSplit(children []*Node[T], n *Node[T], f int, rng *rand.Rand)

	// NormalizedDistance maps a raw distance to the user-visible value.
	NormalizedDistance(raw float64) float64
}

// norm returns the Euclidean norm of v.
func norm[T core.Float](v []T) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// normalize scales v to unit length in place. Vectors with a vanishing norm
// are left unscaled so a degenerate split stays finite.
func normalize[T core.Float](v []T) {
	n := norm(v)
	if n < 1e-10 {
		n = 1
	}
	for i := range v {
		v[i] = T(float64(v[i]) / n)
	}
}

// twoMeans picks two distinct seed vectors among the candidates and refines
// them with weighted incremental averaging: each round pulls the closer of
// the two centroids toward a randomly chosen candidate. The returned pair
// defines the split as its perpendicular bisector.
func twoMeans[T core.Float](m Metric[T], children []*Node[T], f int, rng *rand.Rand) ([]T, []T) {
	count := len(children)

	i := rng.Intn(count)
	j := rng.Intn(count - 1)
	if j >= i {
		j++
	}

	iv := append([]T(nil), children[i].V...)
	jv := append([]T(nil), children[j].V...)

	var ic, jc T = 1, 1
	for step := 0; step < iterationSteps; step++ {
		k := rng.Intn(count)
		kv := children[k].V

		di := float64(ic) * m.Distance(iv, kv)
		dj := float64(jc) * m.Distance(jv, kv)

		if di < dj {
			for z := 0; z < f; z++ {
				iv[z] = (iv[z]*ic + kv[z]) / (ic + 1)
			}
			ic++
		} else if dj < di {
			for z := 0; z < f; z++ {
				jv[z] = (jv[z]*jc + kv[z]) / (jc + 1)
			}
			jc++
		}
	}

	return iv, jv
}
