package annoy

import (
	"math/bits"
	"math/rand"

	"github.com/patrikhermansson/goannoy/core"
)

const (
	// hammingWordBits is the number of addressable bits per vector component.
	hammingWordBits = 4 * 8
	// hammingMaxIterations bounds the random bit draws tried by CreateSplit
	// before falling back to a linear sweep.
	hammingMaxIterations = 20
)

// Hamming is the bit metric. A split tests a single bit: the selected bit
// index is packed into V[0], addressing bit b%32 (MSB first) of component
// b/32. Distance is the summed popcount of the component-wise XOR.
type Hamming[T core.Integer] struct{}

func (Hamming[T]) Name() string { return "hamming" }

func (Hamming[T]) Distance(x, y []T) float64 {
	var d int
	for i := range x {
		d += bits.OnesCount64(uint64(x[i]) ^ uint64(y[i]))
	}
	return float64(d)
}

func (Hamming[T]) Margin(n *Node[T], y []T) float64 {
	b := uint64(n.V[0])
	chunk := b / hammingWordBits
	mask := uint64(1) << (hammingWordBits - 1 - b%hammingWordBits)
	return float64(uint64(y[chunk]) & mask)
}

func (h Hamming[T]) Side(n *Node[T], y []T, _ *rand.Rand) int {
	if h.Margin(n, y) > 0 {
		return 1
	}
	return 0
}

func (h Hamming[T]) CreateSplit(children []*Node[T], n *Node[T], f int, rng *rand.Rand) {
	for iter := 0; iter < hammingMaxIterations; iter++ {
		n.V[0] = T(rng.Intn(f))
		if h.separates(children, n) {
			return
		}
	}

	// No random draw separated the candidates; sweep every bit index. The
	// tree builder re-routes by coin flip if none does either.
	for j := 0; j < f; j++ {
		n.V[0] = T(j)
		if h.separates(children, n) {
			return
		}
	}
}

// separates reports whether the bit selected in n puts at least one
// candidate on each side.
func (h Hamming[T]) separates(children []*Node[T], n *Node[T]) bool {
	cur := 0
	for _, c := range children {
		if h.Side(n, c.V, nil) == 1 {
			cur++
		}
	}
	return cur > 0 && cur < len(children)
}

func (Hamming[T]) NormalizedDistance(raw float64) float64 {
	return raw
}
