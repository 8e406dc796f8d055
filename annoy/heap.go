package annoy

// frontierEntry pairs an arena id with the tightest margin bound seen on the
// path from its tree's root.
type frontierEntry struct {
	priority float64
	id       int64
}

// frontierHeap implements a max-heap of frontier entries ordered by priority.
type frontierHeap []frontierEntry

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].priority == h[j].priority {
		return h[i].id < h[j].id
	}
	return h[i].priority > h[j].priority
}
func (h frontierHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x interface{}) { *h = append(*h, x.(frontierEntry)) }
func (h *frontierHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
