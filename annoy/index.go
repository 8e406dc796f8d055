package annoy

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/patrikhermansson/goannoy/core"
)

const (
	// bucketSize is the largest item subset stored as a bucket instead of
	// being split further.
	bucketSize = 6
	// maxBuildWorkers caps the tree-building pool.
	maxBuildWorkers = 8
)

// Index is an approximate nearest-neighbor index: a forest of randomized
// binary space-partitioning trees over a flat node arena.
//
// The zero value is not usable; create instances with New or one of the
// per-metric constructors. The expected lifecycle is AddItem calls, one
// Build, then any number of concurrent queries.
type Index[T core.Scalar] struct {
	mu sync.RWMutex // guards the fields below across API calls

	dimension int
	metric    Metric[T]
	seed      int64

	nItems int64        // 1 + highest item id seen
	nNodes atomic.Int64 // arena allocator; also the total node count

	items   map[int64]*Node[T] // item leaves, ids < nItems; written by AddItem only
	nodes   map[int64]*Node[T] // split and bucket nodes, ids >= nItems
	nodesMu sync.Mutex         // serializes arena writes between build workers

	roots []int64
	built bool

	// Workers is the number of goroutines Build spreads tree construction
	// over. Defaults to the number of CPUs, capped at 8. A build with a
	// single worker is reproducible for a fixed seed.
	Workers int

	// ShowProgress renders a progress bar while trees are constructed.
	ShowProgress bool
}

// New creates an index for vectors of the given dimension under the given
// metric. The dimension must be positive.
func New[T core.Scalar](dimension int, metric Metric[T]) *Index[T] {
	if dimension <= 0 {
		panic("annoy: dimension must be positive")
	}
	configureLogging()
	log.Info().Int("dimension", dimension).Str("distance", metric.Name()).
		Msg("creating index")

	workers := runtime.NumCPU()
	if workers > maxBuildWorkers {
		workers = maxBuildWorkers
	}
	return &Index[T]{
		dimension: dimension,
		metric:    metric,
		seed:      defaultSeed(),
		items:     make(map[int64]*Node[T]),
		nodes:     make(map[int64]*Node[T]),
		Workers:   workers,
	}
}

// NewEuclidean creates an index using the Euclidean (L2) metric.
func NewEuclidean[T core.Float](dimension int) *Index[T] {
	return New[T](dimension, Euclidean[T]{})
}

// NewAngular creates an index using the angular (cosine) metric.
func NewAngular[T core.Float](dimension int) *Index[T] {
	return New[T](dimension, Angular[T]{})
}

// NewManhattan creates an index using the Manhattan (L1) metric.
func NewManhattan[T core.Float](dimension int) *Index[T] {
	return New[T](dimension, Manhattan[T]{})
}

// NewHamming creates an index using the Hamming metric over bit-coded
// components.
func NewHamming[T core.Integer](dimension int) *Index[T] {
	return New[T](dimension, Hamming[T]{})
}

// SetSeed fixes the seed used by subsequent builds. Worker w derives its own
// generator from seed+w, so single-worker builds are fully deterministic.
func (idx *Index[T]) SetSeed(seed int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.seed = seed
}

// AddItem registers (or replaces) the vector for the given item id. Item ids
// need not be dense. Returns an error once the index is built.
func (idx *Index[T]) AddItem(id int64, vector []T) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.built {
		return fmt.Errorf("%w: cannot add items after Build", ErrAlreadyBuilt)
	}
	if id < 0 {
		return fmt.Errorf("%w: item id %d must be nonnegative", ErrInvalidArgument, id)
	}
	if len(vector) != idx.dimension {
		return fmt.Errorf("%w: vector dimension %d, index dimension %d",
			ErrDimensionMismatch, len(vector), idx.dimension)
	}

	n, ok := idx.items[id]
	if !ok {
		n = newNode[T](idx.dimension)
		idx.items[id] = n
	}
	n.reset(vector)

	if id >= idx.nItems {
		idx.nItems = id + 1
	}
	return nil
}

// Build constructs q trees over the items added so far, or, when q is -1,
// keeps adding trees until the arena holds twice as many nodes as items.
// The forest is immutable afterwards.
func (idx *Index[T]) Build(q int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.built {
		return fmt.Errorf("%w: Build may only be called once", ErrAlreadyBuilt)
	}
	if q < -1 {
		return fmt.Errorf("%w: tree count %d", ErrInvalidArgument, q)
	}
	if len(idx.items) == 0 {
		return fmt.Errorf("%w: add items before Build", ErrEmptyIndex)
	}

	start := time.Now()
	idx.nNodes.Store(idx.nItems)

	workers := idx.Workers
	if workers < 1 {
		workers = 1
	}
	if q >= 0 && q < workers {
		workers = q
	}

	var bar *progressbar.ProgressBar
	if idx.ShowProgress && q > 0 {
		bar = progressbar.Default(int64(q), "building trees")
	}

	log.Info().Int("q", q).Int("workers", workers).Msg("building forest")

	// Each worker owns a private root buffer and a private RNG; the only
	// shared state is the arena allocator and the node map.
	localRoots := make([][]int64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(idx.seed + int64(w)))

			share := 0
			if q >= 0 {
				share = (q + w) / workers
			}

			for built := 0; ; built++ {
				if q == -1 {
					if idx.nNodes.Load() >= 2*idx.nItems {
						break
					}
				} else if built >= share {
					break
				}

				indices := idx.gatherItems()
				root := idx.makeTree(indices, true, rng)
				localRoots[w] = append(localRoots[w], root)
				log.Debug().Int("worker", w).Int64("root", root).
					Int("items", len(indices)).Msg("tree built")

				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	for _, local := range localRoots {
		idx.roots = append(idx.roots, local...)
	}
	idx.built = true

	if bar != nil {
		_ = bar.Finish()
	}
	log.Info().Int("trees", len(idx.roots)).Int64("nodes", idx.nNodes.Load()).
		Dur("elapsed", time.Since(start)).Msg("forest built")
	return nil
}

// gatherItems collects the ids of all registered items in id order.
func (idx *Index[T]) gatherItems() []int64 {
	indices := make([]int64, 0, len(idx.items))
	for i := int64(0); i < idx.nItems; i++ {
		if n, ok := idx.items[i]; ok && n.NDescendants >= 1 {
			indices = append(indices, i)
		}
	}
	return indices
}

// allocNode assigns the next arena id to m and publishes it.
func (idx *Index[T]) allocNode(m *Node[T]) int64 {
	id := idx.nNodes.Add(1) - 1
	idx.nodesMu.Lock()
	idx.nodes[id] = m
	idx.nodesMu.Unlock()
	return id
}

// node dereferences an arena id. Only queries call it, and the arena is
// immutable once Build returns, so no locking is needed.
func (idx *Index[T]) node(id int64) *Node[T] {
	if id < idx.nItems {
		return idx.items[id]
	}
	return idx.nodes[id]
}

// makeTree builds one (sub)tree over the given item ids and returns its root
// arena id.
func (idx *Index[T]) makeTree(indices []int64, isRoot bool, rng *rand.Rand) int64 {
	// A single item is its own subtree, except at the root: even tiny
	// datasets get a real root node so every root accounts for all items.
	if len(indices) == 1 && !isRoot {
		return indices[0]
	}

	if len(indices) <= bucketSize &&
		(!isRoot || idx.nItems <= bucketSize || len(indices) == 1) {
		m := newNode[T](idx.dimension)
		if isRoot {
			m.NDescendants = int(idx.nItems)
		} else {
			m.NDescendants = len(indices)
		}
		m.Children = append([]int64(nil), indices...)
		return idx.allocNode(m)
	}

	children := make([]*Node[T], 0, len(indices))
	for _, j := range indices {
		if n, ok := idx.items[j]; ok {
			children = append(children, n)
		}
	}

	m := newNode[T](idx.dimension)
	idx.metric.CreateSplit(children, m, idx.dimension, rng)

	var childIndices [2][]int64
	for _, j := range indices {
		if n, ok := idx.items[j]; ok {
			side := idx.metric.Side(m, n.V, rng)
			childIndices[side] = append(childIndices[side], j)
		}
	}

	// A split that fails to separate the items keeps its hyperplane but is
	// re-routed by fair coin until both sides are non-empty.
	for len(childIndices[0]) == 0 || len(childIndices[1]) == 0 {
		childIndices[0] = childIndices[0][:0]
		childIndices[1] = childIndices[1][:0]
		for _, j := range indices {
			side := rng.Intn(2)
			childIndices[side] = append(childIndices[side], j)
		}
	}

	// Build the smaller partition first. Each partition stays under the
	// child index its side selected, which the query's margin routing
	// relies on; flip changes only the order of the two recursive calls.
	flip := 0
	if len(childIndices[0]) > len(childIndices[1]) {
		flip = 1
	}

	if isRoot {
		m.NDescendants = int(idx.nItems)
	} else {
		m.NDescendants = len(indices)
	}

	for side := 0; side < 2; side++ {
		ii := side ^ flip
		m.Children[ii] = idx.makeTree(childIndices[ii], false, rng)
	}

	return idx.allocNode(m)
}

// GetNnsByVector returns up to n item ids closest to the query vector along
// with their normalized distances, closest first. searchK bounds the number
// of candidate items gathered during the descent; -1 selects n times the
// number of trees.
func (idx *Index[T]) GetNnsByVector(query []T, n int, searchK int) ([]int64, []float64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(query) != idx.dimension {
		return nil, nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			ErrDimensionMismatch, len(query), idx.dimension)
	}
	if !idx.built {
		return nil, nil, fmt.Errorf("%w: call Build before querying", ErrNotBuilt)
	}
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: n must be nonnegative, got %d", ErrInvalidArgument, n)
	}
	if searchK < -1 {
		return nil, nil, fmt.Errorf("%w: searchK %d", ErrInvalidArgument, searchK)
	}

	ids, distances := idx.searchAll(query, n, searchK)
	return ids, distances, nil
}

// GetNnsByItem is GetNnsByVector with the stored vector of the given item as
// the query. The item itself is part of the results.
func (idx *Index[T]) GetNnsByItem(item int64, n int, searchK int) ([]int64, []float64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.built {
		return nil, nil, fmt.Errorf("%w: call Build before querying", ErrNotBuilt)
	}
	it, ok := idx.items[item]
	if !ok {
		return nil, nil, fmt.Errorf("%w: item %d", ErrItemNotFound, item)
	}
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: n must be nonnegative, got %d", ErrInvalidArgument, n)
	}
	if searchK < -1 {
		return nil, nil, fmt.Errorf("%w: searchK %d", ErrInvalidArgument, searchK)
	}

	ids, distances := idx.searchAll(it.V, n, searchK)
	return ids, distances, nil
}

// searchAll runs the best-first multi-tree descent and ranks the candidates.
func (idx *Index[T]) searchAll(query []T, n int, searchK int) ([]int64, []float64) {
	if searchK == -1 {
		searchK = n * len(idx.roots)
	}

	// Every root starts at priority 0; descending through a split caps the
	// priority at min(parent, ±margin), the path's tightest bound on how far
	// the query sits on the wrong side of any split above.
	frontier := make(frontierHeap, 0, len(idx.roots))
	for _, root := range idx.roots {
		frontier = append(frontier, frontierEntry{priority: 0, id: root})
	}
	heap.Init(&frontier)

	var nns []int64
	for len(nns) < searchK && frontier.Len() > 0 {
		top := heap.Pop(&frontier).(frontierEntry)
		nd := idx.node(top.id)

		switch {
		case nd.NDescendants == 1 && top.id < idx.nItems:
			nns = append(nns, top.id)
		case nd.NDescendants <= bucketSize:
			nns = append(nns, nd.Children...)
		default:
			margin := idx.metric.Margin(nd, query)
			heap.Push(&frontier, frontierEntry{
				priority: math.Min(top.priority, margin),
				id:       nd.Children[1],
			})
			heap.Push(&frontier, frontierEntry{
				priority: math.Min(top.priority, -margin),
				id:       nd.Children[0],
			})
		}
	}

	// Candidates collected from different trees overlap; sort and skip
	// duplicates while computing exact distances.
	sort.Slice(nns, func(i, j int) bool { return nns[i] < nns[j] })

	neighbors := make([]core.Neighbor, 0, len(nns))
	last := int64(-1)
	for _, j := range nns {
		if j == last {
			continue
		}
		last = j
		neighbors = append(neighbors, core.Neighbor{
			ID:       j,
			Distance: idx.metric.Distance(query, idx.items[j].V),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance == neighbors[j].Distance {
			return neighbors[i].ID < neighbors[j].ID
		}
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if n > len(neighbors) {
		n = len(neighbors)
	}
	ids := make([]int64, 0, n)
	distances := make([]float64, 0, n)
	for _, nb := range neighbors[:n] {
		ids = append(ids, nb.ID)
		distances = append(distances, idx.metric.NormalizedDistance(nb.Distance))
	}
	return ids, distances
}

// GetDistance returns the normalized distance between two stored items.
func (idx *Index[T]) GetDistance(i, j int64) (float64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	a, ok := idx.items[i]
	if !ok {
		return 0, fmt.Errorf("%w: item %d", ErrItemNotFound, i)
	}
	b, ok := idx.items[j]
	if !ok {
		return 0, fmt.Errorf("%w: item %d", ErrItemNotFound, j)
	}
	return idx.metric.NormalizedDistance(idx.metric.Distance(a.V, b.V)), nil
}

// Stats returns metadata about the index.
func (idx *Index[T]) Stats() core.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return core.IndexStats{
		Count:     len(idx.items),
		Dimension: idx.dimension,
		Nodes:     int(idx.nNodes.Load()),
		Trees:     len(idx.roots),
		Distance:  idx.metric.Name(),
	}
}

var _ core.Index[float32] = (*Index[float32])(nil)
var _ core.Index[uint64] = (*Index[uint64])(nil)
