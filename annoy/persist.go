package annoy

import (
	"encoding/gob"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/patrikhermansson/goannoy/core"
)

// nodeRecord carries one arena slot through the snapshot stream.
type nodeRecord[T core.Scalar] struct {
	ID   int64
	Node *Node[T]
}

// serializedIndex mirrors the persistent state of an Index. Roots and item
// count are stored explicitly so Load reconstructs the forest exactly
// instead of rediscovering it from descendant counts.
type serializedIndex[T core.Scalar] struct {
	Dimension int
	Metric    string
	NItems    int64
	NNodes    int64
	Items     []nodeRecord[T]
	Nodes     []nodeRecord[T]
	Roots     []int64
	Built     bool
}

// Save writes a snapshot of the index to w. The arena is encoded in id order
// so identical indexes produce identical streams.
func (idx *Index[T]) Save(w io.Writer) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ser := serializedIndex[T]{
		Dimension: idx.dimension,
		Metric:    idx.metric.Name(),
		NItems:    idx.nItems,
		NNodes:    idx.nNodes.Load(),
		Items:     sortedRecords(idx.items),
		Nodes:     sortedRecords(idx.nodes),
		Roots:     idx.roots,
		Built:     idx.built,
	}

	if err := gob.NewEncoder(w).Encode(ser); err != nil {
		log.Error().Err(err).Msg("failed to encode index snapshot")
		return err
	}
	log.Info().Int("items", len(idx.items)).Int("trees", len(idx.roots)).
		Msg("index saved")
	return nil
}

// Load replaces the index state with a snapshot previously written by Save.
// The snapshot must match the receiving index's dimension and metric.
func (idx *Index[T]) Load(r io.Reader) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var ser serializedIndex[T]
	if err := gob.NewDecoder(r).Decode(&ser); err != nil {
		log.Error().Err(err).Msg("failed to decode index snapshot")
		return err
	}

	if ser.Dimension != idx.dimension {
		return fmt.Errorf("%w: snapshot dimension %d, index dimension %d",
			ErrDimensionMismatch, ser.Dimension, idx.dimension)
	}
	if ser.Metric != idx.metric.Name() {
		return fmt.Errorf("%w: snapshot metric %q, index metric %q",
			ErrInvalidArgument, ser.Metric, idx.metric.Name())
	}

	idx.nItems = ser.NItems
	idx.nNodes.Store(ser.NNodes)
	idx.items = recordMap(ser.Items)
	idx.nodes = recordMap(ser.Nodes)
	idx.roots = ser.Roots
	idx.built = ser.Built

	log.Info().Int("items", len(idx.items)).Int("trees", len(idx.roots)).
		Msg("index loaded")
	return nil
}

func sortedRecords[T core.Scalar](m map[int64]*Node[T]) []nodeRecord[T] {
	records := make([]nodeRecord[T], 0, len(m))
	for id, n := range m {
		records = append(records, nodeRecord[T]{ID: id, Node: n})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

func recordMap[T core.Scalar](records []nodeRecord[T]) map[int64]*Node[T] {
	m := make(map[int64]*Node[T], len(records))
	for _, rec := range records {
		m[rec.ID] = rec.Node
	}
	return m
}
