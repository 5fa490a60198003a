package database

import (
	"sync"

	"github.com/coder/hnsw"
)

// HNSW index parameters for face encodings.
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16
)

// HNSWIndex wraps an approximate nearest-neighbor graph over enrolled
// entries, keyed by name. It serves candidate listing only: access
// decisions always go through the exact matcher. The index is rebuilt
// from a store snapshot after mutations rather than patched in place.
type HNSWIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[string]
	dim   int
	count int
}

// NewHNSWIndex creates an empty index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{}
}

// Build replaces the index contents with the given entries.
func (h *HNSWIndex) Build(entries []Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(entries) == 0 {
		h.graph = nil
		h.dim = 0
		h.count = 0
		return nil
	}

	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	dim := len(entries[0].Encoding)
	for i := range entries {
		e := &entries[i]
		if len(e.Encoding) != dim {
			return &ErrDimensionMismatch{Expected: dim, Actual: len(e.Encoding)}
		}
		g.Add(hnsw.MakeNode(e.Name, e.Encoding))
	}

	h.graph = g
	h.dim = dim
	h.count = len(entries)
	return nil
}

// Search returns up to k nearest names, ranked by ascending L2 distance.
// Distances are recomputed exactly from the stored vectors. An empty index
// returns no matches; k <= 0 returns no matches.
func (h *HNSWIndex) Search(probe []float32, k int) ([]RankedMatch, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil || k <= 0 {
		return []RankedMatch{}, nil
	}
	if len(probe) != h.dim {
		return nil, &ErrDimensionMismatch{Expected: h.dim, Actual: len(probe)}
	}

	neighbors := h.graph.Search(probe, k)
	matches := make([]RankedMatch, 0, len(neighbors))
	for _, n := range neighbors {
		d, err := EuclideanDistance(n.Value, probe)
		if err != nil {
			return nil, err
		}
		matches = append(matches, RankedMatch{
			Name:     n.Key,
			Distance: d,
			Rank:     len(matches) + 1,
		})
	}
	return matches, nil
}

// Len returns the number of indexed entries.
func (h *HNSWIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Dim returns the dimensionality of the indexed encodings, 0 when empty.
func (h *HNSWIndex) Dim() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dim
}
