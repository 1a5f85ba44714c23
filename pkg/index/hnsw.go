// Package index provides an in-memory approximate-nearest-neighbor index
// over embeddings, built on coder/hnsw with cosine distance. Hits carry the
// original embeddings, so search output can feed straight into diversity
// selection or similarity scoring without a second lookup.
package index

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/corpusworks/rankfuse/pkg/vector"
)

// Default HNSW parameters.
const (
	// DefaultM is the maximum neighbor count per graph node.
	DefaultM = 16
	// DefaultEfSearch is the candidate pool size during search. Larger
	// values trade latency for recall.
	DefaultEfSearch = 64
)

// Config holds index construction parameters. Dimensions is required; the
// graph parameters fall back to the defaults above when zero.
type Config struct {
	Dimensions int
	M          int
	EfSearch   int
}

// DefaultConfig returns a Config with default graph parameters for the
// given embedding dimensionality.
func DefaultConfig(dimensions int) Config {
	return Config{
		Dimensions: dimensions,
		M:          DefaultM,
		EfSearch:   DefaultEfSearch,
	}
}

// Hit is one search result. Embedding is the vector as originally added,
// not the normalized copy the graph stores; treat it as read-only.
type Hit struct {
	ID        string
	Score     float64
	Embedding vector.Embedding
}

// Stats describes index occupancy. Orphans counts graph nodes left behind
// by lazy deletion; they consume memory and search effort but never appear
// in results.
type Stats struct {
	Active     int
	GraphNodes int
	Orphans    int
}

// HNSW is an in-memory vector index. Embeddings are normalized on insert so
// that cosine distance drives neighbor selection; the original vectors are
// retained for retrieval.
//
// Deletion is lazy: removed IDs drop out of results immediately, but their
// graph nodes remain until the index is rebuilt. Heavy churn therefore
// degrades search, and a Search may return fewer than k hits when orphans
// crowd the neighbor pool.
//
// All methods are safe for concurrent use.
type HNSW struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	cfg   Config

	vectors map[string]vector.Embedding
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

// New creates an empty index for embeddings of the configured length.
func New(cfg Config) (*HNSW, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", cfg.Dimensions)
	}
	if cfg.M == 0 {
		cfg.M = DefaultM
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = DefaultEfSearch
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &HNSW{
		graph:   graph,
		cfg:     cfg,
		vectors: make(map[string]vector.Embedding),
		idMap:   make(map[string]uint64),
		keyMap:  make(map[uint64]string),
	}, nil
}

// Add inserts embeddings under their IDs. Re-adding an existing ID replaces
// it: the old graph node is orphaned, not removed. The embeddings are
// copied, so callers may reuse their slices.
func (x *HNSW) Add(ids []string, embeddings []vector.Embedding) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(embeddings) {
		return fmt.Errorf("ids and embeddings length mismatch: %d vs %d", len(ids), len(embeddings))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for i, emb := range embeddings {
		if len(emb) != x.cfg.Dimensions {
			return vector.DimensionError{Position: i, Expected: x.cfg.Dimensions, Got: len(emb)}
		}
	}

	for i, id := range ids {
		if existingKey, exists := x.idMap[id]; exists {
			// Lazy replacement: orphan the old key instead of deleting the
			// node, which coder/hnsw handles badly for the last node.
			delete(x.keyMap, existingKey)
			delete(x.idMap, id)
		}

		key := x.nextKey
		x.nextKey++

		original := make(vector.Embedding, len(embeddings[i]))
		copy(original, embeddings[i])

		normalized := vector.Normalize(original)
		x.graph.Add(hnsw.MakeNode(key, normalized))

		x.vectors[id] = original
		x.idMap[id] = key
		x.keyMap[key] = id
	}

	return nil
}

// Search returns up to k hits nearest to the query by cosine distance,
// best first. Scores map distance onto [0, 1] where 1 means identical
// direction. An empty index or non-positive k yields an empty result.
func (x *HNSW) Search(query vector.Embedding, k int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(query) != x.cfg.Dimensions {
		return nil, vector.DimensionError{Position: -1, Expected: x.cfg.Dimensions, Got: len(query)}
	}
	if k <= 0 || x.graph.Len() == 0 {
		return []Hit{}, nil
	}

	normalized := vector.Normalize(query)
	nodes := x.graph.Search(normalized, k)

	hits := make([]Hit, 0, len(nodes))
	for _, node := range nodes {
		id, exists := x.keyMap[node.Key]
		if !exists {
			// Orphaned by lazy deletion.
			continue
		}

		distance := x.graph.Distance(normalized, node.Value)
		hits = append(hits, Hit{
			ID:        id,
			Score:     1.0 - float64(distance)/2.0,
			Embedding: x.vectors[id],
		})
	}

	return hits, nil
}

// Delete removes IDs from the index. Unknown IDs are ignored. The graph
// nodes stay behind as orphans.
func (x *HNSW) Delete(ids ...string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		if key, exists := x.idMap[id]; exists {
			delete(x.keyMap, key)
			delete(x.idMap, id)
			delete(x.vectors, id)
		}
	}
}

// Contains reports whether id is currently indexed.
func (x *HNSW) Contains(id string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, exists := x.idMap[id]
	return exists
}

// Len returns the number of active (non-deleted) embeddings.
func (x *HNSW) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.idMap)
}

// Dimensions returns the configured embedding length.
func (x *HNSW) Dimensions() int {
	return x.cfg.Dimensions
}

// Stats returns occupancy counters, including how many orphaned nodes lazy
// deletion has accumulated.
func (x *HNSW) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	active := len(x.idMap)
	graphNodes := x.graph.Len()

	return Stats{
		Active:     active,
		GraphNodes: graphNodes,
		Orphans:    graphNodes - active,
	}
}
