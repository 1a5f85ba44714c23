package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/corpusworks/rankfuse/pkg/rank"
	"github.com/corpusworks/rankfuse/pkg/vector"
)

// VectorScorer scores items by cosine similarity between a fixed query
// embedding and each item's embedding. Scores land in [-1, 1]; feed them
// through a normalizer before combining with other signals.
type VectorScorer[T any] struct {
	name    string
	query   vector.Embedding
	embedFn func(T) vector.Embedding
}

// NewVectorScorer creates a similarity scorer. The query embedding must be
// non-empty and embedFn must return an embedding of the same length for
// every item.
func NewVectorScorer[T any](name string, query vector.Embedding, embedFn func(T) vector.Embedding) (*VectorScorer[T], error) {
	if len(query) == 0 {
		return nil, errors.New("query embedding is empty")
	}
	if embedFn == nil {
		return nil, errors.New("embedding accessor is nil")
	}
	return &VectorScorer[T]{name: name, query: query, embedFn: embedFn}, nil
}

// Name returns the signal identifier.
func (s *VectorScorer[T]) Name() string { return s.name }

// Score returns the cosine similarity between the query and the item's
// embedding. A dimension disagreement surfaces as a vector.DimensionError.
func (s *VectorScorer[T]) Score(_ context.Context, item T) (float64, error) {
	return vector.CosineSimilarity(s.query, s.embedFn(item))
}

// ScoreBatch scores every item in input order, stopping at the first
// failure.
func (s *VectorScorer[T]) ScoreBatch(_ context.Context, items []T) ([]float64, error) {
	out := make([]float64, len(items))
	for i, item := range items {
		sim, err := vector.CosineSimilarity(s.query, s.embedFn(item))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = sim
	}
	return out, nil
}

// Interface check.
var _ rank.Scorer[any] = (*VectorScorer[any])(nil)
