package scoring

import (
	"context"

	"github.com/corpusworks/rankfuse/pkg/rank"
)

// Lookup scores items from a precomputed score table, keyed by a
// caller-supplied key function. Items absent from the table receive the
// configured default. This is how external retrieval scores (a BM25 pass,
// a vector index search) are fed into the engine as signals: run the
// retrieval once, load its hits into the table, rank with everything else.
//
// The table is held by reference and must not be mutated while the scorer
// is in use.
type Lookup[T any] struct {
	name    string
	keyFn   func(T) string
	scores  map[string]float64
	missing float64
}

// NewLookup creates a lookup scorer. Missing keys score 0.
func NewLookup[T any](name string, keyFn func(T) string, scores map[string]float64) *Lookup[T] {
	return NewLookupWithDefault(name, keyFn, scores, 0)
}

// NewLookupWithDefault creates a lookup scorer with an explicit score for
// missing keys.
func NewLookupWithDefault[T any](name string, keyFn func(T) string, scores map[string]float64, missing float64) *Lookup[T] {
	return &Lookup[T]{
		name:    name,
		keyFn:   keyFn,
		scores:  scores,
		missing: missing,
	}
}

// Name returns the signal identifier.
func (s *Lookup[T]) Name() string { return s.name }

// Score returns the table entry for the item's key, or the missing-key
// default.
func (s *Lookup[T]) Score(_ context.Context, item T) (float64, error) {
	if score, ok := s.scores[s.keyFn(item)]; ok {
		return score, nil
	}
	return s.missing, nil
}

// ScoreBatch looks up every item in input order.
func (s *Lookup[T]) ScoreBatch(_ context.Context, items []T) ([]float64, error) {
	out := make([]float64, len(items))
	for i, item := range items {
		if score, ok := s.scores[s.keyFn(item)]; ok {
			out[i] = score
		} else {
			out[i] = s.missing
		}
	}
	return out, nil
}

// Interface check.
var _ rank.Scorer[any] = (*Lookup[any])(nil)
