package scoring

import (
	"context"
	"fmt"

	"github.com/corpusworks/rankfuse/pkg/rank"
)

// Func adapts a scoring function into a rank.Scorer. The batch path runs
// the function once per item in input order.
type Func[T any] struct {
	name string
	fn   func(context.Context, T) (float64, error)
}

// NewFunc wraps a pure function as a scorer.
func NewFunc[T any](name string, fn func(T) float64) *Func[T] {
	return &Func[T]{
		name: name,
		fn: func(_ context.Context, item T) (float64, error) {
			return fn(item), nil
		},
	}
}

// NewFuncWithContext wraps a fallible, context-aware function as a scorer.
func NewFuncWithContext[T any](name string, fn func(context.Context, T) (float64, error)) *Func[T] {
	return &Func[T]{name: name, fn: fn}
}

// Name returns the signal identifier.
func (s *Func[T]) Name() string { return s.name }

// Score evaluates the wrapped function for one item.
func (s *Func[T]) Score(ctx context.Context, item T) (float64, error) {
	return s.fn(ctx, item)
}

// ScoreBatch evaluates the wrapped function per item, stopping at the
// first failure.
func (s *Func[T]) ScoreBatch(ctx context.Context, items []T) ([]float64, error) {
	out := make([]float64, len(items))
	for i, item := range items {
		score, err := s.fn(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("score item %d: %w", i, err)
		}
		out[i] = score
	}
	return out, nil
}

// Constant scores every item with the same fixed value. Useful as a bias
// term or as a placeholder signal in tests.
type Constant[T any] struct {
	name  string
	value float64
}

// NewConstant creates a constant scorer.
func NewConstant[T any](name string, value float64) *Constant[T] {
	return &Constant[T]{name: name, value: value}
}

// Name returns the signal identifier.
func (s *Constant[T]) Name() string { return s.name }

// Score returns the fixed value.
func (s *Constant[T]) Score(_ context.Context, _ T) (float64, error) {
	return s.value, nil
}

// ScoreBatch returns the fixed value once per item.
func (s *Constant[T]) ScoreBatch(_ context.Context, items []T) ([]float64, error) {
	out := make([]float64, len(items))
	for i := range out {
		out[i] = s.value
	}
	return out, nil
}

// Interface checks.
var (
	_ rank.Scorer[any] = (*Func[any])(nil)
	_ rank.Scorer[any] = (*Constant[any])(nil)
)
