package scoring

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/corpusworks/rankfuse/pkg/rank"
)

// CELScorer evaluates a CEL (Common Expression Language) expression against
// each item and uses the result as the score. The expression is compiled
// once at construction; evaluation is thread-safe, so one scorer can serve
// concurrent engine calls.
//
// The item is bound to the variable `item`. Expressions must evaluate to a
// number; booleans are accepted and score 1 or 0.
//
// Example expressions:
//   - `item.views * 0.8 + item.likes * 0.2`
//   - `item.category == "featured" ? 1.0 : 0.0`
//   - `item.age_days < 7.0`
type CELScorer[T any] struct {
	name    string
	program cel.Program
	inputFn func(T) map[string]any
}

// NewCELScorer compiles expr into a reusable program. inputFn converts an
// item into the map the expression sees as `item`; a nil inputFn binds the
// item value directly, which works when T is already a map type.
func NewCELScorer[T any](name, expr string, inputFn func(T) map[string]any) (*CELScorer[T], error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build program: %w", err)
	}

	return &CELScorer[T]{name: name, program: program, inputFn: inputFn}, nil
}

// Name returns the signal identifier.
func (s *CELScorer[T]) Name() string { return s.name }

// Score evaluates the expression for one item.
func (s *CELScorer[T]) Score(_ context.Context, item T) (float64, error) {
	var bound any = item
	if s.inputFn != nil {
		bound = s.inputFn(item)
	}

	out, _, err := s.program.Eval(map[string]any{"item": bound})
	if err != nil {
		return 0, fmt.Errorf("evaluate expression: %w", err)
	}
	return toScore(out.Value())
}

// ScoreBatch evaluates the expression per item, stopping at the first
// failure.
func (s *CELScorer[T]) ScoreBatch(ctx context.Context, items []T) ([]float64, error) {
	out := make([]float64, len(items))
	for i, item := range items {
		score, err := s.Score(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = score
	}
	return out, nil
}

// toScore coerces a CEL evaluation result into a score.
func toScore(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expression must return a number, got %T", v)
	}
}

// Interface check.
var _ rank.Scorer[any] = (*CELScorer[any])(nil)
