package rank

import "context"

// Scorer produces one named relevance signal over items of type T.
// The engine never inspects items directly; scorers are its only view.
type Scorer[T any] interface {
	// Name identifies the signal and keys its raw score in Result.Scores.
	Name() string

	// Score computes the raw score for a single item.
	Score(ctx context.Context, item T) (float64, error)

	// ScoreBatch computes raw scores for all items, one entry per item.
	// The result must agree elementwise with Score on the same items.
	ScoreBatch(ctx context.Context, items []T) ([]float64, error)
}

// Normalizer rescales one scorer's batch of raw scores onto a common scale
// so differently-ranged signals become comparable.
//
// Normalize returns a new slice of the same length and never modifies its
// input; an empty batch yields an empty result. Implementations must
// preserve the relative order of distinct values.
type Normalizer interface {
	Name() string
	Normalize(scores []float64) []float64
}

// Strategy folds one item's normalized scores and parallel weights into a
// single scalar. Implementations must treat both slices as read-only and
// must not retain them past the call.
//
// The Context is optional for context-free strategies; rank-aware ones
// (RRF) require it and return ErrMissingContext without it.
type Strategy interface {
	Name() string
	Combine(scores, weights []float64, rc *Context) (float64, error)
}

// Context carries corpus-level information to rank-aware strategies so they
// can derive ranks without recomputing corpus size.
type Context struct {
	// TotalItems is the number of items in the ranking call.
	TotalItems int

	// CurrentIndex is the item's position in the input collection.
	CurrentIndex int

	// Extra is an open extension bag for caller-defined strategies.
	Extra map[string]any
}

// WeightedScorer attaches a weight and an optional normalizer override to a
// scorer. A nil Normalizer falls back to the engine default at rank time,
// not at construction. Weight may be zero or negative; a negative weight
// inverts the scorer's contribution.
type WeightedScorer[T any] struct {
	Scorer     Scorer[T]
	Weight     float64
	Normalizer Normalizer
}

// Result is one ranked item. The engine constructs results and the caller
// owns them afterwards; nothing is mutated after ranks are assigned.
type Result[T any] struct {
	Item T

	// FinalScore is the strategy's combined scalar.
	FinalScore float64

	// Scores maps scorer name to that scorer's raw score for this item,
	// before normalization.
	Scores map[string]float64

	// Rank is the 1-based position after sorting by FinalScore descending.
	Rank int

	// Metadata is an open bag for callers; the engine leaves it nil.
	Metadata map[string]any
}
