package rank

import (
	"errors"
	"fmt"
)

// ErrNoScorers is returned by Rank when the weighted scorer list is empty
// while there are items to rank.
var ErrNoScorers = errors.New("no scorers provided")

// ErrNilScorer is returned when a WeightedScorer carries a nil Scorer.
var ErrNilScorer = errors.New("nil scorer")

// ErrNoScores is returned by strategies when the scores or weights slice is
// nil or empty.
var ErrNoScores = errors.New("no scores to combine")

// ErrMissingContext is returned by rank-aware strategies when no Context is
// supplied.
var ErrMissingContext = errors.New("missing ranking context")

// LengthMismatchError reports scores and weights slices of different lengths
// handed to a strategy.
type LengthMismatchError struct {
	Scores  int
	Weights int
}

func (e LengthMismatchError) Error() string {
	return fmt.Sprintf("scores and weights length mismatch: %d vs %d", e.Scores, e.Weights)
}

// BatchSizeError reports a scorer whose batch output length disagrees with
// the item count.
type BatchSizeError struct {
	Scorer string
	Want   int
	Got    int
}

func (e BatchSizeError) Error() string {
	return fmt.Sprintf("scorer %q returned %d scores for %d items", e.Scorer, e.Got, e.Want)
}
