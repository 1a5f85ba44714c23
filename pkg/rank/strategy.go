package rank

import (
	"fmt"
	"math"
)

// DefaultRRFConstant is the smoothing constant k in the RRF formula
// 1/(k+rank). The value 60 is the empirically validated default used by
// Azure AI Search and OpenSearch: it dampens the gap between adjacent
// top ranks without flattening the tail.
const DefaultRRFConstant = 60

// validateCombineInput applies the shared precondition of every strategy:
// non-empty score and weight slices of equal length.
func validateCombineInput(scores, weights []float64) error {
	if len(scores) == 0 || len(weights) == 0 {
		return ErrNoScores
	}
	if len(scores) != len(weights) {
		return &LengthMismatchError{Scores: len(scores), Weights: len(weights)}
	}
	return nil
}

// WeightedSumStrategy combines scores as a plain weighted sum. It works on
// score magnitudes and ignores ranking context entirely.
type WeightedSumStrategy struct{}

// NewWeightedSumStrategy creates a weighted-sum strategy.
func NewWeightedSumStrategy() *WeightedSumStrategy {
	return &WeightedSumStrategy{}
}

// Name returns the strategy identifier.
func (s *WeightedSumStrategy) Name() string { return "weighted_sum" }

// Combine returns the sum of scores[i]*weights[i]. The context is ignored.
func (s *WeightedSumStrategy) Combine(scores, weights []float64, _ *Context) (float64, error) {
	if err := validateCombineInput(scores, weights); err != nil {
		return 0, err
	}

	var sum float64
	for i, score := range scores {
		sum += score * weights[i]
	}
	return sum, nil
}

// RRFStrategy combines scores by reciprocal rank fusion. Scores only
// determine each signal's rank; their magnitudes never enter the result, so
// RRF is robust to signals on wildly different scales.
type RRFStrategy struct {
	k int
}

// NewRRFStrategy creates an RRF strategy with DefaultRRFConstant.
func NewRRFStrategy() *RRFStrategy {
	return NewRRFStrategyWithK(DefaultRRFConstant)
}

// NewRRFStrategyWithK creates an RRF strategy with the given smoothing
// constant. Non-positive values fall back to DefaultRRFConstant.
func NewRRFStrategyWithK(k int) *RRFStrategy {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	return &RRFStrategy{k: k}
}

// Name returns the strategy identifier.
func (s *RRFStrategy) Name() string { return "rrf" }

// K returns the smoothing constant.
func (s *RRFStrategy) K() int { return s.k }

// Combine derives a pseudo-rank for each signal from its normalized score
// and returns the weighted sum of reciprocal ranks. It requires a ranking
// context: without TotalItems there is no rank scale to project onto.
func (s *RRFStrategy) Combine(scores, weights []float64, rc *Context) (float64, error) {
	if err := validateCombineInput(scores, weights); err != nil {
		return 0, err
	}
	if rc == nil {
		return 0, fmt.Errorf("%w: rrf needs TotalItems to derive ranks", ErrMissingContext)
	}

	var sum float64
	for i, score := range scores {
		rank := pseudoRank(score, rc.TotalItems)
		sum += weights[i] / float64(s.k+rank)
	}
	return sum, nil
}

// pseudoRank projects a normalized score onto a rank in [1, totalItems]: a
// score of 1 maps to rank 1, a score of 0 to the last rank. Scores are
// floored so near-ties collapse onto the same rank.
func pseudoRank(score float64, totalItems int) int {
	rank := totalItems - int(math.Floor(score*float64(totalItems-1)))
	if rank < 1 {
		return 1
	}
	return rank
}

// HybridStrategy blends weighted-sum and RRF results: alpha of the former,
// 1-alpha of the latter. It degrades to a pure weighted sum when no ranking
// context is available, since RRF cannot run without one.
type HybridStrategy struct {
	alpha float64
	ws    *WeightedSumStrategy
	rrf   *RRFStrategy
}

// NewHybridStrategy creates a hybrid strategy with the given blend factor
// and DefaultRRFConstant. Alpha is clamped to [0, 1].
func NewHybridStrategy(alpha float64) *HybridStrategy {
	return NewHybridStrategyWithK(alpha, DefaultRRFConstant)
}

// NewHybridStrategyWithK creates a hybrid strategy with the given blend
// factor and RRF smoothing constant. Alpha is clamped to [0, 1].
func NewHybridStrategyWithK(alpha float64, k int) *HybridStrategy {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return &HybridStrategy{
		alpha: alpha,
		ws:    NewWeightedSumStrategy(),
		rrf:   NewRRFStrategyWithK(k),
	}
}

// Name returns the strategy identifier.
func (s *HybridStrategy) Name() string { return "hybrid" }

// Alpha returns the blend factor.
func (s *HybridStrategy) Alpha() float64 { return s.alpha }

// Combine blends alpha*weightedSum + (1-alpha)*rrf. With a nil context the
// RRF component is skipped and the weighted sum is returned on its own.
func (s *HybridStrategy) Combine(scores, weights []float64, rc *Context) (float64, error) {
	wsScore, err := s.ws.Combine(scores, weights, rc)
	if err != nil {
		return 0, err
	}
	if rc == nil {
		return wsScore, nil
	}

	rrfScore, err := s.rrf.Combine(scores, weights, rc)
	if err != nil {
		return 0, err
	}
	return s.alpha*wsScore + (1-s.alpha)*rrfScore, nil
}

// Interface checks.
var (
	_ Strategy = (*WeightedSumStrategy)(nil)
	_ Strategy = (*RRFStrategy)(nil)
	_ Strategy = (*HybridStrategy)(nil)
)
