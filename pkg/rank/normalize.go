package rank

import (
	"math"
	"sort"
)

// Epsilon guards the degenerate-input checks in all normalizers: ranges or
// deviations smaller than this are treated as zero.
const Epsilon = 1e-10

// MinMaxNormalizer linearly rescales scores onto [0, 1].
type MinMaxNormalizer struct{}

// NewMinMaxNormalizer creates a min-max normalizer.
func NewMinMaxNormalizer() *MinMaxNormalizer {
	return &MinMaxNormalizer{}
}

// Name returns the normalizer identifier.
func (n *MinMaxNormalizer) Name() string { return "minmax" }

// Normalize maps the minimum input to 0 and the maximum to 1. A degenerate
// batch (all values within Epsilon of each other, including a single
// element) maps every element to the neutral 0.5.
func (n *MinMaxNormalizer) Normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	out := make([]float64, len(scores))
	spread := maxScore - minScore
	if spread < Epsilon {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	for i, s := range scores {
		out[i] = (s - minScore) / spread
	}
	return out
}

// ZScoreNormalizer centers scores on their mean in units of standard
// deviation.
type ZScoreNormalizer struct{}

// NewZScoreNormalizer creates a z-score normalizer.
func NewZScoreNormalizer() *ZScoreNormalizer {
	return &ZScoreNormalizer{}
}

// Name returns the normalizer identifier.
func (n *ZScoreNormalizer) Name() string { return "zscore" }

// Normalize computes (x - mean) / stddev with the population standard
// deviation, not the sample one. A degenerate batch (stddev within Epsilon
// of zero) maps every element to 0.0.
func (n *ZScoreNormalizer) Normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / float64(len(scores)))

	out := make([]float64, len(scores))
	if stdDev < Epsilon {
		return out
	}

	for i, s := range scores {
		out[i] = (s - mean) / stdDev
	}
	return out
}

// PercentileNormalizer maps each score to its fractional rank within the
// batch.
type PercentileNormalizer struct{}

// NewPercentileNormalizer creates a percentile-rank normalizer.
func NewPercentileNormalizer() *PercentileNormalizer {
	return &PercentileNormalizer{}
}

// Name returns the normalizer identifier.
func (n *PercentileNormalizer) Name() string { return "percentile" }

// Normalize maps each score to rank/(n-1) in [0, 1], where rank is the index
// of the first element within Epsilon of the score in sorted order — ties
// share the first equal element's rank, so duplicates receive identical
// output. A single-element batch maps to 0.5.
func (n *PercentileNormalizer) Normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	out := make([]float64, len(scores))
	if len(scores) == 1 {
		out[0] = 0.5
		return out
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	denom := float64(len(scores) - 1)
	for i, s := range scores {
		out[i] = float64(firstEqualRank(sorted, s)) / denom
	}
	return out
}

// firstEqualRank returns the index of the first element of sorted matching s
// within Epsilon. s always comes from the same batch, so a match exists.
func firstEqualRank(sorted []float64, s float64) int {
	for rank, v := range sorted {
		if math.Abs(v-s) < Epsilon {
			return rank
		}
	}
	return 0
}

// Interface checks.
var (
	_ Normalizer = (*MinMaxNormalizer)(nil)
	_ Normalizer = (*ZScoreNormalizer)(nil)
	_ Normalizer = (*PercentileNormalizer)(nil)
)
