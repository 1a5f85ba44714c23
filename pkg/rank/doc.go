// Package rank combines multiple weighted scoring signals into a single
// ordered ranking.
//
// The pipeline runs three stages over a collection of items:
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────┐
//	│   Scoring    │───▶│ Normalization│───▶│ Combination  │
//	│  Scorer[T]   │    │  Normalizer  │    │   Strategy   │
//	└──────────────┘    └──────────────┘    └──────────────┘
//
// Each [Scorer] produces one raw score per item. Each scorer's batch is then
// rescaled by a [Normalizer] (the scorer's own, or the engine default) so
// signals with different ranges become comparable. Finally a [Strategy]
// folds every item's normalized scores and weights into one scalar, items
// are sorted by it descending, and 1-based ranks are assigned.
//
// # Usage
//
//	engine := rank.New[Article](
//	    rank.WithDefaultNormalizer(rank.NewZScoreNormalizer()),
//	    rank.WithDefaultStrategy(rank.NewHybridStrategy(0.7)),
//	)
//
//	results, err := engine.Rank(ctx, articles, []rank.WeightedScorer[Article]{
//	    {Scorer: freshness, Weight: 0.3},
//	    {Scorer: relevance, Weight: 0.7, Normalizer: rank.NewMinMaxNormalizer()},
//	})
//
// Three normalizers ship with the package: [MinMaxNormalizer] (rescale to
// [0, 1]), [ZScoreNormalizer] (center on the mean), and
// [PercentileNormalizer] (fractional rank). Three strategies ship as well:
// [WeightedSumStrategy], [RRFStrategy] (Reciprocal Rank Fusion), and
// [HybridStrategy] (a blend of the two).
//
// # Determinism
//
// Sorting is stable: items with equal final scores keep their input order,
// and ranks are always the unique sequence 1..n. Running scorers
// concurrently (see [WithParallelism]) does not change any output, since
// each scorer owns its own score row.
//
// # Thread Safety
//
// An Engine holds only configuration; concurrent Rank calls are safe as long
// as the scorers themselves are.
package rank
