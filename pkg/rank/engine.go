package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// settings collects the engine knobs so options stay free of type
// parameters.
type settings struct {
	normalizer  Normalizer
	strategy    Strategy
	logger      *slog.Logger
	parallelism int
}

// Option configures an Engine at construction time.
type Option func(*settings)

// WithDefaultNormalizer sets the normalizer applied to signals that do not
// carry their own. Nil is ignored.
func WithDefaultNormalizer(n Normalizer) Option {
	return func(s *settings) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithDefaultStrategy sets the combination strategy used when a Rank call
// does not override it. Nil is ignored.
func WithDefaultStrategy(st Strategy) Option {
	return func(s *settings) {
		if st != nil {
			s.strategy = st
		}
	}
}

// WithLogger sets the structured logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithParallelism caps how many scorers run concurrently during a Rank
// call. Values below 1 are ignored; the default of 1 keeps scoring
// sequential.
func WithParallelism(n int) Option {
	return func(s *settings) {
		if n >= 1 {
			s.parallelism = n
		}
	}
}

// rankSettings collects per-call overrides.
type rankSettings struct {
	strategy Strategy
}

// RankOption configures a single Rank or RankTopK call.
type RankOption func(*rankSettings)

// WithStrategy overrides the engine's default combination strategy for one
// call. Nil is ignored.
func WithStrategy(st Strategy) RankOption {
	return func(s *rankSettings) {
		if st != nil {
			s.strategy = st
		}
	}
}

// Engine ranks items by scoring them against weighted signals, normalizing
// each signal's scores across the batch, and combining the normalized
// scores into one final score per item.
type Engine[T any] struct {
	defaultNormalizer Normalizer
	defaultStrategy   Strategy
	logger            *slog.Logger
	parallelism       int
}

// New creates an Engine. Without options it normalizes with min-max,
// combines with a weighted sum, logs through slog.Default, and scores
// sequentially.
func New[T any](opts ...Option) *Engine[T] {
	s := settings{
		normalizer:  NewMinMaxNormalizer(),
		strategy:    NewWeightedSumStrategy(),
		logger:      slog.Default(),
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &Engine[T]{
		defaultNormalizer: s.normalizer,
		defaultStrategy:   s.strategy,
		logger:            s.logger,
		parallelism:       s.parallelism,
	}
}

// Rank scores every item against every signal and returns results sorted by
// final score, best first. Ties keep their input order and ranks are
// assigned 1-based after the sort. The Scores map on each result holds the
// raw scorer outputs, before normalization, keyed by scorer name.
//
// An empty item slice is not an error: it returns an empty result slice
// without touching any scorer. An empty signal slice is a usage error.
func (e *Engine[T]) Rank(ctx context.Context, items []T, scorers []WeightedScorer[T], opts ...RankOption) ([]Result[T], error) {
	start := time.Now()

	if len(items) == 0 {
		return []Result[T]{}, nil
	}
	if len(scorers) == 0 {
		return nil, ErrNoScorers
	}
	for i, ws := range scorers {
		if ws.Scorer == nil {
			return nil, fmt.Errorf("scorer %d: %w", i, ErrNilScorer)
		}
	}

	rs := rankSettings{strategy: e.defaultStrategy}
	for _, opt := range opts {
		opt(&rs)
	}

	raw, err := e.scoreAll(ctx, items, scorers)
	if err != nil {
		return nil, err
	}

	normalized := make([][]float64, len(scorers))
	for s, ws := range scorers {
		n := ws.Normalizer
		if n == nil {
			n = e.defaultNormalizer
		}
		normalized[s] = n.Normalize(raw[s])
	}

	weights := make([]float64, len(scorers))
	for s, ws := range scorers {
		weights[s] = ws.Weight
	}

	results := make([]Result[T], len(items))
	for i, item := range items {
		// Fresh slice per item: strategies see only this item's column.
		scores := make([]float64, len(scorers))
		for s := range scorers {
			scores[s] = normalized[s][i]
		}

		final, err := rs.strategy.Combine(scores, weights, &Context{
			TotalItems:   len(items),
			CurrentIndex: i,
		})
		if err != nil {
			return nil, fmt.Errorf("combine item %d: %w", i, err)
		}

		rawScores := make(map[string]float64, len(scorers))
		for s, ws := range scorers {
			rawScores[ws.Scorer.Name()] = raw[s][i]
		}

		results[i] = Result[T]{
			Item:       item,
			FinalScore: final,
			Scores:     rawScores,
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].FinalScore > results[b].FinalScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	e.logger.Debug("rank_complete",
		slog.Int("items", len(items)),
		slog.Int("scorers", len(scorers)),
		slog.String("strategy", rs.strategy.Name()),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}

// RankTopK ranks the full batch and returns the best k results. A
// non-positive k returns an empty slice; a k beyond the batch size returns
// everything. The full batch is always scored — normalization needs every
// raw score, so there is no shortcut for small k.
func (e *Engine[T]) RankTopK(ctx context.Context, items []T, scorers []WeightedScorer[T], k int, opts ...RankOption) ([]Result[T], error) {
	if k <= 0 {
		return []Result[T]{}, nil
	}

	results, err := e.Rank(ctx, items, scorers, opts...)
	if err != nil {
		return nil, err
	}
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// scoreAll collects one raw score row per scorer. Rows run sequentially
// unless the engine was configured with parallelism above 1 and there is
// more than one scorer to spread out.
func (e *Engine[T]) scoreAll(ctx context.Context, items []T, scorers []WeightedScorer[T]) ([][]float64, error) {
	raw := make([][]float64, len(scorers))

	if e.parallelism < 2 || len(scorers) < 2 {
		for s, ws := range scorers {
			row, err := e.scoreOne(ctx, items, ws.Scorer)
			if err != nil {
				return nil, err
			}
			raw[s] = row
		}
		return raw, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for s, ws := range scorers {
		s, ws := s, ws // per-iteration copies; the go 1.21 directive predates loopvar scoping
		g.Go(func() error {
			row, err := e.scoreOne(gctx, items, ws.Scorer)
			if err != nil {
				return err
			}
			raw[s] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

// scoreOne runs a single scorer over the batch and checks that it kept the
// one-score-per-item contract.
func (e *Engine[T]) scoreOne(ctx context.Context, items []T, scorer Scorer[T]) ([]float64, error) {
	start := time.Now()

	row, err := scorer.ScoreBatch(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("scorer %q: %w", scorer.Name(), err)
	}
	if len(row) != len(items) {
		return nil, &BatchSizeError{Scorer: scorer.Name(), Want: len(items), Got: len(row)}
	}

	e.logger.Debug("scorer_batch_complete",
		slog.String("scorer", scorer.Name()),
		slog.Int("items", len(items)),
		slog.Duration("duration", time.Since(start)))

	return row, nil
}
