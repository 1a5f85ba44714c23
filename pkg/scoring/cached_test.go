package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingScorer records how much work reaches the wrapped scorer.
type countingScorer struct {
	values     map[string]float64
	scoreCalls int
	batchItems int
}

func (s *countingScorer) Name() string { return "counting" }

func (s *countingScorer) Score(_ context.Context, d doc) (float64, error) {
	s.scoreCalls++
	return s.values[d.id], nil
}

func (s *countingScorer) ScoreBatch(_ context.Context, items []doc) ([]float64, error) {
	s.batchItems += len(items)
	out := make([]float64, len(items))
	for i, d := range items {
		out[i] = s.values[d.id]
	}
	return out, nil
}

func docKey(d doc) string { return d.id }

func TestCached_SingleScores(t *testing.T) {
	ctx := context.Background()
	inner := &countingScorer{values: map[string]float64{"a": 1.5}}
	cached := NewCachedWithDefaults[doc](inner, docKey)

	first, err := cached.Score(ctx, doc{id: "a"})
	require.NoError(t, err)
	second, err := cached.Score(ctx, doc{id: "a"})
	require.NoError(t, err)

	assert.Equal(t, 1.5, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.scoreCalls, "second call should hit the cache")
}

func TestCached_BatchReusesCachedScores(t *testing.T) {
	ctx := context.Background()
	inner := &countingScorer{values: map[string]float64{"a": 1, "b": 2, "c": 3}}
	cached := NewCachedWithDefaults[doc](inner, docKey)
	docs := fixtureDocs()

	t.Run("first batch scores everything", func(t *testing.T) {
		scores, err := cached.ScoreBatch(ctx, docs)

		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, scores)
		assert.Equal(t, 3, inner.batchItems)
	})

	t.Run("repeat batch is served entirely from cache", func(t *testing.T) {
		scores, err := cached.ScoreBatch(ctx, docs)

		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, scores)
		assert.Equal(t, 3, inner.batchItems, "no new items should reach the inner scorer")
	})

	t.Run("only unseen items reach the inner scorer", func(t *testing.T) {
		inner.values["d"] = 4
		extended := append(docs, doc{id: "d"})

		scores, err := cached.ScoreBatch(ctx, extended)

		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 4}, scores)
		assert.Equal(t, 4, inner.batchItems, "only the new item should be scored")
	})
}

func TestCached_KeyIdentityWins(t *testing.T) {
	// The cache trusts the key: equal keys mean equal scores, even when
	// other fields differ.
	ctx := context.Background()
	inner := &countingScorer{values: map[string]float64{"a": 1}}
	cached := NewCachedWithDefaults[doc](inner, docKey)

	first, err := cached.Score(ctx, doc{id: "a", views: 100})
	require.NoError(t, err)

	inner.values["a"] = 99
	second, err := cached.Score(ctx, doc{id: "a", views: 200})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCached_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	cached := NewCachedWithDefaults[doc](&countingScorer{}, docKey)

	scores, err := cached.ScoreBatch(ctx, nil)

	require.NoError(t, err)
	require.NotNil(t, scores, "should return empty slice, not nil")
	assert.Empty(t, scores)
}

func TestCached_Passthrough(t *testing.T) {
	inner := &countingScorer{}
	cached := NewCachedWithDefaults[doc](inner, docKey)

	assert.Equal(t, "counting", cached.Name())
	assert.Same(t, inner, cached.Inner())
}
