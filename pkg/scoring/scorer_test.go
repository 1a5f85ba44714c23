package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusworks/rankfuse/pkg/vector"
)

// doc is the fixture item shared across the package tests.
type doc struct {
	id    string
	views float64
	emb   vector.Embedding
}

func fixtureDocs() []doc {
	return []doc{
		{id: "a", views: 900, emb: vector.Embedding{1, 0}},
		{id: "b", views: 300, emb: vector.Embedding{0, 1}},
		{id: "c", views: 600, emb: vector.Embedding{1, 1}},
	}
}

// ===== Func =====

func TestFunc_ScoreAndBatchAgree(t *testing.T) {
	ctx := context.Background()
	s := NewFunc("views", func(d doc) float64 { return d.views })
	docs := fixtureDocs()

	batch, err := s.ScoreBatch(ctx, docs)

	require.NoError(t, err)
	require.Len(t, batch, len(docs))
	for i, d := range docs {
		single, err := s.Score(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i], "item %d", i)
	}
	assert.Equal(t, "views", s.Name())
}

func TestFuncWithContext_ErrorReportsItemIndex(t *testing.T) {
	ctx := context.Background()
	errNegative := errors.New("negative views")
	s := NewFuncWithContext("views", func(_ context.Context, d doc) (float64, error) {
		if d.views < 0 {
			return 0, errNegative
		}
		return d.views, nil
	})

	_, err := s.ScoreBatch(ctx, []doc{{id: "ok", views: 10}, {id: "bad", views: -1}})

	require.ErrorIs(t, err, errNegative)
	assert.ErrorContains(t, err, "score item 1")
}

// ===== Constant =====

func TestConstant_SameScoreForEveryItem(t *testing.T) {
	ctx := context.Background()
	s := NewConstant[doc]("bias", 0.25)

	batch, err := s.ScoreBatch(ctx, fixtureDocs())

	require.NoError(t, err)
	require.Len(t, batch, 3)
	for _, score := range batch {
		assert.Equal(t, 0.25, score)
	}
	single, err := s.Score(ctx, doc{id: "x"})
	require.NoError(t, err)
	assert.Equal(t, 0.25, single)
}

// ===== Lookup =====

func TestLookup_TableAndDefault(t *testing.T) {
	ctx := context.Background()
	table := map[string]float64{"a": 2.5, "c": 1.0}
	keyFn := func(d doc) string { return d.id }

	t.Run("hits read from the table, misses score zero", func(t *testing.T) {
		s := NewLookup("bm25", keyFn, table)

		batch, err := s.ScoreBatch(ctx, fixtureDocs())

		require.NoError(t, err)
		assert.Equal(t, []float64{2.5, 0, 1.0}, batch)
	})

	t.Run("explicit missing-key default applies", func(t *testing.T) {
		s := NewLookupWithDefault("bm25", keyFn, table, -1.0)

		score, err := s.Score(ctx, doc{id: "unknown"})

		require.NoError(t, err)
		assert.Equal(t, -1.0, score)
	})
}

// ===== VectorScorer =====

func TestVectorScorer_CosineScores(t *testing.T) {
	ctx := context.Background()
	embedFn := func(d doc) vector.Embedding { return d.emb }

	t.Run("rejects empty query", func(t *testing.T) {
		_, err := NewVectorScorer[doc]("similarity", nil, embedFn)

		assert.ErrorContains(t, err, "query embedding is empty")
	})

	t.Run("rejects nil accessor", func(t *testing.T) {
		_, err := NewVectorScorer[doc]("similarity", vector.Embedding{1, 0}, nil)

		assert.ErrorContains(t, err, "embedding accessor is nil")
	})

	t.Run("scores by similarity to the query", func(t *testing.T) {
		s, err := NewVectorScorer("similarity", vector.Embedding{1, 0}, embedFn)
		require.NoError(t, err)

		batch, err := s.ScoreBatch(ctx, fixtureDocs())

		require.NoError(t, err)
		require.Len(t, batch, 3)
		assert.InDelta(t, 1.0, batch[0], 1e-6)
		assert.InDelta(t, 0.0, batch[1], 1e-6)
		assert.InDelta(t, 0.70710678, batch[2], 1e-6)
	})

	t.Run("dimension mismatch names the item", func(t *testing.T) {
		s, err := NewVectorScorer("similarity", vector.Embedding{1, 0}, embedFn)
		require.NoError(t, err)
		docs := []doc{
			{id: "ok", emb: vector.Embedding{1, 0}},
			{id: "short", emb: vector.Embedding{1}},
		}

		_, err = s.ScoreBatch(ctx, docs)

		var dimErr vector.DimensionError
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 1, dimErr.Got)
		assert.ErrorContains(t, err, "item 1")
	})
}
