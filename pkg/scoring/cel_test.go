package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docInput(d doc) map[string]any {
	return map[string]any{"id": d.id, "views": d.views}
}

func TestCELScorer_Expressions(t *testing.T) {
	ctx := context.Background()

	t.Run("arithmetic over item fields", func(t *testing.T) {
		s, err := NewCELScorer[doc]("boost", "item.views * 2.0", docInput)
		require.NoError(t, err)

		score, err := s.Score(ctx, doc{id: "a", views: 600})

		require.NoError(t, err)
		assert.InDelta(t, 1200.0, score, 1e-9)
	})

	t.Run("comparisons score as 0 or 1", func(t *testing.T) {
		s, err := NewCELScorer[doc]("popular", "item.views > 500.0", docInput)
		require.NoError(t, err)

		batch, err := s.ScoreBatch(ctx, fixtureDocs())

		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0, 1}, batch)
	})

	t.Run("conditional expressions", func(t *testing.T) {
		s, err := NewCELScorer[doc]("tiered", `item.id == "a" ? 2.0 : 0.5`, docInput)
		require.NoError(t, err)

		a, err := s.Score(ctx, doc{id: "a"})
		require.NoError(t, err)
		b, err := s.Score(ctx, doc{id: "b"})
		require.NoError(t, err)

		assert.Equal(t, 2.0, a)
		assert.Equal(t, 0.5, b)
	})

	t.Run("nil input function binds map items directly", func(t *testing.T) {
		s, err := NewCELScorer[map[string]any]("direct", "item.score + 1.0", nil)
		require.NoError(t, err)

		score, err := s.Score(ctx, map[string]any{"score": 2.5})

		require.NoError(t, err)
		assert.InDelta(t, 3.5, score, 1e-9)
	})
}

func TestCELScorer_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects invalid expressions at construction", func(t *testing.T) {
		_, err := NewCELScorer[doc]("bad", "item.views >", docInput)

		assert.ErrorContains(t, err, "compile expression")
	})

	t.Run("rejects non-numeric results at evaluation", func(t *testing.T) {
		s, err := NewCELScorer[doc]("identity", "item.id", docInput)
		require.NoError(t, err)

		_, err = s.Score(ctx, doc{id: "a"})

		assert.ErrorContains(t, err, "must return a number")
	})

	t.Run("batch failures report the item index", func(t *testing.T) {
		s, err := NewCELScorer[doc]("identity", "item.id", docInput)
		require.NoError(t, err)

		_, err = s.ScoreBatch(ctx, fixtureDocs())

		assert.ErrorContains(t, err, "item 0")
	})
}

func BenchmarkCELScorer_Score(b *testing.B) {
	ctx := context.Background()
	s, err := NewCELScorer[doc]("boost", "item.views * 0.8 + 10.0", docInput)
	if err != nil {
		b.Fatal(err)
	}
	d := doc{id: "a", views: 600}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Score(ctx, d); err != nil {
			b.Fatal(err)
		}
	}
}
