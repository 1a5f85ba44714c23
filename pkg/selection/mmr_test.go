package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpusworks/rankfuse/pkg/vector"
)

// =============================================================================
// MMR Selection Tests
// =============================================================================

// --- Test Helpers ---

func axisEmbeddings() []vector.Embedding {
	return []vector.Embedding{
		{1, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 0},
		{1, 0, 1},
	}
}

func selectedIndices(result []Candidate) []int {
	indices := make([]int, len(result))
	for i, c := range result {
		indices[i] = c.Index
	}
	return indices
}

// --- Validation ---

func TestComputeMMR_MissingQuery(t *testing.T) {
	embeddings := axisEmbeddings()

	_, err := ComputeMMR(embeddings, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingQuery)

	_, err = ComputeMMR(embeddings, vector.Embedding{})
	assert.ErrorIs(t, err, ErrMissingQuery)
}

func TestComputeMMR_InvalidLambda(t *testing.T) {
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 0, 0}

	tests := []struct {
		name    string
		lambda  float64
		wantErr bool
	}{
		{name: "below range", lambda: -0.1, wantErr: true},
		{name: "above range", lambda: 1.1, wantErr: true},
		{name: "lower boundary", lambda: 0.0, wantErr: false},
		{name: "upper boundary", lambda: 1.0, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeMMR(embeddings, query, WithLambda(tt.lambda))
			if tt.wantErr {
				var lambdaErr InvalidLambdaError
				require.ErrorAs(t, err, &lambdaErr)
				assert.Equal(t, tt.lambda, lambdaErr.Lambda)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestComputeMMR_DimensionMismatch(t *testing.T) {
	// Given: the third candidate has the wrong length
	embeddings := []vector.Embedding{
		{1, 0, 0},
		{0, 1, 0},
		{1, 0},
	}
	query := vector.Embedding{1, 0, 0}

	// When: selecting
	_, err := ComputeMMR(embeddings, query)

	// Then: the error names the offending position and both lengths
	require.Error(t, err)
	var dimErr vector.DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 2, dimErr.Position)
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestComputeMMR_NilCandidateEmbedding(t *testing.T) {
	embeddings := []vector.Embedding{
		{1, 0, 0},
		nil,
		{0, 1, 0},
	}
	query := vector.Embedding{1, 0, 0}

	_, err := ComputeMMR(embeddings, query)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
	assert.Contains(t, err.Error(), "candidate 1")
}

// --- Empty and Limit Resolution ---

func TestComputeMMR_EmptyCandidates(t *testing.T) {
	query := vector.Embedding{1, 0, 0}

	result, err := ComputeMMR(nil, query)
	require.NoError(t, err)
	assert.NotNil(t, result, "should return empty slice, not nil")
	assert.Empty(t, result)

	result, err = ComputeMMR([]vector.Embedding{}, query)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestComputeMMR_LimitResolution(t *testing.T) {
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 0, 0}

	t.Run("zero limit returns empty", func(t *testing.T) {
		result, err := ComputeMMR(embeddings, query, WithLimit(0))
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("negative limit returns empty", func(t *testing.T) {
		result, err := ComputeMMR(embeddings, query, WithLimit(-5))
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("limit caps result size", func(t *testing.T) {
		result, err := ComputeMMR(embeddings, query, WithLimit(3))
		require.NoError(t, err)
		assert.Len(t, result, 3)
	})

	t.Run("no limit selects everything", func(t *testing.T) {
		result, err := ComputeMMR(embeddings, query)
		require.NoError(t, err)
		assert.Len(t, result, len(embeddings))
	})
}

func TestComputeMMR_FullSelectionKeepsInputOrder(t *testing.T) {
	// Given: a limit covering the whole collection
	embeddings := axisEmbeddings()
	query := vector.Embedding{0, 0, 1} // least relevant to candidate 0

	for _, limit := range []int{len(embeddings), len(embeddings) + 10} {
		// When: selecting everything
		result, err := ComputeMMR(embeddings, query, WithLimit(limit))
		require.NoError(t, err)

		// Then: candidates come back in original input order, not MMR order
		require.Len(t, result, len(embeddings))
		for i, c := range result {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, embeddings[i], c.Embedding)
		}
	}
}

// --- Selection Behavior ---

func TestComputeMMR_IndicesUniqueAndInRange(t *testing.T) {
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 0, 0}

	for _, lambda := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		for limit := 1; limit <= len(embeddings); limit++ {
			result, err := ComputeMMR(embeddings, query, WithLambda(lambda), WithLimit(limit))
			require.NoError(t, err)
			require.Len(t, result, limit)

			seen := make(map[int]bool)
			for _, c := range result {
				assert.GreaterOrEqual(t, c.Index, 0)
				assert.Less(t, c.Index, len(embeddings))
				assert.False(t, seen[c.Index], "index %d selected twice", c.Index)
				seen[c.Index] = true
			}
		}
	}
}

func TestComputeMMR_PureRelevanceFavorsClosestCandidates(t *testing.T) {
	// Given: candidates at decreasing similarity to the query, shuffled
	embeddings := []vector.Embedding{
		{0, 1, 0},     // orthogonal
		{0.9, 0.1, 0}, // close
		{1, 0, 0},     // exact
	}
	query := vector.Embedding{1, 0, 0}

	// When: lambda=1 (relevance only)
	result, err := ComputeMMR(embeddings, query, WithLambda(1.0), WithLimit(2))
	require.NoError(t, err)

	// Then: the most relevant candidates come first
	assert.Equal(t, []int{2, 1}, selectedIndices(result))
}

func TestComputeMMR_PureDiversityAvoidsDuplicates(t *testing.T) {
	// Given: two identical candidates and one distinct alternative
	embeddings := []vector.Embedding{
		{1, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
	}
	query := vector.Embedding{1, 0, 0}

	// When: lambda=0 (diversity only) with room for two picks
	result, err := ComputeMMR(embeddings, query, WithLambda(0.0), WithLimit(2))
	require.NoError(t, err)

	// Then: the duplicate is never chosen while the alternative exists
	indices := selectedIndices(result)
	assert.Equal(t, []int{0, 2}, indices)
}

func TestComputeMMR_TiesResolveToLowestIndex(t *testing.T) {
	// Given: four identical candidates, every round is a full tie
	embeddings := []vector.Embedding{
		{1, 1},
		{1, 1},
		{1, 1},
		{1, 1},
	}
	query := vector.Embedding{1, 1}

	result, err := ComputeMMR(embeddings, query, WithLimit(3))
	require.NoError(t, err)

	// Then: ties fall to the lowest original index, in scan order
	assert.Equal(t, []int{0, 1, 2}, selectedIndices(result))
}

func TestComputeMMR_FirstPickIsMostRelevant(t *testing.T) {
	// On the first pick diversity is 1 for everyone, so relevance alone
	// decides regardless of lambda.
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 0, 0}

	for _, lambda := range []float64{0.1, 0.5, 0.9} {
		result, err := ComputeMMR(embeddings, query, WithLambda(lambda), WithLimit(1))
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, 0, result[0].Index, "lambda=%v", lambda)
	}
}

func TestComputeMMR_BalancedScenario(t *testing.T) {
	// Given: mixed duplicates and orthogonal candidates
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 0, 0}

	// When: balanced lambda with a limit of 3
	result, err := ComputeMMR(embeddings, query, WithLambda(0.5), WithLimit(3))
	require.NoError(t, err)

	// Then: exactly 3 unique candidates within range
	require.Len(t, result, 3)
	seen := make(map[int]bool)
	for _, c := range result {
		assert.GreaterOrEqual(t, c.Index, 0)
		assert.Less(t, c.Index, 6)
		assert.False(t, seen[c.Index])
		seen[c.Index] = true
	}
}

func TestComputeMMR_ZeroVectorCandidate(t *testing.T) {
	// Given: a zero vector among the candidates
	embeddings := []vector.Embedding{
		{0, 0},
		{1, 0},
	}
	query := vector.Embedding{1, 0}

	// When: selecting by pure relevance
	result, err := ComputeMMR(embeddings, query, WithLambda(1.0), WithLimit(1))
	require.NoError(t, err)

	// Then: the zero vector scores 0, never NaN, and loses to the real one
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].Index)
}

func TestComputeMMR_DoesNotMutateInputs(t *testing.T) {
	embeddings := []vector.Embedding{
		{3, 4, 0},
		{0, 5, 0},
		{1, 2, 2},
	}
	query := vector.Embedding{3, 0, 4}

	original := make([]vector.Embedding, len(embeddings))
	for i, emb := range embeddings {
		original[i] = make(vector.Embedding, len(emb))
		copy(original[i], emb)
	}
	originalQuery := make(vector.Embedding, len(query))
	copy(originalQuery, query)

	_, err := ComputeMMR(embeddings, query, WithLimit(2))
	require.NoError(t, err)

	assert.Equal(t, original, embeddings)
	assert.Equal(t, originalQuery, query)
}

func TestComputeMMR_ReturnsOriginalEmbeddings(t *testing.T) {
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 1, 1}

	result, err := ComputeMMR(embeddings, query, WithLimit(4))
	require.NoError(t, err)

	// Each candidate carries the untouched embedding at its index.
	for _, c := range result {
		assert.Equal(t, embeddings[c.Index], c.Embedding)
	}
}

func TestComputeMMR_Deterministic(t *testing.T) {
	embeddings := axisEmbeddings()
	query := vector.Embedding{1, 0.5, 0.25}

	first, err := ComputeMMR(embeddings, query, WithLambda(0.6), WithLimit(4))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := ComputeMMR(embeddings, query, WithLambda(0.6), WithLimit(4))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeMMR_ScoresStayFinite(t *testing.T) {
	// Mixed magnitudes and a zero vector must never produce NaN picks.
	embeddings := []vector.Embedding{
		{1e6, 0, 0},
		{0, 0, 0},
		{1e-6, 1e-6, 0},
		{-5, 2, 1},
	}
	query := vector.Embedding{1, 1, 1}

	result, err := ComputeMMR(embeddings, query, WithLimit(3))
	require.NoError(t, err)
	require.Len(t, result, 3)

	for _, c := range result {
		for _, v := range c.Embedding {
			assert.False(t, math.IsNaN(float64(v)))
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func benchmarkEmbeddings(n, dim int) []vector.Embedding {
	embeddings := make([]vector.Embedding, n)
	for i := range embeddings {
		emb := make(vector.Embedding, dim)
		for j := range emb {
			emb[j] = float32((i*31+j*17)%97) / 97.0
		}
		embeddings[i] = emb
	}
	return embeddings
}

func BenchmarkComputeMMR_100x64_Limit10(b *testing.B) {
	embeddings := benchmarkEmbeddings(100, 64)
	query := benchmarkEmbeddings(1, 64)[0]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeMMR(embeddings, query, WithLimit(10))
	}
}

func BenchmarkComputeMMR_1000x128_Limit20(b *testing.B) {
	embeddings := benchmarkEmbeddings(1000, 128)
	query := benchmarkEmbeddings(1, 128)[0]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeMMR(embeddings, query, WithLimit(20))
	}
}
