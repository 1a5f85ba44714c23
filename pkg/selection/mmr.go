package selection

import (
	"errors"
	"fmt"
	"math"

	"github.com/corpusworks/rankfuse/pkg/vector"
)

// DefaultLambda weighs relevance and diversity equally.
const DefaultLambda = 0.5

// ErrMissingQuery is returned when no query embedding is supplied.
var ErrMissingQuery = errors.New("missing query embedding")

// ErrEmptyEmbedding is returned when a candidate embedding is nil or empty.
// Absent candidate vectors are rejected up front instead of letting undefined
// values leak into the relevance math.
var ErrEmptyEmbedding = errors.New("empty candidate embedding")

// InvalidLambdaError reports a lambda outside the [0, 1] range.
type InvalidLambdaError struct {
	Lambda float64
}

func (e InvalidLambdaError) Error() string {
	return fmt.Sprintf("lambda must be in [0, 1], got %v", e.Lambda)
}

// Candidate pairs an input position with its embedding. Index is the
// candidate's position in the original collection, stable for the lifetime
// of one selection call.
type Candidate struct {
	Index     int
	Embedding vector.Embedding
}

// Option configures a ComputeMMR call.
type Option func(*options)

type options struct {
	lambda float64
	limit  *int
}

// WithLambda sets the relevance/diversity trade-off. Must be in [0, 1]:
// 1 selects purely by relevance, 0 purely by diversity. Defaults to 0.5.
func WithLambda(lambda float64) Option {
	return func(o *options) {
		o.lambda = lambda
	}
}

// WithLimit bounds the number of selected candidates. Unset means select
// everything; zero or negative selects nothing.
func WithLimit(limit int) Option {
	return func(o *options) {
		o.limit = &limit
	}
}

// ComputeMMR selects up to limit candidates from embeddings, greedily
// maximizing lambda*relevance + (1-lambda)*diversity against query.
//
// Validation runs before any selection work: a missing query or a lambda
// outside [0, 1] is a usage error, as is any candidate whose length differs
// from the query's (reported with its position and both lengths). An empty
// candidate collection is not an error and yields an empty result.
//
// When the resolved limit covers the whole collection, all candidates are
// returned in their original input order as a shortcut, not in MMR order.
// Callers that need MMR ordering for the full set should request one fewer
// than the candidate count and append the leftover.
//
// Cost is O(n*d) to precompute relevances plus O(n*k^2) for the greedy scan.
func ComputeMMR(embeddings []vector.Embedding, query vector.Embedding, opts ...Option) ([]Candidate, error) {
	o := options{lambda: DefaultLambda}
	for _, opt := range opts {
		opt(&o)
	}

	if len(query) == 0 {
		return nil, ErrMissingQuery
	}
	if o.lambda < 0 || o.lambda > 1 {
		return nil, InvalidLambdaError{Lambda: o.lambda}
	}
	if len(embeddings) == 0 {
		return []Candidate{}, nil
	}
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return nil, fmt.Errorf("candidate %d: %w", i, ErrEmptyEmbedding)
		}
		if len(emb) != len(query) {
			return nil, vector.DimensionError{Position: i, Expected: len(query), Got: len(emb)}
		}
	}

	n := len(embeddings)
	k := n
	if o.limit != nil && *o.limit < n {
		k = *o.limit
	}
	if k <= 0 {
		return []Candidate{}, nil
	}
	if k >= n {
		all := make([]Candidate, n)
		for i, emb := range embeddings {
			all[i] = Candidate{Index: i, Embedding: emb}
		}
		return all, nil
	}

	// Unit-normalized working copies turn every cosine similarity into a
	// plain dot product. Zero vectors stay zero and score 0 against
	// everything.
	normQuery := vector.Normalize(query)
	normed := make([]vector.Embedding, n)
	relevance := make([]float64, n)
	for i, emb := range embeddings {
		normed[i] = vector.Normalize(emb)
		relevance[i] = vector.Dot(normed[i], normQuery)
	}

	selected := make([]Candidate, 0, k)
	selectedNorm := make([]vector.Embedding, 0, k)
	picked := make([]bool, n)

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i := 0; i < n; i++ {
			if picked[i] {
				continue
			}

			// First pick has nothing to be redundant against, so diversity
			// starts at its maximum.
			diversity := 1.0
			if len(selectedNorm) > 0 {
				var simSum float64
				for _, sel := range selectedNorm {
					simSum += vector.Dot(normed[i], sel)
				}
				diversity = 1 - simSum/float64(len(selectedNorm))
			}

			score := o.lambda*relevance[i] + (1-o.lambda)*diversity
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		// Pool exhausted; cannot happen while len(selected) < k <= n, kept as
		// the loop's terminal condition.
		if bestIdx < 0 {
			break
		}

		picked[bestIdx] = true
		selected = append(selected, Candidate{Index: bestIdx, Embedding: embeddings[bestIdx]})
		selectedNorm = append(selectedNorm, normed[bestIdx])
	}

	return selected, nil
}
