// Package vector provides the embedding primitive shared by the selection
// and ranking packages: fixed-length float32 vectors with cosine similarity.
package vector

import (
	"fmt"
	"math"
)

// Embedding is a fixed-length vector of real numbers. All embeddings compared
// in one operation must have identical length; a length disagreement is a
// usage error surfaced as DimensionError, never silently padded or truncated.
type Embedding []float32

// DimensionError reports an embedding whose length disagrees with the
// expected dimensionality. Position is the index of the offending embedding
// in the caller's collection, or -1 when there is no meaningful position.
type DimensionError struct {
	Position int
	Expected int
	Got      int
}

func (e DimensionError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Expected, e.Got)
	}
	return fmt.Sprintf("embedding dimension mismatch at position %d: expected %d, got %d", e.Position, e.Expected, e.Got)
}

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. A zero-magnitude vector has no defined angle; by convention it
// scores 0 against everything, which keeps downstream relevance math
// NaN-free. Returns a DimensionError when the lengths differ.
func CosineSimilarity(a, b Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, DimensionError{Position: -1, Expected: len(a), Got: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// CosineDistance returns 1 - CosineSimilarity(a, b), ranging from 0
// (identical direction) to 2 (opposite direction).
func CosineDistance(a, b Embedding) (float64, error) {
	sim, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - sim, nil
}

// Dot returns the dot product of a and b, accumulated in float64. On unit
// vectors this equals cosine similarity, so callers that validate and
// normalize up front can skip the per-call checks in CosineSimilarity.
// Lengths must match; extra elements in the longer vector are ignored.
func Dot(a, b Embedding) float64 {
	n := min(len(a), len(b))
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// Normalize returns a unit-length copy of v. A zero vector cannot be scaled
// and comes back as a plain copy.
func Normalize(v Embedding) Embedding {
	out := make(Embedding, len(v))
	copy(out, v)
	NormalizeInPlace(out)
	return out
}

// NormalizeInPlace scales v to unit length in place. Zero vectors are left
// untouched.
func NormalizeInPlace(v Embedding) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}
