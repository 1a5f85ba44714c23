package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"github.com/corpusworks/rankfuse/pkg/vector"
)

// StaticEmbedder generates embeddings by hashing tokens and character
// n-grams into a fixed number of buckets. It needs no network and no model
// download, and the same text always produces the same embedding.
type StaticEmbedder struct {
	dims int
}

// englishStopWords are filtered before hashing so function words do not
// dominate the token buckets.
var englishStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "for": true,
	"from": true, "has": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true,
}

// Weights for vector generation.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// tokenRegex matches alphanumeric sequences.
var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewStaticEmbedder creates a hash-based embedder. A non-positive
// dimensions value falls back to DefaultDimensions.
func NewStaticEmbedder(dimensions int) *StaticEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &StaticEmbedder{dims: dimensions}
}

// Embed generates a unit-length embedding for text. Empty or
// whitespace-only input yields the zero vector, which scores 0 against
// everything.
func (e *StaticEmbedder) Embed(_ context.Context, text string) (vector.Embedding, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make(vector.Embedding, e.dims), nil
	}

	emb := e.generateVector(trimmed)
	vector.NormalizeInPlace(emb)
	return emb, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]vector.Embedding, error) {
	if len(texts) == 0 {
		return []vector.Embedding{}, nil
	}

	results := make([]vector.Embedding, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		results[i] = emb
	}

	return results, nil
}

// Dimensions returns the embedding length.
func (e *StaticEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string {
	return "static"
}

// generateVector creates a hash-based vector from text: whole tokens carry
// most of the weight, character trigrams pick up spelling variants.
func (e *StaticEmbedder) generateVector(text string) vector.Embedding {
	emb := make(vector.Embedding, e.dims)

	for _, token := range tokenize(text) {
		emb[hashToIndex(token, e.dims)] += tokenWeight
	}

	normalized := normalizeForNgrams(text)
	for _, ngram := range extractNgrams(normalized, ngramSize) {
		emb[hashToIndex(ngram, e.dims)] += ngramWeight
	}

	return emb
}

// tokenize lowercases and splits text into alphanumeric words, dropping
// stop words.
func tokenize(text string) []string {
	words := tokenRegex.FindAllString(text, -1)

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		lower := strings.ToLower(word)
		if !englishStopWords[lower] {
			tokens = append(tokens, lower)
		}
	}
	return tokens
}

// normalizeForNgrams strips everything but letters and digits.
func normalizeForNgrams(text string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// extractNgrams extracts n-character sliding windows.
func extractNgrams(text string, n int) []string {
	if len(text) < n {
		return []string{}
	}

	ngrams := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		ngrams = append(ngrams, text[i:i+n])
	}
	return ngrams
}

// hashToIndex uses FNV-64 to map a string to a bucket.
func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

// Interface check.
var _ Embedder = (*StaticEmbedder)(nil)
