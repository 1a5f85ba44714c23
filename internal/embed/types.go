// Package embed turns text into embeddings for the selection and scoring
// layers. The only implementation is hash-based: deterministic, offline,
// and fast, with reduced semantic quality compared to a learned model.
package embed

import (
	"context"

	"github.com/corpusworks/rankfuse/pkg/vector"
)

// DefaultDimensions is the embedding length used when none is configured.
const DefaultDimensions = 256

// Embedder produces fixed-length embeddings from text.
type Embedder interface {
	// Embed generates an embedding for one text.
	Embed(ctx context.Context, text string) (vector.Embedding, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]vector.Embedding, error)

	// Dimensions returns the embedding length.
	Dimensions() int

	// ModelName identifies the embedding scheme, for cache keys and logs.
	ModelName() string
}
