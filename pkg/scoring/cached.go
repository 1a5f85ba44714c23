package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corpusworks/rankfuse/pkg/rank"
)

// DefaultCacheSize is the default number of per-item scores a Cached
// scorer retains.
const DefaultCacheSize = 1024

// Cached wraps a scorer with an LRU score cache keyed by a caller-supplied
// item key. Repeated items skip the wrapped scorer entirely, which pays off
// when the signal is expensive (CEL evaluation, similarity against a large
// query) and batches overlap across calls.
//
// The cache assumes the wrapped scorer is deterministic for a given key:
// two items with equal keys must score equally.
type Cached[T any] struct {
	inner rank.Scorer[T]
	keyFn func(T) string
	cache *lru.Cache[string, float64]
}

// NewCached creates a caching wrapper around inner. A non-positive
// cacheSize falls back to DefaultCacheSize.
func NewCached[T any](inner rank.Scorer[T], keyFn func(T) string, cacheSize int) *Cached[T] {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, float64](cacheSize)
	return &Cached[T]{
		inner: inner,
		keyFn: keyFn,
		cache: cache,
	}
}

// NewCachedWithDefaults creates a caching wrapper with the default cache
// size.
func NewCachedWithDefaults[T any](inner rank.Scorer[T], keyFn func(T) string) *Cached[T] {
	return NewCached(inner, keyFn, DefaultCacheSize)
}

// cacheKey mixes the item key with the scorer name so two cached scorers
// sharing one key space never collide.
func (c *Cached[T]) cacheKey(item T) string {
	combined := c.keyFn(item) + "\x00" + c.inner.Name()
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}

// Name returns the wrapped scorer's identifier.
func (c *Cached[T]) Name() string { return c.inner.Name() }

// Score returns the cached score if present, otherwise scores through the
// wrapped scorer and caches the result.
func (c *Cached[T]) Score(ctx context.Context, item T) (float64, error) {
	key := c.cacheKey(item)
	if score, ok := c.cache.Get(key); ok {
		return score, nil
	}

	score, err := c.inner.Score(ctx, item)
	if err != nil {
		return 0, err
	}

	c.cache.Add(key, score)
	return score, nil
}

// ScoreBatch serves what it can from the cache, batches the misses through
// the wrapped scorer in one call, and caches the new scores.
func (c *Cached[T]) ScoreBatch(ctx context.Context, items []T) ([]float64, error) {
	if len(items) == 0 {
		return []float64{}, nil
	}

	results := make([]float64, len(items))
	missedIndices := make([]int, 0, len(items))
	missed := make([]T, 0, len(items))

	for i, item := range items {
		if score, ok := c.cache.Get(c.cacheKey(item)); ok {
			results[i] = score
		} else {
			missedIndices = append(missedIndices, i)
			missed = append(missed, item)
		}
	}

	if len(missed) == 0 {
		return results, nil
	}

	scores, err := c.inner.ScoreBatch(ctx, missed)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(missed) {
		return nil, &rank.BatchSizeError{Scorer: c.inner.Name(), Want: len(missed), Got: len(scores)}
	}

	for j, idx := range missedIndices {
		results[idx] = scores[j]
		c.cache.Add(c.cacheKey(items[idx]), scores[j])
	}
	return results, nil
}

// Inner returns the wrapped scorer.
func (c *Cached[T]) Inner() rank.Scorer[T] { return c.inner }

// Interface check.
var _ rank.Scorer[any] = (*Cached[any])(nil)
