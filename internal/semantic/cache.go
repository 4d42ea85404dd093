package semantic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// CachedEmbedder wraps an Embedder with a fixed-capacity LRU cache keyed by
// a content hash of the input text. The cache is bounded: least recently
// used vectors are evicted once capacity is reached, and Clear empties it
// on demand.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]

	hits   prometheus.Counter
	misses prometheus.Counter
}

func NewCachedEmbedder(inner Embedder, capacity int, hits, misses prometheus.Counter) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache, hits: hits, misses: misses}, nil
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := contentKey(text)

	if vec, ok := c.cache.Get(key); ok {
		if c.hits != nil {
			c.hits.Inc()
		}
		return vec, nil
	}
	if c.misses != nil {
		c.misses.Inc()
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

func (c *CachedEmbedder) Available(ctx context.Context) bool {
	return c.inner.Available(ctx)
}

// Clear empties the cache and returns the number of evicted entries.
func (c *CachedEmbedder) Clear() int {
	n := c.cache.Len()
	c.cache.Purge()
	return n
}

// Len returns the current number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func contentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
