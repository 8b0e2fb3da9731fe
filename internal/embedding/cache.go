package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"qms-rag-core/internal/domain"
	"qms-rag-core/internal/ports"
)

// cacheTTL bounds how long a cached embedding survives before it is
// recomputed, so a provider/model switch eventually flushes stale vectors
// without an explicit cache-clear step.
const cacheTTL = 7 * 24 * time.Hour

// Cache wraps a ports.EmbeddingProvider with a Redis-backed cache keyed by
// sha256(model + text), generalizing the in-process embedding cache the
// teacher keeps per-process into one that survives a restart and is shared
// across every instance of the service.
type Cache struct {
	inner  ports.EmbeddingProvider
	client *redis.Client
}

// NewCache builds a Cache wrapping inner.
func NewCache(inner ports.EmbeddingProvider, client *redis.Client) *Cache {
	return &Cache{inner: inner, client: client}
}

func (c *Cache) Name() string   { return c.inner.Name() }
func (c *Cache) Dimension() int { return c.inner.Dimension() }

func (c *Cache) Embed(ctx context.Context, text string) (domain.EmbeddingVector, error) {
	key := cacheKey(c.inner.Name(), text)

	if cached, ok := c.getCached(ctx, key); ok {
		return cached, nil
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingVector{}, err
	}

	c.setCached(ctx, key, vector)
	return vector, nil
}

func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([]domain.EmbeddingVector, error) {
	results := make([]domain.EmbeddingVector, len(texts))
	var misses []string
	var missIdx []int

	for i, t := range texts {
		if cached, ok := c.getCached(ctx, cacheKey(c.inner.Name(), t)); ok {
			results[i] = cached
			continue
		}
		misses = append(misses, t)
		missIdx = append(missIdx, i)
	}

	if len(misses) == 0 {
		return results, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		results[idx] = fresh[j]
		c.setCached(ctx, cacheKey(c.inner.Name(), misses[j]), fresh[j])
	}
	return results, nil
}

func (c *Cache) getCached(ctx context.Context, key string) (domain.EmbeddingVector, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.EmbeddingVector{}, false
	}
	var vector domain.EmbeddingVector
	if err := json.Unmarshal(raw, &vector); err != nil {
		return domain.EmbeddingVector{}, false
	}
	return vector, true
}

func (c *Cache) setCached(ctx context.Context, key string, vector domain.EmbeddingVector) {
	raw, err := json.Marshal(vector)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, cacheTTL)
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
