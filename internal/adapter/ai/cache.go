package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// embedCacheClient wraps a GenAIClient and caches embedding vectors by text
// hash. It is safe for concurrent use. Only EmbedText is cached; GenerateText
// passes through. Eviction is FIFO for simplicity.
type embedCacheClient struct {
	base     domain.GenAIClient
	capacity int
	mu       sync.RWMutex
	m        map[string][]float32
	ord      []string
}

// NewEmbedCache wraps base with an embedding cache of given capacity (number
// of entries). If capacity <= 0, base is returned unmodified.
func NewEmbedCache(base domain.GenAIClient, capacity int) domain.GenAIClient {
	if capacity <= 0 || base == nil {
		return base
	}
	return &embedCacheClient{base: base, capacity: capacity, m: make(map[string][]float32), ord: make([]string, 0, capacity)}
}

func (c *embedCacheClient) EmbedText(ctx domain.Context, text string) ([]float32, error) {
	k := keyFor(text)
	c.mu.RLock()
	v, ok := c.m[k]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}
	vec, err := c.base.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(k, vec)
	return vec, nil
}

func (c *embedCacheClient) GenerateText(ctx domain.Context, prompt string, opts domain.GenOptions) (domain.GenResult, error) {
	return c.base.GenerateText(ctx, prompt, opts)
}

func (c *embedCacheClient) put(k string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[k]; exists {
		c.m[k] = vec
		return
	}
	if len(c.ord) >= c.capacity {
		old := c.ord[0]
		c.ord = c.ord[1:]
		delete(c.m, old)
	}
	c.m[k] = vec
	c.ord = append(c.ord, k)
}

func keyFor(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
