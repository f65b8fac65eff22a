package ai

import (
	"fmt"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/service/ratelimiter"
)

// limitedClient checks the shared provider budget before every call. It sits
// outside the retry decorator so a denied call fails fast instead of
// burning retry attempts.
type limitedClient struct {
	base    domain.GenAIClient
	limiter ratelimiter.Limiter
}

// NewLimited wraps base with the provider call budget. A nil limiter returns
// base unchanged.
func NewLimited(base domain.GenAIClient, limiter ratelimiter.Limiter) domain.GenAIClient {
	if limiter == nil {
		return base
	}
	return &limitedClient{base: base, limiter: limiter}
}

func (c *limitedClient) GenerateText(ctx domain.Context, prompt string, opts domain.GenOptions) (domain.GenResult, error) {
	allowed, retryAfter, _ := c.limiter.Allow(ctx, ratelimiter.KeyGenerate, 1)
	if !allowed {
		return domain.GenResult{}, fmt.Errorf("%w: generation budget exhausted, retry in %s", domain.ErrRateLimited, retryAfter)
	}
	return c.base.GenerateText(ctx, prompt, opts)
}

func (c *limitedClient) EmbedText(ctx domain.Context, text string) ([]float32, error) {
	allowed, retryAfter, _ := c.limiter.Allow(ctx, ratelimiter.KeyEmbed, 1)
	if !allowed {
		return nil, fmt.Errorf("%w: embedding budget exhausted, retry in %s", domain.ErrRateLimited, retryAfter)
	}
	return c.base.EmbedText(ctx, text)
}
