package ai

import (
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// retryingClient decorates a GenAIClient with the retry policy so callers
// above the adapter layer never deal with transient upstream failures.
type retryingClient struct {
	base   domain.GenAIClient
	policy RetryPolicy
}

// NewRetrying wraps base so every call is retried per policy. Non-transient
// errors and result flags such as Blocked pass through untouched.
func NewRetrying(base domain.GenAIClient, policy RetryPolicy) domain.GenAIClient {
	return &retryingClient{base: base, policy: policy}
}

func (c *retryingClient) GenerateText(ctx domain.Context, prompt string, opts domain.GenOptions) (domain.GenResult, error) {
	var res domain.GenResult
	err := c.policy.Retry(ctx, "generate", func() error {
		var callErr error
		res, callErr = c.base.GenerateText(ctx, prompt, opts)
		return callErr
	})
	return res, err
}

func (c *retryingClient) EmbedText(ctx domain.Context, text string) ([]float32, error) {
	var vec []float32
	err := c.policy.Retry(ctx, "embed", func() error {
		var callErr error
		vec, callErr = c.base.EmbedText(ctx, text)
		return callErr
	})
	return vec, err
}
