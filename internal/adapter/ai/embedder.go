package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

// Embedder wraps the embedding service with the retry policy and per-item
// failure isolation for batches.
type Embedder struct {
	client domain.GenAIClient
	dim    int
	policy RetryPolicy
}

// NewEmbedder constructs an Embedder producing vectors of dim elements.
func NewEmbedder(client domain.GenAIClient, dim int, policy RetryPolicy) *Embedder {
	return &Embedder{client: client, dim: dim, policy: policy}
}

// Dimension returns the configured vector size.
func (e *Embedder) Dimension() int { return e.dim }

// Embed returns one vector for text. Empty input fails with
// domain.ErrInvalidArgument; a service failure surviving retries or a
// structurally invalid response fails with domain.ErrEmbeddingService
// wrapping the root cause.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrInvalidArgument)
	}
	var vec []float32
	err := e.policy.Retry(ctx, "embed", func() error {
		v, err := e.client.EmbedText(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
	if len(vec) == 0 || (e.dim > 0 && len(vec) != e.dim) {
		return nil, fmt.Errorf("%w: got vector of length %d, want %d", domain.ErrEmbeddingService, len(vec), e.dim)
	}
	return vec, nil
}

// EmbedBatch embeds texts strictly sequentially, in input order, to respect
// upstream rate limits. Empty texts and items whose calls fail after retries
// are substituted with zero vectors of the configured dimension instead of
// aborting the batch. The result always has exactly len(texts) entries.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			slog.Warn("substituting zero vector for failed embedding",
				slog.Int("index", i),
				slog.Int("text_len", len(t)),
				slog.Any("error", err))
			observability.EmbedPlaceholdersTotal.Inc()
			out[i] = make([]float32, e.dim)
			continue
		}
		out[i] = vec
	}
	return out
}
