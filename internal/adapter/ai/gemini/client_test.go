package gemini_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

func newClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := config.Config{
		GeminiAPIKey:    "test-key",
		GeminiBaseURL:   srv.URL,
		GenerationModel: "gemini-1.5-flash",
		EmbeddingsModel: "text-embedding-004",
	}
	return gemini.New(cfg)
}

func TestGenerateText_Success(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Contains(t, r.URL.Path, "generateContent")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"1. What is Go?"}]},"finishReason":"STOP"}]}`))
	})
	res, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{Temperature: 0.9})
	require.NoError(t, err)
	assert.Equal(t, "1. What is Go?", res.Text)
	assert.False(t, res.Blocked)
	assert.False(t, res.Truncated)
}

func TestGenerateText_SafetyBlocked(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
	})
	res, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{})
	require.NoError(t, err)
	assert.True(t, res.Blocked)
}

func TestGenerateText_PromptBlocked(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})
	res, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{})
	require.NoError(t, err)
	assert.True(t, res.Blocked)
}

func TestGenerateText_Truncated(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"partial"}]},"finishReason":"MAX_TOKENS"}]}`))
	})
	res, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "partial", res.Text)
}

func TestGenerateText_RateLimitedStatus(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{})
	require.Error(t, err)
	var se *ai.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.Status)
	assert.True(t, ai.IsTransient(err))
}

func TestGenerateText_NoCandidates(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{})
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestGenerateText_MissingAPIKey(t *testing.T) {
	t.Parallel()
	c := gemini.New(config.Config{GeminiBaseURL: "http://unused"})
	_, err := c.GenerateText(context.Background(), "prompt", domain.GenOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestEmbedText_Success(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "embedContent")
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	})
	vec, err := c.EmbedText(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedText_EmptyVectorIsError(t *testing.T) {
	t.Parallel()
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":{"values":[]}}`))
	})
	_, err := c.EmbedText(context.Background(), "some text")
	require.Error(t, err)
}
