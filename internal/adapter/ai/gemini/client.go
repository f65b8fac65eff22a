// Package gemini implements the GenAI client against the Google Generative
// Language REST API (generateContent and embedContent).
package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

// finishReason values returned by the API that require caller-visible
// handling.
const (
	finishSafety    = "SAFETY"
	finishMaxTokens = "MAX_TOKENS"
)

// Client implements domain.GenAIClient. It performs single calls only; the
// retry policy is applied by its callers.
type Client struct {
	cfg     config.Config
	chatHC  *http.Client
	embedHC *http.Client
}

// New constructs a Gemini client with per-call timeouts from config.
func New(cfg config.Config) *Client {
	chatTimeout := cfg.ChatTimeout
	if chatTimeout <= 0 {
		chatTimeout = 60 * time.Second
	}
	embedTimeout := cfg.EmbedTimeout
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		chatHC:  &http.Client{Timeout: chatTimeout},
		embedHC: &http.Client{Timeout: embedTimeout},
	}
}

type genRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type genResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GenerateText calls generateContent once and maps the finish metadata so
// callers can distinguish blocked and truncated generations.
func (c *Client) GenerateText(ctx domain.Context, prompt string, opts domain.GenOptions) (domain.GenResult, error) {
	if c.cfg.GeminiAPIKey == "" {
		slog.Error("Gemini API key missing", slog.String("provider", "gemini"))
		return domain.GenResult{}, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body := genRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}
	b, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.GeminiBaseURL, c.cfg.GenerationModel)

	var out genResponse
	if err := c.do(ctx, c.chatHC, "generate", url, b, &out); err != nil {
		return domain.GenResult{}, err
	}

	if out.PromptFeedback.BlockReason != "" {
		slog.Warn("generation blocked at prompt level",
			slog.String("provider", "gemini"),
			slog.String("block_reason", out.PromptFeedback.BlockReason))
		return domain.GenResult{Blocked: true, FinishReason: out.PromptFeedback.BlockReason}, nil
	}
	if len(out.Candidates) == 0 {
		slog.Error("gemini returned no candidates", slog.String("provider", "gemini"))
		return domain.GenResult{}, fmt.Errorf("%w: no candidates in response", domain.ErrEmptyResponse)
	}
	cand := out.Candidates[0]
	res := domain.GenResult{
		FinishReason: cand.FinishReason,
		Blocked:      cand.FinishReason == finishSafety,
		Truncated:    cand.FinishReason == finishMaxTokens,
	}
	for _, p := range cand.Content.Parts {
		res.Text += p.Text
	}
	return res, nil
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// EmbedText calls embedContent once and returns the vector. A structurally
// invalid response (missing or empty vector) is an error, not an empty slice.
func (c *Client) EmbedText(ctx domain.Context, text string) ([]float32, error) {
	if c.cfg.GeminiAPIKey == "" {
		slog.Error("Gemini API key missing", slog.String("provider", "gemini"))
		return nil, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body := embedRequest{
		Model:   "models/" + c.cfg.EmbeddingsModel,
		Content: content{Parts: []part{{Text: text}}},
	}
	b, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/models/%s:embedContent", c.cfg.GeminiBaseURL, c.cfg.EmbeddingsModel)

	var out embedResponse
	if err := c.do(ctx, c.embedHC, "embed", url, b, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding.Values) == 0 {
		slog.Error("gemini embedding response missing vector", slog.String("provider", "gemini"))
		return nil, fmt.Errorf("empty embedding vector in response")
	}
	return out.Embedding.Values, nil
}

// do performs one POST and decodes a 2xx response into out. Non-2xx statuses
// become *ai.StatusError so the retry policy can classify them.
func (c *Client) do(ctx domain.Context, hc *http.Client, op, url string, body []byte, out any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.GeminiAPIKey)
	resp, err := hc.Do(req)
	observability.AIRequestsTotal.WithLabelValues("gemini", op).Inc()
	observability.AIRequestDuration.WithLabelValues("gemini", op).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("failed to read response body", slog.String("provider", "gemini"), slog.String("op", op), slog.Any("error", err))
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(bodyBytes)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		slog.Warn("gemini non-2xx",
			slog.String("provider", "gemini"),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("endpoint", url),
			slog.String("body", snippet))
		return &ai.StatusError{Op: op, Status: resp.StatusCode}
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		slog.Error("gemini decode error", slog.String("provider", "gemini"), slog.String("op", op), slog.Any("error", err))
		return err
	}
	return nil
}
