// Command server starts the AI interview evaluator HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/repo/postgres"
	tikaext "github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/textextractor/tika"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/chunker"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/service/ratelimiter"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	docRepo := postgres.NewDocumentRepo(pool)
	sessRepo := postgres.NewSessionRepo(pool)
	blobRepo := postgres.NewBlobRepo(pool)

	// Shared provider call budget, enforced in Redis when configured.
	var limiter ratelimiter.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiter = ratelimiter.NewRedisLuaLimiter(rdb, map[string]ratelimiter.BucketConfig{
			ratelimiter.KeyGenerate: ratelimiter.NewBucketConfigFromPerMinute(cfg.GenCallsPerMin),
		})
		slog.Info("provider rate limiter enabled", slog.Int("gen_calls_per_min", cfg.GenCallsPerMin))
	}

	maxAttempts, initialDelay, multiplier := cfg.GetRetryConfig()
	policy := ai.RetryPolicy{MaxAttempts: maxAttempts, InitialDelay: initialDelay, Multiplier: multiplier}

	// Client stack, innermost first: raw Gemini REST client, embedding
	// cache, provider budget, retry.
	raw := gemini.New(cfg)
	cached := ai.NewEmbedCache(raw, cfg.EmbedCacheSize)
	limited := ai.NewLimited(cached, limiter)
	genai := ai.NewRetrying(limited, policy)

	embedder := ai.NewEmbedder(limited, cfg.EmbeddingDim, policy)
	extractor := tikaext.New(cfg.TikaURL)

	docSvc := usecase.NewDocumentService(docRepo, blobRepo, extractor, embedder, chunker.New(cfg.ChunkWords))
	interviewSvc := usecase.NewInterviewService(
		sessRepo, docRepo, embedder,
		usecase.NewQuestionService(genai, cfg.QuestionTemperature, cfg.GenMaxOutputTokens),
		usecase.NewEvaluationService(genai, cfg.EvalTemperature, cfg.GenMaxOutputTokens),
		cfg.RetrieveTopK,
	)

	srv := httpserver.NewServer(cfg, docSvc, interviewSvc)
	handler := otelhttp.NewHandler(httpserver.BuildRouter(cfg, srv), "http.server")

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
