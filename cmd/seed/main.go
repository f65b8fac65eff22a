// Command seed ingests a YAML file of demo resumes and job descriptions
// through the regular chunk-and-embed pipeline.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/chunker"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/seed"
)

func main() {
	path := flag.String("file", "seed.yaml", "path to the YAML seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal(err)
	}

	maxAttempts, initialDelay, multiplier := cfg.GetRetryConfig()
	policy := ai.RetryPolicy{MaxAttempts: maxAttempts, InitialDelay: initialDelay, Multiplier: multiplier}
	embedder := ai.NewEmbedder(gemini.New(cfg), cfg.EmbeddingDim, policy)

	s := seed.Seeder{
		Docs:     postgres.NewDocumentRepo(pool),
		Embedder: embedder,
		Chunker:  chunker.New(cfg.ChunkWords),
	}
	n, err := s.ApplyFile(ctx, *path)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("seeded %d documents", n)
}
