// Package seed loads demo resumes and job descriptions from YAML files and
// ingests them through the regular chunk-and-embed pipeline. It exists for
// local development and demos; production documents arrive via upload.
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/chunker"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

type seedFile struct {
	Documents []seedDocument `yaml:"documents"`
}

type seedDocument struct {
	Owner     string `yaml:"owner"`
	Type      string `yaml:"type"`
	SessionID string `yaml:"session_id"`
	Text      string `yaml:"text"`
}

// Seeder ingests YAML seed corpora.
type Seeder struct {
	Docs     domain.DocumentRepository
	Embedder domain.EmbeddingClient
	Chunker  *chunker.Chunker
}

// ApplyFile ingests every document in the YAML file at path. Paths outside
// the working directory are rejected unless SEED_ALLOW_ABSPATHS=1.
func (s Seeder) ApplyFile(ctx domain.Context, path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	abs = filepath.Clean(abs)
	if os.Getenv("SEED_ALLOW_ABSPATHS") != "1" {
		wd, err := os.Getwd()
		if err != nil {
			return 0, err
		}
		wd = filepath.Clean(wd)
		if !strings.HasPrefix(abs, wd+string(os.PathSeparator)) && abs != wd {
			return 0, fmt.Errorf("disallowed path: %s", abs)
		}
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("seed file not found: %s", path)
		}
		return 0, err
	}

	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return 0, fmt.Errorf("yaml parse: %w", err)
	}
	if len(f.Documents) == 0 {
		return 0, fmt.Errorf("no documents to seed in %s", path)
	}

	applied := 0
	for i, d := range f.Documents {
		if err := s.applyOne(ctx, d); err != nil {
			return applied, fmt.Errorf("seed document %d: %w", i+1, err)
		}
		applied++
	}
	return applied, nil
}

func (s Seeder) applyOne(ctx domain.Context, d seedDocument) error {
	owner := strings.TrimSpace(d.Owner)
	if owner == "" {
		owner = "demo"
	}
	if d.Type != domain.DocumentTypeResume && d.Type != domain.DocumentTypeJD {
		return fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidArgument, d.Type)
	}

	texts, err := s.Chunker.Chunk(d.Text)
	if err != nil {
		return err
	}
	vectors := s.Embedder.EmbedBatch(ctx, texts)
	chunks := make([]domain.Chunk, len(texts))
	for i := range texts {
		chunks[i] = domain.Chunk{Text: texts[i], Embedding: vectors[i]}
	}

	var sessionID *string
	if sid := strings.TrimSpace(d.SessionID); sid != "" {
		sessionID = &sid
	}
	id, err := s.Docs.Replace(ctx, domain.Document{
		Owner:     owner,
		SessionID: sessionID,
		Type:      d.Type,
		Chunks:    chunks,
	})
	if err != nil {
		return err
	}
	slog.Info("seeded document",
		slog.String("id", id),
		slog.String("owner", owner),
		slog.String("type", d.Type),
		slog.Int("chunks", len(chunks)))
	return nil
}
