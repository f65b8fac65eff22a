package usecase

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/chunker"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

// DocumentService ingests uploaded resumes and job descriptions: extract,
// chunk, embed and persist. A new upload replaces the prior document for
// the same (owner, session, type) key.
type DocumentService struct {
	docs      domain.DocumentRepository
	blobs     domain.BlobStore
	extractor domain.TextExtractor
	embedder  domain.EmbeddingClient
	chunker   *chunker.Chunker
}

// NewDocumentService wires document ingestion.
func NewDocumentService(
	docs domain.DocumentRepository,
	blobs domain.BlobStore,
	extractor domain.TextExtractor,
	embedder domain.EmbeddingClient,
	ch *chunker.Chunker,
) DocumentService {
	return DocumentService{docs: docs, blobs: blobs, extractor: extractor, embedder: embedder, chunker: ch}
}

// ProcessUpload extracts text from the file at path, chunks and embeds it,
// stores the raw bytes and persists the resulting document. Content too
// short to produce a chunk is rejected before any embedding call.
func (s DocumentService) ProcessUpload(ctx domain.Context, owner string, sessionID *string, docType, fileName, path string, raw []byte) (domain.Document, error) {
	if docType != domain.DocumentTypeResume && docType != domain.DocumentTypeJD {
		return domain.Document{}, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidArgument, docType)
	}
	if owner == "" {
		return domain.Document{}, fmt.Errorf("%w: owner is required", domain.ErrInvalidArgument)
	}

	text, err := s.extractor.ExtractPath(ctx, fileName, path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("extract %s: %w", fileName, err)
	}

	texts, err := s.chunker.Chunk(text)
	if err != nil {
		return domain.Document{}, fmt.Errorf("chunk %s: %w", fileName, err)
	}

	vectors := s.embedder.EmbedBatch(ctx, texts)
	chunks := make([]domain.Chunk, len(texts))
	for i := range texts {
		chunks[i] = domain.Chunk{Text: texts[i], Embedding: vectors[i]}
	}

	ref, err := s.blobs.Put(ctx, fileName, raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("store %s: %w", fileName, err)
	}

	doc := domain.Document{
		Owner:      owner,
		SessionID:  sessionID,
		Type:       docType,
		StorageRef: ref,
		Chunks:     chunks,
	}
	id, err := s.docs.Replace(ctx, doc)
	if err != nil {
		// best effort; the blob is unreferenced if this cleanup fails
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			observability.LoggerFromContext(ctx).Warn("orphaned blob after failed replace",
				slog.String("ref", ref), slog.Any("error", delErr))
		}
		return domain.Document{}, fmt.Errorf("persist %s: %w", fileName, err)
	}
	doc.ID = id
	observability.ChunksProducedTotal.Add(float64(len(chunks)))
	observability.LoggerFromContext(ctx).Info("document ingested",
		slog.String("id", id),
		slog.String("type", docType),
		slog.Int("chunks", len(chunks)))
	return doc, nil
}

// Delete removes the document for (owner, session, type) and its stored blob.
func (s DocumentService) Delete(ctx domain.Context, owner string, sessionID *string, docType string) error {
	doc, err := s.docs.Get(ctx, owner, sessionID, docType)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, owner, sessionID, docType); err != nil {
		return err
	}
	if doc.StorageRef != "" {
		if err := s.blobs.Delete(ctx, doc.StorageRef); err != nil {
			observability.LoggerFromContext(ctx).Warn("blob delete failed",
				slog.String("ref", doc.StorageRef), slog.Any("error", err))
		}
	}
	return nil
}
