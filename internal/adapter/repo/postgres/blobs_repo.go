package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

const blobRefPrefix = "blob://"

// BlobRepo stores raw uploaded files in the blobs table. Refs have the
// form "blob://<id>".
type BlobRepo struct{ Pool PgxPool }

// NewBlobRepo constructs a BlobRepo with the given pool.
func NewBlobRepo(p PgxPool) *BlobRepo { return &BlobRepo{Pool: p} }

// Put stores data under a fresh id and returns its ref.
func (r *BlobRepo) Put(ctx domain.Context, name string, data []byte) (string, error) {
	tracer := otel.Tracer("repo.blobs")
	ctx, span := tracer.Start(ctx, "blobs.Put")
	defer span.End()
	id := uuid.New().String()
	q := `INSERT INTO blobs (id, name, data, created_at) VALUES ($1,$2,$3,$4)`
	if _, err := r.Pool.Exec(ctx, q, id, name, data, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=blob.put: %w", err)
	}
	return blobRefPrefix + id, nil
}

// Delete removes the blob addressed by ref. Unknown refs are not an error
// since documents may outlive their blobs after partial cleanup.
func (r *BlobRepo) Delete(ctx domain.Context, ref string) error {
	tracer := otel.Tracer("repo.blobs")
	ctx, span := tracer.Start(ctx, "blobs.Delete")
	defer span.End()
	id := strings.TrimPrefix(ref, blobRefPrefix)
	if id == "" {
		return fmt.Errorf("op=blob.delete: %w", domain.ErrInvalidArgument)
	}
	if _, err := r.Pool.Exec(ctx, `DELETE FROM blobs WHERE id=$1`, id); err != nil {
		return fmt.Errorf("op=blob.delete: %w", err)
	}
	return nil
}
