package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// DocumentRepo persists documents and their chunks using a minimal pgx pool.
type DocumentRepo struct{ Pool PgxPool }

// NewDocumentRepo constructs a DocumentRepo with the given pool.
func NewDocumentRepo(p PgxPool) *DocumentRepo { return &DocumentRepo{Pool: p} }

// Replace removes any prior document for (owner, session, type) and stores d
// with its chunks inside one transaction, returning the new id.
func (r *DocumentRepo) Replace(ctx domain.Context, d domain.Document) (string, error) {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.Replace")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "documents"),
	)

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("op=document.replace begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	del := `DELETE FROM documents WHERE owner=$1 AND session_id IS NOT DISTINCT FROM $2 AND type=$3`
	if _, err := tx.Exec(ctx, del, d.Owner, d.SessionID, d.Type); err != nil {
		return "", fmt.Errorf("op=document.replace delete: %w", err)
	}

	id := d.ID
	if id == "" {
		id = uuid.New().String()
	}
	ins := `INSERT INTO documents (id, owner, session_id, type, storage_ref, created_at) VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := tx.Exec(ctx, ins, id, d.Owner, d.SessionID, d.Type, d.StorageRef, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=document.replace insert: %w", err)
	}

	chunkIns := `INSERT INTO document_chunks (document_id, idx, text, embedding) VALUES ($1,$2,$3,$4)`
	for i, c := range d.Chunks {
		if _, err := tx.Exec(ctx, chunkIns, id, i, c.Text, c.Embedding); err != nil {
			return "", fmt.Errorf("op=document.replace chunk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("op=document.replace commit: %w", err)
	}
	return id, nil
}

// Get loads the document for (owner, session, type) with chunks in order.
func (r *DocumentRepo) Get(ctx domain.Context, owner string, sessionID *string, docType string) (domain.Document, error) {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "documents"),
	)

	q := `SELECT id, owner, session_id, type, storage_ref, created_at FROM documents
		WHERE owner=$1 AND session_id IS NOT DISTINCT FROM $2 AND type=$3`
	row := r.Pool.QueryRow(ctx, q, owner, sessionID, docType)
	var d domain.Document
	if err := row.Scan(&d.ID, &d.Owner, &d.SessionID, &d.Type, &d.StorageRef, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, fmt.Errorf("op=document.get: %w", domain.ErrNotFound)
		}
		return domain.Document{}, fmt.Errorf("op=document.get: %w", err)
	}

	cq := `SELECT text, embedding FROM document_chunks WHERE document_id=$1 ORDER BY idx`
	rows, err := r.Pool.Query(ctx, cq, d.ID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("op=document.get chunks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.Text, &c.Embedding); err != nil {
			return domain.Document{}, fmt.Errorf("op=document.get scan chunk: %w", err)
		}
		d.Chunks = append(d.Chunks, c)
	}
	if err := rows.Err(); err != nil {
		return domain.Document{}, fmt.Errorf("op=document.get chunks: %w", err)
	}
	return d, nil
}

// Delete removes the document for (owner, session, type). Chunks cascade.
func (r *DocumentRepo) Delete(ctx domain.Context, owner string, sessionID *string, docType string) error {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.Delete")
	defer span.End()
	q := `DELETE FROM documents WHERE owner=$1 AND session_id IS NOT DISTINCT FROM $2 AND type=$3`
	tag, err := r.Pool.Exec(ctx, q, owner, sessionID, docType)
	if err != nil {
		return fmt.Errorf("op=document.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=document.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// DeleteBySession removes all documents scoped to a session.
func (r *DocumentRepo) DeleteBySession(ctx domain.Context, owner, sessionID string) error {
	tracer := otel.Tracer("repo.documents")
	ctx, span := tracer.Start(ctx, "documents.DeleteBySession")
	defer span.End()
	q := `DELETE FROM documents WHERE owner=$1 AND session_id=$2`
	if _, err := r.Pool.Exec(ctx, q, owner, sessionID); err != nil {
		return fmt.Errorf("op=document.delete_by_session: %w", err)
	}
	return nil
}
