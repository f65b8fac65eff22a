package postgres

import "context"

// schemaStatements create the tables the repos depend on. They are applied
// idempotently at startup; production deployments may manage the schema
// externally and skip EnsureSchema.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		session_id TEXT,
		type TEXT NOT NULL,
		storage_ref TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS documents_owner_session_type
		ON documents (owner, COALESCE(session_id, ''), type)`,
	`CREATE TABLE IF NOT EXISTS document_chunks (
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		idx INT NOT NULL,
		text TEXT NOT NULL,
		embedding FLOAT4[] NOT NULL,
		PRIMARY KEY (document_id, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		total_questions INT NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		final_score DOUBLE PRECISION,
		avg_relevance DOUBLE PRECISION,
		avg_correctness DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_messages (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		relevance_score INT,
		correctness_score INT,
		overall_score INT,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS blobs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		data BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema applies the schema statements in order.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	for _, q := range schemaStatements {
		if _, err := pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
