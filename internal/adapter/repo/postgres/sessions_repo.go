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

// SessionRepo persists interview sessions and transcripts via a pgx pool.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session and returns its id (generates one if empty).
func (r *SessionRepo) Create(ctx domain.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "sessions"),
	)
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO sessions (id, owner, name, total_questions, is_completed, created_at, updated_at) VALUES ($1,$2,$3,$4,FALSE,$5,$5)`
	if _, err := r.Pool.Exec(ctx, q, id, s.Owner, s.Name, s.TotalQuestions, now); err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return id, nil
}

// Get loads a session with its transcript in order.
func (r *SessionRepo) Get(ctx domain.Context, owner, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "sessions"),
	)
	q := `SELECT id, owner, name, total_questions, is_completed, final_score, avg_relevance, avg_correctness, created_at, updated_at
		FROM sessions WHERE id=$1 AND owner=$2`
	row := r.Pool.QueryRow(ctx, q, id, owner)
	var s domain.InterviewSession
	if err := row.Scan(&s.ID, &s.Owner, &s.Name, &s.TotalQuestions, &s.IsCompleted,
		&s.FinalScore, &s.AverageRelevance, &s.AverageCorrectness, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}

	mq := `SELECT role, content, relevance_score, correctness_score, overall_score, created_at
		FROM session_messages WHERE session_id=$1 ORDER BY seq`
	rows, err := r.Pool.Query(ctx, mq, id)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.RelevanceScore, &m.CorrectnessScore, &m.OverallScore, &m.CreatedAt); err != nil {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get scan message: %w", err)
		}
		s.Transcript = append(s.Transcript, m)
	}
	if err := rows.Err(); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=session.get messages: %w", err)
	}
	return s, nil
}

// Delete removes a session. Messages cascade.
func (r *SessionRepo) Delete(ctx domain.Context, owner, id string) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Delete")
	defer span.End()
	q := `DELETE FROM sessions WHERE id=$1 AND owner=$2`
	tag, err := r.Pool.Exec(ctx, q, id, owner)
	if err != nil {
		return fmt.Errorf("op=session.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AppendMessages appends msgs to the transcript in order, continuing the
// sequence from the current maximum.
func (r *SessionRepo) AppendMessages(ctx domain.Context, sessionID string, msgs []domain.Message) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.AppendMessages")
	defer span.End()

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=session.append begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var next int
	row := tx.QueryRow(ctx, `SELECT COALESCE(MAX(seq)+1, 0) FROM session_messages WHERE session_id=$1`, sessionID)
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("op=session.append seq: %w", err)
	}

	ins := `INSERT INTO session_messages (session_id, seq, role, content, relevance_score, correctness_score, overall_score, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	now := time.Now().UTC()
	for i, m := range msgs {
		at := m.CreatedAt
		if at.IsZero() {
			at = now
		}
		if _, err := tx.Exec(ctx, ins, sessionID, next+i, m.Role, m.Content, m.RelevanceScore, m.CorrectnessScore, m.OverallScore, at); err != nil {
			return fmt.Errorf("op=session.append insert: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE sessions SET updated_at=$2 WHERE id=$1`, sessionID, now); err != nil {
		return fmt.Errorf("op=session.append touch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=session.append commit: %w", err)
	}
	return nil
}

// ReplaceQuestions wipes the transcript, stores msg as the sole assistant
// question-list message and resets completion and score fields.
func (r *SessionRepo) ReplaceQuestions(ctx domain.Context, sessionID string, msg domain.Message) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.ReplaceQuestions")
	defer span.End()

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=session.replace_questions begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM session_messages WHERE session_id=$1`, sessionID); err != nil {
		return fmt.Errorf("op=session.replace_questions delete: %w", err)
	}
	now := time.Now().UTC()
	ins := `INSERT INTO session_messages (session_id, seq, role, content, created_at) VALUES ($1,0,$2,$3,$4)`
	if _, err := tx.Exec(ctx, ins, sessionID, msg.Role, msg.Content, now); err != nil {
		return fmt.Errorf("op=session.replace_questions insert: %w", err)
	}
	upd := `UPDATE sessions SET is_completed=FALSE, final_score=NULL, avg_relevance=NULL, avg_correctness=NULL, updated_at=$2 WHERE id=$1`
	if _, err := tx.Exec(ctx, upd, sessionID, now); err != nil {
		return fmt.Errorf("op=session.replace_questions reset: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("op=session.replace_questions commit: %w", err)
	}
	return nil
}

// Complete marks the session completed and stores aggregate scores.
func (r *SessionRepo) Complete(ctx domain.Context, sessionID string, scores domain.SessionScores) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Complete")
	defer span.End()
	q := `UPDATE sessions SET is_completed=TRUE, final_score=$2, avg_relevance=$3, avg_correctness=$4, updated_at=$5 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, sessionID, scores.FinalScore, scores.AverageRelevance, scores.AverageCorrectness, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=session.complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.complete: %w", domain.ErrNotFound)
	}
	return nil
}
