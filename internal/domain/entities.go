// Package domain holds the core entities, ports and error taxonomy for the
// interview evaluation pipeline.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrEmptyContent      = errors.New("empty content")
	ErrEmbeddingService  = errors.New("embedding service failure")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrInvalidVector     = errors.New("invalid vector")
	ErrEmptyResponse     = errors.New("empty model response")
	ErrContentBlocked    = errors.New("content blocked by safety policy")
	ErrResponseTruncated = errors.New("model response truncated")
	ErrEvaluationParse   = errors.New("evaluation response unparsable")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrRateLimited       = errors.New("rate limited")
	ErrInternal          = errors.New("internal error")
)

// DocumentType enumerates document types
const (
	DocumentTypeResume = "resume"
	DocumentTypeJD     = "jd"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// TotalQuestions bounds for a session.
const (
	MinQuestions = 2
	MaxQuestions = 10
)

// Chunk is one embedded segment of a document. Immutable once stored.
type Chunk struct {
	Text      string
	Embedding []float32
}

// Document represents a processed upload owned by a user.
// SessionID is nil for global documents (not scoped to one session).
// Invariants: Type in {resume, jd}; at most one live document per
// (owner, session, type) key; a new upload replaces the prior one.
type Document struct {
	ID         string
	Owner      string
	SessionID  *string
	Type       string
	StorageRef string
	Chunks     []Chunk
	CreatedAt  time.Time
}

// Message is one transcript entry. Score fields are set only on assistant
// messages produced by evaluation.
type Message struct {
	Role             string
	Content          string
	RelevanceScore   *int
	CorrectnessScore *int
	OverallScore     *int
	CreatedAt        time.Time
}

// InterviewSession holds the ordered Q&A transcript and computed scores.
// The first assistant message, when present, is the raw numbered question
// list and is the sole source of truth for what was asked.
type InterviewSession struct {
	ID                 string
	Owner              string
	Name               string
	TotalQuestions     int
	Transcript         []Message
	IsCompleted        bool
	FinalScore         *float64
	AverageRelevance   *float64
	AverageCorrectness *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// QAPair couples one asked question with the candidate's answer.
type QAPair struct {
	Question string
	Answer   string
}

// Evaluation is the typed result for one answered question. Scores are
// integers in [1,10].
type Evaluation struct {
	RelevanceScore   int
	CorrectnessScore int
	OverallScore     int
	Feedback         string
}

// SessionScores aggregates a completed session. Nil fields mean no scored
// messages existed.
type SessionScores struct {
	FinalScore         *float64
	AverageRelevance   *float64
	AverageCorrectness *float64
}

// ScoredChunk is one retrieval hit: the chunk, its similarity to the query
// and its index in the input chunk list.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float64
	Index      int
}

// Repositories (ports)

// DocumentRepository persists documents keyed by (owner, sessionID-or-nil, type).
type DocumentRepository interface {
	// Replace deletes any existing document for the same key and stores d,
	// returning the new id. The two steps run in one transaction.
	Replace(ctx Context, d Document) (string, error)
	Get(ctx Context, owner string, sessionID *string, docType string) (Document, error)
	Delete(ctx Context, owner string, sessionID *string, docType string) error
	// DeleteBySession removes all documents scoped to a session.
	DeleteBySession(ctx Context, owner, sessionID string) error
}

// SessionRepository persists interview sessions and their transcripts.
type SessionRepository interface {
	Create(ctx Context, s InterviewSession) (string, error)
	Get(ctx Context, owner, id string) (InterviewSession, error)
	Delete(ctx Context, owner, id string) error
	// AppendMessages appends messages to the transcript in order.
	AppendMessages(ctx Context, sessionID string, msgs []Message) error
	// ReplaceQuestions replaces the first assistant message (the question
	// list) and resets completion and score fields.
	ReplaceQuestions(ctx Context, sessionID string, msg Message) error
	// Complete marks the session completed and stores aggregate scores.
	Complete(ctx Context, sessionID string, scores SessionScores) error
}

// BlobStore persists raw uploaded files and is addressed by the returned ref.
type BlobStore interface {
	Put(ctx Context, name string, data []byte) (string, error)
	Delete(ctx Context, ref string) error
}

// GenAIClient (port)

// GenOptions controls a single text generation call.
type GenOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// GenResult carries generated text plus the finish metadata needed to
// distinguish blocked and truncated generations from plain success.
type GenResult struct {
	Text         string
	FinishReason string
	Blocked      bool
	Truncated    bool
}

// GenAIClient is the port to the text-generation and embedding services.
type GenAIClient interface {
	// GenerateText returns generated text for prompt; the result exposes
	// whether generation was blocked (safety) or truncated (length).
	GenerateText(ctx Context, prompt string, opts GenOptions) (GenResult, error)
	// EmbedText returns one fixed-dimension vector for text.
	EmbedText(ctx Context, text string) ([]float32, error)
}

// EmbeddingClient wraps the embedding service with retry and per-item
// failure isolation for batches.
type EmbeddingClient interface {
	Embed(ctx Context, text string) ([]float32, error)
	// EmbedBatch returns exactly len(texts) vectors of Dimension() elements,
	// substituting zero vectors for items that cannot be embedded.
	EmbedBatch(ctx Context, texts []string) [][]float32
	Dimension() int
}

// TextExtractor (port)
// ExtractPath extracts text from a file at path with provided original filename.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// Context is an alias so the domain package stays decoupled from call sites;
// adapters and usecases pass context.Context through.
type Context = context.Context
