package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evalparse"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/retrieval"
)

// InterviewService orchestrates interview sessions: question generation,
// answer submission with resume-grounded evaluation, and final scoring.
type InterviewService struct {
	sessions  domain.SessionRepository
	docs      domain.DocumentRepository
	embedder  domain.EmbeddingClient
	questions QuestionService
	evals     EvaluationService
	topK      int
}

// NewInterviewService wires the session orchestrator. topK bounds how many
// resume chunks ground each evaluation.
func NewInterviewService(
	sessions domain.SessionRepository,
	docs domain.DocumentRepository,
	embedder domain.EmbeddingClient,
	questions QuestionService,
	evals EvaluationService,
	topK int,
) InterviewService {
	return InterviewService{
		sessions:  sessions,
		docs:      docs,
		embedder:  embedder,
		questions: questions,
		evals:     evals,
		topK:      topK,
	}
}

// SubmissionResult is what one answer submission produces.
type SubmissionResult struct {
	Evaluations []domain.Evaluation
	Scores      domain.SessionScores
}

// CreateSession opens a new interview session for owner.
func (s InterviewService) CreateSession(ctx domain.Context, owner, name string, totalQuestions int) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("%w: owner is required", domain.ErrInvalidArgument)
	}
	if totalQuestions < domain.MinQuestions || totalQuestions > domain.MaxQuestions {
		return "", fmt.Errorf("%w: total questions must be between %d and %d",
			domain.ErrInvalidArgument, domain.MinQuestions, domain.MaxQuestions)
	}
	return s.sessions.Create(ctx, domain.InterviewSession{
		Owner:          owner,
		Name:           name,
		TotalQuestions: totalQuestions,
	})
}

// GetSession loads one session with its transcript.
func (s InterviewService) GetSession(ctx domain.Context, owner, id string) (domain.InterviewSession, error) {
	return s.sessions.Get(ctx, owner, id)
}

// GenerateQuestions builds the session's question list from the owner's job
// description document and stores it as the transcript's first assistant
// message, resetting any prior answers and scores.
func (s InterviewService) GenerateQuestions(ctx domain.Context, owner, sessionID string) (string, error) {
	sess, err := s.sessions.Get(ctx, owner, sessionID)
	if err != nil {
		return "", err
	}

	jd, err := s.lookupDocument(ctx, owner, sessionID, domain.DocumentTypeJD)
	if err != nil {
		return "", fmt.Errorf("%w: no job description uploaded", domain.ErrNotFound)
	}

	raw, err := s.questions.Generate(ctx, documentText(jd), sess.TotalQuestions)
	if err != nil {
		return "", err
	}
	msg := domain.Message{Role: domain.RoleAssistant, Content: raw}
	if err := s.sessions.ReplaceQuestions(ctx, sessionID, msg); err != nil {
		return "", err
	}
	return raw, nil
}

// SubmitAnswers evaluates one answer per generated question, appends the
// exchange to the transcript and completes the session with aggregate
// scores. The first assistant message is the sole source of the question
// list.
func (s InterviewService) SubmitAnswers(ctx domain.Context, owner, sessionID string, answers []string) (SubmissionResult, error) {
	sess, err := s.sessions.Get(ctx, owner, sessionID)
	if err != nil {
		return SubmissionResult{}, err
	}
	if sess.IsCompleted {
		return SubmissionResult{}, fmt.Errorf("%w: session is already completed", domain.ErrInvalidArgument)
	}

	questions := sessionQuestions(sess)
	if len(questions) == 0 {
		return SubmissionResult{}, fmt.Errorf("%w: questions have not been generated", domain.ErrInvalidArgument)
	}
	if len(answers) != len(questions) {
		return SubmissionResult{}, fmt.Errorf("%w: expected %d answers, got %d",
			domain.ErrInvalidArgument, len(questions), len(answers))
	}

	pairs := make([]domain.QAPair, len(questions))
	for i := range questions {
		pairs[i] = domain.QAPair{Question: questions[i], Answer: answers[i]}
	}

	resumeContext := s.resumeContext(ctx, owner, sessionID, strings.Join(answers, "\n"))

	evals, err := s.evals.EvaluateAll(ctx, pairs, resumeContext)
	if err != nil {
		return SubmissionResult{}, err
	}

	msgs := make([]domain.Message, 0, len(evals)+1)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: strings.Join(answers, "\n\n")})
	for i := range evals {
		rel, corr, overall := evals[i].RelevanceScore, evals[i].CorrectnessScore, evals[i].OverallScore
		msgs = append(msgs, domain.Message{
			Role:             domain.RoleAssistant,
			Content:          evals[i].Feedback,
			RelevanceScore:   &rel,
			CorrectnessScore: &corr,
			OverallScore:     &overall,
		})
	}
	if err := s.sessions.AppendMessages(ctx, sessionID, msgs); err != nil {
		return SubmissionResult{}, err
	}

	transcript := append(append([]domain.Message{}, sess.Transcript...), msgs...)
	scores := CalculateFinalScores(transcript)
	if err := s.sessions.Complete(ctx, sessionID, scores); err != nil {
		return SubmissionResult{}, err
	}
	return SubmissionResult{Evaluations: evals, Scores: scores}, nil
}

// DeleteSession removes the session and any documents scoped to it.
func (s InterviewService) DeleteSession(ctx domain.Context, owner, sessionID string) error {
	if err := s.sessions.Delete(ctx, owner, sessionID); err != nil {
		return err
	}
	return s.docs.DeleteBySession(ctx, owner, sessionID)
}

// resumeContext embeds the combined answers and retrieves the most similar
// resume chunks. Every failure here degrades to an empty context; the
// evaluator substitutes a neutral placeholder.
func (s InterviewService) resumeContext(ctx domain.Context, owner, sessionID, combinedAnswers string) string {
	resume, err := s.lookupDocument(ctx, owner, sessionID, domain.DocumentTypeResume)
	if err != nil {
		observability.LoggerFromContext(ctx).Info("no resume available for retrieval",
			slog.String("session_id", sessionID))
		return ""
	}
	query, err := s.embedder.Embed(ctx, combinedAnswers)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("query embedding failed, evaluating without resume context",
			slog.String("session_id", sessionID), slog.Any("error", err))
		return ""
	}
	hits := retrieval.FindSimilarChunks(query, resume.Chunks, s.topK)
	if len(hits) == 0 {
		return ""
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = h.Chunk.Text
	}
	return strings.Join(parts, "\n\n")
}

// lookupDocument prefers a session-scoped document and falls back to the
// owner's global one.
func (s InterviewService) lookupDocument(ctx domain.Context, owner, sessionID, docType string) (domain.Document, error) {
	doc, err := s.docs.Get(ctx, owner, &sessionID, docType)
	if err == nil {
		return doc, nil
	}
	return s.docs.Get(ctx, owner, nil, docType)
}

// sessionQuestions extracts the numbered questions from the transcript's
// first assistant message.
func sessionQuestions(sess domain.InterviewSession) []string {
	for _, m := range sess.Transcript {
		if m.Role == domain.RoleAssistant {
			return evalparse.ParseNumberedQuestions(m.Content)
		}
	}
	return nil
}

// documentText reassembles a document's text from its stored chunks.
func documentText(d domain.Document) string {
	parts := make([]string, len(d.Chunks))
	for i, c := range d.Chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}
