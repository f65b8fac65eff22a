package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evalparse"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

const neutralResumeContext = "No resume context is available for this candidate."

// promptTokenBudget is a soft ceiling; prompts above it are still sent but
// logged so oversized transcripts show up in operations.
const promptTokenBudget = 6000

// EvaluationService scores answered interview questions in one batched
// generation call. Any terminal failure along the way degrades to low-score
// fallback entries instead of failing the whole submission.
type EvaluationService struct {
	ai          domain.GenAIClient
	temperature float64
	maxTokens   int
}

// NewEvaluationService wires the answer evaluator.
func NewEvaluationService(ai domain.GenAIClient, temperature float64, maxTokens int) EvaluationService {
	return EvaluationService{ai: ai, temperature: temperature, maxTokens: maxTokens}
}

// EvaluateAll returns exactly one Evaluation per pair, in input order.
// Invalid input is the only hard failure; generation or parse failures
// yield fallback entries carrying the failure message as feedback.
func (s EvaluationService) EvaluateAll(ctx domain.Context, pairs []domain.QAPair, resumeContext string) ([]domain.Evaluation, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no question/answer pairs to evaluate", domain.ErrInvalidArgument)
	}
	for i, p := range pairs {
		if strings.TrimSpace(p.Question) == "" {
			return nil, fmt.Errorf("%w: question %d is empty", domain.ErrInvalidArgument, i+1)
		}
	}

	evals, err := s.evaluate(ctx, pairs, resumeContext)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("evaluation failed, using fallback scores",
			slog.Int("questions", len(pairs)),
			slog.Any("error", err))
		observability.EvaluationFallbacksTotal.Inc()
		return fallbackEvaluations(len(pairs), err), nil
	}
	return evals, nil
}

func (s EvaluationService) evaluate(ctx domain.Context, pairs []domain.QAPair, resumeContext string) ([]domain.Evaluation, error) {
	if strings.TrimSpace(resumeContext) == "" {
		resumeContext = neutralResumeContext
	}
	prompt := buildEvaluationPrompt(pairs, resumeContext)
	if n := tokencount.DefaultCounter.Count(prompt); n > promptTokenBudget {
		observability.LoggerFromContext(ctx).Warn("evaluation prompt exceeds token budget",
			slog.Int("tokens", n), slog.Int("budget", promptTokenBudget))
	}

	res, err := s.ai.GenerateText(ctx, prompt, domain.GenOptions{
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate answers: %w", err)
	}
	if res.Blocked {
		return nil, fmt.Errorf("%w: evaluation was blocked", domain.ErrContentBlocked)
	}
	if res.Truncated {
		return nil, fmt.Errorf("%w: evaluation output was cut off", domain.ErrResponseTruncated)
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("%w: model returned no evaluation", domain.ErrEmptyResponse)
	}
	return evalparse.ParseEvaluations(res.Text, len(pairs))
}

func buildEvaluationPrompt(pairs []domain.QAPair, resumeContext string) string {
	var b strings.Builder
	b.WriteString("You are grading a candidate's interview answers.\n")
	b.WriteString("For every question below, rate Relevance and Correctness as integers from 1 to 10, ")
	b.WriteString("give an Overall integer from 1 to 10, and write short Feedback.\n")
	b.WriteString("Use the candidate's resume context to judge relevance where it applies.\n\n")
	b.WriteString("Respond with one block per question, in order, using exactly this format:\n")
	b.WriteString("Question 1:\nRelevance: <1-10>\nCorrectness: <1-10>\nOverall: <1-10>\nFeedback: <one or two sentences>\n\n")
	b.WriteString("Resume context:\n")
	b.WriteString(resumeContext)
	b.WriteString("\n\n")
	for i, p := range pairs {
		fmt.Fprintf(&b, "Question %d: %s\n", i+1, p.Question)
		answer := p.Answer
		if strings.TrimSpace(answer) == "" {
			answer = "(no answer given)"
		}
		fmt.Fprintf(&b, "Answer %d: %s\n\n", i+1, answer)
	}
	return b.String()
}

func fallbackEvaluations(n int, cause error) []domain.Evaluation {
	evals := make([]domain.Evaluation, n)
	for i := range evals {
		evals[i] = domain.Evaluation{
			RelevanceScore:   1,
			CorrectnessScore: 1,
			OverallScore:     1,
			Feedback:         fmt.Sprintf("The evaluation could not be completed: %v.", cause),
		}
	}
	return evals
}
