package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evalparse"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

// QuestionService generates interview question lists from a job description.
// The injected client is expected to already handle transient retries.
type QuestionService struct {
	ai          domain.GenAIClient
	temperature float64
	maxTokens   int
}

// NewQuestionService wires the question generator.
func NewQuestionService(ai domain.GenAIClient, temperature float64, maxTokens int) QuestionService {
	return QuestionService{ai: ai, temperature: temperature, maxTokens: maxTokens}
}

// Generate produces numQuestions interview questions for jdText as one raw
// numbered list: numQuestions-1 technical questions grounded in the job
// description followed by one behavioral question.
func (s QuestionService) Generate(ctx domain.Context, jdText string, numQuestions int) (string, error) {
	if strings.TrimSpace(jdText) == "" {
		return "", fmt.Errorf("%w: job description text is required", domain.ErrInvalidArgument)
	}
	if numQuestions < domain.MinQuestions || numQuestions > domain.MaxQuestions {
		return "", fmt.Errorf("%w: number of questions must be between %d and %d",
			domain.ErrInvalidArgument, domain.MinQuestions, domain.MaxQuestions)
	}

	prompt := buildQuestionPrompt(jdText, numQuestions)
	res, err := s.ai.GenerateText(ctx, prompt, domain.GenOptions{
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate questions: %w", err)
	}
	if res.Blocked {
		return "", fmt.Errorf("%w: question generation was blocked", domain.ErrContentBlocked)
	}
	if res.Truncated {
		return "", fmt.Errorf("%w: question list was cut off", domain.ErrResponseTruncated)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", fmt.Errorf("%w: model returned no questions", domain.ErrEmptyResponse)
	}
	if !evalparse.IsNumberedList(text, numQuestions) {
		observability.LoggerFromContext(ctx).Warn("question list not in expected numbered format",
			slog.Int("expected", numQuestions))
	}
	return text, nil
}

func buildQuestionPrompt(jdText string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a technical interviewer. Based on the job description below, write exactly %d interview questions.\n", n)
	fmt.Fprintf(&b, "Questions 1 through %d must be technical and grounded in the skills and responsibilities of the job description.\n", n-1)
	fmt.Fprintf(&b, "Question %d must be a behavioral question.\n", n)
	b.WriteString("Format the output as a numbered list, one question per line, like:\n")
	b.WriteString("1. First question\n2. Second question\n")
	b.WriteString("Do not add any introduction, commentary or closing text.\n\n")
	b.WriteString("Job description:\n")
	b.WriteString(jdText)
	return b.String()
}
