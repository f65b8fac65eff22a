package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
)

const jdText = "We need a backend engineer with Go, PostgreSQL and distributed systems experience."

func TestGenerateQuestions_ReturnsRawList(t *testing.T) {
	t.Parallel()
	genai := &fakeGenAI{results: []domain.GenResult{{Text: "1. What is a goroutine?\n2. Tell me about a conflict."}}}
	svc := usecase.NewQuestionService(genai, 0.9, 2048)

	raw, err := svc.Generate(context.Background(), jdText, 2)
	require.NoError(t, err)
	assert.Contains(t, raw, "1. What is a goroutine?")
	require.Len(t, genai.prompts, 1)
	assert.Contains(t, genai.prompts[0], "exactly 2 interview questions")
	assert.Contains(t, genai.prompts[0], jdText)
}

func TestGenerateQuestions_Validation(t *testing.T) {
	t.Parallel()
	svc := usecase.NewQuestionService(&fakeGenAI{}, 0.9, 2048)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "   ", 3)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Generate(ctx, jdText, 1)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Generate(ctx, jdText, 11)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGenerateQuestions_ResultFlags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		result  domain.GenResult
		wantErr error
	}{
		{"blocked", domain.GenResult{Blocked: true}, domain.ErrContentBlocked},
		{"truncated", domain.GenResult{Text: "1. partial", Truncated: true}, domain.ErrResponseTruncated},
		{"empty", domain.GenResult{Text: "   "}, domain.ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := usecase.NewQuestionService(&fakeGenAI{results: []domain.GenResult{tt.result}}, 0.9, 2048)
			_, err := svc.Generate(ctx, jdText, 3)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateQuestions_PropagatesCallError(t *testing.T) {
	t.Parallel()
	genai := &fakeGenAI{errs: []error{assert.AnError}}
	svc := usecase.NewQuestionService(genai, 0.9, 2048)

	_, err := svc.Generate(context.Background(), jdText, 3)
	require.ErrorIs(t, err, assert.AnError)
}
