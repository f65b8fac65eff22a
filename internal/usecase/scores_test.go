package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
)

func intp(v int) *int { return &v }

func scoredMsg(rel, corr int) domain.Message {
	return domain.Message{Role: domain.RoleAssistant, RelevanceScore: intp(rel), CorrectnessScore: intp(corr)}
}

func TestCalculateFinalScores_Averages(t *testing.T) {
	t.Parallel()
	transcript := []domain.Message{
		{Role: domain.RoleAssistant, Content: "1. q1\n2. q2"},
		{Role: domain.RoleUser, Content: "answers"},
		scoredMsg(8, 6),
		scoredMsg(6, 8),
	}
	got := usecase.CalculateFinalScores(transcript)
	require.NotNil(t, got.FinalScore)
	assert.Equal(t, 7.0, *got.AverageRelevance)
	assert.Equal(t, 7.0, *got.AverageCorrectness)
	assert.Equal(t, 7.0, *got.FinalScore)
}

func TestCalculateFinalScores_OneDecimalRounding(t *testing.T) {
	t.Parallel()
	got := usecase.CalculateFinalScores([]domain.Message{
		scoredMsg(7, 5),
		scoredMsg(8, 6),
		scoredMsg(7, 7),
	})
	require.NotNil(t, got.FinalScore)
	assert.Equal(t, 7.3, *got.AverageRelevance)
	assert.Equal(t, 6.0, *got.AverageCorrectness)
	assert.Equal(t, 6.7, *got.FinalScore)
}

func TestCalculateFinalScores_IgnoresUnscoredAndNonAssistant(t *testing.T) {
	t.Parallel()
	transcript := []domain.Message{
		{Role: domain.RoleUser, RelevanceScore: intp(10), CorrectnessScore: intp(10)},
		{Role: domain.RoleAssistant, RelevanceScore: intp(9)}, // missing correctness
		scoredMsg(4, 4),
	}
	got := usecase.CalculateFinalScores(transcript)
	require.NotNil(t, got.FinalScore)
	assert.Equal(t, 4.0, *got.FinalScore)
}

func TestCalculateFinalScores_EmptyTranscript(t *testing.T) {
	t.Parallel()
	got := usecase.CalculateFinalScores(nil)
	assert.Nil(t, got.FinalScore)
	assert.Nil(t, got.AverageRelevance)
	assert.Nil(t, got.AverageCorrectness)
}
