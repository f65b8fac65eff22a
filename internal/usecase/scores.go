package usecase

import (
	"math"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// CalculateFinalScores reduces a transcript into session-level aggregates.
// It selects every assistant message carrying both a relevance and a
// correctness score, averages each axis, and sets the final score to the mean
// of the two axis means. The model's own overall score is deliberately not
// used. All values round to one decimal place. When no scored messages exist
// every field is nil.
func CalculateFinalScores(transcript []domain.Message) domain.SessionScores {
	var relSum, corrSum float64
	count := 0
	for _, m := range transcript {
		if m.Role != domain.RoleAssistant || m.RelevanceScore == nil || m.CorrectnessScore == nil {
			continue
		}
		relSum += float64(*m.RelevanceScore)
		corrSum += float64(*m.CorrectnessScore)
		count++
	}
	if count == 0 {
		return domain.SessionScores{}
	}
	avgRel := round1(relSum / float64(count))
	avgCorr := round1(corrSum / float64(count))
	final := round1((avgRel + avgCorr) / 2)
	return domain.SessionScores{
		FinalScore:         &final,
		AverageRelevance:   &avgRel,
		AverageCorrectness: &avgCorr,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
