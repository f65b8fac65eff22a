// Package evalparse converts the semi-structured text protocol spoken by the
// generation model into typed results. All regex extraction and the repair
// policy for malformed model output live here so the behavior is testable in
// one place.
package evalparse

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
)

const (
	// defaultScore substitutes a missing relevance or correctness label.
	defaultScore = 5
	// floorScore substitutes a label whose value could not be parsed, and
	// fills placeholder entries for missing blocks. A parse failure must
	// read as "missing", never as a valid extreme.
	floorScore = 1
	maxScore   = 10
)

// missingFeedback is stored when a block carries no parsable feedback line.
const missingFeedback = "Feedback could not be parsed from the evaluation response."

var (
	blockSplit     = regexp.MustCompile(`(?i)question\s+\d+\s*:`)
	relevanceLine  = regexp.MustCompile(`(?i)relevance\s*:?\s*([^\n]*)`)
	correctLine    = regexp.MustCompile(`(?i)correctness\s*:?\s*([^\n]*)`)
	overallLine    = regexp.MustCompile(`(?i)overall\s*:?\s*([^\n]*)`)
	feedbackGreedy = regexp.MustCompile(`(?is)feedback\s*:?\s*(.*)$`)
	leadingInt     = regexp.MustCompile(`-?\d+`)
	numberedLine   = regexp.MustCompile(`(?m)^\s*(\d+)[.)]\s+(.+)$`)
)

// ParseEvaluations parses the raw batched evaluation response into exactly n
// typed entries, in question order. The response is split on "Question <n>:"
// headers; each block is mined independently so one malformed block never
// poisons its neighbors. Missing blocks are right-padded with low-score
// placeholders and surplus blocks are dropped. Only a response with zero
// recognizable blocks fails, with domain.ErrEvaluationParse.
func ParseEvaluations(raw string, n int) ([]domain.Evaluation, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: non-positive question count %d", domain.ErrInvalidArgument, n)
	}
	blocks := blockSplit.Split(raw, -1)
	// The text before the first "Question N:" header is preamble, not a block.
	if len(blocks) > 0 {
		blocks = blocks[1:]
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: no question blocks in response", domain.ErrEvaluationParse)
	}
	if len(blocks) > n {
		slog.Warn("evaluation response has surplus blocks, truncating",
			slog.Int("blocks", len(blocks)), slog.Int("expected", n))
		blocks = blocks[:n]
	}
	out := make([]domain.Evaluation, 0, n)
	for _, b := range blocks {
		out = append(out, parseBlock(b))
	}
	for len(out) < n {
		slog.Warn("evaluation response missing block, padding with placeholder",
			slog.Int("position", len(out)+1), slog.Int("expected", n))
		observability.EvaluationRepairsTotal.Inc()
		out = append(out, domain.Evaluation{
			RelevanceScore:   floorScore,
			CorrectnessScore: floorScore,
			OverallScore:     floorScore,
			Feedback:         fmt.Sprintf("No evaluation was returned for question %d.", len(out)+1),
		})
	}
	return out, nil
}

func parseBlock(block string) domain.Evaluation {
	rel := scoreFromLine(block, relevanceLine)
	corr := scoreFromLine(block, correctLine)
	overall, ok := intFromLine(block, overallLine)
	if !ok {
		overall = int(math.Round(float64(rel+corr) / 2))
	}
	feedback := missingFeedback
	if m := feedbackGreedy.FindStringSubmatch(block); m != nil {
		if f := strings.TrimSpace(m[1]); f != "" {
			feedback = f
		}
	}
	return domain.Evaluation{
		RelevanceScore:   clamp(rel),
		CorrectnessScore: clamp(corr),
		OverallScore:     clamp(overall),
		Feedback:         feedback,
	}
}

// scoreFromLine extracts a labeled score: absent label defaults to 5,
// a label whose value cannot be parsed floors to 1.
func scoreFromLine(block string, re *regexp.Regexp) int {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return defaultScore
	}
	v, ok := parseScoreValue(m[1])
	if !ok {
		return floorScore
	}
	return v
}

func intFromLine(block string, re *regexp.Regexp) (int, bool) {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return 0, false
	}
	return parseScoreValue(m[1])
}

// parseScoreValue accepts "7", "7/10", "7 / 10" and similar shapes.
func parseScoreValue(s string) (int, bool) {
	s = strings.TrimSpace(s)
	num := leadingInt.FindString(s)
	if num == "" {
		return 0, false
	}
	v, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clamp(v int) int {
	if v < floorScore {
		return floorScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// ParseNumberedQuestions extracts "N. text" lines from a raw question list.
// The returned questions are in line order; the numbering in the text is not
// trusted beyond identifying a line as a question.
func ParseNumberedQuestions(raw string) []string {
	matches := numberedLine.FindAllStringSubmatch(raw, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if q := strings.TrimSpace(m[2]); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// IsNumberedList reports whether raw contains exactly n numbered question
// lines. The question generator uses this for a warning only; downstream
// parsing remains the authority on structure.
func IsNumberedList(raw string, n int) bool {
	return len(ParseNumberedQuestions(raw)) == n
}
