// Package chunker splits raw document text into bounded word windows
// suitable for independent embedding.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// DefaultWordsPerChunk bounds each chunk to roughly one embedding input.
const DefaultWordsPerChunk = 500

// minChunkChars guards against a trailing sliver; windows at or below this
// trimmed length are discarded.
const minChunkChars = 50

var blankLines = regexp.MustCompile(`\n{2,}`)

// Chunker produces consecutive, non-overlapping word windows.
type Chunker struct {
	wordsPerChunk int
}

// New constructs a Chunker; non-positive sizes fall back to the default.
func New(wordsPerChunk int) *Chunker {
	if wordsPerChunk <= 0 {
		wordsPerChunk = DefaultWordsPerChunk
	}
	return &Chunker{wordsPerChunk: wordsPerChunk}
}

// Chunk normalizes whitespace, splits text into words, and slices them into
// consecutive windows of the configured size, re-joined with single spaces.
// Windows are never overlapping and never reordered. Returns
// domain.ErrEmptyContent when no window survives (all-whitespace input or
// nothing beyond the minimum length).
func (c *Chunker) Chunk(text string) ([]string, error) {
	text = normalize(text)
	words := strings.Fields(text)
	var chunks []string
	for i := 0; i < len(words); i += c.wordsPerChunk {
		end := i + c.wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		w := strings.Join(words[i:end], " ")
		if len(strings.TrimSpace(w)) <= minChunkChars {
			continue
		}
		chunks = append(chunks, w)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced", domain.ErrEmptyContent)
	}
	return chunks, nil
}

// normalize collapses whitespace runs to single spaces and blank-line runs to
// single newlines, then trims.
func normalize(s string) string {
	s = textx.NormalizeNewlines(s)
	s = blankLines.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.Join(strings.Fields(ln), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
