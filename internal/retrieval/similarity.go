// Package retrieval ranks stored chunks against a query vector by cosine
// similarity.
package retrieval

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// DefaultTopK is used when callers pass a non-positive k.
const DefaultTopK = 3

// CosineSimilarity returns the cosine of the angle between a and b in [-1,1].
// A zero-magnitude vector on either side yields 0 (defined special case).
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("%w: got %d and %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		ai := float64(a[i])
		bi := float64(b[i])
		if math.IsNaN(ai) || math.IsInf(ai, 0) || math.IsNaN(bi) || math.IsInf(bi, 0) {
			return 0, fmt.Errorf("%w: non-finite element at index %d", domain.ErrInvalidVector, i)
		}
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Clamp to absorb floating-point drift.
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim, nil
}

// FindSimilarChunks scores every chunk against query and returns the top-k by
// descending similarity, each tagged with its index in the input list. Ties
// keep input order. An empty query or chunk list yields an empty result, not
// an error; chunks with structurally invalid embeddings are skipped and
// logged rather than failing the call.
func FindSimilarChunks(query []float32, chunks []domain.Chunk, topK int) []domain.ScoredChunk {
	if len(query) == 0 || len(chunks) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for i, ch := range chunks {
		sim, err := CosineSimilarity(query, ch.Embedding)
		if err != nil {
			slog.Warn("skipping chunk with invalid embedding",
				slog.Int("index", i),
				slog.Int("embedding_len", len(ch.Embedding)),
				slog.Any("error", err))
			continue
		}
		scored = append(scored, domain.ScoredChunk{Chunk: ch, Similarity: sim, Index: i})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK]
}
