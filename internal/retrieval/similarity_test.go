package retrieval_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/retrieval"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	t.Parallel()
	v := []float32{0.3, -1.2, 4.5, 0.01}
	sim, err := retrieval.CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

func TestCosineSimilarity_ZeroVectorIsZero(t *testing.T) {
	t.Parallel()
	sim, err := retrieval.CosineSimilarity([]float32{1, 2, 3}, []float32{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineSimilarity_OppositeIsMinusOne(t *testing.T) {
	t.Parallel()
	sim, err := retrieval.CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)
}

func TestCosineSimilarity_Mismatch(t *testing.T) {
	t.Parallel()
	_, err := retrieval.CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	_, err = retrieval.CosineSimilarity(nil, []float32{1})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestCosineSimilarity_NonFinite(t *testing.T) {
	t.Parallel()
	_, err := retrieval.CosineSimilarity([]float32{float32(math.NaN()), 1}, []float32{1, 1})
	assert.ErrorIs(t, err, domain.ErrInvalidVector)
}

func TestFindSimilarChunks_RanksDescendingWithIndices(t *testing.T) {
	t.Parallel()
	query := []float32{1, 0}
	chunks := []domain.Chunk{
		{Text: "orthogonal", Embedding: []float32{0, 1}},
		{Text: "aligned", Embedding: []float32{2, 0}},
		{Text: "diagonal", Embedding: []float32{1, 1}},
	}
	got := retrieval.FindSimilarChunks(query, chunks, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "aligned", got[0].Chunk.Text)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, "diagonal", got[1].Chunk.Text)
	assert.Equal(t, "orthogonal", got[2].Chunk.Text)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
}

func TestFindSimilarChunks_SkipsInvalidAndCapsK(t *testing.T) {
	t.Parallel()
	query := []float32{1, 0}
	chunks := []domain.Chunk{
		{Text: "bad", Embedding: []float32{1}}, // wrong dimension
		{Text: "good", Embedding: []float32{1, 0}},
	}
	got := retrieval.FindSimilarChunks(query, chunks, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Chunk.Text)
	assert.Equal(t, 1, got[0].Index)
}

func TestFindSimilarChunks_EmptyInputs(t *testing.T) {
	t.Parallel()
	assert.Empty(t, retrieval.FindSimilarChunks(nil, []domain.Chunk{{Embedding: []float32{1}}}, 3))
	assert.Empty(t, retrieval.FindSimilarChunks([]float32{1}, nil, 3))
}

func TestFindSimilarChunks_StableOnTies(t *testing.T) {
	t.Parallel()
	query := []float32{1, 0}
	chunks := []domain.Chunk{
		{Text: "first", Embedding: []float32{3, 0}},
		{Text: "second", Embedding: []float32{5, 0}},
	}
	got := retrieval.FindSimilarChunks(query, chunks, 2)
	require.Len(t, got, 2)
	// Both score exactly 1; input order must be preserved.
	assert.Equal(t, "first", got[0].Chunk.Text)
	assert.Equal(t, "second", got[1].Chunk.Text)
}
