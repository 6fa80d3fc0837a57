package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-insights/internal/models"
)

// fakeEmbedder maps texts to fixed vectors and fails on anything unknown.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	vec, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("provider rejected input")
	}
	return vec, nil
}

func chunksOf(texts ...string) []models.Chunk {
	out := make([]models.Chunk, len(texts))
	for i, t := range texts {
		out[i] = models.Chunk{Text: t, Source: "batch", Seq: i}
	}
	return out
}

func TestBuildAndSearchNearestFirst(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"north": {0, 1, 0},
		"east":  {1, 0, 0},
		"mixed": {0.7071, 0.7071, 0},
	}}

	idx, err := Build(context.Background(), embedder, chunksOf("north", "east", "mixed"))
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	got, err := idx.Search(context.Background(), []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "north", got[0].Text)
	assert.Equal(t, "mixed", got[1].Text)
}

func TestSearchTieBreaksOnInsertionOrder(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"first":  {1, 0, 0},
		"second": {1, 0, 0},
		"third":  {0, 1, 0},
	}}

	idx, err := Build(context.Background(), embedder, chunksOf("first", "second", "third"))
	require.NoError(t, err)

	got, err := idx.Search(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "third", got[2].Text)
}

func TestSearchCapsAtIndexSize(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"only": {1, 0, 0},
	}}

	idx, err := Build(context.Background(), embedder, chunksOf("only"))
	require.NoError(t, err)

	got, err := idx.Search(context.Background(), []float32{0.5, 0.5, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].Text)
}

func TestBuildFailsWholeBatchOnEmbeddingError(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"good": {1, 0, 0},
		// "bad" missing: the provider fails on the second chunk
	}}

	idx, err := Build(context.Background(), embedder, chunksOf("good", "bad", "good"))

	var embErr *models.EmbeddingError
	require.True(t, errors.As(err, &embErr))
	assert.Nil(t, idx)
}
