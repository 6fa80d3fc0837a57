package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate-insights/internal/chunker"
	"estate-insights/internal/models"
)

// anyEmbedder embeds everything with the same vector.
type anyEmbedder struct{}

func (anyEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// failAfter fails once the call count passes the limit.
type failAfter struct {
	limit int
	calls int
}

func (f *failAfter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls > f.limit {
		return nil, errors.New("quota exhausted")
	}
	return []float32{1, 0, 0}, nil
}

func writeUpload(t *testing.T, name, content string) UploadFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return UploadFile{Path: path, Name: name}
}

func TestIngestSmallCSVSingleChunk(t *testing.T) {
	ing := NewIngestor(chunker.New(500, 50), anyEmbedder{})
	sess := newTestManager(t).Create()

	chunks, err := ing.Ingest(context.Background(), sess, []UploadFile{
		writeUpload(t, "props.csv", "A,B,C\nA,B,C\nA,B,C\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, chunks)

	idx := sess.Index()
	require.NotNil(t, idx)
	assert.Equal(t, 1, idx.Len())
}

func TestIngestEmbeddingFailureIsAtomic(t *testing.T) {
	// Enough text for five chunks; the provider dies on the second.
	var rows []string
	for i := 0; i < 120; i++ {
		rows = append(rows, fmt.Sprintf("property %03d,sector %d,ready", i, i%10))
	}
	upload := writeUpload(t, "big.csv", strings.Join(rows, "\n"))

	ing := NewIngestor(chunker.New(500, 50), &failAfter{limit: 1})
	sess := newTestManager(t).Create()

	_, err := ing.Ingest(context.Background(), sess, []UploadFile{upload})

	var embErr *models.EmbeddingError
	require.True(t, errors.As(err, &embErr))
	assert.Nil(t, sess.Index(), "failed batch must not leave a partial index")
}

func TestIngestReplacesIndexWholesale(t *testing.T) {
	ing := NewIngestor(chunker.New(500, 50), anyEmbedder{})
	sess := newTestManager(t).Create()

	_, err := ing.Ingest(context.Background(), sess, []UploadFile{
		writeUpload(t, "first.csv", "old,data\n"),
	})
	require.NoError(t, err)
	first := sess.Index()

	_, err = ing.Ingest(context.Background(), sess, []UploadFile{
		writeUpload(t, "second.csv", "new,data\n"),
	})
	require.NoError(t, err)

	second := sess.Index()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
}

func TestIngestExtractionFailureAbortsBatch(t *testing.T) {
	ing := NewIngestor(chunker.New(500, 50), anyEmbedder{})
	sess := newTestManager(t).Create()

	_, err := ing.Ingest(context.Background(), sess, []UploadFile{
		writeUpload(t, "fine.csv", "a,b\n"),
		writeUpload(t, "broken.pdf", "not a pdf"),
	})

	var extractionErr *models.ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Nil(t, sess.Index())
}

func TestIngestUnsupportedFormat(t *testing.T) {
	ing := NewIngestor(chunker.New(500, 50), anyEmbedder{})
	sess := newTestManager(t).Create()

	_, err := ing.Ingest(context.Background(), sess, []UploadFile{
		writeUpload(t, "archive.tar", "contents"),
	})

	var unsupported *models.UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
}

func TestIngestEmptyBatchKeepsPriorState(t *testing.T) {
	ing := NewIngestor(chunker.New(500, 50), anyEmbedder{})
	sess := newTestManager(t).Create()

	chunks, err := ing.Ingest(context.Background(), sess, []UploadFile{
		writeUpload(t, "empty.csv", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, chunks)
	assert.Nil(t, sess.Index())
}
