package rag

import (
	"context"

	"github.com/rs/zerolog/log"

	"estate-insights/internal/chunker"
	"estate-insights/internal/embedding"
	"estate-insights/internal/extract"
	"estate-insights/internal/index"
	"estate-insights/internal/models"
	"estate-insights/internal/session"
)

// UploadFile is one member of an upload batch: the stored bytes plus the
// original filename that decides the extractor.
type UploadFile struct {
	Path string
	Name string
}

// Ingestor runs the upload side of the flow: extract, chunk, embed, and swap
// the fresh index into the session.
type Ingestor struct {
	chunker  *chunker.Chunker
	embedder embedding.Embedder
}

func NewIngestor(chunker *chunker.Chunker, embedder embedding.Embedder) *Ingestor {
	return &Ingestor{chunker: chunker, embedder: embedder}
}

// Ingest processes a whole batch as one unit. Any extraction or embedding
// failure aborts the batch and leaves the session's prior index (or absence
// of one) untouched. On success the old index is replaced in full.
func (ing *Ingestor) Ingest(ctx context.Context, sess *session.Session, files []UploadFile) (int, error) {
	var segments []models.TextSegment
	for _, f := range files {
		segs, err := extract.Extract(f.Path, f.Name)
		if err != nil {
			return 0, err
		}
		segments = append(segments, segs...)
	}

	chunks := ing.chunker.Chunk(segments)
	if len(chunks) == 0 {
		log.Warn().Int("files", len(files)).Msg("Upload batch produced no text")
		return 0, nil
	}

	idx, err := index.Build(ctx, ing.embedder, chunks)
	if err != nil {
		return 0, err
	}

	sess.SetIndex(idx)
	log.Info().
		Str("session", sess.ID.String()).
		Int("files", len(files)).
		Int("chunks", len(chunks)).
		Msg("Replaced session index")
	return len(chunks), nil
}
