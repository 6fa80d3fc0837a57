package chunker

import (
	"strings"

	"estate-insights/internal/models"
)

// Chunker splits pooled upload text into fixed character windows.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk pools the segments (newline-joined, segment order) and cuts the pool
// into windows of at most size characters. Size and overlap count runes, so a
// multibyte rune is never split across chunks. Consecutive windows share
// exactly overlap characters except at the tail, where the final window may
// be shorter. Empty input yields no chunks.
func (c *Chunker) Chunk(segments []models.TextSegment) []models.Chunk {
	text, source := pool(segments)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.size {
		return []models.Chunk{{Text: text, Source: source, Seq: 0}}
	}

	stride := c.size - c.overlap
	var chunks []models.Chunk
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:   string(runes[start:end]),
			Source: source,
			Seq:    len(chunks),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// pool joins non-empty segment texts into one text pool. Per-document boundaries
// are intentionally not preserved; the whole batch is one retrieval corpus.
func pool(segments []models.TextSegment) (string, string) {
	var b strings.Builder
	source := ""
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		if source == "" {
			source = seg.Source
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(seg.Text)
	}
	return b.String(), source
}
