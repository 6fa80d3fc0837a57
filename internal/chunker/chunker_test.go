package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"estate-insights/internal/models"
)

func segments(texts ...string) []models.TextSegment {
	out := make([]models.TextSegment, len(texts))
	for i, t := range texts {
		out[i] = models.TextSegment{Text: t, Source: "test.csv"}
	}
	return out
}

func TestChunkShortInputSingleChunk(t *testing.T) {
	c := New(500, 50)
	chunks := c.Chunk(segments("A | B | C", "A | B | C", "A | B | C"))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "A | B | C\nA | B | C\nA | B | C"
	if chunks[0].Text != want {
		t.Fatalf("chunk text = %q, want %q", chunks[0].Text, want)
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c := New(500, 50)
	if got := c.Chunk(nil); got != nil {
		t.Fatalf("expected no chunks for empty input, got %d", len(got))
	}
	if got := c.Chunk(segments("", "")); got != nil {
		t.Fatalf("expected no chunks for blank segments, got %d", len(got))
	}
}

func TestChunkOverlapAndCoverage(t *testing.T) {
	c := New(500, 50)
	text := strings.Repeat("abcdefghij", 130) // 1300 chars
	chunks := c.Chunk(segments(text))

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Text) > 500 {
			t.Errorf("chunk %d length %d exceeds max size", i, len(ch.Text))
		}
		if ch.Seq != i {
			t.Errorf("chunk %d has seq %d", i, ch.Seq)
		}
	}

	// Consecutive chunks share exactly the overlap; stripping it from each
	// follow-up chunk reconstructs the source with no gaps.
	rebuilt := chunks[0].Text
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1].Text, chunks[i].Text
		overlap := 50
		if len(cur) < overlap {
			overlap = len(cur)
		}
		if prev[len(prev)-overlap:] != cur[:overlap] {
			t.Fatalf("chunks %d and %d do not overlap by %d chars", i-1, i, overlap)
		}
		rebuilt += cur[overlap:]
	}
	if rebuilt != text {
		t.Fatalf("chunks do not cover the source contiguously")
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := New(500, 50)
	in := segments(strings.Repeat("the quick brown fox ", 60))
	a, b := c.Chunk(in), c.Chunk(in)

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestChunkMultibyteRunesStayIntact(t *testing.T) {
	c := New(500, 50)
	text := strings.Repeat("ग", 700) // 3 bytes per rune
	chunks := c.Chunk(segments(text))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks for 700 runes, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Text) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(ch.Text); n > 500 {
			t.Errorf("chunk %d has %d runes, exceeds max size", i, n)
		}
	}
	if n := utf8.RuneCountInString(chunks[0].Text); n != 500 {
		t.Errorf("first chunk has %d runes, want 500", n)
	}

	// The 50-rune overlap and contiguous coverage hold in runes.
	prev, cur := []rune(chunks[0].Text), []rune(chunks[1].Text)
	if string(prev[len(prev)-50:]) != string(cur[:50]) {
		t.Fatalf("chunks do not overlap by 50 runes")
	}
	if chunks[0].Text+string(cur[50:]) != text {
		t.Fatalf("chunks do not cover the source contiguously")
	}
}

func TestChunkExactSizeSingleChunk(t *testing.T) {
	c := New(500, 50)
	text := strings.Repeat("x", 500)
	chunks := c.Chunk(segments(text))

	if len(chunks) != 1 || chunks[0].Text != text {
		t.Fatalf("expected the whole text as one chunk, got %d chunks", len(chunks))
	}
}
