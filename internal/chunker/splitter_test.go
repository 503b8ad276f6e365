package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.ChunkSize())
		}
		if s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.Overlap())
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.Overlap() != 25 {
			t.Errorf("expected overlap reduced to 25, got %d", s.Overlap())
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		if s.ChunkSize() != DefaultChunkSize || s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected defaults, got %d/%d", s.ChunkSize(), s.Overlap())
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	if got := New().Split(""); got != nil {
		t.Errorf("expected no chunks, got %v", got)
	}
	if got := New().Split("   \n"); got != nil {
		t.Errorf("expected no chunks for blank text, got %v", got)
	}
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	text := "Dune - Bilim Kurgu türünde bir kitaptır."
	got := New().Split(text)
	if len(got) != 1 || got[0] != text {
		t.Errorf("expected single chunk %q, got %v", text, got)
	}
}

func TestSplit_RespectsSizeInRunes(t *testing.T) {
	// Multi-byte letters must not count as several characters.
	text := strings.Repeat("çğüşöı ", 300)
	s := New(WithChunkSize(100), WithOverlap(10))

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
	}
}

func TestSplit_SoftBoundary(t *testing.T) {
	text := strings.Repeat("kelime ", 50)
	s := New(WithChunkSize(40), WithOverlap(0))

	for i, c := range s.Split(text) {
		for _, w := range strings.Fields(c) {
			if w != "kelime" {
				t.Errorf("chunk %d cut a word: %q", i, w)
			}
		}
	}
}

func TestSplit_HardBoundaryWithoutWhitespace(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := New(WithChunkSize(100), WithOverlap(20)).Split(text)

	// Starts at 0, 80, 160 and the last window reaches the end.
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 100 || len(chunks[2]) != 90 {
		t.Errorf("unexpected chunk sizes %d %d %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestSplit_Overlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30)
	chunks := New(WithChunkSize(100), WithOverlap(20)).Split(text)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		if !strings.HasPrefix(chunks[i], prev[len(prev)-20:]) {
			t.Errorf("chunk %d does not start with the previous chunk's last 20 chars", i)
		}
	}
}

func TestSplit_CoversWholeText(t *testing.T) {
	text := strings.Repeat("a", 1000) + "SON"
	chunks := New(WithChunkSize(300), WithOverlap(50)).Split(text)

	if !strings.HasSuffix(chunks[len(chunks)-1], "SON") {
		t.Errorf("last chunk should end with the tail of the text")
	}
}
