package ingest

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	c := NewChunker(1000, 200)
	if chunks := c.Split(""); chunks != nil {
		t.Errorf("expected nil chunks for empty text, got %d", len(chunks))
	}
}

func TestSplitShortText(t *testing.T) {
	c := NewChunker(1000, 200)
	chunks := c.Split("a short lecture summary")
	if len(chunks) != 1 {
		t.Fatalf("len = %d, want 1", len(chunks))
	}
	if chunks[0].Text != "a short lecture summary" {
		t.Errorf("Text = %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 || chunks[0].Offset != 0 {
		t.Errorf("Index/Offset = %d/%d, want 0/0", chunks[0].Index, chunks[0].Offset)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)

	first := c.Split(text)
	second := c.Split(text)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitRespectsSizeLimit(t *testing.T) {
	c := NewChunker(100, 20)
	text := strings.Repeat("lorem ipsum dolor sit amet ", 100)

	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if n := len([]rune(ch.Text)); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
	}
}

func TestSplitPrefersWhitespaceBoundary(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("alpha beta gamma delta epsilon ", 20)

	chunks := c.Split(text)
	for i, ch := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(ch.Text, " ") {
			t.Errorf("chunk %d does not end at a whitespace boundary: %q", i, ch.Text[len(ch.Text)-10:])
		}
	}
}

func TestSplitReconstructsOriginal(t *testing.T) {
	c := NewChunker(80, 15)
	text := strings.Repeat("neural networks are universal function approximators ", 30)

	chunks := c.Split(text)

	// Each chunk is a contiguous span starting at its predecessor's end
	// minus the overlap, so stitching with overlaps removed restores the
	// original text.
	var sb strings.Builder
	sb.WriteString(chunks[0].Text)
	for i := 1; i < len(chunks); i++ {
		runes := []rune(chunks[i].Text)
		sb.WriteString(string(runes[15:]))
	}
	if sb.String() != text {
		t.Error("reconstruction from overlapping chunks does not match original text")
	}
}

func TestSplitOffsetsCiteOriginalBytes(t *testing.T) {
	c := NewChunker(30, 5)
	text := "héllo wörld " + strings.Repeat("course notes with ünïcode ", 10)

	chunks := c.Split(text)
	for i, ch := range chunks {
		if got := text[ch.Offset : ch.Offset+len(ch.Text)]; got != ch.Text {
			t.Errorf("chunk %d offset %d does not slice back to its text", i, ch.Offset)
		}
	}
}

func TestNewChunkerGuards(t *testing.T) {
	c := NewChunker(0, -1)
	if c.size != DefaultChunkSize || c.overlap != DefaultOverlap {
		t.Errorf("defaults not applied: size=%d overlap=%d", c.size, c.overlap)
	}

	// Overlap >= size would stall the window.
	c = NewChunker(100, 100)
	if c.overlap >= c.size {
		t.Errorf("overlap %d not capped below size %d", c.overlap, c.size)
	}
}

func TestSplitThreeChunkDocument(t *testing.T) {
	// ~2.2 window-steps worth of text lands in exactly 3 chunks.
	c := NewChunker(1000, 200)
	text := strings.Repeat("w ", 1100) // 2200 runes

	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("len = %d, want 3", len(chunks))
	}
}
