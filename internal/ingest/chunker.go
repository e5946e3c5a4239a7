package ingest

import (
	"unicode"
	"unicode/utf8"
)

// Default sliding-window geometry, matching the splitter the course
// material was originally indexed with.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200

	// boundaryLookback is how far the chunker scans backwards from a cut
	// point to find a whitespace boundary instead of splitting mid-word.
	boundaryLookback = 100
)

// Chunk is one span of extracted text. Index is the chunk's position within
// its document and Offset its byte offset in the source text, both carried
// through embedding and indexing for citation.
type Chunk struct {
	Index  int
	Text   string
	Offset int
}

// Chunker splits text into overlapping fixed-size segments. Splitting is a
// pure function of (text, size, overlap): identical input always produces
// the identical chunk sequence, which is what makes reprocessing idempotent.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a Chunker. Non-positive size or overlap fall back to
// the defaults; overlap is capped below size to guarantee forward progress.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split cuts text into chunks of at most c.size runes, each overlapping the
// previous by c.overlap runes. Cut points prefer the nearest whitespace
// within boundaryLookback runes. Empty text yields zero chunks.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)

	// Byte offset of every rune, so chunk offsets cite into the original.
	byteOff := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOff[i] = off
		off += utf8.RuneLen(r)
	}
	byteOff[len(runes)] = off

	var chunks []Chunk
	start := 0
	for {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, Chunk{
				Index:  len(chunks),
				Text:   string(runes[start:]),
				Offset: byteOff[start],
			})
			return chunks
		}

		end = c.adjustToBoundary(runes, start, end)
		chunks = append(chunks, Chunk{
			Index:  len(chunks),
			Text:   string(runes[start:end]),
			Offset: byteOff[start],
		})
		start = end - c.overlap
	}
}

// adjustToBoundary moves the cut point back to just after the nearest
// whitespace rune, unless that would shrink the chunk to overlap size or
// less (which would stall the window).
func (c *Chunker) adjustToBoundary(runes []rune, start, end int) int {
	low := end - boundaryLookback
	if low <= start+c.overlap {
		low = start + c.overlap + 1
	}
	for i := end - 1; i >= low; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}
