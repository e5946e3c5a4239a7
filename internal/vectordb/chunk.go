package vectordb

import "fmt"

// Chunk is one indexed span of a document: the unit of retrieval.
// Chunks are keyed (DocumentID, Index); the vector index never owns
// document lifecycle, it only references documents by id.
type Chunk struct {
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Offset     int       `json:"offset"` // byte offset in the source text, for citation
	Filename   string    `json:"filename,omitempty"`
	Vector     []float32 `json:"-"`
}

// EntryID returns the vector index key for this chunk.
func (c Chunk) EntryID() string {
	return fmt.Sprintf("%s:%d", c.DocumentID, c.Index)
}

// Result pairs a chunk with its similarity score.
type Result struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float32 `json:"similarity"`
}
