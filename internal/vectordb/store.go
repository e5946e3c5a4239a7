package vectordb

import "context"

// Store defines the interface for the chunk vector index.
type Store interface {
	// Upsert adds or replaces all chunks of a document. Chunks must carry
	// precomputed vectors.
	Upsert(ctx context.Context, documentID string, chunks []Chunk) error

	// DeleteDocument removes every chunk belonging to the document as one
	// logical operation.
	DeleteDocument(ctx context.Context, documentID string) error

	// Search returns up to k chunks most similar to the query vector,
	// ordered by descending similarity. k is clamped to [1, 20]. When
	// documentIDs is non-empty, only chunks from those documents are
	// returned.
	Search(ctx context.Context, queryVector []float32, k int, documentIDs []string) ([]Result, error)

	// GetByDocument returns a document's chunks in chunk-index order.
	GetByDocument(ctx context.Context, documentID string) ([]Chunk, error)

	// CountByDocument returns the number of chunks indexed for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// Count returns the total number of chunks in the index.
	Count() int

	// Persist saves the index to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the index from the given directory.
	Load(ctx context.Context, dir string) error
}
