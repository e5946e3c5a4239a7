package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "course_chunks"

// Search depth bounds: k outside this range is clamped, not rejected.
const (
	minSearchK = 1
	maxSearchK = 20
)

// ChromemStore implements Store using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore. The embedding func
// is only used by chromem for text queries; all writes carry precomputed
// vectors.
func NewChromemStore(ef chromem.EmbeddingFunc) (*ChromemStore, error) {
	db := chromem.NewDB()

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, documentID string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if c.DocumentID != documentID {
			return fmt.Errorf("chunk %d belongs to document %q, not %q", c.Index, c.DocumentID, documentID)
		}
		docs[i] = chromem.Document{
			ID:        c.EntryID(),
			Content:   c.Text,
			Embedding: c.Vector,
			Metadata:  chunkMetadata(c),
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding chunks for %s: %w", documentID, err)
	}
	return nil
}

func (s *ChromemStore) DeleteDocument(ctx context.Context, documentID string) error {
	where := map[string]string{"document_id": documentID}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("deleting chunks for %s: %w", documentID, err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, queryVector []float32, k int, documentIDs []string) ([]Result, error) {
	if k < minSearchK {
		k = minSearchK
	}
	if k > maxSearchK {
		k = maxSearchK
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// Rank the whole collection, then filter and truncate. Scoped queries
	// would otherwise starve when the filter excludes top-ranked chunks,
	// and chromem caps nResults at the collection size anyway.
	raw, err := s.collection.QueryEmbedding(ctx, queryVector, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var scope map[string]bool
	if len(documentIDs) > 0 {
		scope = make(map[string]bool, len(documentIDs))
		for _, id := range documentIDs {
			scope[id] = true
		}
	}

	results := make([]Result, 0, k)
	for _, r := range raw {
		c := chunkFromDocument(r.ID, r.Content, r.Metadata)
		if scope != nil && !scope[c.DocumentID] {
			continue
		}
		results = append(results, Result{Chunk: c, Similarity: r.Similarity})
	}

	// Equal similarities resolve by chunk insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if results[i].Chunk.DocumentID != results[j].Chunk.DocumentID {
			return results[i].Chunk.DocumentID < results[j].Chunk.DocumentID
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *ChromemStore) GetByDocument(ctx context.Context, documentID string) ([]Chunk, error) {
	// Chunk indexes are sequential from zero, so walk ids until a miss.
	var chunks []Chunk
	for i := 0; ; i++ {
		id := fmt.Sprintf("%s:%d", documentID, i)
		doc, err := s.collection.GetByID(ctx, id)
		if err != nil {
			break
		}
		chunks = append(chunks, chunkFromDocument(doc.ID, doc.Content, doc.Metadata))
	}
	return chunks, nil
}

func (s *ChromemStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	chunks, err := s.GetByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	return s.db.ExportToFile(filepath.Join(dir, "chunks.gob.gz"), true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(filepath.Join(dir, "chunks.gob.gz"), ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

// chunkMetadata flattens a chunk into the map[string]string chromem stores.
func chunkMetadata(c Chunk) map[string]string {
	return map[string]string{
		"document_id": c.DocumentID,
		"chunk_index": strconv.Itoa(c.Index),
		"offset":      strconv.Itoa(c.Offset),
		"filename":    c.Filename,
	}
}

func chunkFromDocument(id, content string, md map[string]string) Chunk {
	index, _ := strconv.Atoi(md["chunk_index"])
	offset, _ := strconv.Atoi(md["offset"])
	c := Chunk{
		DocumentID: md["document_id"],
		Index:      index,
		Text:       content,
		Offset:     offset,
		Filename:   md["filename"],
	}
	if c.DocumentID == "" {
		// Fall back to parsing the entry id ("docID:index").
		for i := len(id) - 1; i >= 0; i-- {
			if id[i] == ':' {
				c.DocumentID = id[:i]
				break
			}
		}
	}
	return c
}
