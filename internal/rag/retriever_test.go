package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	chromem "github.com/philippgille/chromem-go"

	"github.com/nabilh/coursepilot/internal/embeddings"
	"github.com/nabilh/coursepilot/internal/vectordb"
)

// mapEmbedder returns canned vectors per text, defaulting to the x axis.
type mapEmbedder struct {
	vectors  map[string][]float32
	failures int
	calls    int
}

func (e *mapEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failures > 0 {
		e.failures--
		return nil, &embeddings.Error{Transient: true, Err: errors.New("embedder unavailable")}
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}

func (e *mapEmbedder) Dimensions() int { return 3 }
func (e *mapEmbedder) Name() string    { return "map" }

func newTestIndex(t *testing.T) *vectordb.ChromemStore {
	t.Helper()
	index, err := vectordb.NewChromemStore(chromem.EmbeddingFunc(func(_ context.Context, _ string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	return index
}

func seedDocument(t *testing.T, index *vectordb.ChromemStore, docID string, n int, vec []float32) {
	t.Helper()
	chunks := make([]vectordb.Chunk, n)
	for i := range chunks {
		chunks[i] = vectordb.Chunk{
			DocumentID: docID,
			Index:      i,
			Text:       fmt.Sprintf("%s chunk %d", docID, i),
			Offset:     i * 10,
			Filename:   docID + ".pdf",
			Vector:     vec,
		}
	}
	if err := index.Upsert(context.Background(), docID, chunks); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r := NewRetriever(&mapEmbedder{}, newTestIndex(t))

	if _, err := r.Retrieve(context.Background(), "", 5, nil); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("error = %v, want ErrEmptyQuery", err)
	}
}

func TestRetrieveScopedToDocument(t *testing.T) {
	index := newTestIndex(t)
	seedDocument(t, index, "doc-a", 4, []float32{1, 0, 0})
	seedDocument(t, index, "doc-b", 4, []float32{0, 1, 0})

	r := NewRetriever(&mapEmbedder{}, index)

	// The query embeds to the x axis, nearest doc-a, but scope forces doc-b.
	results, err := r.Retrieve(context.Background(), "anything", 5, []string{"doc-b"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 || len(results) > 5 {
		t.Fatalf("len = %d, want 1..5", len(results))
	}
	for _, res := range results {
		if res.Chunk.DocumentID != "doc-b" {
			t.Errorf("result from %q, want doc-b only", res.Chunk.DocumentID)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Error("results not ordered by descending similarity")
		}
	}
}

func TestRetrieveRetriesTransientEmbedFailure(t *testing.T) {
	index := newTestIndex(t)
	seedDocument(t, index, "doc-a", 2, []float32{1, 0, 0})

	emb := &mapEmbedder{failures: 1}
	r := NewRetriever(emb, index)

	results, err := r.Retrieve(context.Background(), "query", 5, nil)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if emb.calls != 2 {
		t.Errorf("embedder calls = %d, want 2", emb.calls)
	}
	if len(results) != 2 {
		t.Errorf("len = %d, want 2", len(results))
	}
}

func TestDocumentContextCapsChunks(t *testing.T) {
	index := newTestIndex(t)
	seedDocument(t, index, "doc-a", 15, []float32{1, 0, 0})
	seedDocument(t, index, "doc-b", 15, []float32{0, 1, 0})

	r := NewRetriever(&mapEmbedder{}, index)

	ctx, err := r.DocumentContext(context.Background(), []string{"doc-a", "doc-b"})
	if err != nil {
		t.Fatalf("DocumentContext: %v", err)
	}

	parts := strings.Split(ctx, "\n\n")
	if len(parts) != 20 {
		t.Errorf("context chunks = %d, want 20", len(parts))
	}
	if parts[0] != "doc-a chunk 0" {
		t.Errorf("first chunk = %q, want doc-a chunk 0", parts[0])
	}
}

func TestEngineAnswerEmptyIndex(t *testing.T) {
	provider := &scriptedProvider{reply: "hallucination"}
	engine := NewEngine(
		NewRetriever(&mapEmbedder{}, newTestIndex(t)),
		NewComposer(provider, "test-model"),
	)

	ans, err := engine.Answer(context.Background(), "what is entropy?", ModeQA, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != insufficientContext {
		t.Errorf("Text = %q, want insufficient-context response", ans.Text)
	}
	if len(provider.requests) != 0 {
		t.Error("model invoked against an empty index")
	}
}

func TestEngineAnswerUsesModeDepth(t *testing.T) {
	index := newTestIndex(t)
	seedDocument(t, index, "doc-a", 10, []float32{1, 0, 0})

	provider := &scriptedProvider{reply: "notes"}
	engine := NewEngine(
		NewRetriever(&mapEmbedder{}, index),
		NewComposer(provider, "test-model"),
	)

	ans, err := engine.Answer(context.Background(), "thermodynamics", ModeStudyNotes, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Mode != ModeStudyNotes {
		t.Errorf("Mode = %q", ans.Mode)
	}

	// study_notes retrieves 7 chunks; all from the only document.
	prompt := provider.requests[0].Messages[0].Content
	count := strings.Count(prompt, "doc-a chunk")
	if count != 7 {
		t.Errorf("grounding chunks in prompt = %d, want 7", count)
	}
}
