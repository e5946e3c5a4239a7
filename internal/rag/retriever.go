package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nabilh/coursepilot/internal/embeddings"
	"github.com/nabilh/coursepilot/internal/retry"
	"github.com/nabilh/coursepilot/internal/vectordb"
)

const defaultCallTimeout = 60 * time.Second

// ErrEmptyQuery means the caller supplied no query text.
var ErrEmptyQuery = errors.New("query is empty")

// Retriever embeds a query and searches the vector index. Each call
// re-embeds the query; there is no caching across calls.
type Retriever struct {
	embedder    embeddings.Embedder
	index       vectordb.Store
	callTimeout time.Duration
}

// NewRetriever creates a Retriever over the given embedder and index.
func NewRetriever(embedder embeddings.Embedder, index vectordb.Store) *Retriever {
	return &Retriever{
		embedder:    embedder,
		index:       index,
		callTimeout: defaultCallTimeout,
	}
}

// SetCallTimeout overrides the per-call timeout for embedding calls.
func (r *Retriever) SetCallTimeout(d time.Duration) {
	r.callTimeout = d
}

// Retrieve returns the k chunks most similar to the query, optionally scoped
// to a set of document ids. Transient embedding failures are retried with
// bounded backoff before surfacing.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, documentIDs []string) ([]vectordb.Result, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var vector []float32
	err := retry.Do(ctx, retry.DefaultAttempts, retry.DefaultBackoff, embeddings.IsTransient, func() error {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
		vectors, err := r.embedder.Embed(callCtx, []string{query})
		if err != nil {
			return err
		}
		vector = vectors[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return r.index.Search(ctx, vector, k, documentIDs)
}

// DocumentContext concatenates the stored chunk texts of the given documents
// in chunk order, capped at maxContextChunks chunks. Used by content
// generation, which grounds on whole documents rather than a query.
func (r *Retriever) DocumentContext(ctx context.Context, documentIDs []string) (string, error) {
	const maxContextChunks = 20

	var texts []string
	for _, id := range documentIDs {
		chunks, err := r.index.GetByDocument(ctx, id)
		if err != nil {
			return "", fmt.Errorf("loading chunks for %s: %w", id, err)
		}
		for _, c := range chunks {
			if len(texts) >= maxContextChunks {
				return strings.Join(texts, "\n\n"), nil
			}
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}
