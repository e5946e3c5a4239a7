package rag

import (
	"context"
	"fmt"

	"github.com/nabilh/coursepilot/internal/vectordb"
)

// Engine is the query-side entry point: retrieve then compose.
type Engine struct {
	retriever *Retriever
	composer  *Composer
}

// NewEngine creates an Engine over a retriever and composer.
func NewEngine(retriever *Retriever, composer *Composer) *Engine {
	return &Engine{retriever: retriever, composer: composer}
}

// Retriever exposes the underlying retriever for collaborators that ground
// on whole documents instead of a query.
func (e *Engine) Retriever() *Retriever { return e.retriever }

// Answer retrieves grounding chunks for the query and composes a response in
// the given mode, optionally scoped to a set of document ids. Retrieval
// depth follows the mode.
func (e *Engine) Answer(ctx context.Context, query string, mode Mode, documentIDs []string) (*Answer, error) {
	params, ok := modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	results, err := e.retriever.Retrieve(ctx, query, params.k, documentIDs)
	if err != nil {
		return nil, err
	}

	return e.composer.Compose(ctx, query, mode, results)
}

// Search runs retrieval without composition, for raw similarity queries.
func (e *Engine) Search(ctx context.Context, query string, k int, documentIDs []string) ([]vectordb.Result, error) {
	return e.retriever.Retrieve(ctx, query, k, documentIDs)
}
