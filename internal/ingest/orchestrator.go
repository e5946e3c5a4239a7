package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nabilh/coursepilot/internal/documents"
	"github.com/nabilh/coursepilot/internal/embeddings"
	"github.com/nabilh/coursepilot/internal/extract"
	"github.com/nabilh/coursepilot/internal/retry"
	"github.com/nabilh/coursepilot/internal/vectordb"
)

// Step identifies a stage of the ingestion pipeline, reported through the
// optional step callback. Steps are telemetry only; document status moves
// straight from processing to a terminal state.
type Step string

const (
	StepExtract Step = "extract"
	StepChunk   Step = "chunk"
	StepEmbed   Step = "embed"
	StepIndex   Step = "index"
)

// StepFunc is called as a document enters each pipeline stage.
type StepFunc func(documentID string, step Step)

const defaultCallTimeout = 60 * time.Second

// Orchestrator drives a document through extract -> chunk -> embed -> index,
// owning status transitions and the failure/retry policy. Status is always
// read from and written to the metadata store, never cached, so an
// invocation can run on any goroutine or process.
type Orchestrator struct {
	docs        *documents.Store
	extractor   extract.Extractor
	chunker     *Chunker
	embedder    embeddings.Embedder
	index       vectordb.Store
	callTimeout time.Duration
	onStep      StepFunc
}

// NewOrchestrator creates an Orchestrator over the given collaborators.
func NewOrchestrator(
	docs *documents.Store,
	extractor extract.Extractor,
	chunker *Chunker,
	embedder embeddings.Embedder,
	index vectordb.Store,
) *Orchestrator {
	return &Orchestrator{
		docs:        docs,
		extractor:   extractor,
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		callTimeout: defaultCallTimeout,
	}
}

// SetStepFunc sets the pipeline stage callback.
func (o *Orchestrator) SetStepFunc(fn StepFunc) {
	o.onStep = fn
}

// SetCallTimeout overrides the per-call timeout for embedding and index
// operations.
func (o *Orchestrator) SetCallTimeout(d time.Duration) {
	o.callTimeout = d
}

// Ingest processes the raw bytes of an already-registered document. The
// queued->processing transition acts as the mutual-exclusion gate: if the
// document is mid-flight elsewhere this returns ErrAlreadyProcessing without
// touching anything.
//
// On any pipeline failure the document's vector entries are removed before
// the status turns failed, preserving the invariant that only completed
// documents have chunks in the index.
func (o *Orchestrator) Ingest(ctx context.Context, documentID string, data []byte) error {
	doc, err := o.docs.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := o.docs.MarkProcessing(ctx, documentID); err != nil {
		return err
	}

	chunkCount, err := o.process(ctx, doc, data)
	if err != nil {
		log.Printf("ingest failed: document=%s file=%s: %v", documentID, doc.Filename, err)
		if derr := o.index.DeleteDocument(ctx, documentID); derr != nil {
			log.Printf("cleanup of partial index entries failed: document=%s: %v", documentID, derr)
		}
		if ferr := o.docs.MarkFailed(ctx, documentID, err.Error()); ferr != nil {
			return fmt.Errorf("recording failure for %s: %w", documentID, ferr)
		}
		return err
	}

	if err := o.docs.MarkCompleted(ctx, documentID, chunkCount); err != nil {
		return fmt.Errorf("recording completion for %s: %w", documentID, err)
	}
	return nil
}

// process runs the pipeline stages and returns the chunk count on success.
func (o *Orchestrator) process(ctx context.Context, doc *documents.Document, data []byte) (int, error) {
	o.step(doc.ID, StepExtract)
	text, err := o.extractor.Extract(data)
	if err != nil {
		return 0, err
	}

	o.step(doc.ID, StepChunk)
	chunks := o.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, &extract.Error{Reason: extract.ReasonEmpty, Err: fmt.Errorf("document produced no chunks")}
	}

	o.step(doc.ID, StepEmbed)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var vectors [][]float32
	err = retry.Do(ctx, retry.DefaultAttempts, retry.DefaultBackoff, embeddings.IsTransient, func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
		v, err := o.embedder.Embed(callCtx, texts)
		if err != nil {
			return err
		}
		vectors = v
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	o.step(doc.ID, StepIndex)
	entries := make([]vectordb.Chunk, len(chunks))
	for i, c := range chunks {
		entries[i] = vectordb.Chunk{
			DocumentID: doc.ID,
			Index:      c.Index,
			Text:       c.Text,
			Offset:     c.Offset,
			Filename:   doc.Filename,
			Vector:     vectors[i],
		}
	}

	err = retry.Do(ctx, retry.DefaultAttempts, retry.DefaultBackoff, indexTransient, func() error {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
		return o.index.Upsert(callCtx, doc.ID, entries)
	})
	if err != nil {
		return 0, fmt.Errorf("indexing %d chunks: %w", len(chunks), err)
	}

	return len(chunks), nil
}

// Resubmit re-queues a failed document and processes it again from scratch.
// Any partial vector entries are dropped first; there is no partial resume.
func (o *Orchestrator) Resubmit(ctx context.Context, documentID string) error {
	doc, err := o.docs.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := o.docs.Requeue(ctx, documentID); err != nil {
		return err
	}
	if err := o.index.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("clearing stale index entries for %s: %w", documentID, err)
	}

	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return fmt.Errorf("reading stored file for %s: %w", documentID, err)
	}

	return o.Ingest(ctx, documentID, data)
}

// DeleteDocument cascades a deletion across both stores: every chunk with
// the document's id leaves the vector index, then the metadata row goes.
// Vectors go first so a partial failure can never orphan index entries.
func (o *Orchestrator) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := o.docs.Get(ctx, documentID)
	if err != nil {
		return err
	}

	if err := o.index.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting index entries for %s: %w", documentID, err)
	}
	if err := o.docs.Delete(ctx, documentID); err != nil {
		return err
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("removing stored file %s: %v", doc.FilePath, err)
		}
	}
	return nil
}

func (o *Orchestrator) step(documentID string, s Step) {
	if o.onStep != nil {
		o.onStep(documentID, s)
	}
}

// indexTransient treats every vector index failure as store unavailability.
func indexTransient(error) bool { return true }
