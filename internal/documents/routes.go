package documents

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes bounds the multipart form we are willing to buffer.
const maxUploadBytes = 64 << 20

// Pipeline runs the processing lifecycle for uploaded documents. It is
// implemented by ingest.Orchestrator; routes depend on the interface so this
// package carries no pipeline imports.
type Pipeline interface {
	Ingest(ctx context.Context, documentID string, data []byte) error
	Resubmit(ctx context.Context, documentID string) error
	DeleteDocument(ctx context.Context, documentID string) error
}

// RegisterRoutes mounts document endpoints under /api/documents.
func RegisterRoutes(r chi.Router, store *Store, pipeline Pipeline, uploadDir string) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/", handleUpload(store, pipeline, uploadDir))
		r.Get("/", handleList(store))
		r.Get("/stats", handleStats(store))
		r.Get("/{id}", handleGet(store))
		r.Post("/{id}/resubmit", handleResubmit(store, pipeline))
		r.Delete("/{id}", handleDelete(pipeline))
	})
}

func handleUpload(store *Store, pipeline Pipeline, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "reading upload", http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			http.Error(w, "empty file", http.StatusBadRequest)
			return
		}

		id := uuid.NewString()
		stored := filepath.Join(uploadDir, id+filepath.Ext(header.Filename))
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := os.WriteFile(stored, data, 0o644); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		doc, err := store.Create(r.Context(), Document{
			ID:         id,
			Filename:   header.Filename,
			FilePath:   stored,
			UploadedBy: r.FormValue("uploaded_by"),
			Course:     r.FormValue("course"),
		})
		if err != nil {
			os.Remove(stored)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Processing is synchronous; the response carries the terminal
		// status. Pipeline failures are recorded on the document, not
		// surfaced as a transport error.
		if err := pipeline.Ingest(r.Context(), doc.ID, data); err != nil {
			log.Printf("upload processing failed: document=%s: %v", doc.ID, err)
		}

		doc, err = store.Get(r.Context(), doc.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, doc)
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := ListFilter{
			Course:     q.Get("course"),
			UploadedBy: q.Get("uploaded_by"),
		}
		if v := q.Get("status"); v != "" {
			filter.Status = Status(v)
		}

		docs, err := store.List(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, docs)
	}
}

func handleStats(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleResubmit(store *Store, pipeline Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := pipeline.Resubmit(r.Context(), id); err != nil {
			// Resubmission re-runs the pipeline; a pipeline failure still
			// leaves a valid failed record, so only state errors map to
			// transport errors.
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) || errors.Is(err, ErrAlreadyProcessing) {
				writeStoreError(w, err)
				return
			}
		}

		doc, err := store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleDelete(pipeline Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pipeline.DeleteDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyProcessing), errors.Is(err, ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
