package rag

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Recorder appends an answered query to a retrieval session. Implemented by
// sessions.Store; a nil Recorder disables history.
type Recorder interface {
	Record(ctx context.Context, sessionID, query, mode, answer string, sources []string) error
}

type askRequest struct {
	Query       string   `json:"query"`
	Mode        string   `json:"mode"`
	DocumentIDs []string `json:"document_ids,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
}

type searchRequest struct {
	Query       string   `json:"query"`
	K           int      `json:"k"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// RegisterRoutes mounts query endpoints on the given router.
func RegisterRoutes(r chi.Router, engine *Engine, recorder Recorder) {
	r.Post("/api/ask", handleAsk(engine, recorder))
	r.Post("/api/search", handleSearch(engine))
}

func handleAsk(engine *Engine, recorder Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		mode, err := ParseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		answer, err := engine.Answer(r.Context(), req.Query, mode, req.DocumentIDs)
		if err != nil {
			if errors.Is(err, ErrEmptyQuery) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		if recorder != nil && req.SessionID != "" {
			if err := recorder.Record(r.Context(), req.SessionID, req.Query, string(mode), answer.Text, answer.Sources); err != nil {
				log.Printf("recording session entry failed: session=%s: %v", req.SessionID, err)
			}
		}

		writeJSON(w, http.StatusOK, answer)
	}
}

func handleSearch(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.K == 0 {
			req.K = 5
		}

		results, err := engine.Search(r.Context(), req.Query, req.K, req.DocumentIDs)
		if err != nil {
			if errors.Is(err, ErrEmptyQuery) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
