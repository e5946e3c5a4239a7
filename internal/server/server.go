package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nabilh/coursepilot/internal/content"
	"github.com/nabilh/coursepilot/internal/db"
	"github.com/nabilh/coursepilot/internal/documents"
	"github.com/nabilh/coursepilot/internal/rag"
	"github.com/nabilh/coursepilot/internal/sessions"
	"github.com/nabilh/coursepilot/internal/vectordb"
)

// Config holds server configuration.
type Config struct {
	Port      int
	UploadDir string // directory for raw uploaded files
	AllowAll  bool   // allow all CORS origins (dev mode)
}

// Deps are the wired feature collaborators. Any nil member disables its
// routes, which the tests use to bring up partial servers.
type Deps struct {
	Documents *documents.Store
	Pipeline  documents.Pipeline
	Engine    *rag.Engine
	Sessions  *sessions.Store
	Generator *content.Generator
	Content   *content.Store
	Index     vectordb.Store
}

// Server is the coursepilot HTTP server.
type Server struct {
	cfg        Config
	db         *db.DB
	deps       Deps
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies wired.
func New(cfg Config, database *db.DB, deps Deps) *Server {
	s := &Server{
		cfg:  cfg,
		db:   database,
		deps: deps,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)

	if s.deps.Documents != nil && s.deps.Pipeline != nil {
		documents.RegisterRoutes(r, s.deps.Documents, s.deps.Pipeline, s.cfg.UploadDir)
	}
	if s.deps.Engine != nil {
		var recorder rag.Recorder
		if s.deps.Sessions != nil {
			recorder = s.deps.Sessions
		}
		rag.RegisterRoutes(r, s.deps.Engine, recorder)
	}
	if s.deps.Sessions != nil {
		sessions.RegisterRoutes(r, s.deps.Sessions)
	}
	if s.deps.Generator != nil && s.deps.Content != nil {
		content.RegisterRoutes(r, s.deps.Generator, s.deps.Content)
	}

	return r
}

// handleHealth reports store reachability and index size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{"status": "ok"}

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			health["status"] = "degraded"
			health["database"] = "unavailable"
		} else {
			health["database"] = "operational"
		}
	}
	if s.deps.Index != nil {
		health["chunks"] = s.deps.Index.Count()
	}
	if s.deps.Documents != nil {
		if stats, err := s.deps.Documents.Stats(r.Context()); err == nil {
			health["documents"] = stats.Total
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if health["status"] != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("coursepilot server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
