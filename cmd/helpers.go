package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nabilh/coursepilot/internal/config"
	"github.com/nabilh/coursepilot/internal/content"
	"github.com/nabilh/coursepilot/internal/db"
	"github.com/nabilh/coursepilot/internal/documents"
	"github.com/nabilh/coursepilot/internal/embeddings"
	"github.com/nabilh/coursepilot/internal/extract"
	"github.com/nabilh/coursepilot/internal/ingest"
	"github.com/nabilh/coursepilot/internal/llm"
	"github.com/nabilh/coursepilot/internal/rag"
	"github.com/nabilh/coursepilot/internal/sessions"
	"github.com/nabilh/coursepilot/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `coursepilot init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	}
}

// createProviderFromConfig creates the generative provider, rate limited if
// configured.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	return provider, nil
}

// app bundles the wired collaborators shared by the CLI commands and the
// server.
type app struct {
	cfg       *config.Config
	db        *db.DB
	index     *vectordb.ChromemStore
	docs      *documents.Store
	orch      *ingest.Orchestrator
	engine    *rag.Engine
	sessions  *sessions.Store
	contents  *content.Store
	generator *content.Generator
}

// newApp opens the stores and wires the pipeline and query engine from the
// given config. The vector index is loaded from disk when a persisted copy
// exists.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	index, err := vectordb.NewChromemStore(embeddings.ToChromemFunc(embedder))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	if _, err := os.Stat(cfg.IndexDir()); err == nil {
		if err := index.Load(ctx, cfg.IndexDir()); err != nil {
			log.Printf("could not load vector index from %s: %v", cfg.IndexDir(), err)
		}
	}

	docs := documents.NewStore(database)
	chunker := ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	orch := ingest.NewOrchestrator(docs, &extract.PDF{}, chunker, embedder, index)

	retriever := rag.NewRetriever(embedder, index)
	composer := rag.NewComposer(provider, cfg.Model)
	engine := rag.NewEngine(retriever, composer)

	contents := content.NewStore(database)
	generator := content.NewGenerator(provider, cfg.Model, retriever, contents)

	return &app{
		cfg:       cfg,
		db:        database,
		index:     index,
		docs:      docs,
		orch:      orch,
		engine:    engine,
		sessions:  sessions.NewStore(database),
		contents:  contents,
		generator: generator,
	}, nil
}

// persistIndex writes the vector index to the data directory.
func (a *app) persistIndex(ctx context.Context) error {
	return a.index.Persist(ctx, a.cfg.IndexDir())
}

func (a *app) Close() {
	a.db.Close()
}
