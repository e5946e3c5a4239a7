package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.ChunkSize != 1000 {
		t.Errorf("expected default chunk_size 1000, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("expected default chunk_overlap 200, got %d", cfg.ChunkOverlap)
	}
	if cfg.DataDir != ".coursepilot" {
		t.Errorf("expected default data_dir %q, got %q", ".coursepilot", cfg.DataDir)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.coursepilot.yml")

	original := DefaultConfig()
	original.Provider = ProviderOllama
	original.Model = "llama3"
	original.EmbeddingProvider = ProviderOllama
	original.EmbeddingModel = "nomic-embed-text"
	original.ChunkSize = 800
	original.ChunkOverlap = 100
	original.DataDir = "coursedata"
	original.Port = 9090

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.EmbeddingModel != original.EmbeddingModel {
		t.Errorf("embedding_model: got %q, want %q", loaded.EmbeddingModel, original.EmbeddingModel)
	}
	if loaded.ChunkSize != original.ChunkSize {
		t.Errorf("chunk_size: got %d, want %d", loaded.ChunkSize, original.ChunkSize)
	}
	if loaded.ChunkOverlap != original.ChunkOverlap {
		t.Errorf("chunk_overlap: got %d, want %d", loaded.ChunkOverlap, original.ChunkOverlap)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("COURSEPILOT_PROVIDER", "ollama")
	os.Setenv("COURSEPILOT_CHUNK_SIZE", "500")
	defer os.Unsetenv("COURSEPILOT_PROVIDER")
	defer os.Unsetenv("COURSEPILOT_CHUNK_SIZE")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOllama)
	}
	if loaded.ChunkSize != 500 {
		t.Errorf("env override failed: chunk_size got %d, want 500", loaded.ChunkSize)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalidProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid provider")
	}
}

func TestValidateEmptyModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty model")
	}
}

func TestValidateChunkBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero chunk_size")
	}

	cfg = DefaultConfig()
	cfg.ChunkOverlap = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for negative chunk_overlap")
	}

	cfg = DefaultConfig()
	cfg.ChunkOverlap = cfg.ChunkSize
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for overlap >= size")
	}
}

func TestValidateEmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty data_dir")
	}
}

func TestValidatePortBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for port 0")
	}

	cfg = DefaultConfig()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestDataDirPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "data"

	if got := cfg.DatabasePath(); got != filepath.Join("data", "coursepilot.db") {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := cfg.UploadsDir(); got != filepath.Join("data", "uploads") {
		t.Errorf("UploadsDir = %q", got)
	}
	if got := cfg.IndexDir(); got != filepath.Join("data", "index") {
		t.Errorf("IndexDir = %q", got)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderOllama)
	if p.Model != "llama3" {
		t.Errorf("expected llama3, got %q", p.Model)
	}

	// Unknown provider falls back.
	p = GetPreset("unknown")
	if p.Model != "gpt-4o-mini" {
		t.Errorf("expected fallback to gpt-4o-mini, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("APIKeyEnvVar(ollama) = %q, want empty", got)
	}
}
