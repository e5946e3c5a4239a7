package config

import "path/filepath"

// ProviderType identifies a model provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level coursepilot configuration, corresponding to
// .coursepilot.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	ChunkSize         int          `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap      int          `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	Port              int          `yaml:"port" koanf:"port"`
	CORSAllowAll      bool         `yaml:"cors_allow_all" koanf:"cors_allow_all"`
	RateLimitRPM      int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}

// DatabasePath is the SQLite database file under the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "coursepilot.db")
}

// UploadsDir holds the raw uploaded files, kept for resubmission.
func (c *Config) UploadsDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// IndexDir holds the persisted vector index.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}
