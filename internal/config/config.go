package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig points at one provider endpoint, used for both embedding and
// generation backends.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama" or "stub"
	BaseURL   string `yaml:"base_url"`
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"` // embedding vector size
}

// RAGConfig tunes chunking and retrieval.
type RAGConfig struct {
	ChunkSize     int     `yaml:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap"`
	ChunkMinSize  int     `yaml:"chunk_min_size"`
	TopK          int     `yaml:"top_k"`
	MinSimilarity float32 `yaml:"min_similarity"`
	// FallbackTopN results are kept when similarity filtering removes
	// everything. A heuristic carried over from the source system.
	FallbackTopN    int `yaml:"fallback_top_n"`
	MinAnswerLength int `yaml:"min_answer_length"`
}

// IndexConfig locates the persisted vector index artifacts.
type IndexConfig struct {
	Path string `yaml:"path"` // path prefix for .index and _ids.json
}

// UploadConfig bounds document ingestion input.
type UploadConfig struct {
	Dir               string   `yaml:"dir"`
	MaxFileSize       int64    `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// TimeoutConfig sets per-stage budgets (seconds) for the ingestion pipeline.
type TimeoutConfig struct {
	UploadSecs  int `yaml:"upload_secs"`
	ExtractSecs int `yaml:"extract_secs"`
	EmbedSecs   int `yaml:"embed_secs"`
}

// DatabaseConfig connects the optional Postgres document store.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	GenLLM   LLMConfig      `yaml:"gen_llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Index    IndexConfig    `yaml:"index"`
	Upload   UploadConfig   `yaml:"upload"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// LoadConfig reads a yaml config file and applies defaults to anything
// left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a config with every field at its default value.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields in place.
func (c *Config) ApplyDefaults() {
	if c.EmbedLLM.Provider == "" {
		c.EmbedLLM.Provider = "ollama"
	}
	if c.EmbedLLM.Model == "" {
		c.EmbedLLM.Model = "nomic-embed-text"
	}
	if c.EmbedLLM.Dimension <= 0 {
		c.EmbedLLM.Dimension = 768
	}
	if c.GenLLM.Provider == "" {
		c.GenLLM.Provider = "stub"
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.ChunkMinSize <= 0 {
		c.RAG.ChunkMinSize = 50
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.MinSimilarity == 0 {
		c.RAG.MinSimilarity = 0.1
	}
	if c.RAG.FallbackTopN <= 0 {
		c.RAG.FallbackTopN = 2
	}
	if c.RAG.MinAnswerLength <= 0 {
		c.RAG.MinAnswerLength = 10
	}
	if c.Index.Path == "" {
		c.Index.Path = "models/vector_index"
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "uploads"
	}
	if c.Upload.MaxFileSize <= 0 {
		c.Upload.MaxFileSize = 10 * 1024 * 1024
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{".pdf", ".txt", ".md", ".docx", ".pptx", ".xlsx", ".ods"}
	}
	if c.Timeouts.UploadSecs <= 0 {
		c.Timeouts.UploadSecs = 30
	}
	if c.Timeouts.ExtractSecs <= 0 {
		c.Timeouts.ExtractSecs = 60
	}
	if c.Timeouts.EmbedSecs <= 0 {
		c.Timeouts.EmbedSecs = 120
	}
}

// UploadTimeout returns the upload stage budget.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Timeouts.UploadSecs) * time.Second
}

// ExtractTimeout returns the extraction stage budget.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Timeouts.ExtractSecs) * time.Second
}

// EmbedTimeout returns the embed+index stage budget.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.Timeouts.EmbedSecs) * time.Second
}
