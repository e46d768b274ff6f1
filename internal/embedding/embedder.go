package embedding

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"docqa/internal/config"
)

// Embedder turns text into fixed-length vectors. Vectors are returned raw;
// normalization is the index's concern.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Kind() string
}

// llmEmbedder backs the Embedder interface with a langchaingo embedder.
type llmEmbedder struct {
	impl      *embeddings.EmbedderImpl
	dimension int
	kind      string
}

func (e *llmEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.impl.EmbedDocuments(ctx, texts)
}

func (e *llmEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.impl.EmbedQuery(ctx, text)
}

func (e *llmEmbedder) Dimension() int { return e.dimension }

func (e *llmEmbedder) Kind() string { return e.kind }

// NewOpenAIEmbedder builds an embedder against an OpenAI-compatible endpoint.
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithEmbeddingModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &llmEmbedder{impl: embedder, dimension: llmConfig.Dimension, kind: "openai"}, nil
}

// NewOllamaEmbedder builds an embedder against a local Ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &llmEmbedder{impl: embedder, dimension: llmConfig.Dimension, kind: "ollama"}, nil
}

// NewFromConfig selects the configured backend, degrading to deterministic
// mock embeddings when the backend cannot be constructed so callers never
// special-case backend absence.
func NewFromConfig(llmConfig *config.LLMConfig) Embedder {
	var (
		embedder Embedder
		err      error
	)
	switch llmConfig.Provider {
	case "openai":
		embedder, err = NewOpenAIEmbedder(llmConfig)
	case "mock":
		return NewMockEmbedder(llmConfig.Dimension)
	default:
		embedder, err = NewOllamaEmbedder(llmConfig)
	}
	if err != nil {
		log.Warn().Err(err).Str("provider", llmConfig.Provider).
			Msg("embedding backend unavailable, using mock embeddings")
		return NewMockEmbedder(llmConfig.Dimension)
	}
	return embedder
}
