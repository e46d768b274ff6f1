// Package generator provides the pluggable answer-generation capability:
// a primary provider with a deterministic stub fallback, selected once at
// configuration time.
package generator

import (
	"context"

	"github.com/rs/zerolog/log"

	"docqa/internal/config"
)

// Generator produces answers and summaries. Implementations must not fail
// permanently: providers fall back to the stub on error.
type Generator interface {
	GenerateAnswer(ctx context.Context, question, contextText string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	Kind() string
}

// withFallback shields callers from provider failure by degrading to the
// always-available stub.
type withFallback struct {
	primary Generator
	stub    *Stub
}

func (g *withFallback) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	answer, err := g.primary.GenerateAnswer(ctx, question, contextText)
	if err != nil {
		log.Warn().Err(err).Str("provider", g.primary.Kind()).
			Msg("answer generation failed, falling back to stub")
		return g.stub.GenerateAnswer(ctx, question, contextText)
	}
	return answer, nil
}

func (g *withFallback) Summarize(ctx context.Context, text string) (string, error) {
	summary, err := g.primary.Summarize(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("provider", g.primary.Kind()).
			Msg("summary generation failed, falling back to stub")
		return g.stub.Summarize(ctx, text)
	}
	return summary, nil
}

func (g *withFallback) Kind() string { return g.primary.Kind() }

// NewFromConfig selects the configured provider. Anything other than a
// working LLM endpoint yields the stub, so a Generator is always usable.
func NewFromConfig(llmConfig *config.LLMConfig) Generator {
	var (
		primary Generator
		err     error
	)
	switch llmConfig.Provider {
	case "openai":
		primary, err = NewOpenAIGenerator(llmConfig)
	case "ollama":
		primary, err = NewOllamaGenerator(llmConfig)
	default:
		return NewStub()
	}
	if err != nil {
		log.Warn().Err(err).Str("provider", llmConfig.Provider).
			Msg("generation backend unavailable, using stub answers")
		return NewStub()
	}
	return &withFallback{primary: primary, stub: NewStub()}
}
