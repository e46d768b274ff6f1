package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"docqa/internal/config"
	"docqa/internal/models"
)

const (
	answerSystemPrompt  = "You are a helpful assistant that answers questions based on provided context."
	summarySystemPrompt = "You are a helpful assistant that creates concise summaries."
	summaryInputLimit   = 1000
)

// llmGenerator backs the Generator interface with a langchaingo chat model.
type llmGenerator struct {
	model llms.Model
	kind  string
}

// NewOpenAIGenerator targets an OpenAI-compatible chat endpoint.
func NewOpenAIGenerator(llmConfig *config.LLMConfig) (Generator, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return &llmGenerator{model: llm, kind: "openai"}, nil
}

// NewOllamaGenerator targets a local Ollama server.
func NewOllamaGenerator(llmConfig *config.LLMConfig) (Generator, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return &llmGenerator{model: llm, kind: "ollama"}, nil
}

func (g *llmGenerator) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextText, question)
	return g.generate(ctx, answerSystemPrompt, prompt)
}

func (g *llmGenerator) Summarize(ctx context.Context, text string) (string, error) {
	if len(text) > summaryInputLimit {
		text = text[:summaryInputLimit] + "..."
	}
	prompt := fmt.Sprintf(models.SummaryPromptTemplate, text)
	return g.generate(ctx, summarySystemPrompt, prompt)
}

func (g *llmGenerator) Kind() string { return g.kind }

func (g *llmGenerator) generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: system}},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := g.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return strings.TrimSpace(res.Choices[0].Content), nil
}
