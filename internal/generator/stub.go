package generator

import (
	"context"
	"strings"

	"docqa/internal/models"
)

// Stub is the deterministic, offline generator. It is pure and always
// available, used both standalone and as the fallback for real providers.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

// GenerateAnswer templates an answer from the first few non-empty,
// non-label lines of the context.
func (s *Stub) GenerateAnswer(_ context.Context, _ string, contextText string) (string, error) {
	if strings.TrimSpace(contextText) == "" {
		return models.InsufficientAnswer, nil
	}

	var relevant []string
	for _, line := range strings.Split(contextText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Source") {
			continue
		}
		relevant = append(relevant, line)
	}
	if len(relevant) == 0 {
		return models.InsufficientAnswer, nil
	}
	if len(relevant) > 3 {
		relevant = relevant[:3]
	}
	return models.StubAnswerPrefix + " " + strings.Join(relevant, " "), nil
}

// Summarize truncates to the first 100 characters.
func (s *Stub) Summarize(_ context.Context, text string) (string, error) {
	if len(text) > 100 {
		return text[:100] + "...", nil
	}
	return text, nil
}

func (s *Stub) Kind() string { return "stub" }
