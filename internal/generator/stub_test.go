package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/models"
)

func TestStubAnswerFromContext(t *testing.T) {
	stub := NewStub()
	contextText := "Source 1 (from doc.txt):\nParis is the capital of France.\nIt is a large city.\n"

	answer, err := stub.GenerateAnswer(context.Background(), "What is the capital of France?", contextText)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer, models.StubAnswerPrefix))
	assert.Contains(t, answer, "Paris is the capital of France.")
	assert.NotContains(t, answer, "Source 1")
}

func TestStubAnswerUsesAtMostThreeLines(t *testing.T) {
	stub := NewStub()
	contextText := "one\ntwo\nthree\nfour\nfive"

	answer, err := stub.GenerateAnswer(context.Background(), "q", contextText)
	require.NoError(t, err)
	assert.Contains(t, answer, "three")
	assert.NotContains(t, answer, "four")
}

func TestStubAnswerEmptyContext(t *testing.T) {
	stub := NewStub()

	answer, err := stub.GenerateAnswer(context.Background(), "q", "   ")
	require.NoError(t, err)
	assert.Equal(t, models.InsufficientAnswer, answer)

	answer, err = stub.GenerateAnswer(context.Background(), "q", "Source 1 (from doc.txt):\n")
	require.NoError(t, err)
	assert.Equal(t, models.InsufficientAnswer, answer)
}

func TestStubSummarize(t *testing.T) {
	stub := NewStub()

	short, err := stub.Summarize(context.Background(), "short text")
	require.NoError(t, err)
	assert.Equal(t, "short text", short)

	long, err := stub.Summarize(context.Background(), strings.Repeat("a", 250))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 100)+"...", long)
}

func TestNewFromConfigDefaultsToStub(t *testing.T) {
	gen := NewFromConfig(&config.LLMConfig{Provider: "stub"})
	assert.Equal(t, "stub", gen.Kind())

	gen = NewFromConfig(&config.LLMConfig{})
	assert.Equal(t, "stub", gen.Kind())
}
