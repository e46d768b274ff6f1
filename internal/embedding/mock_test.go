package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
)

var testLLMConfig = config.LLMConfig{Provider: "mock", Dimension: 128}

func TestMockEmbedderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder(64)

	a, err := m.EmbedQuery(ctx, "same text")
	require.NoError(t, err)
	b, err := m.EmbedQuery(ctx, "same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := m.EmbedQuery(ctx, "different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestMockEmbedderDimensions(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder(0) // falls back to 384
	assert.Equal(t, 384, m.Dimension())

	vectors, err := m.EmbedDocuments(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 384)
	assert.Len(t, vectors[1], 384)
}

func TestNewFromConfigMockProvider(t *testing.T) {
	embedder := NewFromConfig(&testLLMConfig)
	assert.Equal(t, "mock", embedder.Kind())
	assert.Equal(t, 128, embedder.Dimension())
}
