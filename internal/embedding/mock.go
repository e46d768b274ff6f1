package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// MockEmbedder produces deterministic pseudo-random vectors seeded from the
// text itself, so identical texts always embed identically. It keeps the
// system runnable without an embedding backend; results are dimensionally
// valid but carry no semantic meaning.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &MockEmbedder{dimension: dimension}
}

func (m *MockEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embed(text)
	}
	return vectors, nil
}

func (m *MockEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return m.embed(text), nil
}

func (m *MockEmbedder) Dimension() int { return m.dimension }

func (m *MockEmbedder) Kind() string { return "mock" }

func (m *MockEmbedder) embed(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	vec := make([]float32, m.dimension)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec
}
