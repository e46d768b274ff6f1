package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingIDRoundTrip(t *testing.T) {
	chunk := Chunk{DocumentID: 42, ChunkIndex: 7}
	id := chunk.EmbeddingID()
	assert.Equal(t, "42_7", id)

	docID, chunkIndex, err := ParseEmbeddingID(id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), docID)
	assert.Equal(t, 7, chunkIndex)
}

func TestParseEmbeddingIDMalformed(t *testing.T) {
	for _, id := range []string{"", "noseparator", "a_b", "_", "12_", "_3"} {
		_, _, err := ParseEmbeddingID(id)
		assert.Error(t, err, "id %q", id)
	}
}
