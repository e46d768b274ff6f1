package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/docstore"
	"docqa/internal/embedding"
	"docqa/internal/models"
	"docqa/internal/vectorindex"
)

func newTestService(t *testing.T, embedder embedding.Embedder) (*Service, *docstore.MemoryStore, *vectorindex.Index) {
	t.Helper()
	cfg := config.Default()
	cfg.Upload.Dir = t.TempDir()
	cfg.RAG.ChunkSize = 200
	cfg.RAG.ChunkOverlap = 50

	store := docstore.NewMemoryStore()
	index, err := vectorindex.New(embedder, "")
	require.NoError(t, err)
	return NewService(store, index, cfg), store, index
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngestFileEndToEnd(t *testing.T) {
	svc, store, index := newTestService(t, embedding.NewMockEmbedder(64))
	ctx := context.Background()

	path := writeTempFile(t, "geo.txt", "Paris is the capital of France. Berlin is the capital of Germany.")
	doc, err := svc.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "geo.txt", doc.OriginalFilename)
	assert.Greater(t, doc.ChunkCount, 0)
	assert.FileExists(t, doc.FilePath)

	chunks, err := store.ChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, doc.ChunkCount)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
	}
	assert.Equal(t, doc.ChunkCount, index.Size())
}

func TestIngestFileRejectsUnknownExtension(t *testing.T) {
	svc, store, index := newTestService(t, embedding.NewMockEmbedder(64))
	ctx := context.Background()

	path := writeTempFile(t, "binary.exe", "not a document")
	_, err := svc.IngestFile(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)

	total, _, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, index.Size())
}

func TestIngestFileRejectsOversizedFile(t *testing.T) {
	svc, _, _ := newTestService(t, embedding.NewMockEmbedder(64))
	svc.cfg.Upload.MaxFileSize = 8

	path := writeTempFile(t, "big.txt", "this file is larger than eight bytes")
	_, err := svc.IngestFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

type failingEmbedder struct{ dimension int }

func (f *failingEmbedder) EmbedDocuments(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding backend down")
}
func (f *failingEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding backend down")
}
func (f *failingEmbedder) Dimension() int { return f.dimension }
func (f *failingEmbedder) Kind() string   { return "failing" }

func TestIngestRollsBackOnEmbeddingFailure(t *testing.T) {
	svc, store, index := newTestService(t, &failingEmbedder{dimension: 64})
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "Some sentence. Another sentence.")
	_, err := svc.IngestFile(ctx, path)
	require.Error(t, err)

	total, _, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	chunks, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, chunks)
	assert.Equal(t, 0, index.Size())

	// The stored upload copy must not linger either.
	entries, err := os.ReadDir(svc.cfg.Upload.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteDocumentRemovesEverything(t *testing.T) {
	svc, store, index := newTestService(t, embedding.NewMockEmbedder(64))
	ctx := context.Background()

	path := writeTempFile(t, "doc.txt", "Paris is the capital of France.")
	doc, err := svc.IngestFile(ctx, path)
	require.NoError(t, err)
	require.Greater(t, index.Size(), 0)

	require.NoError(t, svc.DeleteDocument(ctx, doc.ID))
	assert.Equal(t, 0, index.Size())
	_, err = store.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoFileExists(t, doc.FilePath)
}

func TestDeleteDocumentUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t, embedding.NewMockEmbedder(64))
	err := svc.DeleteDocument(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIngestTextSkipsFileStages(t *testing.T) {
	svc, store, _ := newTestService(t, embedding.NewMockEmbedder(64))
	ctx := context.Background()

	doc, err := svc.IngestText(ctx, "inline.txt", "Paris is the capital of France.")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.ChunkCount)

	chunk, name, err := store.ResolveChunk(ctx, doc.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "inline.txt", name)
	assert.Equal(t, "Paris is the capital of France.", chunk.Content)
}

func TestRunStageTimeout(t *testing.T) {
	err := runStage(context.Background(), "slow", 10*time.Millisecond, func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTimeout)
}

func TestRunStagePropagatesDeadline(t *testing.T) {
	err := runStage(context.Background(), "ctx-aware", 10*time.Millisecond, func(stageCtx context.Context) error {
		<-stageCtx.Done()
		return stageCtx.Err()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTimeout)
}
