// Package docstore owns document and chunk records. The retrieval core only
// reads chunks through this interface; ingestion writes them.
package docstore

import (
	"context"

	"docqa/internal/models"
)

// Store is the document-storage collaborator consumed by the QA pipeline.
type Store interface {
	// CreateDocument inserts a document record and assigns its ID.
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, id int64) error

	CreateChunks(ctx context.Context, chunks []models.Chunk) error
	ChunksByDocument(ctx context.Context, documentID int64) ([]models.Chunk, error)
	// ResolveChunk returns one chunk plus the owning document's display
	// name, the lookup the orchestrator performs per search hit.
	ResolveChunk(ctx context.Context, documentID int64, chunkIndex int) (*models.Chunk, string, error)

	// CountDocuments returns total and active document counts.
	CountDocuments(ctx context.Context) (total int, active int, err error)
	CountChunks(ctx context.Context) (int, error)
}
