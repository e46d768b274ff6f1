package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"docqa/internal/models"
)

// MemoryStore is a map-backed Store for tests and single-process setups
// without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]models.Document
	chunks map[int64][]models.Chunk // keyed by document id, ordered by chunk index
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		docs:   make(map[int64]models.Document),
		chunks: make(map[int64][]models.Chunk),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.ID = s.nextID
	s.nextID++
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id int64) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, models.ErrNotFound)
	}
	return &doc, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(a, b int) bool { return docs[a].ID < docs[b].ID })
	return docs, nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		return fmt.Errorf("document %d: %w", doc.ID, models.ErrNotFound)
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("document %d: %w", id, models.ErrNotFound)
	}
	delete(s.docs, id)
	delete(s.chunks, id)
	return nil
}

func (s *MemoryStore) CreateChunks(_ context.Context, chunks []models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.DocumentID] = append(s.chunks[chunk.DocumentID], chunk)
	}
	return nil
}

func (s *MemoryStore) ChunksByDocument(_ context.Context, documentID int64) ([]models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := append([]models.Chunk{}, s.chunks[documentID]...)
	sort.Slice(chunks, func(a, b int) bool { return chunks[a].ChunkIndex < chunks[b].ChunkIndex })
	return chunks, nil
}

func (s *MemoryStore) ResolveChunk(_ context.Context, documentID int64, chunkIndex int) (*models.Chunk, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, "", fmt.Errorf("document %d: %w", documentID, models.ErrNotFound)
	}
	for _, chunk := range s.chunks[documentID] {
		if chunk.ChunkIndex == chunkIndex {
			c := chunk
			return &c, doc.OriginalFilename, nil
		}
	}
	return nil, "", fmt.Errorf("chunk %d_%d: %w", documentID, chunkIndex, models.ErrNotFound)
}

func (s *MemoryStore) CountDocuments(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := 0
	for _, doc := range s.docs {
		if doc.IsActive {
			active++
		}
	}
	return len(s.docs), active, nil
}

func (s *MemoryStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, chunks := range s.chunks {
		total += len(chunks)
	}
	return total, nil
}
