// Package ingest runs the document pipeline: validate, save, extract,
// chunk, embed, index. Each stage has a time budget; any failure rolls back
// partial artifacts so no orphaned state remains.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/docstore"
	"docqa/internal/extract"
	"docqa/internal/helper"
	"docqa/internal/models"
	"docqa/internal/vectorindex"
)

type Service struct {
	store   docstore.Store
	index   *vectorindex.Index
	chunker *chunker.Chunker
	cfg     *config.Config
}

func NewService(store docstore.Store, index *vectorindex.Index, cfg *config.Config) *Service {
	return &Service{
		store:   store,
		index:   index,
		chunker: chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		cfg:     cfg,
	}
}

// IngestFile validates and ingests one file from disk. The stored copy,
// document record, chunk records and index entries either all exist after
// return or none do.
func (s *Service) IngestFile(ctx context.Context, srcPath string) (*models.Document, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !s.extensionAllowed(ext) {
		return nil, fmt.Errorf("%w: file type %s not allowed (allowed: %v)",
			models.ErrValidation, ext, s.cfg.Upload.AllowedExtensions)
	}
	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > s.cfg.Upload.MaxFileSize {
		return nil, fmt.Errorf("%w: file size %d exceeds maximum %d",
			models.ErrValidation, info.Size(), s.cfg.Upload.MaxFileSize)
	}

	storedPath, err := s.saveUpload(ctx, srcPath, ext)
	if err != nil {
		return nil, err
	}

	var text string
	err = runStage(ctx, "extract", s.cfg.ExtractTimeout(), func(context.Context) error {
		var exErr error
		text, exErr = extract.Text(storedPath)
		return exErr
	})
	if err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	doc := &models.Document{
		Filename:         filepath.Base(storedPath),
		OriginalFilename: filepath.Base(srcPath),
		FilePath:         storedPath,
		FileSize:         info.Size(),
		FileType:         ext,
		IsActive:         true,
	}
	if err := s.ingestText(ctx, doc, text); err != nil {
		os.Remove(storedPath)
		return nil, err
	}
	return doc, nil
}

// IngestText ingests already-extracted text under a display name, for
// callers that handle file transport themselves.
func (s *Service) IngestText(ctx context.Context, displayName, text string) (*models.Document, error) {
	doc := &models.Document{
		OriginalFilename: displayName,
		FileType:         ".txt",
		FileSize:         int64(len(text)),
		IsActive:         true,
	}
	if err := s.ingestText(ctx, doc, text); err != nil {
		return nil, err
	}
	return doc, nil
}

// ingestText chunks, records and indexes the text for doc, creating the
// document record and rolling everything back on failure.
func (s *Service) ingestText(ctx context.Context, doc *models.Document, text string) error {
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	segments := s.chunker.SplitText(text)
	chunks := make([]models.Chunk, len(segments))
	texts := make([]string, len(segments))
	ids := make([]string, len(segments))
	for i, seg := range segments {
		chunks[i] = models.Chunk{
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    seg.Text,
			StartChar:  seg.Start,
			EndChar:    seg.End,
		}
		texts[i] = seg.Text
		ids[i] = chunks[i].EmbeddingID()
	}

	if err := s.store.CreateChunks(ctx, chunks); err != nil {
		s.rollback(ctx, doc.ID, nil)
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	err := runStage(ctx, "embed", s.cfg.EmbedTimeout(), func(stageCtx context.Context) error {
		_, addErr := s.index.Add(stageCtx, texts, ids)
		return addErr
	})
	if err != nil {
		// The add may still commit after a stage timeout; scrub the ids
		// so the index never references rolled-back chunks.
		s.rollback(ctx, doc.ID, ids)
		return err
	}

	doc.ChunkCount = len(chunks)
	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		s.rollback(ctx, doc.ID, ids)
		return fmt.Errorf("failed to update document: %w", err)
	}

	log.Info().Int64("document_id", doc.ID).Int("chunks", len(chunks)).
		Str("name", doc.OriginalFilename).Msg("ingested document")
	return nil
}

// DeleteDocument removes a document's embeddings, records and stored file.
func (s *Service) DeleteDocument(ctx context.Context, documentID int64) error {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	chunks, err := s.store.ChunksByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.EmbeddingID()
	}
	if err := s.index.Remove(ctx, ids); err != nil {
		return fmt.Errorf("failed to remove embeddings: %w", err)
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", doc.FilePath).Msg("failed to remove stored file")
		}
	}
	log.Info().Int64("document_id", documentID).Msg("deleted document")
	return nil
}

// saveUpload copies the source file into the upload dir under a uuid name.
func (s *Service) saveUpload(ctx context.Context, srcPath, ext string) (string, error) {
	if err := helper.CreateFolder(s.cfg.Upload.Dir); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return "", err
	}
	dstPath := filepath.Join(s.cfg.Upload.Dir, id+ext)

	err = runStage(ctx, "upload", s.cfg.UploadTimeout(), func(context.Context) error {
		src, err := os.Open(srcPath)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := os.Create(dstPath)
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			return err
		}
		return dst.Close()
	})
	if err != nil {
		os.Remove(dstPath)
		return "", err
	}
	return dstPath, nil
}

// rollback undoes partial ingestion state. Cleanup failures are logged, not
// returned, so the original error stays visible.
func (s *Service) rollback(ctx context.Context, documentID int64, ids []string) {
	if len(ids) > 0 {
		if err := s.index.Remove(ctx, ids); err != nil {
			log.Warn().Err(err).Int64("document_id", documentID).Msg("rollback: failed to scrub index")
		}
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil && !errors.Is(err, models.ErrNotFound) {
		log.Warn().Err(err).Int64("document_id", documentID).Msg("rollback: failed to delete document")
	}
}

func (s *Service) extensionAllowed(ext string) bool {
	for _, allowed := range s.cfg.Upload.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// runStage executes fn under a stage budget. A blown budget surfaces as a
// timeout regardless of whether fn observed the cancellation; fn keeps
// running in the background and its effects are the caller's to clean up.
func runStage(ctx context.Context, name string, budget time.Duration, fn func(context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(stageCtx) }()

	select {
	case err := <-done:
		if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			return fmt.Errorf("%w: %s stage exceeded %s", models.ErrTimeout, name, budget)
		}
		return err
	case <-stageCtx.Done():
		return fmt.Errorf("%w: %s stage exceeded %s", models.ErrTimeout, name, budget)
	}
}
