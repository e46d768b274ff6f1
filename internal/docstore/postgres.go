package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"docqa/internal/config"
	"docqa/internal/models"
)

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID               int64     `bun:"id,pk,autoincrement"`
	Filename         string    `bun:"filename,notnull"`
	OriginalFilename string    `bun:"original_filename,notnull"`
	FilePath         string    `bun:"file_path,notnull"`
	FileSize         int64     `bun:"file_size,notnull"`
	FileType         string    `bun:"file_type,notnull"`
	ChunkCount       int       `bun:"chunk_count,notnull,default:0"`
	IsActive         bool      `bun:"is_active,notnull,default:true"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type chunkRow struct {
	bun.BaseModel `bun:"table:document_chunks,alias:c"`

	ID         int64  `bun:"id,pk,autoincrement"`
	DocumentID int64  `bun:"document_id,notnull"`
	ChunkIndex int    `bun:"chunk_index,notnull"`
	Content    string `bun:"content,notnull"`
	StartChar  int    `bun:"start_char,notnull"`
	EndChar    int    `bun:"end_char,notnull"`
}

// PostgresStore implements Store on Postgres via bun.
type PostgresStore struct {
	db *bun.DB
}

// ConnectDB opens the configured Postgres database.
func ConnectDB(dbConfig *config.DatabaseConfig) (*sql.DB, error) {
	dsn := dbConfig.URL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(dbConfig.Password))), nil
}

// NewPostgresStore wraps a database handle, optionally logging queries.
func NewPostgresStore(sqldb *sql.DB, debug bool) *PostgresStore {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresStore{db: db}
}

// Init creates the documents and chunks tables if they do not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*documentRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*chunkRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create chunks table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	row := docToRow(doc)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	doc.ID = row.ID
	doc.CreatedAt = row.CreatedAt
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	row := new(documentRow)
	err := s.db.NewSelect().Model(row).Where("d.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return rowToDoc(row), nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var rows []documentRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	docs := make([]models.Document, len(rows))
	for i := range rows {
		docs[i] = *rowToDoc(&rows[i])
	}
	return docs, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, doc *models.Document) error {
	row := docToRow(doc)
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %d: %w", doc.ID, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id int64) error {
	if _, err := s.db.NewDelete().Model((*chunkRow)(nil)).Where("document_id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	res, err := s.db.NewDelete().Model((*documentRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]chunkRow, len(chunks))
	for i, chunk := range chunks {
		rows[i] = chunkRow{
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			StartChar:  chunk.StartChar,
			EndChar:    chunk.EndChar,
		}
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

func (s *PostgresStore) ChunksByDocument(ctx context.Context, documentID int64) ([]models.Chunk, error) {
	var rows []chunkRow
	err := s.db.NewSelect().Model(&rows).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	chunks := make([]models.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = models.Chunk{
			DocumentID: row.DocumentID,
			ChunkIndex: row.ChunkIndex,
			Content:    row.Content,
			StartChar:  row.StartChar,
			EndChar:    row.EndChar,
		}
	}
	return chunks, nil
}

func (s *PostgresStore) ResolveChunk(ctx context.Context, documentID int64, chunkIndex int) (*models.Chunk, string, error) {
	row := new(chunkRow)
	err := s.db.NewSelect().Model(row).
		Where("document_id = ? AND chunk_index = ?", documentID, chunkIndex).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("chunk %d_%d: %w", documentID, chunkIndex, models.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load chunk: %w", err)
	}

	var name string
	err = s.db.NewSelect().Model((*documentRow)(nil)).
		Column("original_filename").
		Where("id = ?", documentID).
		Scan(ctx, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("document %d: %w", documentID, models.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load document name: %w", err)
	}

	return &models.Chunk{
		DocumentID: row.DocumentID,
		ChunkIndex: row.ChunkIndex,
		Content:    row.Content,
		StartChar:  row.StartChar,
		EndChar:    row.EndChar,
	}, name, nil
}

func (s *PostgresStore) CountDocuments(ctx context.Context) (int, int, error) {
	total, err := s.db.NewSelect().Model((*documentRow)(nil)).Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count documents: %w", err)
	}
	active, err := s.db.NewSelect().Model((*documentRow)(nil)).Where("is_active = TRUE").Count(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active documents: %w", err)
	}
	return total, active, nil
}

func (s *PostgresStore) CountChunks(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*chunkRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

func docToRow(doc *models.Document) *documentRow {
	return &documentRow{
		ID:               doc.ID,
		Filename:         doc.Filename,
		OriginalFilename: doc.OriginalFilename,
		FilePath:         doc.FilePath,
		FileSize:         doc.FileSize,
		FileType:         doc.FileType,
		ChunkCount:       doc.ChunkCount,
		IsActive:         doc.IsActive,
		CreatedAt:        doc.CreatedAt,
	}
}

func rowToDoc(row *documentRow) *models.Document {
	return &models.Document{
		ID:               row.ID,
		Filename:         row.Filename,
		OriginalFilename: row.OriginalFilename,
		FilePath:         row.FilePath,
		FileSize:         row.FileSize,
		FileType:         row.FileType,
		ChunkCount:       row.ChunkCount,
		IsActive:         row.IsActive,
		CreatedAt:        row.CreatedAt,
	}
}
