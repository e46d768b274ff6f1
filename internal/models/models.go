package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EmbeddingIDSeparator joins a document id and a chunk index into the key
// stored alongside each vector in the index.
const EmbeddingIDSeparator = "_"

// Document is the metadata record for an ingested file.
type Document struct {
	ID               int64
	Filename         string // stored (uuid) filename
	OriginalFilename string
	FilePath         string
	FileSize         int64
	FileType         string
	ChunkCount       int
	IsActive         bool
	CreatedAt        time.Time
}

// Chunk is a contiguous span of a document's extracted text. Chunks are
// created in bulk at ingestion and immutable afterwards.
type Chunk struct {
	DocumentID int64
	ChunkIndex int // dense 0..N-1 within the document
	Content    string
	StartChar  int
	EndChar    int
}

// EmbeddingID returns the globally unique key for this chunk's vector.
func (c Chunk) EmbeddingID() string {
	return FormatEmbeddingID(c.DocumentID, c.ChunkIndex)
}

// FormatEmbeddingID builds the "{document_id}_{chunk_index}" key.
func FormatEmbeddingID(documentID int64, chunkIndex int) string {
	return fmt.Sprintf("%d%s%d", documentID, EmbeddingIDSeparator, chunkIndex)
}

// ParseEmbeddingID splits an embedding id back into its document id and
// chunk index. Malformed ids return an error so callers can skip them.
func ParseEmbeddingID(id string) (int64, int, error) {
	parts := strings.SplitN(id, EmbeddingIDSeparator, 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed embedding id %q", id)
	}
	docID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed embedding id %q: %w", id, err)
	}
	chunkIndex, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed embedding id %q: %w", id, err)
	}
	return docID, chunkIndex, nil
}

// SourceChunk is the query-time projection of a chunk, built per question.
type SourceChunk struct {
	Content         string
	DocumentName    string
	ChunkIndex      int
	SimilarityScore float32
}

// QuestionRequest carries a question plus an optional explicit retrieval
// breadth. TopK == 0 lets the orchestrator pick one.
type QuestionRequest struct {
	Question string
	TopK     int
}

// AnswerResponse is the orchestrator's output; not persisted by the core.
type AnswerResponse struct {
	Answer   string
	Sources  []SourceChunk
	Question string
}

// IndexStats describes the vector index state, introspection only.
type IndexStats struct {
	TotalChunks int    `json:"total_chunks"`
	Dimension   int    `json:"dimension"`
	BackendKind string `json:"backend_kind"`
	Trained     bool   `json:"is_trained"`
}

// QAStats aggregates docstore counts with index stats and the effective
// retrieval settings.
type QAStats struct {
	TotalDocuments  int          `json:"total_documents"`
	ActiveDocuments int          `json:"active_documents"`
	TotalChunks     int          `json:"total_chunks"`
	Index           IndexStats   `json:"index"`
	Config          QAConfigEcho `json:"qa_config"`
}

// QAConfigEcho mirrors the retrieval settings in effect, for diagnostics.
type QAConfigEcho struct {
	ChunkSize     int     `json:"chunk_size"`
	ChunkOverlap  int     `json:"chunk_overlap"`
	TopK          int     `json:"top_k"`
	MinSimilarity float32 `json:"min_similarity"`
	Generator     string  `json:"generator"`
}
