package vectorindex

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"docqa/internal/embedding"
	"docqa/internal/models"
)

// Result is one similarity-search hit.
type Result struct {
	ID    string
	Score float32
}

// Index is a flat inner-product vector index over L2-normalized embeddings.
// vectors[i] always corresponds to ids[i]; every mutation maintains both
// slices together and persists them before committing, so the pair never
// drifts across add/remove/reload cycles.
//
// Mutations take the write lock; searches share the read lock. The structure
// has no in-place deletion, so Remove rebuilds it, O(N) in index size.
type Index struct {
	mu         sync.RWMutex
	embedder   embedding.Embedder
	dimension  int
	vectors    [][]float32
	ids        []string
	pathPrefix string
}

// persisted layout of the vector artifact.
type indexArtifact struct {
	Dimension int
	Vectors   [][]float32
}

// New loads a persisted index from the path prefix or creates an empty one
// sized to the embedder's dimensionality. An empty prefix keeps the index
// memory-only. If exactly one of the two artifacts exists the index is
// corrupt and New fails rather than silently dropping data.
func New(embedder embedding.Embedder, pathPrefix string) (*Index, error) {
	idx := &Index{
		embedder:   embedder,
		dimension:  embedder.Dimension(),
		pathPrefix: pathPrefix,
	}
	if pathPrefix == "" {
		return idx, nil
	}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) vectorFile() string { return idx.pathPrefix + ".index" }
func (idx *Index) idsFile() string    { return idx.pathPrefix + "_ids.json" }

func (idx *Index) load() error {
	_, vecErr := os.Stat(idx.vectorFile())
	_, idsErr := os.Stat(idx.idsFile())
	vecExists := vecErr == nil
	idsExists := idsErr == nil

	if !vecExists && !idsExists {
		return nil
	}
	if vecExists != idsExists {
		return fmt.Errorf("%w: expected both %s and %s, found one",
			models.ErrCorruptIndex, idx.vectorFile(), idx.idsFile())
	}

	f, err := os.Open(idx.vectorFile())
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()
	var artifact indexArtifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return fmt.Errorf("%w: %v", models.ErrCorruptIndex, err)
	}

	idsData, err := os.ReadFile(idx.idsFile())
	if err != nil {
		return fmt.Errorf("failed to read id list: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(idsData, &ids); err != nil {
		return fmt.Errorf("%w: %v", models.ErrCorruptIndex, err)
	}

	if len(artifact.Vectors) != len(ids) {
		return fmt.Errorf("%w: %d vectors vs %d ids",
			models.ErrCorruptIndex, len(artifact.Vectors), len(ids))
	}

	idx.dimension = artifact.Dimension
	idx.vectors = artifact.Vectors
	idx.ids = ids
	log.Info().Int("chunks", len(ids)).Int("dimension", idx.dimension).
		Msg("loaded vector index")
	return nil
}

// Add embeds texts, L2-normalizes the vectors and appends them with their
// ids as one unit, persisting before returning the assigned positions. On
// any failure nothing is committed. Empty input is a no-op.
func (idx *Index) Add(ctx context.Context, texts, ids []string) ([]int, error) {
	if len(texts) != len(ids) {
		return nil, fmt.Errorf("%w: %d texts vs %d ids", models.ErrValidation, len(texts), len(ids))
	}
	if len(texts) == 0 {
		return []int{}, nil
	}

	vectors, err := idx.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %v", models.ErrBackendUnavailable, err)
	}
	for i, vec := range vectors {
		if len(vec) != idx.dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, index expects %d", i, len(vec), idx.dimension)
		}
		normalize(vec)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	newVectors := append(append([][]float32{}, idx.vectors...), vectors...)
	newIDs := append(append([]string{}, idx.ids...), ids...)
	if err := idx.persist(newVectors, newIDs); err != nil {
		return nil, err
	}

	start := len(idx.ids)
	idx.vectors = newVectors
	idx.ids = newIDs

	positions := make([]int, len(ids))
	for i := range positions {
		positions[i] = start + i
	}
	return positions, nil
}

// Search embeds the query the same way as Add and returns at most topK ids
// ordered by descending inner-product score. An empty index returns no
// results without error.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if idx.Size() == 0 {
		return nil, nil
	}

	queryVec, err := idx.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %v", models.ErrBackendUnavailable, err)
	}
	normalize(queryVec)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 || topK > len(idx.ids) {
		topK = len(idx.ids)
	}

	results := make([]Result, len(idx.ids))
	for i, vec := range idx.vectors {
		results[i] = Result{ID: idx.ids[i], Score: dot(vec, queryVec)}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results[:topK], nil
}

// Remove rebuilds the index without the given ids and re-persists it. The
// underlying structure has no positional deletion, so this is O(N). Empty
// input is a no-op.
func (idx *Index) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	newVectors := make([][]float32, 0, len(idx.vectors))
	newIDs := make([]string, 0, len(idx.ids))
	for i, id := range idx.ids {
		if _, gone := drop[id]; gone {
			continue
		}
		newVectors = append(newVectors, idx.vectors[i])
		newIDs = append(newIDs, id)
	}

	if err := idx.persist(newVectors, newIDs); err != nil {
		return err
	}
	idx.vectors = newVectors
	idx.ids = newIDs
	return nil
}

// Size returns the number of indexed entries.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Stats reports index state without mutating it.
func (idx *Index) Stats() models.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return models.IndexStats{
		TotalChunks: len(idx.ids),
		Dimension:   idx.dimension,
		BackendKind: idx.embedder.Kind(),
		Trained:     true, // flat index needs no training
	}
}

// persist writes both artifacts through temp files so a crash never leaves
// a half-written file behind. Caller holds the write lock.
func (idx *Index) persist(vectors [][]float32, ids []string) error {
	if idx.pathPrefix == "" {
		return nil
	}
	if dir := filepath.Dir(idx.pathPrefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create index dir: %w", err)
		}
	}

	tmpVec := idx.vectorFile() + ".tmp"
	f, err := os.Create(tmpVec)
	if err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	artifact := indexArtifact{Dimension: idx.dimension, Vectors: vectors}
	if err := gob.NewEncoder(f).Encode(&artifact); err != nil {
		f.Close()
		os.Remove(tmpVec)
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpVec)
		return fmt.Errorf("failed to write index: %w", err)
	}

	idsData, err := json.Marshal(ids)
	if err != nil {
		os.Remove(tmpVec)
		return fmt.Errorf("failed to encode id list: %w", err)
	}
	tmpIDs := idx.idsFile() + ".tmp"
	if err := os.WriteFile(tmpIDs, idsData, 0o644); err != nil {
		os.Remove(tmpVec)
		return fmt.Errorf("failed to write id list: %w", err)
	}

	if err := os.Rename(tmpVec, idx.vectorFile()); err != nil {
		os.Remove(tmpVec)
		os.Remove(tmpIDs)
		return fmt.Errorf("failed to persist index: %w", err)
	}
	if err := os.Rename(tmpIDs, idx.idsFile()); err != nil {
		os.Remove(tmpIDs)
		return fmt.Errorf("failed to persist id list: %w", err)
	}
	return nil
}

// normalize scales vec to unit length in place; zero vectors are left alone.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
