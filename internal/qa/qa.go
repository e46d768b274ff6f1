// Package qa turns one question into one grounded answer: pick a retrieval
// breadth, search the vector index, filter and resolve the hits, assemble a
// context and delegate to the answer generator.
package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/docstore"
	"docqa/internal/generator"
	"docqa/internal/models"
	"docqa/internal/vectorindex"
)

// Retrieval breadth tiers keyed off shallow lexical signals in the
// question. Checked in this order; first match wins.
const (
	breadthFactual     = 3
	breadthExplanatory = 7
	breadthProcedural  = 8
	breadthDefault     = 5
)

var (
	factualKeywords     = []string{"what", "who", "when", "where"}
	explanatoryKeywords = []string{"how", "why", "explain", "describe"}
	proceduralKeywords  = []string{"steps", "procedure", "process", "guide"}
)

type Service struct {
	store     docstore.Store
	index     *vectorindex.Index
	generator generator.Generator
	cfg       *config.RAGConfig
}

func NewService(store docstore.Store, index *vectorindex.Index, gen generator.Generator, cfg *config.Config) *Service {
	return &Service{store: store, index: index, generator: gen, cfg: &cfg.RAG}
}

// AnswerQuestion runs the full retrieval pipeline. Query-time failures
// degrade to a fixed answer instead of erroring; the caller always gets a
// response.
func (s *Service) AnswerQuestion(ctx context.Context, req models.QuestionRequest) (*models.AnswerResponse, error) {
	topK := s.determineTopK(req.Question, req.TopK)

	hits, err := s.index.Search(ctx, req.Question, topK)
	if err != nil {
		log.Warn().Err(err).Msg("similarity search failed")
		return s.noInformation(req.Question), nil
	}
	if len(hits) == 0 {
		return s.noInformation(req.Question), nil
	}

	filtered := s.filterBySimilarity(hits)
	if len(filtered) == 0 {
		// Prefer a possibly weak answer over a guaranteed non-answer.
		n := s.cfg.FallbackTopN
		if n > len(hits) {
			n = len(hits)
		}
		filtered = hits[:n]
	}

	sources := s.resolveSources(ctx, filtered)
	if len(sources) == 0 {
		return s.noInformation(req.Question), nil
	}

	contextText := assembleContext(sources)
	answer, err := s.generator.GenerateAnswer(ctx, req.Question, contextText)
	if err != nil {
		log.Warn().Err(err).Msg("answer generation failed")
		answer = models.InsufficientAnswer
	}
	answer = s.postValidate(answer)

	return &models.AnswerResponse{
		Answer:   answer,
		Sources:  sources,
		Question: req.Question,
	}, nil
}

// Stats aggregates docstore counts with index introspection.
func (s *Service) Stats(ctx context.Context) (*models.QAStats, error) {
	total, active, err := s.store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	chunks, err := s.store.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	return &models.QAStats{
		TotalDocuments:  total,
		ActiveDocuments: active,
		TotalChunks:     chunks,
		Index:           s.index.Stats(),
		Config: models.QAConfigEcho{
			ChunkSize:     s.cfg.ChunkSize,
			ChunkOverlap:  s.cfg.ChunkOverlap,
			TopK:          s.cfg.TopK,
			MinSimilarity: s.cfg.MinSimilarity,
			Generator:     s.generator.Kind(),
		},
	}, nil
}

// determineTopK picks a retrieval breadth from the question's wording
// unless the caller supplied one.
func (s *Service) determineTopK(question string, userTopK int) int {
	if userTopK > 0 {
		return userTopK
	}
	lower := strings.ToLower(question)
	switch {
	case containsAny(lower, factualKeywords):
		return breadthFactual
	case containsAny(lower, explanatoryKeywords):
		return breadthExplanatory
	case containsAny(lower, proceduralKeywords):
		return breadthProcedural
	default:
		if s.cfg.TopK > 0 {
			return s.cfg.TopK
		}
		return breadthDefault
	}
}

func (s *Service) filterBySimilarity(hits []vectorindex.Result) []vectorindex.Result {
	var kept []vectorindex.Result
	for _, hit := range hits {
		if hit.Score > s.cfg.MinSimilarity {
			kept = append(kept, hit)
		}
	}
	return kept
}

// resolveSources maps embedding ids back to chunk content and document
// names. Malformed or missing ids are skipped, never fatal.
func (s *Service) resolveSources(ctx context.Context, hits []vectorindex.Result) []models.SourceChunk {
	var sources []models.SourceChunk
	for _, hit := range hits {
		docID, chunkIndex, err := models.ParseEmbeddingID(hit.ID)
		if err != nil {
			log.Debug().Err(err).Msg("skipping unparseable embedding id")
			continue
		}
		chunk, docName, err := s.store.ResolveChunk(ctx, docID, chunkIndex)
		if err != nil {
			log.Warn().Err(err).Str("embedding_id", hit.ID).Msg("skipping unresolvable chunk")
			continue
		}
		sources = append(sources, models.SourceChunk{
			Content:         chunk.Content,
			DocumentName:    docName,
			ChunkIndex:      chunk.ChunkIndex,
			SimilarityScore: hit.Score,
		})
	}
	return sources
}

// assembleContext concatenates sources in search order (descending
// similarity), each labeled with its document name.
func assembleContext(sources []models.SourceChunk) string {
	parts := make([]string, len(sources))
	for i, source := range sources {
		parts[i] = fmt.Sprintf(models.ContextSourceTemplate, i+1, source.DocumentName, source.Content)
	}
	return strings.Join(parts, "\n")
}

// postValidate replaces empty or too-short answers and appends the
// stub-mode disclaimer when no generative capability is configured.
func (s *Service) postValidate(answer string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" || (len(answer) < s.cfg.MinAnswerLength && !strings.Contains(answer, models.InsufficientAnswer)) {
		answer = models.InsufficientAnswer
	}
	if s.generator.Kind() == "stub" && !strings.Contains(answer, models.InsufficientAnswer) {
		answer += "\n\n" + models.StubDisclaimer
	}
	return answer
}

func (s *Service) noInformation(question string) *models.AnswerResponse {
	return &models.AnswerResponse{
		Answer:   models.NoInformationAnswer,
		Sources:  []models.SourceChunk{},
		Question: question,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
