package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/docstore"
	"docqa/internal/embedding"
	"docqa/internal/generator"
	"docqa/internal/helper"
	"docqa/internal/ingest"
	"docqa/internal/models"
	"docqa/internal/qa"
	"docqa/internal/vectorindex"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a document file to ingest")
	query := flag.String("query", "", "Question to be answered")
	topK := flag.Int("topk", 0, "Override retrieval breadth (0 = heuristic)")
	deleteID := flag.Int64("delete", 0, "Delete a document by id")
	stats := flag.Bool("stats", false, "Print system statistics")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Warn().Err(err).Msg("Error loading config, using defaults")
		cfg = config.Default()
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()
	app, cleanup, err := buildApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing")
	}
	defer cleanup()

	switch {
	case *filePath != "":
		doc, err := app.ingest.IngestFile(ctx, *filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error ingesting document")
		}
		log.Info().Int64("document_id", doc.ID).Int("chunks", doc.ChunkCount).Msg("Document ingested")
	case *query != "":
		answer, err := app.qa.AnswerQuestion(ctx, models.QuestionRequest{Question: *query, TopK: *topK})
		if err != nil {
			log.Fatal().Err(err).Msg("Error answering question")
		}
		printAnswer(answer)
	case *deleteID != 0:
		if err := app.ingest.DeleteDocument(ctx, *deleteID); err != nil {
			log.Fatal().Err(err).Msg("Error deleting document")
		}
	case *stats:
		qaStats, err := app.qa.Stats(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error collecting stats")
		}
		helper.PrettyPrint(qaStats)
	default:
		log.Fatal().Msg("Please provide a document file using the -file flag, a question using the -query flag, -delete <id> or -stats")
	}
}

type app struct {
	ingest *ingest.Service
	qa     *qa.Service
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	embedder := embedding.NewFromConfig(&cfg.EmbedLLM)

	index, err := vectorindex.New(embedder, cfg.Index.Path)
	if err != nil {
		return nil, nil, err
	}

	var store docstore.Store
	cleanup := func() {}
	if cfg.Database.URL != "" {
		dbClient, err := docstore.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pgStore := docstore.NewPostgresStore(dbClient, cfg.Database.Debug)
		if err := pgStore.Init(ctx); err != nil {
			pgStore.Close()
			return nil, nil, err
		}
		store = pgStore
		cleanup = func() { pgStore.Close() }
	} else {
		log.Warn().Msg("no database configured, using in-memory document store")
		store = docstore.NewMemoryStore()
	}

	gen := generator.NewFromConfig(&cfg.GenLLM)

	return &app{
		ingest: ingest.NewService(store, index, cfg),
		qa:     qa.NewService(store, index, gen, cfg),
	}, cleanup, nil
}

func printAnswer(answer *models.AnswerResponse) {
	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Question)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for i, source := range answer.Sources {
		fmt.Printf("[%d] %s (chunk %d, score %.3f)\n", i+1, source.DocumentName, source.ChunkIndex, source.SimilarityScore)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Answer)
}
