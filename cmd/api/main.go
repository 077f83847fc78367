package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docinsight/internal/config"
	"docinsight/internal/http"
	"docinsight/internal/ingest"
	"docinsight/internal/insights"
	"docinsight/internal/literature"
	"docinsight/internal/llm"
	"docinsight/internal/storage"
	"docinsight/internal/vectorstore"
	"docinsight/internal/webpage"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about stored documents with citation-grounded,
// paragraph-structured answers assembled from the document's web rendering,
// its pre-chunked extraction and optional caller-supplied texts.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: DocInsight API
//   description: |
//     Document-insights API. Ask questions about a stored document and get a
//     cited answer grounded in retrieved document contexts, plus related
//     literature suggestions.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	// Initialize Qdrant vector store
	ctx := context.Background()
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	// Web-page fetcher shared by ingestion and question answering
	fetcher := webpage.NewFetcher()

	// Create ingestion pipeline
	ingestPipeline := ingest.NewPipeline(
		fetcher,
		embedder,
		chunkRepo,
		vectorStore,
		cfg.QdrantCollection,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Literature search is optional; disabled when no base URL is configured
	var papers insights.LiteratureSearcher
	if cfg.LiteratureBaseURL != "" {
		papers = literature.NewClient(cfg.LiteratureBaseURL, cfg.LiteratureAPIKey)
		slog.Info("Literature search enabled", "base_url", cfg.LiteratureBaseURL)
	}

	// Create insights engine
	aggregator := insights.NewAggregator(embedder, chunkRepo, vectorStore, cfg.QdrantCollection)
	engine := insights.NewEngine(
		documentRepo,
		aggregator,
		embedder,
		llmClient,
		fetcher,
		ingestPipeline,
		papers,
	)
	slog.Info("Insights engine initialized")

	// Create router with dependencies
	deps := &http.Deps{
		Engine:         engine,
		Documents:      documentRepo,
		DB:             db,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
