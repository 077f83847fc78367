package insights

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks -mock_names=Engine=MockEngine docinsight/internal/insights Engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docinsight/internal/contextutil"
	"docinsight/internal/literature"
	"docinsight/internal/storage"
	"docinsight/internal/webpage"
)

// relatedPaperLimit is how many literature candidates are surfaced per question.
const relatedPaperLimit = 3

// Engine answers questions about a document using retrieved, ranked contexts.
type Engine interface {
	// Chat answers a question grounded in the document's retrieved contexts.
	// Returns ErrInsufficientContext when no grounding could be assembled
	// even after the ingestion fallback.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// insightsEngine implements the Engine interface.
type insightsEngine struct {
	documents  storage.DocumentStore
	aggregator *Aggregator
	embedder   Embedder
	completer  Completer
	fetcher    PageFetcher
	ingestor   Ingestor
	papers     LiteratureSearcher // nil disables related-paper search
	logger     *slog.Logger
}

// NewEngine creates a new insights engine. papers may be nil to disable
// related-paper search.
func NewEngine(
	documents storage.DocumentStore,
	aggregator *Aggregator,
	embedder Embedder,
	completer Completer,
	fetcher PageFetcher,
	ingestor Ingestor,
	papers LiteratureSearcher,
) Engine {
	return &insightsEngine{
		documents:  documents,
		aggregator: aggregator,
		embedder:   embedder,
		completer:  completer,
		fetcher:    fetcher,
		ingestor:   ingestor,
		papers:     papers,
		logger:     slog.Default(),
	}
}

// Chat answers a question about a document.
func (e *insightsEngine) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid insights request", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "insights query started",
		"document_id", req.DocumentID,
		"question_length", len(req.Question),
		"manual_contexts", len(req.RawTextContexts),
	)

	doc, err := e.documents.Get(ctx, req.DocumentID, req.RequesterID)
	if err != nil {
		logger.WarnContext(ctx, "document lookup failed", "document_id", req.DocumentID, "error", err)
		return nil, WrapError(err, "failed to look up document")
	}

	htmlURL := req.HTMLLocator
	if htmlURL == "" {
		htmlURL = doc.HTMLURL
	}

	// The literature search has no data dependency on context aggregation
	// and runs concurrently with it. Failures degrade to zero candidates.
	papersCh := make(chan []literature.Paper, 1)
	go func() {
		papersCh <- e.relatedPapers(ctx, req.Question)
	}()

	// Embed the question once; all context scoring reuses this vector. A
	// failure here only zeroes similarities, it does not fail the request.
	questionVec, err := e.embedder.EmbedText(ctx, req.Question)
	if err != nil {
		logger.WarnContext(ctx, "failed to embed question, ranking disabled", "error", err)
		questionVec = nil
	}

	contexts := e.aggregate(ctx, questionVec, req, htmlURL)

	if len(contexts) == 0 {
		// Nothing retrievable: ask the ingestion pipeline to populate
		// chunks/embeddings, then retry aggregation exactly once.
		logger.InfoContext(ctx, "no contexts found, triggering ingestion", "document_id", req.DocumentID)
		if err := e.ingestor.Ingest(ctx, req.DocumentID, htmlURL, doc.PDFURL, false); err != nil {
			logger.WarnContext(ctx, "ingestion trigger failed", "document_id", req.DocumentID, "error", err)
		}
		contexts = e.aggregate(ctx, questionVec, req, htmlURL)
	}

	relatedPapers := <-papersCh

	if len(contexts) == 0 {
		logger.InfoContext(ctx, "no contexts after ingestion fallback", "document_id", req.DocumentID)
		return nil, ErrInsufficientContext
	}

	prompt := BuildPrompt(req.Question, contexts, relatedPapers, doc.Title, doc.Authors)

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get model response", "error", err)
		return nil, fmt.Errorf("failed to get model response: %w: %w", ErrExternalService, err)
	}

	parsed := ParseAnswer(raw)

	logger.InfoContext(ctx, "insights query completed",
		"document_id", req.DocumentID,
		"contexts", len(contexts),
		"paragraphs", len(parsed.Paragraphs),
		"related_papers", len(relatedPapers),
	)

	return &ChatResponse{
		Paragraphs:         parsed.Paragraphs,
		References:         contexts,
		ExternalReferences: parsed.ExternalReferences,
		Followups:          parsed.Followups,
		RelatedPapers:      relatedPapers,
	}, nil
}

// aggregate fetches and segments the web page (when a locator exists) and
// runs one aggregation pass over all three sources.
func (e *insightsEngine) aggregate(ctx context.Context, questionVec []float32, req ChatRequest, htmlURL string) []RankedContext {
	logger := contextutil.LoggerFromContext(ctx)

	var paragraphs []webpage.Paragraph
	if htmlURL != "" {
		text, err := e.fetcher.FetchText(ctx, htmlURL)
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch page text, skipping web source", "url", htmlURL, "error", err)
		} else {
			paragraphs = webpage.Segment(text, webpage.ChatMaxContexts)
		}
	}

	return e.aggregator.Aggregate(ctx, questionVec, req.RawTextContexts, paragraphs, req.DocumentID)
}

// relatedPapers performs the best-effort literature search. Any failure is
// swallowed and treated as zero candidates.
func (e *insightsEngine) relatedPapers(ctx context.Context, question string) []literature.Paper {
	if e.papers == nil {
		return nil
	}
	logger := contextutil.LoggerFromContext(ctx)

	papers, err := e.papers.Search(ctx, question, relatedPaperLimit)
	if err != nil {
		logger.WarnContext(ctx, "literature search failed", "error", err)
		return nil
	}
	return papers
}

// validateRequest enforces the request-level required fields. These are the
// only hard errors the pipeline surfaces.
func validateRequest(req ChatRequest) error {
	if strings.TrimSpace(req.DocumentID) == "" {
		return &ValidationError{Field: "documentId", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.RequesterID) == "" {
		return &ValidationError{Field: "requesterId", Message: "cannot be empty"}
	}
	if strings.TrimSpace(req.Question) == "" {
		return &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	return nil
}
