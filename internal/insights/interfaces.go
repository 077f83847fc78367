package insights

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docinsight/internal/insights Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completer.go -package=mocks docinsight/internal/insights Completer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_page_fetcher.go -package=mocks docinsight/internal/insights PageFetcher
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingestor.go -package=mocks docinsight/internal/insights Ingestor
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_literature_searcher.go -package=mocks docinsight/internal/insights LiteratureSearcher

import (
	"context"

	"docinsight/internal/literature"
)

// Embedder turns text into a fixed-length vector.
// This interface is defined from the engine's perspective (consumer-first).
type Embedder interface {
	// EmbedText generates an embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Completer generates text from a prompt via the language-model service.
type Completer interface {
	// Complete sends the prompt and returns the model's reply text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// PageFetcher retrieves a web page as flattened plain text.
type PageFetcher interface {
	// FetchText downloads the page and returns its visible text.
	FetchText(ctx context.Context, url string) (string, error)
}

// Ingestor asks the ingestion pipeline to (re)populate chunks and embeddings
// for a document. Best-effort; callers tolerate failures.
type Ingestor interface {
	// Ingest populates chunks/embeddings for a document. When force is false,
	// documents that already have chunks are left untouched.
	Ingest(ctx context.Context, documentID, htmlURL, pdfURL string, force bool) error
}

// LiteratureSearcher finds candidate papers related to a query.
type LiteratureSearcher interface {
	// Search returns up to limit candidate papers.
	Search(ctx context.Context, query string, limit int) ([]literature.Paper, error)
}
