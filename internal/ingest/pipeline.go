package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docinsight/internal/contextutil"
	"docinsight/internal/storage"
	"docinsight/internal/vectorstore"
	"docinsight/internal/webpage"
)

// embedConcurrency bounds in-flight embedding calls during ingestion.
const embedConcurrency = 8

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	// EmbedText generates an embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// TextFetcher retrieves a web page as flattened plain text.
type TextFetcher interface {
	// FetchText downloads the page and returns its visible text.
	FetchText(ctx context.Context, url string) (string, error)
}

// Pipeline populates chunk rows and embeddings for a document from its
// best-available source: the web-page rendering when an HTML locator exists,
// otherwise the PDF extraction.
type Pipeline struct {
	fetcher    TextFetcher
	embedder   Embedder
	chunkStore storage.ChunkStore
	vectors    vectorstore.VectorStore
	collection string
	logger     *slog.Logger
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	fetcher TextFetcher,
	embedder Embedder,
	chunkStore storage.ChunkStore,
	vectors vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		embedder:   embedder,
		chunkStore: chunkStore,
		vectors:    vectors,
		collection: collection,
		logger:     slog.Default(),
	}
}

// Ingest extracts, chunks and embeds a document's text. When force is false,
// a document that already has chunks is left untouched. When force is true,
// existing chunks and vectors are removed first.
func (p *Pipeline) Ingest(ctx context.Context, documentID, htmlURL, pdfURL string, force bool) error {
	logger := contextutil.LoggerFromContext(ctx)

	count, err := p.chunkStore.CountByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to count existing chunks: %w", err)
	}
	if count > 0 {
		if !force {
			logger.InfoContext(ctx, "document already ingested, skipping", "document_id", documentID, "chunks", count)
			return nil
		}
		if err := p.removeExisting(ctx, documentID); err != nil {
			return err
		}
	}

	pages, err := p.extract(ctx, htmlURL, pdfURL)
	if err != nil {
		return fmt.Errorf("failed to extract document text: %w", err)
	}

	chunks := p.chunk(documentID, pages)
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "document produced no chunks", "document_id", documentID)
		return nil
	}

	if err := p.storeSections(ctx, documentID, chunks); err != nil {
		return err
	}
	if err := p.storeChunks(ctx, chunks); err != nil {
		return err
	}

	embedded := p.embedChunks(ctx, chunks)
	if err := p.vectors.Upsert(ctx, p.collection, embedded); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}

	logger.InfoContext(ctx, "document ingested",
		"document_id", documentID,
		"chunks", len(chunks),
		"embedded", len(embedded),
	)
	return nil
}

// pageText is the extracted text of one physical page. Web-page text is a
// single page with number 0.
type pageText struct {
	number int
	text   string
}

// extract pulls plain text from the preferred locator.
func (p *Pipeline) extract(ctx context.Context, htmlURL, pdfURL string) ([]pageText, error) {
	if htmlURL != "" {
		text, err := p.fetcher.FetchText(ctx, htmlURL)
		if err == nil {
			return []pageText{{text: text}}, nil
		}
		if pdfURL == "" {
			return nil, err
		}
		// Fall through to the PDF locator.
	}
	if pdfURL == "" {
		return nil, fmt.Errorf("no document locator available")
	}
	return extractPDFPages(ctx, pdfURL)
}

// chunk segments each page's text into paragraph chunks with section labels.
func (p *Pipeline) chunk(documentID string, pages []pageText) []storage.ChunkRecord {
	var chunks []storage.ChunkRecord
	for _, page := range pages {
		for _, para := range webpage.Segment(page.text, webpage.DefaultMaxContexts) {
			chunks = append(chunks, storage.ChunkRecord{
				ID:           uuid.NewString(),
				DocumentID:   documentID,
				ChunkIndex:   len(chunks),
				PageNumber:   page.number,
				ChunkType:    "text",
				Text:         para.Text,
				SectionTitle: para.SectionTitle,
			})
		}
	}
	return chunks
}

// storeSections inserts one section row per distinct section title and links
// the chunks to it. Paragraphs seen before any heading carry the default
// section label; those get no section row and stay location-unknown.
func (p *Pipeline) storeSections(ctx context.Context, documentID string, chunks []storage.ChunkRecord) error {
	sectionIDs := make(map[string]string)
	for i := range chunks {
		title := chunks[i].SectionTitle
		if title == "" || title == webpage.DefaultSectionTitle {
			continue
		}
		id, ok := sectionIDs[title]
		if !ok {
			id = uuid.NewString()
			sectionIDs[title] = id
			if err := p.chunkStore.InsertSection(ctx, &storage.SectionRecord{
				ID:         id,
				DocumentID: documentID,
				Title:      title,
			}); err != nil {
				return fmt.Errorf("failed to store section: %w", err)
			}
		}
		chunks[i].SectionID = id
	}
	return nil
}

func (p *Pipeline) storeChunks(ctx context.Context, chunks []storage.ChunkRecord) error {
	for i := range chunks {
		if err := p.chunkStore.Insert(ctx, &chunks[i]); err != nil {
			return fmt.Errorf("failed to store chunk: %w", err)
		}
	}
	return nil
}

// embedChunks embeds chunk texts with bounded concurrency. A failed embedding
// drops that chunk from the vector store only; its row remains retrievable by id.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []storage.ChunkRecord) []vectorstore.Point {
	logger := contextutil.LoggerFromContext(ctx)

	results := make([]*vectorstore.Point, len(chunks))
	var g errgroup.Group
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			vec, err := p.embedder.EmbedText(ctx, chunk.Text)
			if err != nil {
				logger.WarnContext(ctx, "failed to embed chunk, skipping", "chunk_id", chunk.ID, "error", err)
				return nil
			}
			results[i] = &vectorstore.Point{
				ID:  chunk.ID,
				Vec: vec,
				Meta: map[string]any{
					"document_id": chunk.DocumentID,
				},
			}
			return nil
		})
	}
	_ = g.Wait()

	points := make([]vectorstore.Point, 0, len(chunks))
	for _, r := range results {
		if r != nil {
			points = append(points, *r)
		}
	}
	return points
}

// removeExisting clears a document's chunks and vectors before re-ingestion.
func (p *Pipeline) removeExisting(ctx context.Context, documentID string) error {
	ids, err := p.chunkStore.ListIDsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list existing chunk ids: %w", err)
	}
	if err := p.vectors.Delete(ctx, p.collection, ids); err != nil {
		return fmt.Errorf("failed to delete existing embeddings: %w", err)
	}
	if err := p.chunkStore.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete existing chunks: %w", err)
	}
	return nil
}
