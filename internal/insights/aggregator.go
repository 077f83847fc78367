package insights

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"docinsight/internal/contextutil"
	"docinsight/internal/storage"
	"docinsight/internal/vectorstore"
	"docinsight/internal/webpage"
)

const (
	// DefaultMaxReferences caps the merged, ranked context list.
	DefaultMaxReferences = 8
	// defaultEmbedConcurrency bounds in-flight embedding calls for web paragraphs.
	defaultEmbedConcurrency = 8

	// excerptLimit bounds the display excerpt, in runes.
	excerptLimit = 240

	// figureBonus is added to the raw similarity of figure/caption-derived
	// chunks. Figure captions are disproportionately useful for questions
	// about figures yet are short and lexically sparse, which depresses their
	// raw similarity.
	figureBonus = 0.1
)

// Aggregator merges contexts from manual text, freshly segmented web-page
// text, and pre-stored structured chunks, scores them against the question
// embedding, and produces a ranked, truncated list.
type Aggregator struct {
	embedder   Embedder
	chunkStore storage.ChunkStore
	vectors    vectorstore.VectorStore
	collection string

	// MaxReferences caps the final merged list.
	MaxReferences int
	// EmbedConcurrency caps in-flight per-paragraph embedding calls.
	EmbedConcurrency int

	logger *slog.Logger
}

// NewAggregator creates a new context aggregator.
func NewAggregator(embedder Embedder, chunkStore storage.ChunkStore, vectors vectorstore.VectorStore, collection string) *Aggregator {
	return &Aggregator{
		embedder:         embedder,
		chunkStore:       chunkStore,
		vectors:          vectors,
		collection:       collection,
		MaxReferences:    DefaultMaxReferences,
		EmbedConcurrency: defaultEmbedConcurrency,
		logger:           slog.Default(),
	}
}

// Aggregate builds the merged, ranked, truncated context list for one request.
// Every per-item failure (an embedding call, a store read) is logged and the
// item dropped; the method never fails the request itself.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	questionVec []float32,
	manualTexts []string,
	webParagraphs []webpage.Paragraph,
	documentID string,
) []RankedContext {
	logger := contextutil.LoggerFromContext(ctx)

	manual := a.manualContexts(manualTexts)

	// Web and structured retrieval have no data dependency on each other.
	var web, structured []RankedContext
	var g errgroup.Group
	g.Go(func() error {
		web = a.webContexts(ctx, questionVec, webParagraphs)
		return nil
	})
	g.Go(func() error {
		structured = a.structuredContexts(ctx, questionVec, documentID)
		return nil
	})
	_ = g.Wait()

	// Bound per-source lists before merging to keep the sort cheap.
	sourceCap := 2 * a.MaxReferences
	web = topByScore(web, sourceCap)
	structured = topByScore(structured, sourceCap)

	merged := make([]RankedContext, 0, len(manual)+len(web)+len(structured))
	merged = append(merged, manual...)
	merged = append(merged, web...)
	merged = append(merged, structured...)

	merged = topByScore(merged, a.MaxReferences)

	logger.InfoContext(ctx, "contexts aggregated",
		"manual", len(manual),
		"web", len(web),
		"structured", len(structured),
		"selected", len(merged),
	)
	return merged
}

// manualContexts wraps caller-supplied raw texts as contexts with similarity 0.
func (a *Aggregator) manualContexts(texts []string) []RankedContext {
	contexts := make([]RankedContext, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		contexts = append(contexts, RankedContext{
			ID:      fmt.Sprintf("manual-%d", i),
			Source:  SourceWeb,
			Text:    text,
			Excerpt: excerpt(text),
		})
	}
	return contexts
}

// webContexts embeds each segmented paragraph and scores it against the
// question. Embedding calls fan out with bounded concurrency; a failed call
// drops that paragraph only, never the batch.
func (a *Aggregator) webContexts(ctx context.Context, questionVec []float32, paragraphs []webpage.Paragraph) []RankedContext {
	if len(paragraphs) == 0 {
		return nil
	}
	logger := contextutil.LoggerFromContext(ctx)

	results := make([]*RankedContext, len(paragraphs))

	var g errgroup.Group
	g.SetLimit(a.EmbedConcurrency)
	for i, para := range paragraphs {
		g.Go(func() error {
			vec, err := a.embedder.EmbedText(ctx, para.Text)
			if err != nil {
				logger.WarnContext(ctx, "failed to embed paragraph, skipping", "id", para.ID, "error", err)
				return nil
			}
			results[i] = &RankedContext{
				ID:           para.ID,
				Source:       SourceWeb,
				SectionTitle: para.SectionTitle,
				Similarity:   CosineSimilarity(questionVec, vec),
				Text:         para.Text,
				Excerpt:      excerpt(para.Text),
			}
			return nil
		})
	}
	_ = g.Wait()

	contexts := make([]RankedContext, 0, len(paragraphs))
	for _, r := range results {
		if r != nil {
			contexts = append(contexts, *r)
		}
	}
	return contexts
}

// structuredContexts scores the pre-computed chunk embeddings for a document
// and joins the surviving chunk ids back to their stored rows. Chunks missing
// an embedding never appear; chunks whose row has gone missing are dropped.
func (a *Aggregator) structuredContexts(ctx context.Context, questionVec []float32, documentID string) []RankedContext {
	if documentID == "" {
		return nil
	}
	logger := contextutil.LoggerFromContext(ctx)

	vectors, err := a.vectors.VectorsByDocument(ctx, a.collection, documentID)
	if err != nil {
		logger.WarnContext(ctx, "failed to read stored embeddings, skipping structured source", "document_id", documentID, "error", err)
		return nil
	}
	if len(vectors) == 0 {
		return nil
	}

	// All candidates are joined to their rows before any truncation; the
	// figure bonus depends on chunkType, which only the rows carry, so
	// cutting on raw similarity here could starve a figure chunk of a spot
	// it earns on effective score.
	ids := make([]string, len(vectors))
	simByID := make(map[string]float64, len(vectors))
	for i, v := range vectors {
		ids[i] = v.ChunkID
		simByID[v.ChunkID] = CosineSimilarity(questionVec, v.Vec)
	}

	rows, err := a.chunkStore.GetByIDs(ctx, ids)
	if err != nil {
		logger.WarnContext(ctx, "failed to fetch chunk rows, skipping structured source", "document_id", documentID, "error", err)
		return nil
	}

	contexts := make([]RankedContext, 0, len(rows))
	for _, row := range rows {
		contexts = append(contexts, RankedContext{
			ID:           row.ID,
			Source:       SourceStructured,
			SectionTitle: row.SectionTitle,
			PageNumber:   row.PageNumber,
			Similarity:   simByID[row.ID],
			Text:         row.Text,
			Excerpt:      excerpt(row.Text),
			ChunkType:    row.ChunkType,
		})
	}
	return contexts
}

// effectiveScore is the ranking score: raw similarity plus the figure bonus.
func effectiveScore(c RankedContext) float64 {
	if isFigureChunk(c.ChunkType) {
		return c.Similarity + figureBonus
	}
	return c.Similarity
}

// isFigureChunk reports whether a chunk type tags figure/caption-derived text.
func isFigureChunk(chunkType string) bool {
	if chunkType == "" {
		return false
	}
	t := strings.ToLower(chunkType)
	return strings.Contains(t, "figure") || strings.Contains(t, "caption")
}

// topByScore sorts contexts by effective score descending (stable, so ties
// keep input order) and truncates to n.
func topByScore(contexts []RankedContext, n int) []RankedContext {
	sort.SliceStable(contexts, func(i, j int) bool {
		return effectiveScore(contexts[i]) > effectiveScore(contexts[j])
	})
	if n > 0 && len(contexts) > n {
		contexts = contexts[:n]
	}
	return contexts
}

// excerpt returns a bounded prefix of text for display.
func excerpt(text string) string {
	if utf8.RuneCountInString(text) <= excerptLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:excerptLimit])
}
