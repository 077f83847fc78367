package insights

import "docinsight/internal/literature"

// Source identifies where a ranked context's text came from.
type Source string

const (
	// SourceWeb marks contexts derived from the flattened web-page rendering
	// (including caller-supplied raw text).
	SourceWeb Source = "web"
	// SourceStructured marks contexts derived from the pre-chunked document extraction.
	SourceStructured Source = "structured"
)

// RankedContext is a scored, citable unit of retrieved evidence.
type RankedContext struct {
	// ID is unique within one response and stable enough to be echoed back
	// by the model ("html-<n>", "manual-<n>", or a chunk-store id).
	ID string `json:"id"`
	// Source is where the text came from.
	Source Source `json:"source"`
	// SectionTitle is the nearest heading (web) or structural section name
	// (structured chunk); empty if unknown.
	SectionTitle string `json:"sectionTitle,omitempty"`
	// PageNumber is the physical page for structured chunks; 0 for web text.
	PageNumber int `json:"pageNumber,omitempty"`
	// Similarity is the cosine similarity between question and context
	// embeddings, in [-1, 1]; 0 for contexts supplied without an embedding.
	Similarity float64 `json:"similarity"`
	// Excerpt is a bounded prefix of Text, for display.
	Excerpt string `json:"excerpt"`
	// Text is the full underlying text, used only for prompt construction.
	Text string `json:"-"`
	// ChunkType distinguishes ordinary text chunks from figure/caption-derived
	// chunks; drives a ranking bonus.
	ChunkType string `json:"chunkType,omitempty"`
}

// AnswerParagraph is one paragraph of the generated answer, optionally tagged
// with the ids of the retrieved contexts it relied on.
type AnswerParagraph struct {
	Content    string   `json:"content"`
	ContextIDs []string `json:"contextIds,omitempty"`
}

// ExternalReference describes literature the model cited that is not one of
// the retrieved contexts.
type ExternalReference struct {
	Title   string   `json:"title"`
	URL     string   `json:"url,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Authors []string `json:"authors,omitempty"`
	// Relation states how the work relates to the discussed document.
	Relation string `json:"relation,omitempty"`
}

// ChatRequest is a document-insights question.
type ChatRequest struct {
	// DocumentID identifies the document under discussion.
	DocumentID string
	// RequesterID is the opaque owner identifier the document is scoped to.
	RequesterID string
	// Question is the user's free-form question.
	Question string
	// HTMLLocator optionally overrides the stored web-page URL.
	HTMLLocator string
	// RawTextContexts are manually supplied grounding texts, used as-is.
	RawTextContexts []string
}

// ChatResponse is the answer bundle returned for one question.
type ChatResponse struct {
	// Paragraphs are the answer paragraphs in presentation order.
	Paragraphs []AnswerParagraph
	// References is the final ranked context list (text stripped on encode).
	References []RankedContext
	// ExternalReferences are model-cited works outside the retrieved contexts.
	ExternalReferences []ExternalReference
	// Followups are suggested next questions.
	Followups []string
	// RelatedPapers is the raw candidate set from the literature search.
	RelatedPapers []literature.Paper
}
