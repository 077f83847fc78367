package insights

import (
	"strings"
	"testing"

	"docinsight/internal/literature"
)

func TestBuildPromptContainsQuestionAndContextIDs(t *testing.T) {
	contexts := []RankedContext{
		{ID: "html-0", Source: SourceWeb, SectionTitle: "Introduction", Text: "Web paragraph text."},
		{ID: "chunk-1", Source: SourceStructured, SectionTitle: "Methods", PageNumber: 4, Text: "Chunk text."},
	}

	prompt := BuildPrompt("What is the contribution?", contexts, nil, "A Study", "Doe, Roe")

	for _, want := range []string{
		"Question: What is the contribution?",
		"Document: A Study",
		"Authors: Doe, Roe",
		"[html-0]",
		"[chunk-1]",
		"Web paragraph text.",
		"Chunk text.",
		"section: Methods, page 4",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptSchemaFieldNames(t *testing.T) {
	prompt := BuildPrompt("q", []RankedContext{{ID: "html-0", Text: "x"}}, nil, "", "")

	// The instructions must name exactly the fields the parser reads.
	for _, field := range []string{
		fieldParagraphs, fieldContent, fieldContextIDs,
		fieldExternalReferences, fieldTitle, fieldURL, fieldSummary, fieldAuthors, fieldRelation,
		fieldFollowups,
	} {
		if !strings.Contains(prompt, `"`+field+`"`) {
			t.Errorf("prompt instructions missing field %q", field)
		}
	}
}

func TestBuildPromptFigureLabeling(t *testing.T) {
	contexts := []RankedContext{
		{ID: "chunk-f", Source: SourceStructured, ChunkType: "figure_caption", Text: "Figure 2: accuracy by epoch."},
	}

	prompt := BuildPrompt("What does figure 2 show?", contexts, nil, "", "")

	if !strings.Contains(prompt, "figure-derived") {
		t.Error("figure-derived contexts should be labeled in the prompt")
	}
}

func TestBuildPromptUnknownLocation(t *testing.T) {
	prompt := BuildPrompt("q", []RankedContext{{ID: "manual-0", Text: "raw"}}, nil, "", "")

	if !strings.Contains(prompt, "location unknown") {
		t.Error("contexts without section or page should be labeled location unknown")
	}
}

func TestBuildPromptRelatedPapers(t *testing.T) {
	papers := []literature.Paper{
		{Title: "Prior Art", Authors: []string{"Smith"}, Venue: "NeurIPS", Year: 2023, URL: "https://example.org/prior"},
	}

	prompt := BuildPrompt("q", []RankedContext{{ID: "html-0", Text: "x"}}, papers, "", "")

	for _, want := range []string{"Prior Art", "Smith", "NeurIPS", "2023", "https://example.org/prior"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing related-paper detail %q", want)
		}
	}
}

func TestBuildPromptBoundsContextText(t *testing.T) {
	long := strings.Repeat("a", 4000)
	prompt := BuildPrompt("q", []RankedContext{{ID: "html-0", Text: long}}, nil, "", "")

	if strings.Contains(prompt, long) {
		t.Error("context text should be truncated to the prompt limit")
	}
	if !strings.Contains(prompt, strings.Repeat("a", promptTextLimit)+"...") {
		t.Error("truncated context should end with an ellipsis marker")
	}
}
