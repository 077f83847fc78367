package webpage

import (
	"fmt"
	"strings"
	"testing"
)

func TestSegmentSplitsOnBlankLines(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."

	paragraphs := Segment(text, 0)

	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paragraphs))
	}
	for i, p := range paragraphs {
		if want := fmt.Sprintf("html-%d", i); p.ID != want {
			t.Errorf("paragraph %d ID = %q, want %q", i, p.ID, want)
		}
		if p.Order != i {
			t.Errorf("paragraph %d Order = %d, want %d", i, p.Order, i)
		}
		if p.SectionTitle != DefaultSectionTitle {
			t.Errorf("paragraph %d SectionTitle = %q, want %q", i, p.SectionTitle, DefaultSectionTitle)
		}
	}
}

func TestSegmentTracksNumericOutlineHeadings(t *testing.T) {
	text := "Intro text before any heading.\n\n2.1 Experimental Setup\n\nWe trained the model on two corpora.\n\nResults follow in the next section."

	paragraphs := Segment(text, 0)

	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs (heading consumed), got %d", len(paragraphs))
	}
	if paragraphs[0].SectionTitle != DefaultSectionTitle {
		t.Errorf("pre-heading paragraph SectionTitle = %q, want %q", paragraphs[0].SectionTitle, DefaultSectionTitle)
	}
	if paragraphs[1].SectionTitle != "2.1 Experimental Setup" {
		t.Errorf("post-heading paragraph SectionTitle = %q, want %q", paragraphs[1].SectionTitle, "2.1 Experimental Setup")
	}
	if paragraphs[2].SectionTitle != "2.1 Experimental Setup" {
		t.Errorf("heading should persist, got SectionTitle = %q", paragraphs[2].SectionTitle)
	}
}

func TestSegmentTracksAllCapsHeadings(t *testing.T) {
	text := "RELATED WORK\n\nPrior systems used keyword retrieval."

	paragraphs := Segment(text, 0)

	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}
	if paragraphs[0].SectionTitle != "RELATED WORK" {
		t.Errorf("SectionTitle = %q, want %q", paragraphs[0].SectionTitle, "RELATED WORK")
	}
}

func TestSegmentHeadingRules(t *testing.T) {
	tests := []struct {
		name    string
		block   string
		heading bool
	}{
		{name: "numeric outline with dot", block: "3. Results", heading: true},
		{name: "numeric outline nested", block: "3.2.1 Ablations", heading: true},
		{name: "numeric outline with paren", block: "4) Discussion", heading: true},
		{name: "all caps", block: "CONCLUSION", heading: true},
		{name: "mixed case short line", block: "A normal sentence.", heading: false},
		{name: "digits only", block: "2024", heading: false},
		{name: "bare number no text", block: "12.", heading: false},
		{name: "too long", block: "7. " + strings.Repeat("word ", 30), heading: false},
		{name: "multi line", block: "5. Results\ncontinued", heading: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHeading(tt.block); got != tt.heading {
				t.Errorf("isHeading(%q) = %v, want %v", tt.block, got, tt.heading)
			}
		})
	}
}

func TestSegmentCapsParagraphCount(t *testing.T) {
	var blocks []string
	for i := 0; i < 10; i++ {
		blocks = append(blocks, fmt.Sprintf("Paragraph number %d with some content.", i))
	}
	text := strings.Join(blocks, "\n\n")

	paragraphs := Segment(text, 4)

	if len(paragraphs) != 4 {
		t.Fatalf("expected 4 paragraphs with maxContexts=4, got %d", len(paragraphs))
	}
	if paragraphs[3].Text != blocks[3] {
		t.Errorf("truncation should keep document order, got %q", paragraphs[3].Text)
	}
}

func TestSegmentSkipsEmptyBlocks(t *testing.T) {
	text := "First.\n\n   \n\nSecond."

	paragraphs := Segment(text, 0)

	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
	}
}

func TestSegmentIdempotentOnHeadinglessText(t *testing.T) {
	// Re-segmenting the joined output of a headingless document must yield
	// the same paragraphs.
	text := "Alpha paragraph content.\n\nBeta paragraph content.\n\nGamma paragraph content."

	first := Segment(text, 0)
	var texts []string
	for _, p := range first {
		texts = append(texts, p.Text)
	}
	second := Segment(strings.Join(texts, "\n\n"), 0)

	if len(first) != len(second) {
		t.Fatalf("paragraph count changed on re-segmentation: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("paragraph %d text changed: %q vs %q", i, first[i].Text, second[i].Text)
		}
		if first[i].ID != second[i].ID {
			t.Errorf("paragraph %d id changed: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}
