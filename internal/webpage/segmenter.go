package webpage

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxContexts bounds segmentation output for summarization-sized prompts.
	DefaultMaxContexts = 120
	// ChatMaxContexts bounds segmentation output for chat prompts, which carry
	// the question and instructions alongside the contexts.
	ChatMaxContexts = 60

	// DefaultSectionTitle labels paragraphs seen before any heading.
	DefaultSectionTitle = "body"

	maxHeadingLen = 80
)

// Paragraph is a paragraph-level context unit extracted from flattened page text.
type Paragraph struct {
	// ID is a stable identifier within one segmentation pass ("html-<n>").
	ID string
	// SectionTitle is the most recently seen heading, or DefaultSectionTitle.
	SectionTitle string
	// Text is the paragraph text.
	Text string
	// Order is the zero-based emission order.
	Order int
}

// outlinePattern matches numeric outline headings like "2.", "2.1" or "3.2.1 Results".
var outlinePattern = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`)

// Segment splits flattened page text into paragraph contexts on blank-line
// boundaries, tracking the nearest preceding heading as the section title.
// A short paragraph that looks like a numeric-outline or all-caps heading is
// consumed as a heading and not emitted. At most maxContexts paragraphs are
// returned; zero or negative means DefaultMaxContexts.
func Segment(text string, maxContexts int) []Paragraph {
	if maxContexts <= 0 {
		maxContexts = DefaultMaxContexts
	}

	section := DefaultSectionTitle
	var paragraphs []Paragraph

	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if isHeading(block) {
			section = block
			continue
		}

		if len(paragraphs) >= maxContexts {
			break
		}
		order := len(paragraphs)
		paragraphs = append(paragraphs, Paragraph{
			ID:           fmt.Sprintf("html-%d", order),
			SectionTitle: section,
			Text:         block,
			Order:        order,
		})
	}

	return paragraphs
}

// isHeading reports whether a paragraph should be treated as a section heading:
// short, and either a numeric-outline line or fully uppercase with at least one letter.
func isHeading(p string) bool {
	if utf8.RuneCountInString(p) > maxHeadingLen {
		return false
	}
	if strings.ContainsRune(p, '\n') {
		return false
	}
	if outlinePattern.MatchString(p) {
		return true
	}
	return isAllUpper(p)
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
