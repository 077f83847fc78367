package insights

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docinsight/internal/literature"
)

// promptTextLimit bounds how much of each context's text goes into the prompt,
// in runes.
const promptTextLimit = 1500

// BuildPrompt serializes the ranked contexts and related-paper candidates into
// a single instruction prompt. Each context is labeled with its id, source
// kind and location so the model can cite it back via contextIds.
func BuildPrompt(question string, contexts []RankedContext, papers []literature.Paper, docTitle, docAuthors string) string {
	var sb strings.Builder

	sb.WriteString("You are a research assistant answering a question about a specific document. ")
	sb.WriteString("Answer using only the evidence in the contexts below. ")
	sb.WriteString("If the contexts do not contain enough evidence to answer, say so explicitly instead of guessing.\n\n")

	if docTitle != "" {
		sb.WriteString(fmt.Sprintf("Document: %s\n", docTitle))
	}
	if docAuthors != "" {
		sb.WriteString(fmt.Sprintf("Authors: %s\n", docAuthors))
	}
	sb.WriteString(fmt.Sprintf("\nQuestion: %s\n", question))

	sb.WriteString("\n--- Contexts ---\n")
	for _, c := range contexts {
		sb.WriteString(fmt.Sprintf("\n[%s] (%s, %s)\n", c.ID, sourceLabel(c), locationLabel(c)))
		sb.WriteString(boundText(c.Text))
		sb.WriteString("\n")
	}
	sb.WriteString("\n--- End Contexts ---\n")

	if len(papers) > 0 {
		sb.WriteString("\n--- Related papers (candidates, not part of the document) ---\n")
		for _, p := range papers {
			sb.WriteString(fmt.Sprintf("- %s", p.Title))
			if len(p.Authors) > 0 {
				sb.WriteString(fmt.Sprintf(" by %s", strings.Join(p.Authors, ", ")))
			}
			if p.Venue != "" {
				sb.WriteString(fmt.Sprintf(" (%s", p.Venue))
				if p.Year > 0 {
					sb.WriteString(fmt.Sprintf(", %d", p.Year))
				}
				sb.WriteString(")")
			} else if p.Year > 0 {
				sb.WriteString(fmt.Sprintf(" (%d)", p.Year))
			}
			if p.URL != "" {
				sb.WriteString(fmt.Sprintf(" %s", p.URL))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nRespond with a single JSON object and nothing else. Keys:\n")
	sb.WriteString(fmt.Sprintf("- %q: array of objects, each with %q (string, one answer paragraph) and optionally %q (array of context id strings the paragraph relies on; cite only ids listed above)\n",
		fieldParagraphs, fieldContent, fieldContextIDs))
	sb.WriteString(fmt.Sprintf("- %q: array of objects with %q (string, required), %q, %q, %q (array of strings), %q, for works you cite that are not among the contexts\n",
		fieldExternalReferences, fieldTitle, fieldURL, fieldSummary, fieldAuthors, fieldRelation))
	sb.WriteString(fmt.Sprintf("- %q: array of suggested follow-up questions (strings)\n", fieldFollowups))
	sb.WriteString("Ground any claim about a figure or table in the contexts labeled figure-derived. ")
	sb.WriteString("If the evidence is insufficient for part of the question, state that explicitly in a paragraph.\n")

	return sb.String()
}

// sourceLabel names the kind of evidence a context carries.
func sourceLabel(c RankedContext) string {
	if isFigureChunk(c.ChunkType) {
		return "figure-derived"
	}
	switch c.Source {
	case SourceStructured:
		return "document text"
	default:
		return "web page text"
	}
}

// locationLabel describes where in the document a context sits.
func locationLabel(c RankedContext) string {
	var parts []string
	if c.SectionTitle != "" {
		parts = append(parts, fmt.Sprintf("section: %s", c.SectionTitle))
	}
	if c.PageNumber > 0 {
		parts = append(parts, fmt.Sprintf("page %d", c.PageNumber))
	}
	if len(parts) == 0 {
		return "location unknown"
	}
	return strings.Join(parts, ", ")
}

// boundText truncates context text so a single context cannot dominate the prompt.
func boundText(text string) string {
	if utf8.RuneCountInString(text) <= promptTextLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:promptTextLimit]) + "..."
}
