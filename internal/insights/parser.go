package insights

import (
	"encoding/json"
	"strings"
)

// ParsedAnswer is the validated, normalized form of the model's output.
type ParsedAnswer struct {
	Paragraphs         []AnswerParagraph
	ExternalReferences []ExternalReference
	Followups          []string
}

// ParseAnswer validates and normalizes raw model output against the schema
// the prompt requested. On any parse failure or missing required shape it
// falls back to a single untagged paragraph holding the raw text, so the
// pipeline always returns something rather than erroring when the model
// deviates.
func ParseAnswer(raw string) ParsedAnswer {
	fallback := ParsedAnswer{
		Paragraphs: []AnswerParagraph{{Content: raw}},
	}

	stripped := stripCodeFences(raw)
	if stripped == "" {
		return fallback
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripped), &payload); err != nil {
		return fallback
	}

	paragraphs := parseParagraphs(payload[fieldParagraphs])
	if len(paragraphs) == 0 {
		return fallback
	}

	return ParsedAnswer{
		Paragraphs:         paragraphs,
		ExternalReferences: parseExternalReferences(payload[fieldExternalReferences]),
		Followups:          parseFollowups(payload[fieldFollowups]),
	}
}

// parseParagraphs keeps entries with non-empty string content. A malformed
// contextIds field (any non-string element) drops the field, not the paragraph.
func parseParagraphs(raw json.RawMessage) []AnswerParagraph {
	if raw == nil {
		return nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	paragraphs := make([]AnswerParagraph, 0, len(entries))
	for _, entry := range entries {
		var content string
		if err := json.Unmarshal(entry[fieldContent], &content); err != nil || content == "" {
			continue
		}

		paragraph := AnswerParagraph{Content: content}
		if idsRaw, ok := entry[fieldContextIDs]; ok {
			var ids []string
			if err := json.Unmarshal(idsRaw, &ids); err == nil && len(ids) > 0 {
				paragraph.ContextIDs = ids
			}
		}
		paragraphs = append(paragraphs, paragraph)
	}
	return paragraphs
}

// parseExternalReferences keeps entries that carry a string title.
func parseExternalReferences(raw json.RawMessage) []ExternalReference {
	if raw == nil {
		return nil
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	refs := make([]ExternalReference, 0, len(entries))
	for _, entry := range entries {
		var title string
		if err := json.Unmarshal(entry[fieldTitle], &title); err != nil || title == "" {
			continue
		}

		ref := ExternalReference{Title: title}
		_ = unmarshalOptional(entry[fieldURL], &ref.URL)
		_ = unmarshalOptional(entry[fieldSummary], &ref.Summary)
		_ = unmarshalOptional(entry[fieldAuthors], &ref.Authors)
		_ = unmarshalOptional(entry[fieldRelation], &ref.Relation)
		refs = append(refs, ref)
	}
	return refs
}

// parseFollowups keeps non-empty string entries.
func parseFollowups(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	followups := make([]string, 0, len(entries))
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err != nil || s == "" {
			continue
		}
		followups = append(followups, s)
	}
	return followups
}

// unmarshalOptional best-effort decodes a field, leaving the target untouched
// on absence or mismatch.
func unmarshalOptional(raw json.RawMessage, target any) error {
	if raw == nil {
		return nil
	}
	return json.Unmarshal(raw, target)
}

// stripCodeFences removes a surrounding markdown code fence (``` or ```json)
// if present, and trims whitespace.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line, including a language tag.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
