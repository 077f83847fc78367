package insights

// Field names of the JSON object the model is asked to return. They are
// defined once so the prompt instructions and the answer parser cannot drift
// apart.
const (
	fieldParagraphs         = "paragraphs"
	fieldContent            = "content"
	fieldContextIDs         = "contextIds"
	fieldExternalReferences = "externalReferences"
	fieldFollowups          = "followups"
	fieldTitle              = "title"
	fieldURL                = "url"
	fieldSummary            = "summary"
	fieldAuthors            = "authors"
	fieldRelation           = "relation"
)
