package storage

import "time"

// DocumentRecord represents a registered document in the database.
type DocumentRecord struct {
	ID          string // UUID
	RequesterID string // Opaque owner identifier
	Title       string
	Authors     string
	HTMLURL     string // Web-page rendering locator, may be empty
	PDFURL      string // Structured extraction source locator, may be empty
	CreatedAt   time.Time
}

// SectionRecord represents a structural section of a document extraction.
type SectionRecord struct {
	ID         string // UUID
	DocumentID string
	Title      string
}

// ChunkRecord represents a pre-segmented unit of a document extraction.
// SectionTitle is resolved from the owning section on read and is not a column
// of the chunks table.
type ChunkRecord struct {
	ID           string // UUID (same as Qdrant point ID)
	DocumentID   string
	SectionID    string // Foreign key to sections.id, may be empty
	ChunkIndex   int    // Index within document (starts at 0)
	PageNumber   int    // Physical page, 0 when unknown
	ChunkType    string // "text", "figure_pdf", "caption", ...
	Text         string
	SectionTitle string // Joined from sections.title, empty when unresolved
}
