package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docinsight/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// Insert inserts a single chunk into the database.
	// The chunk.ID must be set (UUID) before calling this method.
	Insert(ctx context.Context, chunk *ChunkRecord) error
	// InsertSection inserts a section row. The section.ID must be set.
	InsertSection(ctx context.Context, section *SectionRecord) error
	// GetByIDs returns the chunk rows for the given ids with SectionTitle
	// resolved from the owning section. Missing ids are silently omitted.
	GetByIDs(ctx context.Context, ids []string) ([]ChunkRecord, error)
	// CountByDocument returns the number of chunks stored for a document.
	CountByDocument(ctx context.Context, documentID string) (int, error)
	// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// DeleteByDocument deletes all chunks and sections for a document.
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Insert inserts a single chunk into the database.
// The chunk.ID must be set (UUID) before calling this method.
func (r *ChunkRepo) Insert(ctx context.Context, chunk *ChunkRecord) error {
	var sectionID any
	if chunk.SectionID != "" {
		sectionID = chunk.SectionID
	}
	var pageNumber any
	if chunk.PageNumber > 0 {
		pageNumber = chunk.PageNumber
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO chunks (id, document_id, section_id, chunk_index, page_number, chunk_type, text) VALUES (?, ?, ?, ?, ?, ?, ?)",
		chunk.ID, chunk.DocumentID, sectionID, chunk.ChunkIndex, pageNumber, chunk.ChunkType, chunk.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// InsertSection inserts a section row.
func (r *ChunkRepo) InsertSection(ctx context.Context, section *SectionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sections (id, document_id, title) VALUES (?, ?, ?)",
		section.ID, section.DocumentID, section.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}
	return nil
}

// GetByIDs returns the chunk rows for the given ids, joined to their owning
// section to resolve SectionTitle. Results preserve the order of ids; ids with
// no matching row are omitted.
func (r *ChunkRepo) GetByIDs(ctx context.Context, ids []string) ([]ChunkRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT c.id, c.document_id, COALESCE(c.section_id, ''), c.chunk_index,
		        COALESCE(c.page_number, 0), c.chunk_type, c.text, COALESCE(s.title, '')
		 FROM chunks c LEFT JOIN sections s ON c.section_id = s.id
		 WHERE c.id IN (%s)`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	byID := make(map[string]ChunkRecord, len(ids))
	for rows.Next() {
		var chunk ChunkRecord
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SectionID, &chunk.ChunkIndex,
			&chunk.PageNumber, &chunk.ChunkType, &chunk.Text, &chunk.SectionTitle); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		byID[chunk.ID] = chunk
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	chunks := make([]ChunkRecord, 0, len(byID))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// CountByDocument returns the number of chunks stored for a document.
func (r *ChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = ?",
		documentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
// Used to get Qdrant point IDs for deletion before re-ingesting.
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// DeleteByDocument deletes all chunks and sections for a document.
// Used when force re-ingesting a document to remove stale rows first.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sections WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete sections by document: %w", err)
	}
	return nil
}
