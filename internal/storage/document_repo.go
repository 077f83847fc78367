package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docinsight/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document record lookups.
type DocumentStore interface {
	// Get returns the document record scoped to its owning requester.
	// Returns ErrNotFound if the document does not exist or belongs to a
	// different requester.
	Get(ctx context.Context, documentID, requesterID string) (*DocumentRecord, error)
	// Insert registers a document record. The record's ID must be set.
	Insert(ctx context.Context, doc *DocumentRecord) error
}

// DocumentRepo provides methods for document record operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Get returns the document record scoped to its owning requester.
func (r *DocumentRepo) Get(ctx context.Context, documentID, requesterID string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, requester_id, COALESCE(title, ''), COALESCE(authors, ''), COALESCE(html_url, ''), COALESCE(pdf_url, ''), created_at FROM documents WHERE id = ? AND requester_id = ?",
		documentID, requesterID,
	).Scan(&doc.ID, &doc.RequesterID, &doc.Title, &doc.Authors, &doc.HTMLURL, &doc.PDFURL, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// Insert registers a document record.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, requester_id, title, authors, html_url, pdf_url) VALUES (?, ?, ?, ?, ?, ?)",
		doc.ID, doc.RequesterID, doc.Title, doc.Authors, doc.HTMLURL, doc.PDFURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}
