package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docinsight/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// DocumentVector is a stored chunk embedding retrieved for local scoring.
type DocumentVector struct {
	ChunkID string
	Vec     []float32
}

// VectorStore defines the interface for embedding storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// VectorsByDocument returns all stored chunk vectors for a document.
	VectorsByDocument(ctx context.Context, collection, documentID string) ([]DocumentVector, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
