package driven

import (
	"context"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// VectorStore stores passage vectors and answers similarity queries.
// One collection per deployment; every point carries a Passage payload.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// Returns domain.ErrDimensionMismatch if it exists with another width.
	EnsureCollection(ctx context.Context, dimensions int) error

	// Upsert inserts or replaces points. Point identity is derived from
	// the chunk id, so re-upserting the same chunk never duplicates.
	Upsert(ctx context.Context, points []VectorPoint) error

	// Query returns the nearest passages ordered by descending score.
	Query(ctx context.Context, q VectorQuery) ([]VectorHit, error)

	// DeleteByDocument removes every point of a document.
	DeleteByDocument(ctx context.Context, documentID string) error

	// Count returns the number of points, optionally for one document.
	Count(ctx context.Context, documentID string) (int, error)

	// Close releases resources.
	Close() error
}

// VectorPoint is one passage and its embedding.
type VectorPoint struct {
	// ChunkID is the stable chunk identifier the point id is derived from.
	ChunkID string

	// Vector is the passage embedding.
	Vector []float32

	// Passage is the stored payload.
	Passage domain.Passage
}

// VectorQuery is one similarity query.
type VectorQuery struct {
	// Vector is the query embedding.
	Vector []float32

	// ProductKey restricts results to one product scope. Empty means unscoped.
	ProductKey string

	// Limit is the maximum number of hits.
	Limit int

	// ScoreThreshold drops hits below this similarity. Zero keeps all.
	ScoreThreshold float64
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ID is the store's point id.
	ID string

	// Score is the cosine similarity score.
	Score float64

	// Passage is the stored payload.
	Passage domain.Passage
}
