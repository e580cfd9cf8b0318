package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// DocumentService manages indexed label documents.
type DocumentService interface {
	// List returns documents for a product. An empty product lists all.
	List(ctx context.Context, product string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetChunks returns a document's chunks in index order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// IndexFiles chunks and indexes local PDFs matching a glob pattern.
	IndexFiles(ctx context.Context, req IndexFilesRequest) ([]IndexReport, error)

	// ListCached returns PDFs in the acquisition cache, optionally only
	// those whose filename starts with the sanitized product name.
	ListCached(ctx context.Context, product string) ([]domain.CachedPDF, error)
}

// IndexFilesRequest describes a local indexing run.
type IndexFilesRequest struct {
	// Pattern is a doublestar glob, e.g. "labels/**/*.pdf".
	Pattern string

	// Product is the product the files belong to.
	Product string

	// SourceURL is the citation URL attached to every passage, if known.
	SourceURL string

	// Force reprocesses documents that are already indexed.
	Force bool
}

// IndexReport is the outcome of indexing one document.
type IndexReport struct {
	// DocumentID is the derived document id.
	DocumentID string `json:"document_id"`

	// Filename is the PDF filename.
	Filename string `json:"filename"`

	// Skipped is true if the document was already indexed.
	Skipped bool `json:"skipped"`

	// Chunks is the number of chunks produced.
	Chunks int `json:"chunks"`

	// Passages is the number of passages upserted.
	Passages int `json:"passages"`

	// Rejected counts chunks that were not indexed (embedding failure or
	// dimension mismatch).
	Rejected int `json:"rejected"`

	// EstimatedPages counts chunks whose page number was estimated.
	EstimatedPages int `json:"estimated_pages"`
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// Filename is the PDF filename.
	Filename string

	// Filepath is the location on disk.
	Filepath string

	// ProductKey is the product scope key.
	ProductKey string

	// SourceURL is the download URL, if any.
	SourceURL string

	// FileSize is the size in bytes.
	FileSize int64

	// NumPages is the physical page count.
	NumPages int

	// ChunkCount is the number of stored chunks.
	ChunkCount int

	// PassageCount is the number of passages in the vector store.
	PassageCount int

	// Processed reports whether indexing completed.
	Processed bool

	// CreatedAt is when the document was first recorded.
	CreatedAt time.Time

	// LastProcessed is when indexing last completed.
	LastProcessed *time.Time
}
