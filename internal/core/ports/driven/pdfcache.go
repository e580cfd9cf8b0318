package driven

import (
	"context"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// PDFCache downloads label PDFs at most once and stores them on disk.
// Two different URLs never share a file, even for the same product.
type PDFCache interface {
	// Acquire returns the cached file for url, downloading it first if it
	// is missing or empty. productName seeds the human-readable filename.
	Acquire(ctx context.Context, url, productName string) (*domain.CachedPDF, error)

	// List returns every cached PDF.
	List(ctx context.Context) ([]domain.CachedPDF, error)

	// Dir returns the cache directory.
	Dir() string
}

// PageExtractor extracts text from a PDF, one entry per physical page.
// Pages without text yield empty strings so indices stay aligned.
type PageExtractor interface {
	// ExtractPages returns the text of each page in order.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// LinkResolver finds PDF links on an HTML landing page.
type LinkResolver interface {
	// ResolvePDFLinks fetches pageURL and returns absolute PDF URLs found on it.
	ResolvePDFLinks(ctx context.Context, pageURL string) ([]string, error)
}
