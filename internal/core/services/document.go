package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// errNoDocumentStore is returned when the service was built without a store.
var errNoDocumentStore = fmt.Errorf("%w: no document store", domain.ErrConfiguration)

// DocumentService inspects indexed label documents and indexes local PDFs.
type DocumentService struct {
	docStore driven.DocumentStore
	vectors  driven.VectorStore
	cache    driven.PDFCache
	indexer  *Indexer
}

// NewDocumentService creates a new document service.
// The vectors, cache and indexer parameters are optional (can be nil).
func NewDocumentService(
	docStore driven.DocumentStore,
	vectors driven.VectorStore,
	cache driven.PDFCache,
	indexer *Indexer,
) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		vectors:  vectors,
		cache:    cache,
		indexer:  indexer,
	}
}

// List returns documents, optionally only those of one product.
func (s *DocumentService) List(ctx context.Context, product string) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, errNoDocumentStore
	}
	key := ""
	if product != "" {
		key = domain.ScopeKeyFor(product)
	}
	return s.docStore.ListDocuments(ctx, key)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, errNoDocumentStore
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// GetChunks returns a document's chunks in order.
func (s *DocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if s.docStore == nil {
		return nil, errNoDocumentStore
	}
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, nil
}

// GetDetails returns a document with its chunk and passage counts.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	if s.docStore == nil {
		return nil, errNoDocumentStore
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunkCount := 0
	if chunks, err := s.docStore.GetChunks(ctx, documentID); err == nil {
		chunkCount = len(chunks)
	}

	passageCount := 0
	if s.vectors != nil {
		n, err := s.vectors.Count(ctx, documentID)
		if err != nil {
			logger.Warn("Counting passages for %s: %v", documentID, err)
		}
		passageCount = n
	}

	return &driving.DocumentDetails{
		ID:            doc.ID,
		Filename:      doc.Filename,
		Filepath:      doc.Filepath,
		ProductKey:    doc.ProductKey,
		SourceURL:     doc.SourceURL,
		FileSize:      doc.FileSize,
		NumPages:      doc.NumPages,
		ChunkCount:    chunkCount,
		PassageCount:  passageCount,
		Processed:     doc.Processed,
		CreatedAt:     doc.CreatedAt,
		LastProcessed: doc.LastProcessed,
	}, nil
}

// IndexFiles indexes every PDF matching a glob pattern ("**" supported).
// A file that fails is reported in the joined error; the others are
// still indexed.
func (s *DocumentService) IndexFiles(ctx context.Context, req driving.IndexFilesRequest) ([]driving.IndexReport, error) {
	if s.indexer == nil {
		return nil, fmt.Errorf("%w: indexing is not available", domain.ErrConfiguration)
	}
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, fmt.Errorf("%w: pattern is required", domain.ErrInvalidInput)
	}

	matches, err := doublestar.FilepathGlob(req.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	var files []string
	for _, m := range matches {
		if strings.EqualFold(filepath.Ext(m), ".pdf") {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no PDF files match %q", domain.ErrNotFound, req.Pattern)
	}
	sort.Strings(files)

	productKey := ""
	if req.Product != "" {
		productKey = domain.ScopeKeyFor(req.Product)
	}

	reports := make([]driving.IndexReport, 0, len(files))
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.indexer.Index(ctx, IndexRequest{
			Path:       f,
			ProductKey: productKey,
			SourceURL:  req.SourceURL,
			Force:      req.Force,
		})
		if report != nil {
			reports = append(reports, *report)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// ListCached returns cached PDFs, optionally only those whose filename
// starts with the sanitized product name.
func (s *DocumentService) ListCached(ctx context.Context, product string) ([]domain.CachedPDF, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("%w: no pdf cache", domain.ErrConfiguration)
	}
	pdfs, err := s.cache.List(ctx)
	if err != nil {
		return nil, err
	}
	if product == "" {
		return pdfs, nil
	}

	prefix := domain.SanitizeName(product) + "_"
	filtered := make([]domain.CachedPDF, 0, len(pdfs))
	for _, pdf := range pdfs {
		if strings.HasPrefix(pdf.Filename, prefix) {
			filtered = append(filtered, pdf)
		}
	}
	return filtered, nil
}
