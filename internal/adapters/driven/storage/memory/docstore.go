package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It enforces the same constraints as the SQLite store: chunks need an
// existing document and a page number of at least 1.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]map[int]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]map[int]domain.Chunk),
	}
}

// SaveDocument stores or updates a document. CreatedAt is kept from the
// first save.
func (s *DocumentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyDocument(*doc)
	if prev, ok := s.documents[doc.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	doc.CreatedAt = stored.CreatedAt
	s.documents[doc.ID] = stored
	return nil
}

// SaveChunks stores chunks. The batch is validated before anything is
// written, so a bad chunk leaves the store unchanged.
func (s *DocumentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range chunks {
		if _, ok := s.documents[c.DocumentID]; !ok {
			return fmt.Errorf("saving chunk %s: document %s: %w", c.ID, c.DocumentID, domain.ErrNotFound)
		}
		if c.PageNumber < 1 {
			return fmt.Errorf("saving chunk %s: %w: page number %d", c.ID, domain.ErrInvalidInput, c.PageNumber)
		}
	}

	for _, c := range chunks {
		byIndex, ok := s.chunks[c.DocumentID]
		if !ok {
			byIndex = make(map[int]domain.Chunk)
			s.chunks[c.DocumentID] = byIndex
		}
		c.Metadata = maps.Clone(c.Metadata)
		byIndex[c.Index] = c
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyDocument(doc)
	return &out, nil
}

// GetChunks retrieves all chunks for a document in index order.
func (s *DocumentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	byIndex := s.chunks[documentID]
	if len(byIndex) == 0 {
		return nil, nil
	}
	out := make([]domain.Chunk, 0, len(byIndex))
	for _, c := range byIndex {
		c.Metadata = maps.Clone(c.Metadata)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// DeleteChunks removes every chunk of a document.
func (s *DocumentStore) DeleteChunks(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, documentID)
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListDocuments returns documents for a product scope key ordered by
// filename. An empty key lists every document.
func (s *DocumentStore) ListDocuments(ctx context.Context, productKey string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Document
	for _, doc := range s.documents {
		if productKey == "" || doc.ProductKey == productKey {
			result = append(result, copyDocument(doc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Filename != result[j].Filename {
			return result[i].Filename < result[j].Filename
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// copyDocument detaches a document from caller-owned memory. Pages are
// transient and never stored.
func copyDocument(doc domain.Document) domain.Document {
	doc.Pages = nil
	doc.Metadata = maps.Clone(doc.Metadata)
	if doc.LastProcessed != nil {
		t := *doc.LastProcessed
		doc.LastProcessed = &t
	}
	return doc
}
