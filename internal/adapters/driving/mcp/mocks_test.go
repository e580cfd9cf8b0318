package mcp

import (
	"context"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
)

// mockLabelService is a mock implementation of driving.LabelService.
type mockLabelService struct {
	result *domain.FindResult
	err    error
	got    domain.FindRequest
}

func (m *mockLabelService) FindAndRetrieve(_ context.Context, req domain.FindRequest) (*domain.FindResult, error) {
	m.got = req
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	err       error
	product   string
}

func (m *mockDocumentService) List(_ context.Context, product string) ([]domain.Document, error) {
	m.product = product
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	return nil, m.err
}

func (m *mockDocumentService) IndexFiles(_ context.Context, _ driving.IndexFilesRequest) ([]driving.IndexReport, error) {
	return nil, m.err
}

func (m *mockDocumentService) ListCached(_ context.Context, _ string) ([]domain.CachedPDF, error) {
	return nil, m.err
}
