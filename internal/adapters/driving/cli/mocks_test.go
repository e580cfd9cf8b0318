package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
)

type mockLabelService struct {
	result *domain.FindResult
	err    error
	got    domain.FindRequest
}

func (m *mockLabelService) FindAndRetrieve(_ context.Context, req domain.FindRequest) (*domain.FindResult, error) {
	m.got = req
	return m.result, m.err
}

type mockDocumentService struct {
	reports  []driving.IndexReport
	indexErr error
	indexReq driving.IndexFilesRequest
	product  string
}

func (m *mockDocumentService) List(_ context.Context, product string) ([]domain.Document, error) {
	m.product = product
	if product == "nothing" {
		return nil, nil
	}
	return []domain.Document{
		{ID: "doc-1", Filename: "roundup_4f1c2a9b0d3e.pdf", ProductKey: "roundup", NumPages: 12, NumChunks: 30, Processed: true,
			SourceURL: "https://www.cdms.net/ldat/ld8CM013.pdf"},
		{ID: "doc-2", Filename: "roundup_0a1b2c3d4e5f.pdf", ProductKey: "roundup", NumPages: 2},
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	return &domain.Document{ID: "doc-1"}, nil
}

func (m *mockDocumentService) GetChunks(_ context.Context, id string) ([]domain.Chunk, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	return []domain.Chunk{
		{Index: 0, PageNumber: 1, Content: "DIRECTIONS FOR USE", TokenCount: 4},
		{Index: 1, PageNumber: 3, Content: "STORAGE AND DISPOSAL", TokenCount: 5},
	}, nil
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*driving.DocumentDetails, error) {
	if id != "doc-1" {
		return nil, domain.ErrNotFound
	}
	indexed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &driving.DocumentDetails{
		ID:            "doc-1",
		Filename:      "roundup_4f1c2a9b0d3e.pdf",
		Filepath:      "/home/user/.labelrag/pdfs/roundup_4f1c2a9b0d3e.pdf",
		ProductKey:    "roundup",
		SourceURL:     "https://www.cdms.net/ldat/ld8CM013.pdf",
		NumPages:      12,
		ChunkCount:    30,
		PassageCount:  30,
		Processed:     true,
		CreatedAt:     indexed,
		LastProcessed: &indexed,
	}, nil
}

func (m *mockDocumentService) IndexFiles(_ context.Context, req driving.IndexFilesRequest) ([]driving.IndexReport, error) {
	m.indexReq = req
	return m.reports, m.indexErr
}

func (m *mockDocumentService) ListCached(_ context.Context, product string) ([]domain.CachedPDF, error) {
	m.product = product
	return []domain.CachedPDF{
		{Filename: "roundup_4f1c2a9b0d3e.pdf", URL: "https://www.cdms.net/ldat/ld8CM013.pdf", Size: 204800},
	}, nil
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setKey      string
	setValue    string
	setErr      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.setErr
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "retrieval.limit"}
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

type testServices struct {
	label    *mockLabelService
	docs     *mockDocumentService
	settings *mockSettingsService
}

var testMocks testServices

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() func() {
	origLabel, origDocs, origSettings := labelService, documentService, settingsService
	origInit, origWatch := initialiser, watchConfig

	testMocks = testServices{
		label: &mockLabelService{result: &domain.FindResult{
			Success:        true,
			RequestID:      "req-1",
			ProductName:    "Roundup",
			PDFsDownloaded: 2,
			PDFsIndexed:    1,
			SourceUsed:     "CDMS",
			SourcesTried:   []string{"CDMS"},
			Answer:         "Roundup is a glyphosate herbicide.",
			Passages: []domain.CitedPassage{
				{Content: "Store in original container.", PageNumber: 4, SourceFile: "roundup_4f1c2a9b0d3e.pdf",
					PDFURL: "https://www.cdms.net/ldat/ld8CM013.pdf", Score: 0.82},
				{Content: "Do not contaminate water.", PageNumber: 5, SourceFile: "roundup_4f1c2a9b0d3e.pdf",
					PDFURL: "https://www.cdms.net/ldat/ld8CM013.pdf", Score: 0.74},
			},
		}},
		docs:     &mockDocumentService{},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	labelService = testMocks.label
	documentService = testMocks.docs
	settingsService = testMocks.settings

	return func() {
		labelService, documentService, settingsService = origLabel, origDocs, origSettings
		initialiser, watchConfig = origInit, origWatch
		initOnce = sync.Once{}
		initErr = nil
	}
}
