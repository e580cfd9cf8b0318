package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

func TestServer_handleFind(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cited passages", func(t *testing.T) {
		label := &mockLabelService{result: &domain.FindResult{
			Success:     true,
			RequestID:   "req-1",
			ProductName: "Roundup",
			Passages: []domain.CitedPassage{{
				Content:    "Store in original container.",
				PageNumber: 4,
				SourceFile: "roundup_4f1c2a9b0d3e.pdf",
				PDFURL:     "https://www.cdms.net/ldat/ld8CM013.pdf",
				Score:      0.82,
				DocumentID: "doc-1",
			}},
			PDFsDownloaded: 1,
			PDFsIndexed:    1,
			SourceUsed:     "CDMS",
			SourcesTried:   []string{"CDMS"},
		}}
		server, err := NewServer(&Ports{Label: label})
		require.NoError(t, err)

		_, output, err := server.handleFind(ctx, nil, FindInput{
			ProductName:      "Roundup",
			Question:         "How do I store it?",
			ActiveIngredient: "glyphosate",
			Limit:            3,
		})
		require.NoError(t, err)

		assert.Equal(t, "Roundup", label.got.ProductName)
		assert.Equal(t, "glyphosate", label.got.ActiveIngredient)
		assert.Equal(t, 3, label.got.Limit)

		assert.True(t, output.Success)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Passages, 1)
		assert.Equal(t, 4, output.Passages[0].PageNumber)
		assert.Equal(t, "https://www.cdms.net/ldat/ld8CM013.pdf", output.Passages[0].PDFURL)
		assert.Equal(t, "CDMS", output.SourceUsed)
	})

	t.Run("not found is a successful empty result", func(t *testing.T) {
		label := &mockLabelService{result: &domain.FindResult{
			Success:  true,
			Passages: []domain.CitedPassage{},
			Message:  `No labels found for "Xyzabc123" in: CDMS`,
		}}
		server, err := NewServer(&Ports{Label: label})
		require.NoError(t, err)

		_, output, err := server.handleFind(ctx, nil, FindInput{ProductName: "Xyzabc123", Question: "q"})
		require.NoError(t, err)
		assert.Zero(t, output.Count)
		assert.NotNil(t, output.Passages)
		assert.NotNil(t, output.SourcesTried)
		assert.Contains(t, output.Message, "No labels found")
	})

	t.Run("returns error on failure", func(t *testing.T) {
		label := &mockLabelService{err: domain.ErrEmbeddingUnavailable}
		server, err := NewServer(&Ports{Label: label})
		require.NoError(t, err)

		_, _, err = server.handleFind(ctx, nil, FindInput{ProductName: "Roundup", Question: "q"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()
	indexed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	docs := &mockDocumentService{documents: []domain.Document{
		{ID: "doc-1", Filename: "roundup_4f1c2a9b0d3e.pdf", ProductKey: "roundup", NumPages: 12, NumChunks: 30, Processed: true, LastProcessed: &indexed},
		{ID: "doc-2", Filename: "sevin_0a1b2c3d4e5f.pdf", ProductKey: "sevin"},
	}}
	server, err := NewServer(&Ports{Label: &mockLabelService{}, Document: docs})
	require.NoError(t, err)

	_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{Product: "Roundup"})
	require.NoError(t, err)

	assert.Equal(t, "Roundup", docs.product)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "labelrag://documents/doc-1", output.Documents[0].ResourceURI)
	assert.Equal(t, "2026-03-01T12:00:00Z", output.Documents[0].Indexed)
	assert.Empty(t, output.Documents[1].Indexed)

	t.Run("propagates errors", func(t *testing.T) {
		docs.err = errors.New("database is locked")
		_, _, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})
		assert.ErrorContains(t, err, "database is locked")
	})

	t.Run("missing document service", func(t *testing.T) {
		bare, err := NewServer(&Ports{Label: &mockLabelService{}})
		require.NoError(t, err)
		_, _, err = bare.handleListDocuments(ctx, nil, ListDocumentsInput{})
		assert.Error(t, err)
	})
}
