package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

func TestBindCitation_Strategies(t *testing.T) {
	const (
		labelURL = "https://www.cdms.net/ldat/ld8CM013.pdf"
		otherURL = "https://www.cdms.net/ldat/ld9XX001.pdf"
		pageURL  = "https://www.cdms.net/roundup"
	)
	cached := domain.CachedPDF{
		Path:     "/cache/roundup_powermax_" + domain.URLHash(labelURL) + ".pdf",
		Filename: "roundup_powermax_" + domain.URLHash(labelURL) + ".pdf",
		URL:      labelURL,
		URLHash:  domain.URLHash(labelURL),
	}
	ctx := CitationContext{
		ProductName: "Roundup PowerMAX",
		CachedPDFs:  []domain.CachedPDF{cached},
		Candidates:  []domain.CandidateResult{{URL: pageURL}},
	}

	tests := []struct {
		name     string
		passage  domain.Passage
		ctx      CitationContext
		wantURL  string
		wantFrom domain.CitationStrategy
	}{
		{
			name:     "stored url wins",
			passage:  domain.Passage{PDFURL: otherURL, URLHash: cached.URLHash},
			ctx:      ctx,
			wantURL:  otherURL,
			wantFrom: domain.CitationPassageMetadata,
		},
		{
			name:     "url hash",
			passage:  domain.Passage{URLHash: cached.URLHash},
			ctx:      ctx,
			wantURL:  labelURL,
			wantFrom: domain.CitationURLHash,
		},
		{
			name:     "document id",
			passage:  domain.Passage{DocumentID: domain.DocumentIDForPath(cached.Path)},
			ctx:      ctx,
			wantURL:  labelURL,
			wantFrom: domain.CitationDocumentID,
		},
		{
			name:     "filename",
			passage:  domain.Passage{DocumentID: "x", SourceFile: cached.Filename},
			ctx:      ctx,
			wantURL:  labelURL,
			wantFrom: domain.CitationFilename,
		},
		{
			name:     "product in filename",
			passage:  domain.Passage{DocumentID: "x", SourceFile: "legacy.pdf"},
			ctx:      ctx,
			wantURL:  labelURL,
			wantFrom: domain.CitationProductFilename,
		},
		{
			name:     "discovery fallback",
			passage:  domain.Passage{DocumentID: "x", SourceFile: "legacy.pdf"},
			ctx:      CitationContext{ProductName: "Other", CachedPDFs: ctx.CachedPDFs, Candidates: ctx.Candidates},
			wantURL:  pageURL,
			wantFrom: domain.CitationDiscoveryFallback,
		},
		{
			name:     "unresolved",
			passage:  domain.Passage{DocumentID: "x"},
			ctx:      CitationContext{ProductName: "Other"},
			wantURL:  "",
			wantFrom: domain.CitationUnresolved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, strategy := BindCitation(tt.passage, tt.ctx)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.wantFrom, strategy)
		})
	}
}

func TestBindCitation_IgnoresCachedPDFsWithoutURL(t *testing.T) {
	ctx := CitationContext{
		ProductName: "Roundup",
		CachedPDFs:  []domain.CachedPDF{{Filename: "roundup_abc.pdf", URLHash: "abc"}},
	}
	_, strategy := BindCitation(domain.Passage{URLHash: "abc", SourceFile: "roundup_abc.pdf"}, ctx)
	assert.Equal(t, domain.CitationUnresolved, strategy)
}

func TestBindCitations(t *testing.T) {
	passages := []domain.RetrievedPassage{
		{ID: "1", Passage: domain.Passage{PDFURL: "https://a.example/a.pdf"}},
		{ID: "2", Passage: domain.Passage{}},
	}
	ctx := CitationContext{Candidates: []domain.CandidateResult{{URL: "https://a.example/page"}}}

	got := BindCitations(passages, ctx)

	assert.Equal(t, "https://a.example/a.pdf", got[0].CitationURL)
	assert.Equal(t, domain.CitationPassageMetadata, got[0].CitationStrategy)
	assert.Equal(t, "https://a.example/page", got[1].CitationURL)
	assert.True(t, got[1].CitationStrategy.IsLastResort())
}
