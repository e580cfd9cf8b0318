package services

import (
	"strings"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// CitationContext is what one request knows about where its PDFs came from.
type CitationContext struct {
	// ProductName is the requested product.
	ProductName string

	// CachedPDFs are the PDFs acquired for this request.
	CachedPDFs []domain.CachedPDF

	// Candidates are the validated discovery results.
	Candidates []domain.CandidateResult
}

// citationMatcher is one strategy; it returns "" when it does not apply.
type citationMatcher func(p domain.Passage, c CitationContext) string

// citationMatchers are tried in domain.AllCitationStrategies order.
var citationMatchers = map[domain.CitationStrategy]citationMatcher{
	domain.CitationPassageMetadata: func(p domain.Passage, _ CitationContext) string {
		return p.PDFURL
	},
	domain.CitationURLHash: func(p domain.Passage, c CitationContext) string {
		if p.URLHash == "" {
			return ""
		}
		return findCachedURL(c.CachedPDFs, func(pdf domain.CachedPDF) bool {
			return pdf.URLHash == p.URLHash
		})
	},
	domain.CitationDocumentID: func(p domain.Passage, c CitationContext) string {
		return findCachedURL(c.CachedPDFs, func(pdf domain.CachedPDF) bool {
			return domain.DocumentIDForPath(pdf.Path) == p.DocumentID
		})
	},
	domain.CitationFilename: func(p domain.Passage, c CitationContext) string {
		return findCachedURL(c.CachedPDFs, func(pdf domain.CachedPDF) bool {
			return p.SourceFile != "" && pdf.Filename == p.SourceFile
		})
	},
	domain.CitationProductFilename: func(_ domain.Passage, c CitationContext) string {
		stem := domain.SanitizeName(c.ProductName)
		if stem == "" {
			return ""
		}
		return findCachedURL(c.CachedPDFs, func(pdf domain.CachedPDF) bool {
			return strings.Contains(strings.ToLower(pdf.Filename), stem)
		})
	},
	domain.CitationDiscoveryFallback: func(_ domain.Passage, c CitationContext) string {
		for _, cand := range c.Candidates {
			if cand.URL != "" {
				return cand.URL
			}
		}
		return ""
	},
}

func findCachedURL(pdfs []domain.CachedPDF, match func(domain.CachedPDF) bool) string {
	for _, pdf := range pdfs {
		if pdf.URL != "" && match(pdf) {
			return pdf.URL
		}
	}
	return ""
}

// BindCitation resolves a passage's downloadable URL using the first
// strategy that produces one.
func BindCitation(p domain.Passage, c CitationContext) (string, domain.CitationStrategy) {
	for _, strategy := range domain.AllCitationStrategies() {
		if url := citationMatchers[strategy](p, c); url != "" {
			return url, strategy
		}
	}
	return "", domain.CitationUnresolved
}

// BindCitations annotates passages in place and returns them.
func BindCitations(passages []domain.RetrievedPassage, c CitationContext) []domain.RetrievedPassage {
	for i := range passages {
		p := &passages[i]
		p.CitationURL, p.CitationStrategy = BindCitation(p.Passage, c)

		switch {
		case p.CitationStrategy == domain.CitationDiscoveryFallback:
			logger.Warn("Citation for %s (chunk %d) fell back to the first discovery result",
				p.Passage.SourceFile, p.Passage.ChunkIndex)
		case p.CitationStrategy == domain.CitationUnresolved:
			logger.Warn("No citation URL for %s (chunk %d)", p.Passage.SourceFile, p.Passage.ChunkIndex)
		default:
			logger.Debug("Cited %s via %s", p.Passage.SourceFile, p.CitationStrategy)
		}
	}
	return passages
}
