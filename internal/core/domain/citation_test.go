package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllCitationStrategies_Order(t *testing.T) {
	assert.Equal(t, []CitationStrategy{
		CitationPassageMetadata,
		CitationURLHash,
		CitationDocumentID,
		CitationFilename,
		CitationProductFilename,
		CitationDiscoveryFallback,
	}, AllCitationStrategies())
}

func TestCitationStrategy_IsValid(t *testing.T) {
	for _, s := range AllCitationStrategies() {
		assert.True(t, s.IsValid(), s)
		assert.NotEqual(t, "Unknown", s.Description(), s)
	}
	assert.True(t, CitationUnresolved.IsValid())
	assert.False(t, CitationStrategy("guess").IsValid())
}

func TestCitationStrategy_IsLastResort(t *testing.T) {
	assert.True(t, CitationDiscoveryFallback.IsLastResort())
	assert.True(t, CitationUnresolved.IsLastResort())
	assert.False(t, CitationPassageMetadata.IsLastResort())
	assert.False(t, CitationURLHash.IsLastResort())
}

func TestNewCitedPassage(t *testing.T) {
	r := RetrievedPassage{
		ID: "42",
		Passage: Passage{
			DocumentID: "doc",
			ChunkIndex: 2,
			Content:    "text",
			PageNumber: 7,
			SourceFile: "roundup_abc.pdf",
		},
		Score:            0.81,
		ViaFallback:      true,
		CitationURL:      "https://x/roundup.pdf",
		CitationStrategy: CitationURLHash,
	}

	p := NewCitedPassage(r)

	assert.Equal(t, "text", p.Content)
	assert.Equal(t, 7, p.PageNumber)
	assert.Equal(t, "roundup_abc.pdf", p.SourceFile)
	assert.Equal(t, "https://x/roundup.pdf", p.PDFURL)
	assert.InDelta(t, 0.81, p.Score, 1e-9)
	assert.True(t, p.ViaFallback)
	assert.Equal(t, CitationURLHash, p.CitationStrategy)
}

func TestNewCitedPassage_MissingPage(t *testing.T) {
	p := NewCitedPassage(RetrievedPassage{Passage: Passage{ChunkIndex: 7}})
	assert.Equal(t, 3, p.PageNumber)
	assert.True(t, p.PageEstimated)

	p = NewCitedPassage(RetrievedPassage{Passage: Passage{ChunkIndex: 7, PageNumber: 5}})
	assert.Equal(t, 5, p.PageNumber)
	assert.False(t, p.PageEstimated)
}

func TestEstimatePage(t *testing.T) {
	tests := []struct {
		index int
		want  int
	}{
		{-1, 1},
		{0, 1},
		{2, 1},
		{3, 2},
		{7, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimatePage(tt.index), "chunk %d", tt.index)
	}
}

func TestRetrievalOptions_WithDefaults(t *testing.T) {
	o := RetrievalOptions{}.WithDefaults()
	assert.Equal(t, 5, o.Limit)
	assert.InDelta(t, 0.3, o.ScoreThreshold, 1e-9)

	o = RetrievalOptions{Limit: 2, ScoreThreshold: 0.5}.WithDefaults()
	assert.Equal(t, 2, o.Limit)
	assert.InDelta(t, 0.5, o.ScoreThreshold, 1e-9)

	o = RetrievalOptions{ScoreThreshold: 0.5, NoThreshold: true}.WithDefaults()
	assert.Zero(t, o.ScoreThreshold)
}

func TestDefaultTopicBoostGroups(t *testing.T) {
	groups := DefaultTopicBoostGroups()
	assert.NotEmpty(t, groups)
	assert.Equal(t, "reentry", groups[0].Name)
	assert.Contains(t, groups[0].Keywords, "re-entry")
	for _, g := range groups {
		assert.NotEmpty(t, g.Triggers, g.Name)
		assert.NotEmpty(t, g.Keywords, g.Name)
		assert.NotEmpty(t, g.Augment, g.Name)
	}
}
