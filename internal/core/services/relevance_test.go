package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

func urlsOf(results []domain.CandidateResult) []string {
	urls := make([]string, len(results))
	for i, r := range results {
		urls[i] = r.URL
	}
	return urls
}

func TestPrioritizePDFs(t *testing.T) {
	results := []domain.CandidateResult{
		{URL: "https://a.example/page"},
		{URL: "https://a.example/one.pdf"},
		{URL: "https://b.example/other"},
		{URL: "https://www.cdms.net/ldat/ld123.pdf?x=1"},
		{URL: "https://www.cdms.net/ldat/ldXYZ"},
	}

	assert.Equal(t, []string{
		"https://a.example/one.pdf",
		"https://www.cdms.net/ldat/ld123.pdf?x=1",
		"https://www.cdms.net/ldat/ldXYZ",
		"https://a.example/page",
		"https://b.example/other",
	}, urlsOf(PrioritizePDFs(results, 0)))

	assert.Equal(t, []string{
		"https://a.example/one.pdf",
		"https://www.cdms.net/ldat/ld123.pdf?x=1",
	}, urlsOf(PrioritizePDFs(results, 2)))
}

func TestValidateRelevance(t *testing.T) {
	results := []domain.CandidateResult{
		{Title: "Weed control guide", URL: "https://x.example/guide"},
		{Title: "Specimen label", URL: "https://x.example/roundup-powermax.pdf"},
		{Title: "Something", Snippet: "POWERMAX II herbicide", URL: "https://x.example/p"},
		{Title: "Other product", URL: "https://x.example/other.pdf"},
	}
	words := mustQuery(t, "Roundup PowerMAX", "").SignificantWords()

	got := ValidateRelevance(results, words, 0)
	assert.Equal(t, []string{"https://x.example/roundup-powermax.pdf", "https://x.example/p"}, urlsOf(got))
}

func TestValidateRelevance_TruncatesBeforeFiltering(t *testing.T) {
	results := []domain.CandidateResult{
		{Title: "Unrelated", URL: "https://x.example/a.pdf"},
		{Title: "Roundup", URL: "https://x.example/page"},
	}
	got := ValidateRelevance(results, []string{"roundup"}, 1)
	assert.Empty(t, got)
}

func TestRelevanceWords(t *testing.T) {
	assert.Equal(t, []string{"roundup", "powermax"}, relevanceWords(mustQuery(t, "Roundup PowerMAX", "")))
	assert.Equal(t, []string{"2 4d"}, relevanceWords(mustQuery(t, "2 4D", "")))
}
