package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
)

func mustQuery(t *testing.T, name, ingredient string) domain.ProductQuery {
	t.Helper()
	q, err := domain.NewProductQuery(name, ingredient)
	require.NoError(t, err)
	return q
}

func TestBuildLabelQuery(t *testing.T) {
	cdms := domain.Source{Name: "CDMS", Domains: []string{"cdms.net"}}
	broad := domain.Source{Name: "Web (broad)"}

	tests := []struct {
		name       string
		product    string
		ingredient string
		source     domain.Source
		want       string
	}{
		{"plain", "Roundup PowerMAX", "", cdms, "Roundup PowerMAX pesticide label"},
		{"ingredient", "Roundup", "glyphosate", cdms, "Roundup glyphosate pesticide label"},
		{"trademark stripped", "Roundup® PowerMAX™", "", cdms, "Roundup PowerMAX pesticide label"},
		{"broad web", "Roundup", "", broad, "Roundup pesticide label PDF safety data sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildLabelQuery(mustQuery(t, tt.product, tt.ingredient), tt.source))
		})
	}
}

func TestSourceChain_FirstSourceWins(t *testing.T) {
	search := &mockWebSearch{responses: map[string]*driven.WebSearchResponse{
		"cdms.net": {
			Results: []domain.CandidateResult{{Title: "Roundup label", URL: "https://www.cdms.net/ldat/ld8CM013.pdf"}},
			Answer:  "Roundup is a herbicide.",
		},
		"greenbook.net": {
			Results: []domain.CandidateResult{{Title: "Roundup", URL: "https://greenbook.net/roundup.pdf"}},
		},
	}}
	chain := NewSourceChainSearcher(search, nil, "")

	result := chain.Search(context.Background(), mustQuery(t, "Roundup", ""), 3)

	require.True(t, result.Found())
	assert.Equal(t, "CDMS", result.SourceUsed)
	assert.Equal(t, []string{"CDMS"}, result.SourcesTried)
	assert.Equal(t, "Roundup is a herbicide.", result.Answer)
	assert.Empty(t, result.Message)

	require.Len(t, search.requests, 1)
	req := search.requests[0]
	assert.Equal(t, []string{"cdms.net"}, req.IncludeDomains)
	assert.Equal(t, 6, req.MaxResults)
	assert.Equal(t, domain.DefaultWebSearchDepth, req.Depth)
	assert.True(t, req.IncludeAnswer)
}

func TestSourceChain_SkipsIrrelevantAndFailingSources(t *testing.T) {
	search := &mockWebSearch{
		responses: map[string]*driven.WebSearchResponse{
			"cdms.net": {Results: []domain.CandidateResult{{Title: "Unrelated", URL: "https://www.cdms.net/other.pdf"}}},
			"epa.gov":  {Results: []domain.CandidateResult{{Title: "Roundup label", URL: "https://epa.gov/roundup.pdf"}}},
		},
		errs: map[string]error{"greenbook.net": errors.New("search unavailable")},
	}
	chain := NewSourceChainSearcher(search, nil, "basic")

	result := chain.Search(context.Background(), mustQuery(t, "Roundup", ""), 3)

	require.True(t, result.Found())
	assert.Equal(t, "EPA", result.SourceUsed)
	assert.Equal(t, []string{"CDMS", "Greenbook", "EPA"}, result.SourcesTried)
	assert.Equal(t, "basic", search.requests[0].Depth)
}

func TestSourceChain_NotFound(t *testing.T) {
	search := &mockWebSearch{}
	chain := NewSourceChainSearcher(search, nil, "")

	result := chain.Search(context.Background(), mustQuery(t, "Xyzabc123", ""), 3)

	assert.False(t, result.Found())
	assert.Empty(t, result.SourceUsed)
	assert.Equal(t, domain.SourceNames(domain.DefaultSourceChain()), result.SourcesTried)
	assert.Equal(t,
		`No labels found for "Xyzabc123" in: CDMS, Greenbook, EPA, CDPR / State DBs, Web (broad)`,
		result.Message)

	last := search.requests[len(search.requests)-1]
	assert.Empty(t, last.IncludeDomains)
	assert.Contains(t, last.Query, "PDF safety data sheet")
}

func TestSourceChain_CustomOrder(t *testing.T) {
	search := &mockWebSearch{}
	sources := domain.ReorderSources(domain.DefaultSourceChain(), []string{"EPA", "cdms"})
	chain := NewSourceChainSearcher(search, sources, "")

	result := chain.Search(context.Background(), mustQuery(t, "Roundup", ""), 3)

	assert.Equal(t, []string{"EPA", "CDMS", "Greenbook", "CDPR / State DBs", "Web (broad)"}, result.SourcesTried)
}

func TestSourceChain_CancelledContext(t *testing.T) {
	search := &mockWebSearch{}
	chain := NewSourceChainSearcher(search, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := chain.Search(ctx, mustQuery(t, "Roundup", ""), 3)

	assert.False(t, result.Found())
	assert.Empty(t, search.requests)
}
