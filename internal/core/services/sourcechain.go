package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// overFetchFactor widens each search so relevance filtering still leaves
// enough results.
const overFetchFactor = 2

// SourceChainSearcher walks an ordered list of sources and stops at the
// first one that yields relevant results.
type SourceChainSearcher struct {
	search  driven.WebSearch
	sources []domain.Source
	depth   string
}

// NewSourceChainSearcher creates a searcher over the given chain.
// An empty chain uses domain.DefaultSourceChain.
func NewSourceChainSearcher(search driven.WebSearch, sources []domain.Source, depth string) *SourceChainSearcher {
	if len(sources) == 0 {
		sources = domain.DefaultSourceChain()
	}
	if depth == "" {
		depth = domain.DefaultWebSearchDepth
	}
	return &SourceChainSearcher{
		search:  search,
		sources: sources,
		depth:   depth,
	}
}

// Sources returns the configured chain.
func (s *SourceChainSearcher) Sources() []domain.Source {
	return s.sources
}

// BuildLabelQuery returns the search query for a product on a source.
func BuildLabelQuery(q domain.ProductQuery, src domain.Source) string {
	parts := []string{q.CleanName()}
	if q.ActiveIngredient != "" {
		parts = append(parts, q.ActiveIngredient)
	}
	parts = append(parts, "pesticide label")
	if src.IsBroad() {
		parts = append(parts, "PDF safety data sheet")
	}
	return strings.Join(parts, " ")
}

// NotFoundMessage explains an exhausted chain.
func NotFoundMessage(productName string, tried []string) string {
	return fmt.Sprintf("No labels found for %q in: %s", productName, strings.Join(tried, ", "))
}

// Search queries each source in order. A failing source is logged and
// treated as empty. Not finding anything is reported in the result's
// Message, never as an error.
func (s *SourceChainSearcher) Search(ctx context.Context, q domain.ProductQuery, maxResults int) *domain.ChainResult {
	logger.Section("Source Chain")
	if maxResults <= 0 {
		maxResults = domain.MaxPDFsPerRequest
	}
	words := relevanceWords(q)
	logger.Debug("Product: %q, relevance words: %v", q.CleanName(), words)

	result := &domain.ChainResult{}
	for _, src := range s.sources {
		if ctx.Err() != nil {
			logger.Warn("Source chain cancelled after %d sources", len(result.SourcesTried))
			break
		}
		result.SourcesTried = append(result.SourcesTried, src.Name)

		query := BuildLabelQuery(q, src)
		logger.Debug("Trying %s (domains=%v): %q", src.Name, src.Domains, query)

		resp, err := s.search.Search(ctx, driven.WebSearchRequest{
			Query:          query,
			IncludeDomains: src.Domains,
			MaxResults:     maxResults * overFetchFactor,
			Depth:          s.depth,
			IncludeAnswer:  true,
		})
		if err != nil {
			logger.Warn("Source %s failed: %v", src.Name, err)
			continue
		}

		valid := ValidateRelevance(resp.Results, words, maxResults)
		logger.Debug("%s: %d raw, %d relevant", src.Name, len(resp.Results), len(valid))
		if len(valid) == 0 {
			continue
		}

		result.Results = valid
		result.SourceUsed = src.Name
		result.Answer = resp.Answer
		result.Query = query
		logger.Info("Found %d labels via %s", len(valid), src.Name)
		return result
	}

	result.Message = NotFoundMessage(q.CleanName(), result.SourcesTried)
	logger.Info("%s", result.Message)
	return result
}
