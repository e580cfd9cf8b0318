package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// WebSearch performs domain-filtered web searches.
// Implementations throttle and retry transient failures internally.
type WebSearch interface {
	// Search runs one query. A response with no results is not an error.
	Search(ctx context.Context, req WebSearchRequest) (*WebSearchResponse, error)
}

// WebSearchRequest is one outbound search.
type WebSearchRequest struct {
	// Query is the search string.
	Query string

	// IncludeDomains restricts results to these hosts. Empty means no filter.
	IncludeDomains []string

	// MaxResults caps the number of results.
	MaxResults int

	// Depth is the provider search depth ("basic" or "advanced").
	Depth string

	// IncludeAnswer requests a short summary answer.
	IncludeAnswer bool
}

// WebSearchResponse is the provider response.
type WebSearchResponse struct {
	// Results are the hits in provider order.
	Results []domain.CandidateResult `json:"results"`

	// Answer is the provider's summary, if requested.
	Answer string `json:"answer,omitempty"`
}

// SearchCache caches web search responses by request.
// Misses are reported as (nil, false, nil).
type SearchCache interface {
	// Get returns a cached response for the request.
	Get(ctx context.Context, req WebSearchRequest) (*WebSearchResponse, bool, error)

	// Set stores a response for the request with the given lifetime.
	Set(ctx context.Context, req WebSearchRequest, resp *WebSearchResponse, ttl time.Duration) error

	// Close releases resources.
	Close() error
}
