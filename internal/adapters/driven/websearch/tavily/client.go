// Package tavily provides a WebSearch adapter for the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
	"github.com/custodia-labs/labelrag/internal/ratelimit"
	"github.com/custodia-labs/labelrag/internal/retry"
)

// Ensure Client implements the interface.
var _ driven.WebSearch = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.tavily.com"
	DefaultTimeout = 30 * time.Second

	// MaxResultsLimit is the largest max_results the API accepts.
	MaxResultsLimit = 20
)

// Config holds Tavily client configuration.
type Config struct {
	// APIKey is the Tavily API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.tavily.com).
	BaseURL string

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero uses the default.
	RequestsPerSecond float64

	// Retry bounds retries of transient failures (default: retry.DefaultPolicy).
	Retry retry.Policy

	// Cache optionally stores responses. Nil disables caching.
	Cache driven.SearchCache

	// CacheTTL is how long cached responses live.
	CacheTTL time.Duration
}

// Client calls the Tavily /search endpoint.
type Client struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	limiter  *ratelimit.Limiter
	policy   retry.Policy
	cache    driven.SearchCache
	cacheTTL time.Duration
}

type searchRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth,omitempty"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	IncludeAnswer  bool     `json:"include_answer"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// NewClient creates a Tavily client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily: %w: API key is required", domain.ErrSearchUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.DefaultPolicy
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = domain.DefaultSearchCacheTTL
	}

	limiter := ratelimit.New(ratelimit.ServiceWebSearch)
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.NewWithConfig(ratelimit.Config{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         max(1, int(cfg.RequestsPerSecond)),
		})
	}

	return &Client{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		limiter:  limiter,
		policy:   cfg.Retry,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}, nil
}

// Search runs one query. Cached responses are returned without a network
// call; cache failures are logged and ignored.
func (c *Client) Search(ctx context.Context, req driven.WebSearchRequest) (*driven.WebSearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("tavily: %w: empty query", domain.ErrInvalidInput)
	}
	req.MaxResults = min(max(req.MaxResults, 1), MaxResultsLimit)

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, req)
		switch {
		case err != nil:
			logger.Warn("tavily: search cache read failed: %v", err)
		case ok:
			logger.Debug("tavily: cache hit for %q %v", req.Query, req.IncludeDomains)
			return cached, nil
		}
	}

	body, err := json.Marshal(searchRequest{
		Query:          req.Query,
		SearchDepth:    req.Depth,
		MaxResults:     req.MaxResults,
		IncludeDomains: req.IncludeDomains,
		IncludeAnswer:  req.IncludeAnswer,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	var resp *driven.WebSearchResponse
	err = retry.Do(ctx, c.policy, "tavily search", func(ctx context.Context) (retry.Outcome, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Fatal, err
		}
		var outcome retry.Outcome
		var callErr error
		resp, outcome, callErr = c.do(ctx, body)
		return outcome, callErr
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, req, resp, c.cacheTTL); err != nil {
			logger.Warn("tavily: search cache write failed: %v", err)
		}
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, body []byte) (*driven.WebSearchResponse, retry.Outcome, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, retry.Fatal, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, retry.ClassifyError(err), fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, retry.Retryable, fmt.Errorf("read response: %w", err)
	}

	if outcome := retry.ClassifyStatus(httpResp.StatusCode); outcome != retry.Ok {
		if httpResp.StatusCode == http.StatusTooManyRequests {
			if wait := retryAfter(httpResp.Header.Get("Retry-After")); wait > 0 {
				c.limiter.RecordRateLimited(wait)
			}
			return nil, outcome, fmt.Errorf("tavily: %w (status %d)", domain.ErrRateLimited, httpResp.StatusCode)
		}
		return nil, outcome, fmt.Errorf("tavily error (status %d): %s", httpResp.StatusCode, string(data))
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, retry.Fatal, fmt.Errorf("decode response: %w", err)
	}

	out := &driven.WebSearchResponse{
		Answer:  parsed.Answer,
		Results: make([]domain.CandidateResult, 0, len(parsed.Results)),
	}
	for _, r := range parsed.Results {
		out.Results = append(out.Results, domain.CandidateResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}
	return out, retry.Ok, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
