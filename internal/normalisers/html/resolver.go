package html

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/ratelimit"
	"github.com/custodia-labs/labelrag/internal/retry"
)

// Ensure LinkResolver implements the interface.
var _ driven.LinkResolver = (*LinkResolver)(nil)

const (
	// DefaultTimeout bounds a landing page fetch.
	DefaultTimeout = 15 * time.Second

	// MaxPageBytes caps how much of a landing page is read.
	MaxPageBytes = int64(5 << 20)

	// DefaultUserAgent is sent with landing page requests. Some label
	// archives reject non-browser agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds resolver configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Retry     retry.Policy

	// Limiter throttles page fetches (default: ratelimit.ServiceLandingPage).
	Limiter *ratelimit.Limiter
}

// LinkResolver fetches HTML landing pages and collects PDF anchors.
type LinkResolver struct {
	client    *http.Client
	userAgent string
	policy    retry.Policy
	limiter   *ratelimit.Limiter
}

// NewLinkResolver creates a resolver.
func NewLinkResolver(cfg Config) *LinkResolver {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	policy := cfg.Retry
	if policy.Attempts == 0 {
		policy = retry.DefaultPolicy
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.ServiceLandingPage)
	}

	return &LinkResolver{
		client:    &http.Client{Timeout: timeout},
		userAgent: ua,
		policy:    policy,
		limiter:   limiter,
	}
}

// ResolvePDFLinks returns absolute PDF URLs linked from pageURL in
// document order, without duplicates.
func (r *LinkResolver) ResolvePDFLinks(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}

	var body string
	err = retry.Do(ctx, r.policy, "fetch landing page", func(ctx context.Context) (retry.Outcome, error) {
		if waitErr := r.limiter.Wait(ctx); waitErr != nil {
			return retry.Fatal, waitErr
		}
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if reqErr != nil {
			return retry.Fatal, reqErr
		}
		req.Header.Set("User-Agent", r.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, doErr := r.client.Do(req)
		if doErr != nil {
			return retry.ClassifyError(doErr), doErr
		}
		defer resp.Body.Close()

		if outcome := retry.ClassifyStatus(resp.StatusCode); outcome != retry.Ok {
			return outcome, fmt.Errorf("landing page returned status %d", resp.StatusCode)
		}

		b, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes))
		if readErr != nil {
			return retry.Retryable, readErr
		}
		body = string(b)
		return retry.Ok, nil
	})
	if err != nil {
		return nil, err
	}

	return ExtractPDFLinks(base, body)
}

// ExtractPDFLinks parses HTML and returns PDF anchors resolved against base.
func ExtractPDFLinks(base *url.URL, body string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing landing page: %w", err)
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""

		link := abs.String()
		if !domain.IsDirectPDFURL(link) || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links, nil
}
