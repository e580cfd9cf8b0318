// Package pdfcache stores downloaded label PDFs on disk, keyed by a hash of
// their source URL.
package pdfcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
	"github.com/custodia-labs/labelrag/internal/ratelimit"
	"github.com/custodia-labs/labelrag/internal/retry"
)

// Ensure Cache implements the interface.
var _ driven.PDFCache = (*Cache)(nil)

const (
	// DefaultUserAgent is sent with downloads. Label sites often block
	// non-browser agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// urlSuffix names the sidecar file recording a PDF's source URL.
	urlSuffix = ".url"

	// fallbackName is used when a product name sanitizes to nothing.
	fallbackName = "label"
)

// Config holds cache configuration.
type Config struct {
	// Dir is the cache directory (default: ~/.labelrag/pdfs).
	Dir string

	// MaxBytes caps a single download (default: 50 MB).
	MaxBytes int64

	// Timeout bounds a single download (default: 30s).
	Timeout time.Duration

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Retry bounds retries of transient failures (default: retry.DefaultPolicy).
	Retry retry.Policy

	// Limiter throttles downloads (default: ratelimit.ServiceDownload).
	Limiter *ratelimit.Limiter
}

// Cache downloads each distinct URL at most once.
type Cache struct {
	dir       string
	maxBytes  int64
	userAgent string
	client    *http.Client
	policy    retry.Policy
	limiter   *ratelimit.Limiter
}

// New creates the cache directory if needed.
func New(cfg Config) (*Cache, error) {
	if cfg.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.Dir = filepath.Join(home, ".labelrag", "pdfs")
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = domain.DefaultMaxDownloadBytes
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = domain.DefaultRequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.DefaultPolicy
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(ratelimit.ServiceDownload)
	}

	// Cached paths feed document ids, which hash the absolute path.
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving pdf cache dir: %w", err)
	}
	cfg.Dir = dir

	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("creating pdf cache dir: %w", err)
	}

	return &Cache{
		dir:       cfg.Dir,
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		policy:    cfg.Retry,
		limiter:   cfg.Limiter,
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Filename returns the cache filename for a URL and product.
func Filename(url, productName string) string {
	name := domain.SanitizeName(productName)
	if name == "" {
		name = fallbackName
	}
	return fmt.Sprintf("%s_%s.pdf", name, domain.URLHash(url))
}

// Acquire returns the cached PDF for url, downloading it if the file is
// missing or empty. Concurrent downloads of the same new URL are not
// serialised; each writes a private temp file and the last rename wins.
func (c *Cache) Acquire(ctx context.Context, url, productName string) (*domain.CachedPDF, error) {
	filename := Filename(url, productName)
	path := filepath.Join(c.dir, filename)

	pdf := &domain.CachedPDF{
		Path:     path,
		Filename: filename,
		URL:      url,
		URLHash:  domain.URLHash(url),
	}

	if info, err := os.Stat(path); err == nil {
		if info.Size() > 0 {
			logger.Debug("pdfcache: hit %s", filename)
			pdf.Size = info.Size()
			pdf.Cached = true
			return pdf, nil
		}
		logger.Warn("pdfcache: %s is empty, downloading again", filename)
	}

	err := retry.Do(ctx, c.policy, "download "+filename, func(ctx context.Context) (retry.Outcome, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Fatal, err
		}
		size, outcome, err := c.download(ctx, url, path)
		pdf.Size = size
		return outcome, err
	})
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path+urlSuffix, []byte(url), 0600); err != nil {
		logger.Warn("pdfcache: recording url for %s: %v", filename, err)
	}
	logger.Info("pdfcache: downloaded %s (%d bytes)", filename, pdf.Size)
	return pdf, nil
}

// download streams url into a temp file next to path, enforcing the size
// cap, and renames it into place. Partial files are always removed.
func (c *Cache) download(ctx context.Context, url, path string) (int64, retry.Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, retry.Fatal, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, retry.ClassifyError(err), fmt.Errorf("%w: %w", domain.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if outcome := retry.ClassifyStatus(resp.StatusCode); outcome != retry.Ok {
		return 0, outcome, fmt.Errorf("%w: status %d from %s", domain.ErrDownloadFailed, resp.StatusCode, url)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "pdf") {
		logger.Debug("pdfcache: %s has content type %s", url, ct)
	}
	if resp.ContentLength > c.maxBytes {
		return 0, retry.Fatal, fmt.Errorf("%w: %d bytes", domain.ErrDownloadTooLarge, resp.ContentLength)
	}

	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return 0, retry.Fatal, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	n, copyErr := io.Copy(tmp, io.LimitReader(resp.Body, c.maxBytes+1))
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		return 0, retry.ClassifyError(copyErr), fmt.Errorf("%w: %w", domain.ErrDownloadFailed, copyErr)
	case closeErr != nil:
		return 0, retry.Fatal, fmt.Errorf("%w: %w", domain.ErrDownloadFailed, closeErr)
	case n > c.maxBytes:
		return 0, retry.Fatal, fmt.Errorf("%w: more than %d bytes", domain.ErrDownloadTooLarge, c.maxBytes)
	case n == 0:
		return 0, retry.Fatal, domain.ErrEmptyDownload
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return 0, retry.Fatal, fmt.Errorf("storing %s: %w", filepath.Base(path), err)
	}
	committed = true
	return n, retry.Ok, nil
}

// List returns every non-empty cached PDF sorted by filename. URLs are
// filled in where a sidecar file recorded them.
func (c *Cache) List(ctx context.Context) ([]domain.CachedPDF, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing pdf cache: %w", err)
	}

	var pdfs []domain.CachedPDF
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		pdf := domain.CachedPDF{
			Path:     filepath.Join(c.dir, name),
			Filename: name,
			Size:     info.Size(),
			Cached:   true,
			URLHash:  hashFromFilename(name),
		}
		if raw, err := os.ReadFile(pdf.Path + urlSuffix); err == nil {
			pdf.URL = strings.TrimSpace(string(raw))
		}
		pdfs = append(pdfs, pdf)
	}

	sort.Slice(pdfs, func(i, j int) bool { return pdfs[i].Filename < pdfs[j].Filename })
	return pdfs, nil
}

// hashFromFilename extracts the URL hash from "<name>_<hash>.pdf".
func hashFromFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexByte(stem, '_')
	if i < 0 || len(stem)-i-1 != domain.URLHashLength {
		return ""
	}
	return stem[i+1:]
}
