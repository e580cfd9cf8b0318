package pdfcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/ratelimit"
	"github.com/custodia-labs/labelrag/internal/retry"
)

const pdfBody = "%PDF-1.4\nfake label body\n%%EOF\n"

func newTestCache(t *testing.T, maxBytes int64) *Cache {
	t.Helper()
	c, err := New(Config{
		Dir:      t.TempDir(),
		MaxBytes: maxBytes,
		Retry:    retry.Policy{Attempts: 3, Backoff: time.Millisecond},
		Limiter:  ratelimit.NewWithConfig(ratelimit.Config{}),
	})
	require.NoError(t, err)
	return c
}

func pdfServer(t *testing.T, calls *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Roundup PowerMAX", "roundup_powermax"},
		{"2,4-D Amine", "24-d_amine"},
		{"Weed/Grass Killer!", "weed_grass_killer"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.SanitizeName(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	url := "https://www.cdms.net/ldat/ld8CM013.pdf"
	name := Filename(url, "Roundup PowerMAX")

	assert.True(t, strings.HasPrefix(name, "roundup_powermax_"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Equal(t, domain.URLHash(url), hashFromFilename(name))
	assert.Len(t, domain.URLHash(url), domain.URLHashLength)

	assert.Equal(t, "label_"+domain.URLHash(url)+".pdf", Filename(url, "!!!"))
}

func TestAcquire_DownloadsOnce(t *testing.T) {
	var calls atomic.Int32
	srv := pdfServer(t, &calls, pdfBody)
	c := newTestCache(t, 0)
	url := srv.URL + "/label.pdf"

	first, err := c.Acquire(context.Background(), url, "Roundup")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, int64(len(pdfBody)), first.Size)

	data, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, string(data))

	second, err := c.Acquire(context.Background(), url, "Roundup")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_RelativeDirIsMadeAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())
	c, err := New(Config{Dir: "pdfs", Limiter: ratelimit.NewWithConfig(ratelimit.Config{})})
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(c.Dir()), c.Dir())
	assert.Equal(t, "pdfs", filepath.Base(c.Dir()))

	var calls atomic.Int32
	srv := pdfServer(t, &calls, pdfBody)
	pdf, err := c.Acquire(context.Background(), srv.URL+"/label.pdf", "Roundup")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(pdf.Path), pdf.Path)
	assert.Equal(t, c.Dir(), filepath.Dir(pdf.Path))
}

func TestAcquire_DistinctURLsDistinctPaths(t *testing.T) {
	var calls atomic.Int32
	srv := pdfServer(t, &calls, pdfBody)
	c := newTestCache(t, 0)

	a, err := c.Acquire(context.Background(), srv.URL+"/a.pdf", "Roundup")
	require.NoError(t, err)
	b, err := c.Acquire(context.Background(), srv.URL+"/b.pdf", "Roundup")
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAcquire_EmptyFileRedownloaded(t *testing.T) {
	var calls atomic.Int32
	srv := pdfServer(t, &calls, pdfBody)
	c := newTestCache(t, 0)
	url := srv.URL + "/label.pdf"

	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), Filename(url, "Roundup")), nil, 0600))

	pdf, err := c.Acquire(context.Background(), url, "Roundup")
	require.NoError(t, err)
	assert.False(t, pdf.Cached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAcquire_TooLarge(t *testing.T) {
	var calls atomic.Int32
	srv := pdfServer(t, &calls, strings.Repeat("x", 64))
	c := newTestCache(t, 16)

	_, err := c.Acquire(context.Background(), srv.URL+"/big.pdf", "Big")
	assert.ErrorIs(t, err, domain.ErrDownloadTooLarge)
	assert.Equal(t, int32(1), calls.Load())

	entries, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAcquire_Empty(t *testing.T) {
	var calls atomic.Int32
	srv := pdfServer(t, &calls, "")
	c := newTestCache(t, 0)

	_, err := c.Acquire(context.Background(), srv.URL+"/empty.pdf", "Empty")
	assert.ErrorIs(t, err, domain.ErrEmptyDownload)

	entries, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAcquire_StatusErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/missing.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	c := newTestCache(t, 0)

	_, err := c.Acquire(context.Background(), srv.URL+"/missing.pdf", "X")
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, int32(1), calls.Load())

	calls.Store(0)
	_, err = c.Acquire(context.Background(), srv.URL+"/flaky.pdf", "X")
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, int32(3), calls.Load())
}

func TestList(t *testing.T) {
	var calls atomic.Int32
	srv := pdfServer(t, &calls, pdfBody)
	c := newTestCache(t, 0)

	url := srv.URL + "/label.pdf"
	_, err := c.Acquire(context.Background(), url, "Roundup")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "empty_000000000000.pdf"), nil, 0600))

	pdfs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, url, pdfs[0].URL)
	assert.Equal(t, domain.URLHash(url), pdfs[0].URLHash)
	assert.True(t, pdfs[0].Cached)
}
