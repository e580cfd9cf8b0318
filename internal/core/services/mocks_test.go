package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/labelrag/internal/adapters/driven/storage/memory"
	memvector "github.com/custodia-labs/labelrag/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/postprocessors"
	"github.com/custodia-labs/labelrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/labelrag/internal/postprocessors/pagerepair"
)

// --- Mock implementations ---

// eventLog records calls across mocks so tests can assert ordering.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// mockWebSearch implements driven.WebSearch. Responses are keyed by the
// first include-domain; "" is the broad web.
type mockWebSearch struct {
	mu        sync.Mutex
	responses map[string]*driven.WebSearchResponse
	errs      map[string]error
	requests  []driven.WebSearchRequest
}

func domainKey(domains []string) string {
	if len(domains) == 0 {
		return ""
	}
	return domains[0]
}

func (m *mockWebSearch) Search(_ context.Context, req driven.WebSearchRequest) (*driven.WebSearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	key := domainKey(req.IncludeDomains)
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	if resp, ok := m.responses[key]; ok {
		return resp, nil
	}
	return &driven.WebSearchResponse{}, nil
}

// embedRule maps any text containing a phrase to a fixed vector.
type embedRule struct {
	contains string
	vector   []float32
}

// mockEmbedder implements driven.EmbeddingService with rule-based vectors.
// The first matching rule wins; unmatched text gets fallback.
type mockEmbedder struct {
	dims     int
	rules    []embedRule
	fallback []float32
	failOn   string
	err      error
	batchErr error
}

func newMockEmbedder(rules ...embedRule) *mockEmbedder {
	return &mockEmbedder{dims: 3, rules: rules, fallback: []float32{1, 0, 0}}
}

func (m *mockEmbedder) vectorFor(text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	lower := strings.ToLower(text)
	if m.failOn != "" && strings.Contains(lower, m.failOn) {
		return nil, errors.New("embedding rejected input")
	}
	for _, r := range m.rules {
		if strings.Contains(lower, r.contains) {
			return append([]float32(nil), r.vector...), nil
		}
	}
	return append([]float32(nil), m.fallback...), nil
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return m.vectorFor(text)
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.vectorFor(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error { return nil }

// mockExtractor implements driven.PageExtractor. Pages are looked up by
// filename; unknown files get defaultPages.
type mockExtractor struct {
	mu           sync.Mutex
	pages        map[string][]string
	defaultPages []string
	err          error
}

func (m *mockExtractor) ExtractPages(_ context.Context, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.pages[filepath.Base(path)]; ok {
		return p, nil
	}
	return m.defaultPages, nil
}

func (m *mockExtractor) set(filename string, pages ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages == nil {
		m.pages = make(map[string][]string)
	}
	m.pages[filename] = pages
}

// mockCache implements driven.PDFCache by writing placeholder files.
type mockCache struct {
	dir  string
	log  *eventLog
	errs map[string]error
}

func (m *mockCache) Acquire(_ context.Context, url, productName string) (*domain.CachedPDF, error) {
	m.log.add("acquire " + url)
	if err := m.errs[url]; err != nil {
		return nil, err
	}
	name := domain.SanitizeName(productName) + "_" + domain.URLHash(url) + ".pdf"
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0600); err != nil {
		return nil, err
	}
	return &domain.CachedPDF{Path: path, Filename: name, URL: url, URLHash: domain.URLHash(url), Size: 8}, nil
}

func (m *mockCache) List(_ context.Context) ([]domain.CachedPDF, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var pdfs []domain.CachedPDF
	for _, e := range entries {
		pdfs = append(pdfs, domain.CachedPDF{Path: filepath.Join(m.dir, e.Name()), Filename: e.Name(), Cached: true})
	}
	return pdfs, nil
}

func (m *mockCache) Dir() string { return m.dir }

// mockResolver implements driven.LinkResolver.
type mockResolver struct {
	log   *eventLog
	links map[string][]string
}

func (m *mockResolver) ResolvePDFLinks(_ context.Context, pageURL string) ([]string, error) {
	m.log.add("resolve " + pageURL)
	return m.links[pageURL], nil
}

// --- Fixtures ---

// testEnv bundles real in-memory stores with mock edges.
type testEnv struct {
	docs      *memory.DocumentStore
	vectors   *memvector.Store
	embedder  *mockEmbedder
	extractor *mockExtractor
	indexer   *Indexer
	retriever *Retriever
	dir       string
}

func newTestEnv(t *testing.T, embedder *mockEmbedder) *testEnv {
	t.Helper()
	if embedder == nil {
		embedder = newMockEmbedder()
	}
	env := &testEnv{
		docs:      memory.NewDocumentStore(),
		vectors:   memvector.NewStore(),
		embedder:  embedder,
		extractor: &mockExtractor{},
		dir:       t.TempDir(),
	}
	require.NoError(t, env.vectors.EnsureCollection(context.Background(), embedder.dims))

	pipeline := postprocessors.NewPipeline(
		chunker.New(chunker.WithChunkSize(200), chunker.WithOverlap(0)),
		pagerepair.New(),
	)
	env.indexer = NewIndexer(env.docs, env.vectors, embedder, env.extractor, pipeline, 2)
	env.retriever = NewRetriever(env.vectors, embedder, nil)
	return env
}

// writePDF creates a placeholder file and registers its pages.
func (e *testEnv) writePDF(t *testing.T, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))
	e.extractor.set(filepath.Base(name), pages...)
	return path
}

// upsert stores a passage directly, bypassing the indexer.
func (e *testEnv) upsert(t *testing.T, id string, vec []float32, p domain.Passage) {
	t.Helper()
	require.NoError(t, e.vectors.Upsert(context.Background(), []driven.VectorPoint{{ChunkID: id, Vector: vec, Passage: p}}))
}
