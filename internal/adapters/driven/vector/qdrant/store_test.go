package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/retry"
)

// fakeQdrant records requests and answers with canned bodies.
type fakeQdrant struct {
	mu       sync.Mutex
	exists   bool
	size     int
	requests []recorded
	search   string
	count    int
}

type recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

func (f *fakeQdrant) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, recorded{Method: r.Method, Path: r.URL.Path, Body: body})
		f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/labels":
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"status":{"error":"Not found"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":` +
				jsonInt(f.size) + `,"distance":"Cosine"}}}}}`))
		case strings.HasSuffix(r.URL.Path, "/points/search"):
			_, _ = w.Write([]byte(f.search))
		case strings.HasSuffix(r.URL.Path, "/points/count"):
			_, _ = w.Write([]byte(`{"result":{"count":` + jsonInt(f.count) + `}}`))
		default:
			_, _ = w.Write([]byte(`{"result":true,"status":"ok"}`))
		}
	}
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func newTestStore(t *testing.T, f *fakeQdrant) *Store {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	s, err := NewStore(Config{
		URL:        srv.URL + "/",
		APIKey:     "secret",
		Collection: "labels",
		BatchSize:  2,
		Retry:      retry.Policy{Attempts: 2, Backoff: time.Millisecond},
	})
	require.NoError(t, err)
	return s
}

func TestNewStore_RequiresURL(t *testing.T) {
	_, err := NewStore(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	s, err := NewStore(Config{URL: "http://localhost:6333"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCollection, s.collection)
}

func TestPointID_Deterministic(t *testing.T) {
	a := PointID("doc_0")
	assert.Equal(t, a, PointID("doc_0"))
	assert.NotEqual(t, a, PointID("doc_1"))
	assert.Less(t, a, uint64(1)<<60)
}

func TestEnsureCollection_Creates(t *testing.T) {
	f := &fakeQdrant{}
	s := newTestStore(t, f)

	require.NoError(t, s.EnsureCollection(context.Background(), 8))

	require.GreaterOrEqual(t, len(f.requests), 2)
	create := f.requests[1]
	assert.Equal(t, http.MethodPut, create.Method)
	assert.Equal(t, "/collections/labels", create.Path)
	vectors := create.Body["vectors"].(map[string]any)
	assert.EqualValues(t, 8, vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestEnsureCollection_ExistingSameWidth(t *testing.T) {
	f := &fakeQdrant{exists: true, size: 8}
	s := newTestStore(t, f)

	require.NoError(t, s.EnsureCollection(context.Background(), 8))
	assert.Len(t, f.requests, 1)
}

func TestEnsureCollection_WidthMismatch(t *testing.T) {
	f := &fakeQdrant{exists: true, size: 1536}
	s := newTestStore(t, f)

	err := s.EnsureCollection(context.Background(), 768)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestUpsert_Batches(t *testing.T) {
	f := &fakeQdrant{}
	s := newTestStore(t, f)

	points := make([]driven.VectorPoint, 3)
	for i := range points {
		points[i] = driven.VectorPoint{
			ChunkID: domain.ChunkID("doc", i),
			Vector:  []float32{1, 0},
			Passage: domain.Passage{DocumentID: "doc", ChunkIndex: i, ProductKey: "roundup", PageNumber: 1},
		}
	}
	require.NoError(t, s.Upsert(context.Background(), points))

	require.Len(t, f.requests, 2)
	assert.Equal(t, "/collections/labels/points", f.requests[0].Path)
	first := f.requests[0].Body["points"].([]any)
	assert.Len(t, first, 2)
	payload := first[0].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "roundup", payload["product_name"])
}

func TestQuery_ScopedFilterAndDecode(t *testing.T) {
	f := &fakeQdrant{search: `{"result":[
		{"id":123,"score":0.91,"payload":{"document_id":"d1","chunk_index":4,"content":"Do not enter","page_number":2,
		 "source_file":"roundup_abc.pdf","product_name":"roundup","pdf_url":"https://x/roundup.pdf","url_hash":"abc"}}]}`}
	s := newTestStore(t, f)

	hits, err := s.Query(context.Background(), driven.VectorQuery{
		Vector: []float32{1, 0}, ProductKey: "roundup", Limit: 5, ScoreThreshold: 0.3,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "123", hits[0].ID)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
	assert.Equal(t, 2, hits[0].Passage.PageNumber)
	assert.Equal(t, "roundup", hits[0].Passage.ProductKey)

	body := f.requests[0].Body
	assert.EqualValues(t, 5, body["limit"])
	assert.InDelta(t, 0.3, body["score_threshold"], 1e-9)
	must := body["filter"].(map[string]any)["must"].([]any)
	cond := must[0].(map[string]any)
	assert.Equal(t, "product_name", cond["key"])
}

func TestQuery_UnscopedHasNoFilter(t *testing.T) {
	f := &fakeQdrant{search: `{"result":[]}`}
	s := newTestStore(t, f)

	hits, err := s.Query(context.Background(), driven.VectorQuery{Vector: []float32{1}})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NotContains(t, f.requests[0].Body, "filter")
	assert.NotContains(t, f.requests[0].Body, "score_threshold")
}

func TestCountAndDelete(t *testing.T) {
	f := &fakeQdrant{count: 7}
	s := newTestStore(t, f)

	n, err := s.Count(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	require.NoError(t, s.DeleteByDocument(context.Background(), "d1"))
	last := f.requests[len(f.requests)-1]
	assert.Equal(t, "/collections/labels/points/delete", last.Path)
	assert.NoError(t, s.Close())
}

func TestCall_ServerErrorExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, err := NewStore(Config{URL: srv.URL, Retry: retry.Policy{Attempts: 2, Backoff: time.Millisecond}})
	require.NoError(t, err)

	_, err = s.Query(context.Background(), driven.VectorQuery{Vector: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
}
