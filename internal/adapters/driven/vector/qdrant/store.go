// Package qdrant provides a VectorStore backed by a Qdrant server over its
// REST API.
package qdrant

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // point ids, not security
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
	"github.com/custodia-labs/labelrag/internal/retry"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 15 * time.Second
	DefaultBatchSize = 100

	// payload keys used in filters.
	keyProduct  = "product_name"
	keyDocument = "document_id"
)

// Config holds Qdrant connection settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	BatchSize  int
	Retry      retry.Policy
}

// Store is a minimal REST client for one Qdrant collection.
type Store struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
	batchSize  int
	policy     retry.Policy
}

// apiError is a non-2xx response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("qdrant returned status %d: %s", e.Status, e.Body)
}

// NewStore creates a store. The collection is not touched until
// EnsureCollection is called.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant: %w: url is required", domain.ErrConfiguration)
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = retry.DefaultPolicy
	}

	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		batchSize:  cfg.BatchSize,
		policy:     cfg.Retry,
	}, nil
}

// PointID derives the numeric point id for a chunk: the first 15 hex
// digits of MD5(chunkID).
func PointID(chunkID string) uint64 {
	sum := md5.Sum([]byte(chunkID)) //nolint:gosec // point ids, not security
	id, _ := strconv.ParseUint(hex.EncodeToString(sum[:])[:15], 16, 64)
	return id
}

// ==================== Collection ====================

// EnsureCollection creates the collection with cosine distance if missing.
// An existing collection with another vector width is an error.
func (s *Store) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("qdrant: invalid dimension %d", dimensions)
	}

	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := s.call(ctx, http.MethodGet, s.collectionPath(""), nil, &info)
	if err == nil {
		if size := info.Result.Config.Params.Vectors.Size; size != 0 && size != dimensions {
			return fmt.Errorf("qdrant: collection %s has width %d, embeddings have %d: %w",
				s.collection, size, dimensions, domain.ErrDimensionMismatch)
		}
		return nil
	}

	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		return fmt.Errorf("qdrant: checking collection: %w", err)
	}

	logger.Info("qdrant: creating collection %s (width %d)", s.collection, dimensions)
	create := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.call(ctx, http.MethodPut, s.collectionPath(""), create, nil); err != nil {
		return fmt.Errorf("qdrant: creating collection: %w", err)
	}

	for _, field := range []string{keyProduct, keyDocument} {
		index := map[string]any{"field_name": field, "field_schema": "keyword"}
		if err := s.call(ctx, http.MethodPut, s.collectionPath("/index?wait=true"), index, nil); err != nil {
			logger.Warn("qdrant: payload index on %s not created: %v", field, err)
		}
	}
	return nil
}

// ==================== Points ====================

// Upsert writes points in batches.
func (s *Store) Upsert(ctx context.Context, points []driven.VectorPoint) error {
	for start := 0; start < len(points); start += s.batchSize {
		end := min(start+s.batchSize, len(points))

		batch := make([]map[string]any, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, map[string]any{
				"id":      PointID(p.ChunkID),
				"vector":  p.Vector,
				"payload": p.Passage,
			})
		}
		body := map[string]any{"points": batch}
		if err := s.call(ctx, http.MethodPut, s.collectionPath("/points?wait=true"), body, nil); err != nil {
			return fmt.Errorf("qdrant: upsert: %w", err)
		}
	}
	return nil
}

// Query runs a similarity search, optionally scoped to one product.
func (s *Store) Query(ctx context.Context, q driven.VectorQuery) ([]driven.VectorHit, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultRetrievalLimit
	}
	body := map[string]any{
		"vector":       q.Vector,
		"limit":        limit,
		"with_payload": true,
	}
	if q.ScoreThreshold > 0 {
		body["score_threshold"] = q.ScoreThreshold
	}
	if q.ProductKey != "" {
		body["filter"] = matchFilter(keyProduct, q.ProductKey)
	}

	var resp struct {
		Result []struct {
			ID      json.RawMessage `json:"id"`
			Score   float64         `json:"score"`
			Payload domain.Passage  `json:"payload"`
		} `json:"result"`
	}
	if err := s.call(ctx, http.MethodPost, s.collectionPath("/points/search"), body, &resp); err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			ID:      strings.Trim(string(r.ID), `"`),
			Score:   r.Score,
			Passage: r.Payload,
		})
	}
	return hits, nil
}

// DeleteByDocument removes every point whose payload names the document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	body := map[string]any{"filter": matchFilter(keyDocument, documentID)}
	if err := s.call(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"), body, nil); err != nil {
		return fmt.Errorf("qdrant: delete document %s: %w", documentID, err)
	}
	return nil
}

// Count returns the exact number of points, for one document when
// documentID is set.
func (s *Store) Count(ctx context.Context, documentID string) (int, error) {
	body := map[string]any{"exact": true}
	if documentID != "" {
		body["filter"] = matchFilter(keyDocument, documentID)
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.call(ctx, http.MethodPost, s.collectionPath("/points/count"), body, &resp); err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("qdrant: count: %w", err)
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// ==================== Transport ====================

func matchFilter(key, value string) map[string]any {
	return map[string]any{
		"must": []map[string]any{
			{"key": key, "match": map[string]any{"value": value}},
		},
	}
}

func (s *Store) collectionPath(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.baseURL, s.collection, suffix)
}

// call sends a JSON request with retries and decodes the response into out.
func (s *Store) call(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	return retry.Do(ctx, s.policy, "qdrant "+method, func(ctx context.Context) (retry.Outcome, error) {
		var reader io.Reader = http.NoBody
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return retry.Fatal, err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.apiKey != "" {
			req.Header.Set("api-key", s.apiKey)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return retry.ClassifyError(err), fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Retryable, fmt.Errorf("read response: %w", err)
		}
		if outcome := retry.ClassifyStatus(resp.StatusCode); outcome != retry.Ok {
			return outcome, &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return retry.Fatal, fmt.Errorf("decode response: %w", err)
			}
		}
		return retry.Ok, nil
	})
}
