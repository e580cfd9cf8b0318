// Package redis provides a SearchCache backed by Redis.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
)

// Ensure SearchCache implements the interface.
var _ driven.SearchCache = (*SearchCache)(nil)

// keyPrefix namespaces every key written by the cache.
const keyPrefix = "labelrag:search:"

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// client is the subset of the go-redis client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redisv9.StatusCmd
	Close() error
}

// SearchCache stores web search responses as JSON with a TTL.
type SearchCache struct {
	client client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*SearchCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: %w: address is required", domain.ErrConfiguration)
	}
	c := redisv9.NewClient(&redisv9.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return &SearchCache{client: c}, nil
}

// Get returns the cached response for the request.
func (c *SearchCache) Get(ctx context.Context, req driven.WebSearchRequest) (*driven.WebSearchResponse, bool, error) {
	raw, err := c.client.Get(ctx, Key(req)).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get search failed: %w", err)
	}

	var resp driven.WebSearchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached search failed: %w", err)
	}
	return &resp, true, nil
}

// Set stores the response for the request.
func (c *SearchCache) Set(ctx context.Context, req driven.WebSearchRequest, resp *driven.WebSearchResponse, ttl time.Duration) error {
	if resp == nil {
		return nil
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal search cache failed: %w", err)
	}
	if err := c.client.Set(ctx, Key(req), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set search failed: %w", err)
	}
	return nil
}

// Close closes the connection.
func (c *SearchCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key from every field that changes the response.
// Domain order does not matter.
func Key(req driven.WebSearchRequest) string {
	domains := append([]string(nil), req.IncludeDomains...)
	for i := range domains {
		domains[i] = strings.ToLower(domains[i])
	}
	sort.Strings(domains)

	raw := fmt.Sprintf("%s|%s|%d|%s|%t",
		strings.ToLower(strings.TrimSpace(req.Query)),
		strings.Join(domains, ","),
		req.MaxResults,
		req.Depth,
		req.IncludeAnswer,
	)
	sum := sha256.Sum256([]byte(raw))
	return keyPrefix + hex.EncodeToString(sum[:16])
}
