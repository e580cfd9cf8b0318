package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keySearchAPIKey   = "websearch.api_key"
	keySearchBaseURL  = "websearch.base_url"
	keySearchDepth    = "websearch.depth"
	keySearchRPS      = "websearch.rps"
	keySearchTimeout  = "websearch.timeout"
	keyVectorURL      = "vector.url"
	keyVectorAPIKey   = "vector.api_key"
	keyVectorColl     = "vector.collection"
	keyVectorDims     = "vector.dimensions"
	keyVectorBackend  = "vector.backend"
	keyCacheDir       = "cache.dir"
	keyCacheMaxBytes  = "cache.max_bytes"
	keyCacheTimeout   = "cache.timeout"
	keyRetrieveLimit  = "retrieval.limit"
	keyRetrieveThresh = "retrieval.score_threshold"
	keyIndexWorkers   = "indexing.workers"
	keyRedisAddr      = "redis.addr"
	keyRedisPassword  = "redis.password"
	keyRedisDB        = "redis.db"
	keyRedisTTL       = "redis.ttl"
	keyProcessors     = "pipeline.processors"
	keyChunkSize      = "pipeline.chunker.chunk_size"
	keyChunkOverlap   = "pipeline.chunker.overlap"
	keySourceOrder    = "sources.order"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvTavilyKey   = "TAVILY_API_KEY"
	EnvQdrantURL   = "QDRANT_URL"
	EnvQdrantKey   = "QDRANT_API_KEY"
	EnvRedisAddr   = "REDIS_ADDR"
	placeholderTag = "placeholder"
)

// keyKind is how a key's string value is parsed by Set.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindDuration
	kindList
)

var settingKeys = map[string]keyKind{
	keyEmbedProvider:  kindString,
	keyEmbedModel:     kindString,
	keyEmbedBaseURL:   kindString,
	keyEmbedAPIKey:    kindString,
	keySearchAPIKey:   kindString,
	keySearchBaseURL:  kindString,
	keySearchDepth:    kindString,
	keySearchRPS:      kindInt,
	keySearchTimeout:  kindDuration,
	keyVectorURL:      kindString,
	keyVectorAPIKey:   kindString,
	keyVectorColl:     kindString,
	keyVectorDims:     kindInt,
	keyVectorBackend:  kindString,
	keyCacheDir:       kindString,
	keyCacheMaxBytes:  kindInt,
	keyCacheTimeout:   kindDuration,
	keyRetrieveLimit:  kindInt,
	keyRetrieveThresh: kindFloat,
	keyIndexWorkers:   kindInt,
	keyRedisAddr:      kindString,
	keyRedisPassword:  kindString,
	keyRedisDB:        kindInt,
	keyRedisTTL:       kindDuration,
	keyProcessors:     kindList,
	keyChunkSize:      kindInt,
	keyChunkOverlap:   kindInt,
	keySourceOrder:    kindList,
}

// SettingsService resolves application settings from the config store
// and the environment. Environment values win.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(keyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: provider,
			Model:    model,
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.secret(EnvOpenAIKey, keyEmbedAPIKey),
		},
		WebSearch: domain.WebSearchSettings{
			APIKey:            s.secret(EnvTavilyKey, keySearchAPIKey),
			BaseURL:           s.configStore.GetString(keySearchBaseURL),
			Depth:             s.getString(keySearchDepth, defaults.WebSearch.Depth),
			RequestsPerSecond: s.getInt(keySearchRPS, defaults.WebSearch.RequestsPerSecond),
			Timeout:           s.getDuration(keySearchTimeout, defaults.WebSearch.Timeout),
		},
		Vector: domain.VectorSettings{
			Backend:    s.getBackend(defaults.Vector.Backend),
			URL:        s.env(EnvQdrantURL, s.getString(keyVectorURL, defaults.Vector.URL)),
			APIKey:     s.secret(EnvQdrantKey, keyVectorAPIKey),
			Collection: s.getString(keyVectorColl, defaults.Vector.Collection),
			Dimensions: s.getInt(keyVectorDims, 0),
		},
		Cache: domain.CacheSettings{
			Dir:      s.configStore.GetString(keyCacheDir),
			MaxBytes: int64(s.getInt(keyCacheMaxBytes, int(defaults.Cache.MaxBytes))),
			Timeout:  s.getDuration(keyCacheTimeout, defaults.Cache.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			Limit:          s.getInt(keyRetrieveLimit, defaults.Retrieval.Limit),
			ScoreThreshold: s.getFloat(keyRetrieveThresh, defaults.Retrieval.ScoreThreshold),
		},
		Indexing: domain.IndexingSettings{
			Workers: s.getInt(keyIndexWorkers, defaults.Indexing.Workers),
		},
		Redis: domain.RedisSettings{
			Addr:     s.env(EnvRedisAddr, s.configStore.GetString(keyRedisAddr)),
			Password: s.configStore.GetString(keyRedisPassword),
			DB:       s.configStore.GetInt(keyRedisDB),
			TTL:      s.getDuration(keyRedisTTL, defaults.Redis.TTL),
		},
		SourceOrder: s.configStore.GetStringSlice(keySourceOrder),
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration such as 30s", domain.ErrInvalidInput, key)
		}
		parsed = value
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	default:
		parsed = value
	}

	switch key {
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, value)
		}
	case keyVectorBackend:
		if !domain.VectorBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid vector backend: %s", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that the services every request needs are configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.WebSearch.IsConfigured() {
		return fmt.Errorf("%w: %w: set %s or %s", domain.ErrConfiguration, domain.ErrSearchUnavailable,
			EnvTavilyKey, keySearchAPIKey)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: %w: provider %q needs %s or %s", domain.ErrConfiguration,
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider, EnvOpenAIKey, keyEmbedAPIKey)
	}
	if !settings.Vector.IsConfigured() {
		return fmt.Errorf("%w: %w: backend %q", domain.ErrConfiguration,
			domain.ErrVectorIndexUnavailable, settings.Vector.Backend)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the chunk pipeline configuration with any
// overrides from the config store applied.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if procs := s.configStore.GetStringSlice(keyProcessors); len(procs) > 0 {
		cfg.Processors = procs
	}
	chunker := cfg.ProcessorConfigs["chunker"]
	if n := s.configStore.GetInt(keyChunkSize); n > 0 {
		chunker["chunk_size"] = n
	}
	if _, ok := s.configStore.Get(keyChunkOverlap); ok {
		chunker["overlap"] = s.configStore.GetInt(keyChunkOverlap)
	}
	return cfg
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// IsPlaceholder reports whether a credential is an unedited template
// value such as "your_api_key_here".
func IsPlaceholder(value string) bool {
	v := strings.ToLower(value)
	return strings.Contains(v, "your_") || strings.Contains(v, placeholderTag)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(name, fallback string) string {
	if v := strings.TrimSpace(s.getenv(name)); v != "" && !IsPlaceholder(v) {
		return v
	}
	return fallback
}

func (s *SettingsService) secret(envName, key string) string {
	v := s.env(envName, s.configStore.GetString(key))
	if IsPlaceholder(v) {
		return ""
	}
	return v
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
