package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the similarity store implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendQdrant is a Qdrant server reached over REST.
	VectorBackendQdrant VectorBackend = "qdrant"

	// VectorBackendMemory is an in-process store; passages are lost on exit.
	VectorBackendMemory VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendQdrant || b == VectorBackendMemory
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// WebSearchSettings holds web search service configuration.
type WebSearchSettings struct {
	// APIKey is the search service API key.
	APIKey string

	// BaseURL is the API endpoint.
	BaseURL string

	// Depth is the search depth ("basic" or "advanced").
	Depth string

	// RequestsPerSecond throttles outgoing search requests.
	RequestsPerSecond int

	// Timeout bounds each search request.
	Timeout time.Duration
}

// IsConfigured returns true if the web search service is set up.
func (w WebSearchSettings) IsConfigured() bool {
	return w.APIKey != ""
}

// VectorSettings holds similarity store configuration.
type VectorSettings struct {
	// Backend selects the store implementation.
	Backend VectorBackend

	// URL is the Qdrant endpoint.
	URL string

	// APIKey is the Qdrant API key, if the server requires one.
	APIKey string

	// Collection is the single collection used per deployment.
	Collection string

	// Dimensions is the fixed vector width. Zero means "use the embedding
	// model's width".
	Dimensions int
}

// IsConfigured returns true if the vector store is set up.
func (v VectorSettings) IsConfigured() bool {
	switch v.Backend {
	case VectorBackendMemory:
		return true
	case VectorBackendQdrant:
		return v.URL != "" && v.Collection != ""
	default:
		return false
	}
}

// CacheSettings holds PDF acquisition cache configuration.
type CacheSettings struct {
	// Dir is the directory PDFs are stored in.
	Dir string

	// MaxBytes caps a single download.
	MaxBytes int64

	// Timeout bounds a single download.
	Timeout time.Duration
}

// RetrievalSettings holds retrieval defaults.
type RetrievalSettings struct {
	// Limit is the default number of passages.
	Limit int

	// ScoreThreshold is the default similarity threshold.
	ScoreThreshold float64
}

// IndexingSettings holds indexer configuration.
type IndexingSettings struct {
	// Workers bounds concurrent embedding requests per document.
	Workers int
}

// RedisSettings holds the optional search response cache configuration.
type RedisSettings struct {
	// Addr is host:port. Empty disables the cache.
	Addr string

	// Password is the Redis password.
	Password string

	// DB is the Redis database number.
	DB int

	// TTL is how long search responses are kept.
	TTL time.Duration
}

// IsConfigured returns true if a Redis address is set.
func (r RedisSettings) IsConfigured() bool {
	return r.Addr != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// WebSearch holds web search settings.
	WebSearch WebSearchSettings

	// Vector holds similarity store settings.
	Vector VectorSettings

	// Cache holds PDF cache settings.
	Cache CacheSettings

	// Retrieval holds retrieval defaults.
	Retrieval RetrievalSettings

	// Indexing holds indexer settings.
	Indexing IndexingSettings

	// Redis holds search cache settings.
	Redis RedisSettings

	// SourceOrder reorders the default source chain by name.
	SourceOrder []string
}

// Default values for settings.
const (
	DefaultCollection        = "cdms_documents"
	DefaultWebSearchDepth    = "advanced"
	DefaultWebSearchRPS      = 10
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxDownloadBytes  = 50 << 20
	DefaultIndexingWorkers   = 4
	DefaultSearchCacheTTL    = 24 * time.Hour
	DefaultEmbeddingProvider = AIProviderOpenAI
)

// DefaultAppSettings returns settings with sensible defaults.
// Credentials are left empty and must come from the environment or
// the config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: DefaultEmbeddingProvider,
			Model:    DefaultEmbeddingModels()[DefaultEmbeddingProvider],
		},
		WebSearch: WebSearchSettings{
			Depth:             DefaultWebSearchDepth,
			RequestsPerSecond: DefaultWebSearchRPS,
			Timeout:           DefaultRequestTimeout,
		},
		Vector: VectorSettings{
			Backend:    VectorBackendQdrant,
			URL:        "http://localhost:6333",
			Collection: DefaultCollection,
		},
		Cache: CacheSettings{
			MaxBytes: DefaultMaxDownloadBytes,
			Timeout:  DefaultRequestTimeout,
		},
		Retrieval: RetrievalSettings{
			Limit:          DefaultRetrievalLimit,
			ScoreThreshold: DefaultScoreThreshold,
		},
		Indexing: IndexingSettings{
			Workers: DefaultIndexingWorkers,
		},
		Redis: RedisSettings{
			TTL: DefaultSearchCacheTTL,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// page-aware chunking followed by page-tag repair.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "pagerepair"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    200,
			},
			"pagerepair": {
				"chunks_per_page": 3,
			},
		},
	}
}
