// Package ai provides factory functions for creating the embedding and
// vector store adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/labelrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/labelrag/internal/adapters/driven/embedding/openai"
	memvector "github.com/custodia-labs/labelrag/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/labelrag/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	VectorStore      driven.VectorStore
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if fell back to the in-memory vector store.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
}

// Initialise creates the embedding service and vector store and prepares
// the collection. A missing or unreachable embedding service is fatal.
// An unreachable Qdrant falls back to the in-memory store with a warning.
func Initialise(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no settings", domain.ErrConfiguration)
	}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: %w: provider %q is not configured. Run 'labelrag settings set embedding.api_key <key>' to fix",
			domain.ErrConfiguration, domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	dims := embedder.Dimensions()
	if settings.Vector.Dimensions > 0 && settings.Vector.Dimensions != dims {
		embedder.Close()
		return nil, fmt.Errorf("%w: vector.dimensions is %d but %s produces %d",
			domain.ErrDimensionMismatch, settings.Vector.Dimensions, embedder.ModelName(), dims)
	}

	result := &InitResult{EmbeddingService: embedder}

	store, err := CreateVectorStore(&settings.Vector)
	if err != nil {
		result.Close()
		return nil, err
	}

	ensureCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := store.EnsureCollection(ensureCtx, dims); err != nil {
		store.Close()
		if errors.Is(err, domain.ErrDimensionMismatch) {
			result.Close()
			return nil, err
		}
		warning := fmt.Sprintf("vector store unavailable (%v), passages will not persist", err)
		logger.Warn("%s", warning)
		result.Warnings = append(result.Warnings, warning)
		result.FellBack = true

		store = memvector.NewStore()
		if err := store.EnsureCollection(ctx, dims); err != nil {
			result.Close()
			return nil, err
		}
	}
	result.VectorStore = store

	return result, nil
}

// CreateVectorStore creates the configured vector store. The collection is
// not created here.
func CreateVectorStore(settings *domain.VectorSettings) (driven.VectorStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no vector settings", domain.ErrConfiguration)
	}

	switch settings.Backend {
	case domain.VectorBackendMemory:
		return memvector.NewStore(), nil

	case domain.VectorBackendQdrant, "":
		store, err := qdrant.NewStore(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: settings.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("%w. Run 'labelrag settings set vector.url <url>' to fix", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unsupported vector backend: %s", domain.ErrConfiguration, settings.Backend)
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'labelrag settings set embedding.provider <provider>' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'labelrag settings show' to check",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
