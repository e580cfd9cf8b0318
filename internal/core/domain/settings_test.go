package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	assert.True(t, AIProviderOllama.IsValid())
	assert.True(t, AIProviderOpenAI.IsValid())
	assert.False(t, AIProvider("anthropic").IsValid())
	assert.False(t, AIProvider("").IsValid())
}

func TestAIProvider_Properties(t *testing.T) {
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.Equal(t, "openai", AIProviderOpenAI.String())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		want     bool
	}{
		{"empty", EmbeddingSettings{}, false},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

func TestVectorSettings_IsConfigured(t *testing.T) {
	assert.True(t, VectorSettings{Backend: VectorBackendMemory}.IsConfigured())
	assert.True(t, VectorSettings{Backend: VectorBackendQdrant, URL: "http://q", Collection: "c"}.IsConfigured())
	assert.False(t, VectorSettings{Backend: VectorBackendQdrant, Collection: "c"}.IsConfigured())
	assert.False(t, VectorSettings{Backend: "pinecone"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.False(t, s.Embedding.IsConfigured(), "credentials are never defaulted")
	assert.False(t, s.WebSearch.IsConfigured())
	assert.Equal(t, "advanced", s.WebSearch.Depth)
	assert.Equal(t, DefaultCollection, s.Vector.Collection)
	assert.Equal(t, int64(50<<20), s.Cache.MaxBytes)
	assert.Equal(t, 5, s.Retrieval.Limit)
	assert.InDelta(t, 0.3, s.Retrieval.ScoreThreshold, 1e-9)
	assert.False(t, s.Redis.IsConfigured())
}

func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 768, dims["nomic-embed-text"])
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	assert.Equal(t, []string{"chunker", "pagerepair"}, cfg.Processors)
	assert.Equal(t, 1000, cfg.GetProcessorConfig("chunker")["chunk_size"])
	assert.Equal(t, 3, cfg.GetProcessorConfig("pagerepair")["chunks_per_page"])
	assert.Nil(t, cfg.GetProcessorConfig("missing"))

	empty := PipelineConfig{}
	assert.Nil(t, empty.GetProcessorConfig("chunker"))
}
