package driving

import "github.com/custodia-labs/labelrag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// credentials applied over the config file.
	Get() (*domain.AppSettings, error)

	// Set stores a single config key. Values are parsed for known keys.
	Set(key, value string) error

	// Keys returns the recognised config keys in display order.
	Keys() []string

	// Validate checks that every required external service is configured.
	// Returns an error wrapping domain.ErrConfiguration otherwise.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// GetPipelineConfig returns the chunk pipeline configuration.
	GetPipelineConfig() domain.PipelineConfig

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}
