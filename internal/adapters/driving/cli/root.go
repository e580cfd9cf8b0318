// Package cli provides the cobra command tree for labelrag.
package cli

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Core services used by the commands. Settings is available without
// external services; the rest are built by the initialiser on first use.
var (
	labelService    driving.LabelService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	watchConfig     func(ctx context.Context)
)

// Services are the core services built by an Initialiser.
type Services struct {
	Label    driving.LabelService
	Document driving.DocumentService

	// WatchConfig starts config file reloading for long-running commands.
	// Optional.
	WatchConfig func(ctx context.Context)
}

// Initialiser builds the services that need external configuration.
type Initialiser func(ctx context.Context) (*Services, error)

var (
	initialiser Initialiser
	initOnce    sync.Once
	initErr     error
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "labelrag",
	Short: "Cited answers from pesticide product labels",
	Long: `labelrag finds the official label PDF for a pesticide product, indexes it,
and answers questions with passages that cite the page and a downloadable PDF URL.

Credentials are read from the environment or a .env file:
  TAVILY_API_KEY   web search (required)
  OPENAI_API_KEY   embeddings (required unless embedding.provider is ollama)
  QDRANT_URL       vector store (default http://localhost:6333)
  REDIS_ADDR       optional search response cache`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline tracing to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetInitialiser sets the function that builds the remaining services.
func SetInitialiser(fn Initialiser) {
	initialiser = fn
}

// Execute runs the root command with ctx. Results go to stdout and
// logs to stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// requireServices builds the services once. Services injected directly
// are used as they are.
func requireServices(ctx context.Context) error {
	if labelService != nil || documentService != nil {
		return nil
	}
	if initialiser == nil {
		return errors.New("services not configured")
	}

	initOnce.Do(func() {
		s, err := initialiser(ctx)
		if err != nil {
			initErr = err
			return
		}
		labelService = s.Label
		documentService = s.Document
		watchConfig = s.WatchConfig
	})
	return initErr
}
