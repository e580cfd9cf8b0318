// Command labelrag answers questions about pesticide products from their
// official label PDFs, with page-level citations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/labelrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/labelrag/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/labelrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/labelrag/internal/adapters/driven/storage/pdfcache"
	"github.com/custodia-labs/labelrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/labelrag/internal/adapters/driven/websearch/tavily"
	"github.com/custodia-labs/labelrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/core/services"
	"github.com/custodia-labs/labelrag/internal/logger"
	"github.com/custodia-labs/labelrag/internal/normalisers/html"
	"github.com/custodia-labs/labelrag/internal/normalisers/pdf"
	"github.com/custodia-labs/labelrag/internal/postprocessors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home directory: %w", err)
	}
	if err := file.LoadDotEnv(".env", filepath.Join(home, ".labelrag", ".env")); err != nil {
		return err
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	a := &app{config: configStore, settings: settings}
	defer a.close()

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetInitialiser(a.initialise)
	return cli.Execute(ctx)
}

// app owns the adapters built for one process.
type app struct {
	config   *file.ConfigStore
	settings *services.SettingsService
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// initialise validates configuration and builds every adapter and service.
func (a *app) initialise(ctx context.Context) (*cli.Services, error) {
	if err := a.settings.Validate(); err != nil {
		return nil, err
	}
	settings, err := a.settings.Get()
	if err != nil {
		return nil, err
	}

	logger.Section("Startup")
	aiResult, err := ai.Initialise(ctx, settings)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, aiResult.Close)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return nil, fmt.Errorf("opening metadata store: %w", err)
	}
	a.closers = append(a.closers, func() { _ = store.Close() })

	cache, err := pdfcache.New(pdfcache.Config{
		Dir:      settings.Cache.Dir,
		MaxBytes: settings.Cache.MaxBytes,
		Timeout:  settings.Cache.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening pdf cache: %w", err)
	}

	var searchCache driven.SearchCache
	if settings.Redis.IsConfigured() {
		rc, err := redis.New(ctx, redis.Config{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})
		if err != nil {
			logger.Warn("search cache disabled: %v", err)
		} else {
			searchCache = rc
			a.closers = append(a.closers, func() { _ = rc.Close() })
		}
	}

	search, err := tavily.NewClient(tavily.Config{
		APIKey:            settings.WebSearch.APIKey,
		BaseURL:           settings.WebSearch.BaseURL,
		Timeout:           settings.WebSearch.Timeout,
		RequestsPerSecond: float64(settings.WebSearch.RequestsPerSecond),
		Cache:             searchCache,
		CacheTTL:          settings.Redis.TTL,
	})
	if err != nil {
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, a.settings.GetPipelineConfig())
	if err != nil {
		return nil, fmt.Errorf("building chunk pipeline: %w", err)
	}

	indexer := services.NewIndexer(store.DocumentStore(), aiResult.VectorStore, aiResult.EmbeddingService,
		pdf.New(), pipeline, settings.Indexing.Workers)
	retriever := services.NewRetriever(aiResult.VectorStore, aiResult.EmbeddingService, nil)

	sources := domain.ReorderSources(domain.DefaultSourceChain(), settings.SourceOrder)
	chain := services.NewSourceChainSearcher(search, sources, settings.WebSearch.Depth)

	label := services.NewLabelService(chain, cache, html.NewLinkResolver(html.Config{}), indexer, retriever)
	label.SetRetrievalDefaults(domain.RetrievalOptions{
		Limit:          settings.Retrieval.Limit,
		ScoreThreshold: settings.Retrieval.ScoreThreshold,
	})

	logger.Info("labelrag ready: %s embeddings, %s vector store, sources %v",
		settings.Embedding.Provider, settings.Vector.Backend, domain.SourceNames(sources))

	return &cli.Services{
		Label:       label,
		Document:    services.NewDocumentService(store.DocumentStore(), aiResult.VectorStore, cache, indexer),
		WatchConfig: a.watcher(label),
	}, nil
}

// watcher returns a function that reloads the config file on change and
// applies the retrieval defaults. Other settings take effect on restart.
func (a *app) watcher(label *services.LabelService) func(ctx context.Context) {
	return func(ctx context.Context) {
		reloads, err := file.NewWatcher(a.config).Watch(ctx)
		if err != nil {
			logger.Warn("config reload disabled: %v", err)
			return
		}

		go func() {
			for range reloads {
				settings, err := a.settings.Get()
				if err != nil {
					logger.Warn("config reload: %v", err)
					continue
				}
				label.SetRetrievalDefaults(domain.RetrievalOptions{
					Limit:          settings.Retrieval.Limit,
					ScoreThreshold: settings.Retrieval.ScoreThreshold,
				})
				logger.Info("config reload: retrieval limit %d, threshold %.2f",
					settings.Retrieval.Limit, settings.Retrieval.ScoreThreshold)
			}
		}()
	}
}
