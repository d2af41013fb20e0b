// Package app wires configuration into the runnable ingestion service.
package app

import (
	"context"
	"log/slog"
	"time"

	"newsdash/internal/config"
	"newsdash/internal/domain"
	"newsdash/internal/enrich"
	"newsdash/internal/fetcher"
	"newsdash/internal/infrastructure/llm"
	"newsdash/internal/infrastructure/parser"
	"newsdash/internal/infrastructure/search"
	"newsdash/internal/infrastructure/storage"
	"newsdash/internal/logging"
	"newsdash/internal/ports"
	"newsdash/internal/scanner"
	"newsdash/internal/store"
	"newsdash/internal/usecase"
)

// Application holds the wired pipeline and its lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	articles *store.Store
	kv       *storage.RedisKV
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	f := fetcher.New(nil, fetcher.Options{
		Timeout:       cfg.Fetch.Timeout(),
		MaxRetries:    cfg.Fetch.MaxRetries,
		UseProxy:      cfg.Fetch.UseProxy,
		ProxyEndpoint: cfg.Fetch.ProxyEndpoint,
		UserAgents:    cfg.Fetch.UserAgents,
		MinDelay:      msToDuration(cfg.Fetch.MinDelayMs),
		MaxDelay:      msToDuration(cfg.Fetch.MaxDelayMs),
	}, baseLogger.With("component", "fetcher"))

	var chat ports.ChatClient
	if cfg.Chat.APIKey != "" {
		chat = llm.NewChatClient(cfg.Chat)
	}

	tagger := enrich.NewTagger(cfg.Topics.Defaults)
	composer := parser.NewComposer(f, tagger, chat,
		cfg.Extraction.MinContentChars, cfg.Summary.MaxLength,
		baseLogger.With("component", "composer"))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRSSScanner(f, composer, cfg.Extraction.MaxPerSource,
		baseLogger.With("component", "scanner.rss")))
	registry.Register(parser.NewHTMLScanner(f, composer, cfg.Extraction.MaxPerSource,
		baseLogger.With("component", "scanner.html")))
	if cfg.Search.APIKey != "" {
		registry.Register(parser.NewSearchScanner(search.NewClient(cfg.Search), composer,
			cfg.Extraction.MaxPerSource, baseLogger.With("component", "scanner.search")))
	}

	var kv *storage.RedisKV
	var kvPort ports.KeyValueStore
	if cfg.Store.RedisAddr != "" {
		kv = storage.NewRedisKV(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		kvPort = kv
	} else {
		baseLogger.Info("no KV store configured, article cache is memory-only")
	}

	sources := cfg.DomainSources()
	articles := store.New(kvPort, cfg.Store.Key, sourceNames(sources), cfg.Topics.Defaults,
		baseLogger.With("component", "store"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:     sources,
		Registry:    registry,
		Store:       articles,
		Logger:      baseLogger.With("component", "pipeline"),
		Concurrency: cfg.Run.Concurrency,
		RunTimeout:  cfg.Run.Timeout(),
		Retries:     cfg.Run.Retries,
		RetryDelay:  cfg.Run.RetryDelay(),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		articles: articles,
		kv:       kv,
	}
}

// Run executes the ingestion pipeline: once by default, or on the
// configured interval when refresh is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.kv != nil {
		defer a.kv.Close()
	}

	if a.cfg.Refresh.Enabled {
		sched := usecase.NewScheduler(a.pipeline, a.cfg.Refresh.Interval(),
			a.logger.With("component", "scheduler"))
		sched.Start(ctx)
		defer sched.Stop()

		<-ctx.Done()
		return nil
	}

	summary := a.pipeline.RunWithRetry(ctx)
	a.logger.Info("ingestion finished",
		"success", summary.Success,
		"articles", len(summary.Articles),
		"sources_attempted", summary.SourcesAttempted,
		"sources_succeeded", summary.SourcesSucceeded,
		"errors", len(summary.Errors))
	return nil
}

// Articles exposes the layered store to the serving layer.
func (a *Application) Articles() *store.Store {
	return a.articles
}

func sourceNames(sources []domain.Source) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
