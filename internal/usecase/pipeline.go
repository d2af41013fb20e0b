// Package usecase drives the ingestion workflow: fan sources out over a
// bounded worker pool, merge and deduplicate the harvest, and commit the
// snapshot to the article store.
package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"newsdash/internal/domain"
	"newsdash/internal/enrich"
	"newsdash/internal/scanner"
	"newsdash/internal/store"
)

const commitTimeout = 10 * time.Second

// PipelineDeps wires all collaborators into the orchestrator.
type PipelineDeps struct {
	Sources     []domain.Source
	Registry    *scanner.Registry
	Store       *store.Store
	Logger      *slog.Logger
	Concurrency int
	RunTimeout  time.Duration
	Retries     int
	RetryDelay  time.Duration
}

// Pipeline implements one article-ingestion run across all sources.
type Pipeline struct {
	sources     []domain.Source
	registry    *scanner.Registry
	store       *store.Store
	logger      *slog.Logger
	concurrency int
	runTimeout  time.Duration
	retries     int
	retryDelay  time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 3
	}
	runTimeout := deps.RunTimeout
	if runTimeout <= 0 {
		runTimeout = 2 * time.Minute
	}
	retryDelay := deps.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &Pipeline{
		sources:     deps.Sources,
		registry:    deps.Registry,
		store:       deps.Store,
		logger:      deps.Logger,
		concurrency: concurrency,
		runTimeout:  runTimeout,
		retries:     deps.Retries,
		retryDelay:  retryDelay,
	}
}

// Run executes one full pass over all configured sources. Per-source
// failures never abort the run; they are recorded in the summary. An
// empty merged batch clears the store so readers fall through to the
// synthetic fallback set, and the run reports success=false.
func (p *Pipeline) Run(ctx context.Context) domain.RunSummary {
	runCtx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	type sourceResult struct {
		source   string
		articles []domain.Article
		err      error
	}

	results := make(chan sourceResult, len(p.sources))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for _, src := range p.sources {
		wg.Add(1)
		sem <- struct{}{}
		go func(src domain.Source) {
			defer wg.Done()
			defer func() { <-sem }()

			strategy, err := p.registry.Resolve(src.Kind)
			if err != nil {
				results <- sourceResult{source: src.Name, err: err}
				return
			}

			p.debug("scanning source", "source", src.Name, "kind", src.Kind)
			articles, err := strategy.Scan(runCtx, src)
			results <- sourceResult{source: src.Name, articles: articles, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := domain.RunSummary{SourcesAttempted: len(p.sources)}
	var merged []domain.Article
	for r := range results {
		if r.err != nil {
			p.warn("source failed", "source", r.source, "error", r.err)
			summary.Errors = append(summary.Errors, domain.SourceError{Source: r.source, Error: r.err.Error()})
			continue
		}
		summary.SourcesSucceeded++
		merged = append(merged, r.articles...)
	}

	// Global dedup barrier: runs only once every source pipeline has
	// completed or been abandoned.
	merged = enrich.Dedupe(merged)

	// Store commits use a fresh deadline: an expired run context must
	// not prevent publishing whatever was harvested before it expired.
	commitCtx, commitCancel := context.WithTimeout(context.Background(), commitTimeout)
	defer commitCancel()

	if len(merged) == 0 {
		p.store.Clear(commitCtx)
		summary.Success = false
		summary.Articles = p.store.Fallback()
		p.warn("run produced no articles, fallback active", "fallback", len(summary.Articles))
		return summary
	}

	p.store.Set(commitCtx, merged)
	summary.Success = true
	summary.Articles = merged
	p.info("run committed", "articles", len(merged), "sources_ok", summary.SourcesSucceeded, "errors", len(summary.Errors))
	return summary
}

// RunWithRetry repeats a zero-article run up to the configured number of
// extra attempts with a fixed delay before accepting the fallback.
func (p *Pipeline) RunWithRetry(ctx context.Context) domain.RunSummary {
	summary := p.Run(ctx)
	for attempt := 0; attempt < p.retries && !summary.Success; attempt++ {
		p.warn("retrying run", "attempt", attempt+1, "of", p.retries)

		timer := time.NewTimer(p.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return summary
		case <-timer.C:
		}

		summary = p.Run(ctx)
	}
	return summary
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
