// Package fetcher performs resilient HTTP GETs for every remote source:
// rotating user agents, optional proxy routing, bounded retries with
// exponential backoff, and a shared adaptive inter-request delay.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"newsdash/internal/domain"
)

const maxBodyBytes = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tunes a Fetcher.
type Options struct {
	Timeout       time.Duration
	MaxRetries    int
	UseProxy      bool
	ProxyEndpoint string
	UserAgents    []string
	MinDelay      time.Duration
	MaxDelay      time.Duration
}

// Fetcher downloads remote payloads with retry and anti-blocking measures.
type Fetcher struct {
	client      HTTPClient
	opts        Options
	limiter     *Limiter
	logger      *slog.Logger
	backoffBase time.Duration
	backoffCap  time.Duration
}

// New wires an HTTP client; a nil client gets a default with the
// configured timeout.
func New(client HTTPClient, opts Options, logger *slog.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:      client,
		opts:        opts,
		limiter:     NewLimiter(opts.MinDelay, opts.MaxDelay),
		logger:      logger,
		backoffBase: time.Second,
		backoffCap:  10 * time.Second,
	}
}

// Limiter exposes the shared rate-limit state, mostly for tests.
func (f *Fetcher) Limiter() *Limiter {
	return f.limiter
}

// Fetch performs a GET against rawURL with up to MaxRetries attempts.
// A 403/404 response is terminal and short-circuits remaining retries;
// a 429 raises the shared inter-request delay before the next attempt.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.FetchResult, error) {
	target := rawURL
	if f.opts.UseProxy && f.opts.ProxyEndpoint != "" {
		target = f.opts.ProxyEndpoint + "?url=" + url.QueryEscape(rawURL)
	}

	var lastErr error
	for attempt := 0; attempt < f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, f.backoff(attempt)); err != nil {
				return domain.FetchResult{}, err
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return domain.FetchResult{}, err
		}

		res, err := f.do(ctx, target)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if IsRateLimited(err) {
			f.limiter.Raise()
			f.debug("rate limited, raising delay", "url", rawURL, "delay", f.limiter.Delay())
			continue
		}
		if IsTerminal(err) {
			return domain.FetchResult{}, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
		f.debug("fetch attempt failed", "url", rawURL, "attempt", attempt+1, "error", err)
	}

	return domain.FetchResult{}, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
}

func (f *Fetcher) do(ctx context.Context, target string) (domain.FetchResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.FetchResult{}, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("read body: %w", err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return domain.FetchResult{Status: resp.StatusCode, Body: body, FinalURL: finalURL}, nil
}

func (f *Fetcher) userAgent() string {
	if len(f.opts.UserAgents) == 0 {
		return "newsdash/1.0"
	}
	return f.opts.UserAgents[rand.Intn(len(f.opts.UserAgents))]
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

// backoff returns 2^attempt times the base delay, capped.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := f.backoffBase * time.Duration(1<<uint(attempt))
	if d > f.backoffCap {
		d = f.backoffCap
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
