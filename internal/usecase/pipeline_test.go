package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newsdash/internal/domain"
	"newsdash/internal/enrich"
	"newsdash/internal/fetcher"
	"newsdash/internal/infrastructure/parser"
	"newsdash/internal/scanner"
	"newsdash/internal/store"
)

type fakeScanner struct {
	kind domain.SourceKind
	scan func(ctx context.Context, src domain.Source) ([]domain.Article, error)
}

func (f *fakeScanner) Kind() domain.SourceKind { return f.kind }

func (f *fakeScanner) Scan(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	return f.scan(ctx, src)
}

func testPipeline(registry *scanner.Registry, st *store.Store, sources ...domain.Source) *Pipeline {
	return NewPipeline(PipelineDeps{
		Sources:     sources,
		Registry:    registry,
		Store:       st,
		Concurrency: 2,
		RunTimeout:  5 * time.Second,
		Retries:     2,
		RetryDelay:  time.Millisecond,
	})
}

func staticArticles(articles ...domain.Article) func(context.Context, domain.Source) ([]domain.Article, error) {
	return func(context.Context, domain.Source) ([]domain.Article, error) {
		return articles, nil
	}
}

func TestRunMergesAndDeduplicatesAcrossSources(t *testing.T) {
	t.Parallel()

	shared := "https://example.org/shared"
	registry := scanner.NewRegistry()
	registry.Register(&fakeScanner{kind: domain.SourceRSS, scan: staticArticles(
		domain.Article{ID: "r1", Title: "Feed Story", URL: shared},
		domain.Article{ID: "r2", Title: "Other Feed Story", URL: "https://example.org/other"},
	)})
	registry.Register(&fakeScanner{kind: domain.SourceHTML, scan: staticArticles(
		domain.Article{ID: "h1", Title: "Same Story, Listing Copy", URL: shared},
	)})

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(registry, st,
		domain.Source{Name: "feed", Kind: domain.SourceRSS},
		domain.Source{Name: "listing", Kind: domain.SourceHTML},
	)

	summary := p.Run(context.Background())
	if !summary.Success {
		t.Fatalf("expected success, got %+v", summary)
	}
	if len(summary.Articles) != 2 {
		t.Fatalf("expected 2 articles after cross-source dedup, got %d", len(summary.Articles))
	}
	if summary.SourcesAttempted != 2 || summary.SourcesSucceeded != 2 {
		t.Fatalf("unexpected source counts: %+v", summary)
	}
	if got := st.Get(context.Background()); len(got) != 2 {
		t.Fatalf("store should hold the committed batch, got %d", len(got))
	}
}

func TestRunSourceFailureDoesNotAbortRun(t *testing.T) {
	t.Parallel()

	registry := scanner.NewRegistry()
	registry.Register(&fakeScanner{kind: domain.SourceRSS, scan: staticArticles(
		domain.Article{ID: "r1", Title: "Survivor", URL: "https://example.org/a"},
	)})
	registry.Register(&fakeScanner{kind: domain.SourceHTML, scan: func(context.Context, domain.Source) ([]domain.Article, error) {
		return nil, errors.New("listing unreachable")
	}})

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(registry, st,
		domain.Source{Name: "feed", Kind: domain.SourceRSS},
		domain.Source{Name: "listing", Kind: domain.SourceHTML},
	)

	summary := p.Run(context.Background())
	if !summary.Success {
		t.Fatalf("one healthy source should still succeed: %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Source != "listing" {
		t.Fatalf("failing source not recorded: %+v", summary.Errors)
	}
	if summary.SourcesSucceeded != 1 {
		t.Fatalf("expected 1 source to succeed, got %d", summary.SourcesSucceeded)
	}
}

func TestRunEmptyHarvestActivatesFallback(t *testing.T) {
	t.Parallel()

	registry := scanner.NewRegistry()
	registry.Register(&fakeScanner{kind: domain.SourceRSS, scan: func(context.Context, domain.Source) ([]domain.Article, error) {
		return nil, errors.New("everything is down")
	}})

	st := store.New(nil, "test:articles", nil, nil, nil)
	st.Set(context.Background(), []domain.Article{{ID: "stale", Title: "Stale", URL: "https://example.org/stale"}})

	p := testPipeline(registry, st, domain.Source{Name: "feed", Kind: domain.SourceRSS})

	summary := p.Run(context.Background())
	if summary.Success {
		t.Fatal("an empty run must not report success")
	}
	if len(summary.Articles) != store.FallbackCount {
		t.Fatalf("summary should carry the fallback set, got %d articles", len(summary.Articles))
	}

	got := st.Get(context.Background())
	if len(got) != store.FallbackCount {
		t.Fatalf("store should serve fallback after clear, got %d", len(got))
	}
	for _, a := range got {
		if a.ID == "stale" {
			t.Fatal("stale articles must be cleared on an empty run")
		}
	}
}

func TestRunRecordsUnknownSourceKind(t *testing.T) {
	t.Parallel()

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(scanner.NewRegistry(), st, domain.Source{Name: "mystery", Kind: domain.SourceKind("carrier-pigeon")})

	summary := p.Run(context.Background())
	if len(summary.Errors) != 1 || summary.Errors[0].Source != "mystery" {
		t.Fatalf("unknown kind should be a recorded error: %+v", summary.Errors)
	}
}

func TestRunWithRetryStopsOnSuccess(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	registry := scanner.NewRegistry()
	registry.Register(&fakeScanner{kind: domain.SourceRSS, scan: func(context.Context, domain.Source) ([]domain.Article, error) {
		if runs.Add(1) < 2 {
			return nil, errors.New("transient outage")
		}
		return []domain.Article{{ID: "a1", Title: "Recovered", URL: "https://example.org/a"}}, nil
	}})

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(registry, st, domain.Source{Name: "feed", Kind: domain.SourceRSS})

	summary := p.RunWithRetry(context.Background())
	if !summary.Success {
		t.Fatalf("expected eventual success: %+v", summary)
	}
	if got := runs.Load(); got != 2 {
		t.Fatalf("expected 2 runs (1 failure + 1 success), got %d", got)
	}
}

func TestRunWithRetryGivesUpAfterConfiguredAttempts(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	registry := scanner.NewRegistry()
	registry.Register(&fakeScanner{kind: domain.SourceRSS, scan: func(context.Context, domain.Source) ([]domain.Article, error) {
		runs.Add(1)
		return nil, errors.New("permanent outage")
	}})

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(registry, st, domain.Source{Name: "feed", Kind: domain.SourceRSS})

	summary := p.RunWithRetry(context.Background())
	if summary.Success {
		t.Fatal("expected failure after exhausting retries")
	}
	if got := runs.Load(); got != 3 {
		t.Fatalf("expected initial run plus 2 retries, got %d", got)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	registry := scanner.NewRegistry()
	registry.Register(&fakeScanner{kind: domain.SourceRSS, scan: func(context.Context, domain.Source) ([]domain.Article, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return []domain.Article{{ID: domain.NewID(), Title: domain.NewID(), URL: "https://example.org/" + domain.NewID()}}, nil
	}})

	var sources []domain.Source
	for i := 0; i < 6; i++ {
		sources = append(sources, domain.Source{Name: fmt.Sprintf("feed-%d", i), Kind: domain.SourceRSS})
	}

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(registry, st, sources...)

	p.Run(context.Background())
	if got := peak.Load(); got > 2 {
		t.Fatalf("worker pool exceeded its bound: peak %d", got)
	}
}

// End-to-end pass over live httptest sources: one feed and one listing
// pointing at overlapping articles must collapse to a deduplicated,
// committed batch.
func TestRunEndToEndOverHTTPSources(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	page := `<html><body><article>
	  <p>Shared article body with more than enough text for extraction to accept it.</p>
	  <p>A second paragraph keeps the page comfortably above the content floor.</p>
	</article></body></html>`

	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>F</title>
<item><title>Shared Story</title><link>%s/posts/shared</link><description>short</description></item>
<item><title>Feed Only Story</title><link>%s/posts/feed-only</link><description>short</description></item>
</channel></rss>`, server.URL, server.URL)
	})
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<div class="card"><h3>Shared Story From Listing</h3><a href="%s/posts/shared">read</a></div>
<div class="card"><h3></h3><a href="%s/posts/untitled">read</a></div>
</body></html>`, server.URL, server.URL)
	})
	mux.HandleFunc("/posts/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	})

	f := fetcher.New(server.Client(), fetcher.Options{
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		UserAgents: []string{"test-agent"},
		MinDelay:   time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}, nil)
	composer := parser.NewComposer(f, enrich.NewTagger(nil), nil, 40, 150, nil)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRSSScanner(f, composer, 5, nil))
	registry.Register(parser.NewHTMLScanner(f, composer, 5, nil))

	st := store.New(nil, "test:articles", nil, nil, nil)
	p := testPipeline(registry, st,
		domain.Source{Name: "feed", Kind: domain.SourceRSS, URL: server.URL + "/feed"},
		domain.Source{Name: "listing", Kind: domain.SourceHTML, URL: server.URL + "/listing", BaseURL: server.URL, CardSelector: "div.card", TitleSelector: "h3", LinkSelector: "a"},
	)

	summary := p.Run(context.Background())
	if !summary.Success {
		t.Fatalf("expected a successful run: %+v", summary.Errors)
	}
	if len(summary.Articles) != 2 {
		t.Fatalf("expected exactly 2 articles after URL dedup, got %d", len(summary.Articles))
	}
	seen := map[string]bool{}
	for _, a := range summary.Articles {
		if seen[a.URL] {
			t.Fatalf("duplicate URL survived: %s", a.URL)
		}
		seen[a.URL] = true
	}
}
