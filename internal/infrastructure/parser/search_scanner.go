package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"newsdash/internal/domain"
	"newsdash/internal/infrastructure/extract"
	"newsdash/internal/ports"
	"newsdash/internal/scanner"
)

// SearchScanner harvests articles from web-search results instead of a
// direct crawl, for sources that declare a query.
type SearchScanner struct {
	client   ports.SearchClient
	composer *Composer
	maxItems int
	logger   *slog.Logger
}

var _ scanner.Scanner = (*SearchScanner)(nil)

// NewSearchScanner wires the query-driven strategy.
func NewSearchScanner(client ports.SearchClient, composer *Composer, maxItems int, logger *slog.Logger) *SearchScanner {
	if maxItems <= 0 {
		maxItems = 5
	}
	return &SearchScanner{client: client, composer: composer, maxItems: maxItems, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (s *SearchScanner) Kind() domain.SourceKind {
	return domain.SourceSearch
}

// Scan queries the search collaborator and composes articles from the
// result URLs, filtering out homepages and list pages first.
func (s *SearchScanner) Scan(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	if s.client == nil {
		return nil, fmt.Errorf("source %s: search collaborator not configured", src.Name)
	}

	// Over-fetch: many results fall to the URL filters below.
	results, err := s.client.Search(ctx, src.Query, s.maxItems*3)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", src.Name, err)
	}

	var articles []domain.Article
	for _, r := range results {
		if len(articles) == s.maxItems {
			break
		}
		if likelyHomepage(r.URL) || likelyListPage(r.URL) {
			continue
		}

		article, err := s.composer.ComposeFromPage(ctx, r.Title, r.URL, src.Name, r.PublishedDate)
		if err != nil {
			if errors.Is(err, extract.ErrContentTooShort) {
				s.debug("discarding thin search result", "source", src.Name, "url", r.URL)
			} else {
				s.debug("search result failed", "source", src.Name, "url", r.URL, "error", err)
			}
			continue
		}
		if badTitle(article.Title) {
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func (s *SearchScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

var homepageIndicators = []string{
	"/index.html", "/home", "/main", "/blog", "/news", "/ai", "/artificial-intelligence",
}

var listIndicators = []string{
	"/category/", "/categories/", "/tag/", "/tags/", "/topic/", "/topics/",
	"/search", "/list", "/directory", "/archive", "/all-", "/index",
}

var trailingSlashRe = regexp.MustCompile(`^https?://[^/]+/$`)

// likelyHomepage reports whether a URL points at a site root rather than
// an individual article. Single-segment paths are rejected wholesale:
// a root-level article slug is indistinguishable from a section index
// here, so those rare articles are lost to the filter.
func likelyHomepage(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) <= 1 {
		return true
	}
	for _, ind := range homepageIndicators {
		if u.Path == ind || strings.HasSuffix(u.Path, ind) {
			return true
		}
	}
	return trailingSlashRe.MatchString(raw)
}

// likelyListPage reports whether a URL points at a category/tag index.
func likelyListPage(raw string) bool {
	for _, ind := range listIndicators {
		if strings.Contains(raw, ind) {
			return true
		}
	}
	return false
}

// badTitle rejects pages whose title marks them as error or block pages.
func badTitle(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(title, "404") ||
		strings.Contains(lower, "page not found") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "forbidden")
}
