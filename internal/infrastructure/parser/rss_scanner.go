package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"newsdash/internal/domain"
	"newsdash/internal/fetcher"
	"newsdash/internal/infrastructure/extract"
	"newsdash/internal/scanner"
)

// RSSScanner harvests articles from RSS/Atom feed sources.
type RSSScanner struct {
	fetcher  *fetcher.Fetcher
	composer *Composer
	maxItems int
	logger   *slog.Logger
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires the feed strategy.
func NewRSSScanner(f *fetcher.Fetcher, composer *Composer, maxItems int, logger *slog.Logger) *RSSScanner {
	if maxItems <= 0 {
		maxItems = 5
	}
	return &RSSScanner{fetcher: f, composer: composer, maxItems: maxItems, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (s *RSSScanner) Kind() domain.SourceKind {
	return domain.SourceRSS
}

// Scan fetches the feed and composes an article per usable item. Items
// without a title or link are skipped; items whose content cannot be
// recovered are discarded without failing the source.
func (s *RSSScanner) Scan(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	res, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", src.Name, err)
	}

	items := parseFeed(res.Body, s.maxItems, s.logger)

	var articles []domain.Article
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		item.Link = resolveLink(src.BaseURL, item.Link)
		if item.Link == "" {
			continue
		}

		article, err := s.composer.ComposeFromFeedItem(ctx, item, src.Name)
		if err != nil {
			if errors.Is(err, extract.ErrContentTooShort) {
				s.debug("discarding thin feed item", "source", src.Name, "url", item.Link)
			} else {
				s.debug("feed item failed", "source", src.Name, "url", item.Link, "error", err)
			}
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func (s *RSSScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
