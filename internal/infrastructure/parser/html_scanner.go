package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsdash/internal/domain"
	"newsdash/internal/fetcher"
	"newsdash/internal/infrastructure/extract"
	"newsdash/internal/scanner"
)

// HTMLScanner harvests articles from HTML listing pages using the
// source's card/title/link selectors.
type HTMLScanner struct {
	fetcher  *fetcher.Fetcher
	composer *Composer
	maxItems int
	logger   *slog.Logger
}

var _ scanner.Scanner = (*HTMLScanner)(nil)

// NewHTMLScanner wires the listing-page strategy.
func NewHTMLScanner(f *fetcher.Fetcher, composer *Composer, maxItems int, logger *slog.Logger) *HTMLScanner {
	if maxItems <= 0 {
		maxItems = 5
	}
	return &HTMLScanner{fetcher: f, composer: composer, maxItems: maxItems, logger: logger}
}

// Kind identifies the strategy inside the registry.
func (s *HTMLScanner) Kind() domain.SourceKind {
	return domain.SourceHTML
}

// Scan fetches the listing page, locates article cards, and composes an
// article per card. Cards missing a title or link are filtered before
// any article page is fetched.
func (s *HTMLScanner) Scan(ctx context.Context, src domain.Source) ([]domain.Article, error) {
	res, err := s.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", src.Name, err)
	}

	cards, err := s.findCards(res.Body, src)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", src.Name, err)
	}

	var articles []domain.Article
	for _, card := range cards {
		article, err := s.composer.ComposeFromPage(ctx, card.title, card.link, src.Name, time.Time{})
		if err != nil {
			if errors.Is(err, extract.ErrContentTooShort) {
				s.debug("discarding non-article page", "source", src.Name, "url", card.link)
			} else {
				s.debug("article page failed", "source", src.Name, "url", card.link, "error", err)
			}
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}

type listingCard struct {
	title string
	link  string
}

func (s *HTMLScanner) findCards(html []byte, src domain.Source) ([]listingCard, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var cards []listingCard
	seen := map[string]struct{}{}
	doc.Find(src.CardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find(src.TitleSelector).First().Text())
		if title == "" || title == "No results found." {
			return true
		}

		href, _ := card.Find(src.LinkSelector).First().Attr("href")
		link := resolveLink(src.BaseURL, href)
		if link == "" {
			return true
		}
		if _, ok := seen[link]; ok {
			return true
		}
		seen[link] = struct{}{}

		cards = append(cards, listingCard{title: title, link: link})
		return len(cards) < s.maxItems
	})

	return cards, nil
}

func (s *HTMLScanner) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
