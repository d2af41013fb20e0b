// Package parser implements the per-source harvesting strategies (RSS
// feeds, HTML listings, web search) and the shared composer that turns
// raw candidates into canonical articles.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"newsdash/internal/domain"
	"newsdash/internal/enrich"
	"newsdash/internal/fetcher"
	"newsdash/internal/infrastructure/extract"
	"newsdash/internal/ports"
)

const maxTopics = 5

// Composer assembles canonical articles: it fetches article pages,
// extracts content, tags topics, and generates summaries. The chat
// collaborator is optional; when absent or failing, the local tagger
// and extractive summarizer take over.
type Composer struct {
	fetcher    *fetcher.Fetcher
	tagger     *enrich.Tagger
	chat       ports.ChatClient
	extractOpt extract.Options
	summaryMax int
	logger     *slog.Logger
	now        func() time.Time
}

// NewComposer wires the shared composition dependencies. chat may be nil.
func NewComposer(f *fetcher.Fetcher, tagger *enrich.Tagger, chat ports.ChatClient, minContentChars, summaryMax int, logger *slog.Logger) *Composer {
	return &Composer{
		fetcher:    f,
		tagger:     tagger,
		chat:       chat,
		extractOpt: extract.Options{MinContentChars: minContentChars},
		summaryMax: summaryMax,
		logger:     logger,
		now:        time.Now,
	}
}

// ComposeFromPage fetches pageURL, extracts its content, and builds the
// article. Returns extract.ErrContentTooShort when the page does not
// look like an article; the caller discards the candidate.
func (c *Composer) ComposeFromPage(ctx context.Context, title, pageURL, source string, published time.Time) (domain.Article, error) {
	res, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("article page: %w", err)
	}

	extracted, err := extract.Extract(res.Body, c.extractOpt)
	if err != nil {
		return domain.Article{}, err
	}

	if published.IsZero() {
		published = extracted.PublishedAt
	}
	return c.build(ctx, title, pageURL, source, extracted.Content, extracted.ImageURL, published), nil
}

// ComposeFromFeedItem prefers the content carried by the feed itself and
// falls back to fetching the linked page when the feed body is too thin.
func (c *Composer) ComposeFromFeedItem(ctx context.Context, item feedItem, source string) (domain.Article, error) {
	inline := item.Content
	if inline == "" {
		inline = item.Description
	}

	if inline != "" {
		// Feed bodies are HTML fragments; flatten them to clean text
		// and a candidate image without container heuristics.
		text, imageURL := extract.Flatten(inline)
		if len(text) >= c.extractOpt.MinContentChars {
			return c.build(ctx, item.Title, item.Link, source, text, imageURL, item.Published), nil
		}
	}

	return c.ComposeFromPage(ctx, item.Title, item.Link, source, item.Published)
}

func (c *Composer) build(ctx context.Context, title, articleURL, source, content, imageURL string, published time.Time) domain.Article {
	now := c.now()
	published = domain.ClampPublished(published, now)

	topics := c.topics(ctx, title, content)
	summary := c.summary(ctx, title, content)

	var image *string
	if imageURL != "" {
		image = &imageURL
	}

	return domain.Article{
		ID:          domain.NewID(),
		Title:       title,
		Summary:     summary,
		Content:     content,
		URL:         articleURL,
		ImageURL:    image,
		Source:      source,
		Topics:      topics,
		PublishedAt: domain.Timestamp(published),
		CreatedAt:   domain.Timestamp(now),
		Bookmarked:  false,
	}
}

func (c *Composer) topics(ctx context.Context, title, content string) []string {
	if c.chat != nil {
		suggested, err := c.chat.SuggestTopics(ctx, content, title)
		if err == nil {
			if topics := dedupeTopics(suggested); len(topics) > 0 {
				return topics
			}
		} else {
			c.debug("topic suggestion failed, using tagger", "error", err)
		}
	}
	return c.tagger.Tag(title, content)
}

func (c *Composer) summary(ctx context.Context, title, content string) string {
	if c.chat != nil && len(content) >= 20 {
		summary, err := c.chat.Summarize(ctx, content)
		if err == nil && summary != "" {
			return summary
		}
		if err != nil {
			c.debug("summarization failed, using extractive summary", "error", err)
		}
	}
	return enrich.Summarize(content, title, c.summaryMax)
}

func (c *Composer) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func dedupeTopics(topics []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxTopics {
			break
		}
	}
	return out
}

// resolveLink makes a possibly-relative href absolute against base.
func resolveLink(base, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}
