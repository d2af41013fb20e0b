package parser

import (
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
)

// feedItem is one raw entry from an RSS/Atom payload. Missing optional
// fields are empty strings; a missing publish date is the zero time.
type feedItem struct {
	Title       string
	Link        string
	Description string
	Content     string
	Published   time.Time
}

// parseFeed decodes an RSS/Atom payload into at most limit items,
// keeping the feed's native order. Malformed XML yields an empty slice
// and a logged parse error, never a pipeline-fatal one.
func parseFeed(raw []byte, limit int, logger *slog.Logger) []feedItem {
	feed, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		if logger != nil {
			logger.Warn("feed parse failed", "error", err)
		}
		return nil
	}

	items := make([]feedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		fi := feedItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Content:     it.Content,
		}
		if it.PublishedParsed != nil {
			fi.Published = *it.PublishedParsed
		}
		items = append(items, fi)
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items
}
