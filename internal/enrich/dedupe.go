package enrich

import (
	"strings"

	"newsdash/internal/domain"
)

// Dedupe removes near-duplicate articles from a batch, keeping the first
// occurrence. Two articles are duplicates when their URLs are identical
// or their titles match case-insensitively. Stable and idempotent.
func Dedupe(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	seenURL := map[string]struct{}{}
	seenTitle := map[string]struct{}{}

	for _, a := range articles {
		title := strings.ToLower(strings.TrimSpace(a.Title))
		if _, ok := seenURL[a.URL]; ok && a.URL != "" {
			continue
		}
		if _, ok := seenTitle[title]; ok && title != "" {
			continue
		}
		if a.URL != "" {
			seenURL[a.URL] = struct{}{}
		}
		if title != "" {
			seenTitle[title] = struct{}{}
		}
		out = append(out, a)
	}
	return out
}
