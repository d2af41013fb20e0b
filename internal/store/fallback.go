package store

import (
	"fmt"
	"time"

	"newsdash/internal/domain"
)

// FallbackCount is the fixed size of the synthetic fallback set.
const FallbackCount = 6

var fallbackSources = []string{"Anthropic", "Google AI", "Wired AI", "AI Blog"}
var fallbackTopics = []string{"AI", "Technology", "Machine Learning"}

// Fallback produces the deterministic set of clearly-templated
// placeholder articles served when every real layer is empty. IDs and
// titles are stable across calls; timestamps are recent but safely in
// the past.
func (s *Store) Fallback() []domain.Article {
	sources := s.fallbackSources
	if len(sources) == 0 {
		sources = fallbackSources
	}
	topics := s.fallbackTopics
	if len(topics) == 0 {
		topics = fallbackTopics
	}

	now := time.Now().UTC()
	articles := make([]domain.Article, 0, FallbackCount)
	for i := 0; i < FallbackCount; i++ {
		source := sources[i%len(sources)]
		topic := topics[i%len(topics)]
		published := now.Add(-time.Duration(i+2) * time.Hour)

		articles = append(articles, domain.Article{
			ID:    fmt.Sprintf("fallback-%d", i+1),
			Title: fmt.Sprintf("Placeholder: latest %s coverage from %s", topic, source),
			Summary: fmt.Sprintf(
				"Live articles from %s are temporarily unavailable. This placeholder will be replaced on the next successful refresh.", source),
			Content: fmt.Sprintf(
				"No fresh content could be retrieved from %s. The ingestion pipeline will retry on its next scheduled run and replace this placeholder automatically.", source),
			URL:         fmt.Sprintf("https://newsdash.local/fallback/%d", i+1),
			ImageURL:    nil,
			Source:      source,
			Topics:      []string{topic},
			PublishedAt: domain.Timestamp(published),
			CreatedAt:   domain.Timestamp(now),
			Bookmarked:  false,
		})
	}
	return articles
}
