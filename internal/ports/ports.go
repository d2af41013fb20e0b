package ports

import (
	"context"
	"time"
)

// KeyValueStore is the persistent external cache behind the article store.
// A missing key yields (nil, nil), not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ChatClient is the optional chat-completion collaborator used for
// richer summaries and topic suggestions. The pipeline must work with
// it entirely absent.
type ChatClient interface {
	Summarize(ctx context.Context, content string) (string, error)
	SuggestTopics(ctx context.Context, content, title string) ([]string, error)
}

// SearchResult is one hit from the web-search collaborator.
type SearchResult struct {
	Title         string
	URL           string
	Snippet       string
	PublishedDate time.Time
}

// SearchClient finds candidate article URLs for search-driven sources.
type SearchClient interface {
	Search(ctx context.Context, query string, count int) ([]SearchResult, error)
}
