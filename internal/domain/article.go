package domain

import (
	"time"

	"github.com/google/uuid"
)

// Article is the canonical ingested unit published to the store.
// JSON field names are part of the persisted batch format.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	URL         string   `json:"url"`
	ImageURL    *string  `json:"imageUrl"`
	Source      string   `json:"source"`
	Topics      []string `json:"topics"`
	PublishedAt string   `json:"publishedAt"`
	CreatedAt   string   `json:"createdAt"`
	Bookmarked  bool     `json:"bookmarked"`
}

// NewID returns a fresh opaque article identifier.
func NewID() string {
	return uuid.NewString()
}

// ClampPublished guards against feeds that report future publish dates.
// A zero or future timestamp becomes one hour before now so a freshly
// ingested article never ranks newer than it really is.
func ClampPublished(t, now time.Time) time.Time {
	if t.IsZero() || t.After(now) {
		return now.Add(-time.Hour)
	}
	return t
}

// Timestamp renders a time in the persisted ISO-8601 form.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
