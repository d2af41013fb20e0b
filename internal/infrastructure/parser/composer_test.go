package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsdash/internal/enrich"
	"newsdash/internal/fetcher"
)

func testFetcher(client fetcher.HTTPClient) *fetcher.Fetcher {
	return fetcher.New(client, fetcher.Options{
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		UserAgents: []string{"test-agent"},
		MinDelay:   time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}, nil)
}

func testComposer(f *fetcher.Fetcher) *Composer {
	return NewComposer(f, enrich.NewTagger(nil), nil, 40, 150, nil)
}

const articlePage = `
<html><head>
  <meta property="og:image" content="https://cdn.example.org/cover.png">
  <meta property="article:published_time" content="2024-05-10T08:00:00Z">
</head><body><article>
  <p>Opening paragraph with plenty of text to clear the content floor.</p>
  <p>Second paragraph adding even more body to the extracted article.</p>
</article></body></html>`

func TestComposeFromPageBuildsArticle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	c := testComposer(testFetcher(server.Client()))
	article, err := c.ComposeFromPage(context.Background(), "A Title", server.URL+"/post", "Example", time.Time{})
	if err != nil {
		t.Fatalf("ComposeFromPage returned error: %v", err)
	}

	if article.ID == "" {
		t.Fatal("article needs a generated id")
	}
	if article.Title != "A Title" || article.Source != "Example" {
		t.Fatalf("identity fields wrong: %+v", article)
	}
	if !strings.Contains(article.Content, "Opening paragraph") {
		t.Fatalf("content not extracted: %q", article.Content)
	}
	if article.ImageURL == nil || *article.ImageURL != "https://cdn.example.org/cover.png" {
		t.Fatalf("expected og image, got %v", article.ImageURL)
	}
	if article.Summary == "" {
		t.Fatal("summary must never be empty")
	}
	if len(article.Topics) < 1 || len(article.Topics) > 5 {
		t.Fatalf("topic count out of bounds: %v", article.Topics)
	}
	if !strings.HasPrefix(article.PublishedAt, "2024-05-10T08:00:00") {
		t.Fatalf("extracted page date not used: %q", article.PublishedAt)
	}
}

func TestComposeFromFeedItemUsesInlineContent(t *testing.T) {
	t.Parallel()

	// No server: a page fetch would fail, so passing means the inline
	// body was used.
	c := testComposer(testFetcher(http.DefaultClient))
	c.now = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }

	item := feedItem{
		Title:       "Inline Rich",
		Link:        "https://example.org/inline",
		Description: "<p>This description carries more than enough text to satisfy the inline content floor on its own.</p><img src=\"https://cdn.example.org/feed.png\">",
		Published:   time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC),
	}

	article, err := c.ComposeFromFeedItem(context.Background(), item, "Feed")
	if err != nil {
		t.Fatalf("ComposeFromFeedItem returned error: %v", err)
	}
	if !strings.Contains(article.Content, "inline content floor") {
		t.Fatalf("inline body not used: %q", article.Content)
	}
	if article.ImageURL == nil || *article.ImageURL != "https://cdn.example.org/feed.png" {
		t.Fatalf("inline image not picked up: %v", article.ImageURL)
	}
	if article.PublishedAt != "2024-05-20T09:00:00Z" {
		t.Fatalf("feed publish date not kept: %q", article.PublishedAt)
	}
}

func TestComposeFromFeedItemFallsBackToPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	c := testComposer(testFetcher(server.Client()))
	item := feedItem{
		Title:       "Thin Feed Entry",
		Link:        server.URL + "/full",
		Description: "too short",
	}

	article, err := c.ComposeFromFeedItem(context.Background(), item, "Feed")
	if err != nil {
		t.Fatalf("ComposeFromFeedItem returned error: %v", err)
	}
	if !strings.Contains(article.Content, "Opening paragraph") {
		t.Fatalf("page fallback not taken: %q", article.Content)
	}
}

func TestComposeClampsFuturePublishDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	c := testComposer(testFetcher(http.DefaultClient))
	c.now = func() time.Time { return now }

	item := feedItem{
		Title:       "From The Future",
		Link:        "https://example.org/future",
		Description: "<p>This description carries more than enough text to satisfy the inline content floor on its own.</p>",
		Published:   now.Add(48 * time.Hour),
	}

	article, err := c.ComposeFromFeedItem(context.Background(), item, "Feed")
	if err != nil {
		t.Fatalf("ComposeFromFeedItem returned error: %v", err)
	}
	if article.PublishedAt != "2024-06-01T11:00:00Z" {
		t.Fatalf("future date should clamp to an hour before now, got %q", article.PublishedAt)
	}
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		base string
		href string
		want string
	}{
		{"absolute passes through", "https://example.org", "https://other.org/x", "https://other.org/x"},
		{"relative joins base", "https://example.org/blog/", "post-1", "https://example.org/blog/post-1"},
		{"rooted joins host", "https://example.org/blog/", "/news/a", "https://example.org/news/a"},
		{"empty href rejected", "https://example.org", "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveLink(tc.base, tc.href); got != tc.want {
				t.Fatalf("resolveLink(%q, %q) = %q, want %q", tc.base, tc.href, got, tc.want)
			}
		})
	}
}
