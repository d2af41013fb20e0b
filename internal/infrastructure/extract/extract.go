// Package extract derives clean article text and metadata from raw HTML
// using a prioritized list of structural heuristics.
package extract

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrContentTooShort signals that a page did not yield enough text to be
// a real article (index pages, consent walls, error pages). Callers must
// discard the candidate entirely.
var ErrContentTooShort = errors.New("insufficient content")

const (
	minParagraphChars = 20
	minDivChars       = 30
)

// Container heuristics, first match wins. The attribute-substring
// selectors catch the common content-bearing class/id conventions.
var containerSelectors = []string{
	"article",
	"div[class*=article]",
	"div[class*=post]",
	"div[class*=content]",
	"div[id*=content]",
	"div[class*=entry]",
	"main",
}

// Obvious non-content substructures removed before harvesting.
const chromeSelector = "nav, header, footer, aside, form, " +
	"[class*=sidebar], [class*=comment], [class*=advert], [class*=promo], [id*=sidebar]"

var (
	urlRe    = regexp.MustCompile(`https?://\S+`)
	refRe    = regexp.MustCompile(`\[\d+\]`)
	sourceRe = regexp.MustCompile(`(?i)\(\s*source:[^)]*\)`)
)

// Result carries the extracted article pieces. ImageURL is empty when no
// image was found; PublishedAt is zero when no parseable date was found.
type Result struct {
	Content     string
	ImageURL    string
	PublishedAt time.Time
}

// Options tunes extraction.
type Options struct {
	// MinContentChars rejects pages whose harvested text is shorter.
	MinContentChars int
}

// Extract locates the main textual content of an HTML document, plus a
// representative image and a best-effort publish date.
func Extract(html []byte, opts Options) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Result{}, err
	}

	doc.Find("script, style, noscript").Remove()

	container := findContainer(doc)
	container.Find(chromeSelector).Remove()

	content := harvestText(container)
	if opts.MinContentChars > 0 && len(content) < opts.MinContentChars {
		return Result{}, ErrContentTooShort
	}

	return Result{
		Content:     content,
		ImageURL:    extractImage(doc, container),
		PublishedAt: extractDate(doc),
	}, nil
}

// Flatten strips markup from an HTML fragment (RSS descriptions, feed
// bodies), returning cleaned text plus the first inline image. Unlike
// Extract it applies no container heuristics and no length floor.
func Flatten(fragment string) (text, imageURL string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", ""
	}
	doc.Find("script, style, noscript").Remove()
	imageURL, _ = doc.Find("img").First().Attr("src")

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		if t := cleanText(doc.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), imageURL
}

func findContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range containerSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// harvestText joins the container's paragraphs with blank lines. When no
// paragraph carries substantial text the page is probably div-soup, so
// leaf divs are harvested instead with a higher length threshold.
func harvestText(container *goquery.Selection) string {
	var parts []string
	container.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); len(text) >= minParagraphChars {
			parts = append(parts, text)
		}
	})

	if len(parts) == 0 {
		container.Find("div").Each(func(_ int, s *goquery.Selection) {
			if s.Children().Length() > 0 {
				return
			}
			if text := cleanText(s.Text()); len(text) >= minDivChars {
				parts = append(parts, text)
			}
		})
	}

	return strings.Join(parts, "\n\n")
}

// cleanText collapses whitespace and strips residual URLs, reference
// markers, and source attributions from a harvested block.
func cleanText(s string) string {
	s = urlRe.ReplaceAllString(s, "")
	s = refRe.ReplaceAllString(s, "")
	s = sourceRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func extractImage(doc *goquery.Document, container *goquery.Selection) string {
	if v, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && v != "" {
		return v
	}
	if v, ok := doc.Find(`meta[name="twitter:image"]`).First().Attr("content"); ok && v != "" {
		return v
	}
	if v, ok := container.Find("img").First().Attr("src"); ok && v != "" {
		return v
	}
	return ""
}

// Meta-tag patterns scanned for the publish date, in priority order.
var dateMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="publishdate"]`,
	`meta[name="date"]`,
	`meta[property="og:published_time"]`,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2 Jan 2006",
	"January 2, 2006",
}

func extractDate(doc *goquery.Document) time.Time {
	for _, sel := range dateMetaSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if t, ok := parseDate(v); ok {
				return t
			}
		}
	}

	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t, ok := parseDate(v); ok {
			return t
		}
	}

	var found time.Time
	doc.Find("span[class*=date], div[class*=date]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t, ok := parseDate(s.Text()); ok {
			found = t
			return false
		}
		return true
	})
	return found
}

// parseDate tries a fixed list of layouts; unparseable values are
// skipped, never fatal.
func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
