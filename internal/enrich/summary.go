package enrich

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultSummaryLength = 150
	minSummarizableChars = 20
	summarySentences     = 3
)

// Sentence boundaries are terminal punctuation followed by whitespace or
// end of text, so decimals and mid-word periods do not split.
var sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// Summarize produces a short extractive summary: the first few sentences,
// truncated to maxLength. Content too short to summarize yields a
// templated sentence referencing the title, never an empty string.
func Summarize(content, title string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}

	content = strings.TrimSpace(content)
	if len(content) < minSummarizableChars {
		return fmt.Sprintf("This is an article about %s.", title)
	}

	summary := content
	if locs := sentenceEndRe.FindAllStringIndex(content, summarySentences); len(locs) == summarySentences {
		summary = content[:locs[summarySentences-1][1]]
	}
	summary = strings.TrimSpace(summary)
	if !strings.ContainsAny(summary[len(summary)-1:], ".!?") {
		summary += "."
	}

	if runes := []rune(summary); len(runes) > maxLength {
		summary = string(runes[:maxLength]) + "..."
	}
	return summary
}
