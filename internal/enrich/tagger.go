// Package enrich holds the local (no external collaborator) article
// enrichment steps: topic tagging, extractive summaries, deduplication.
package enrich

import "strings"

const (
	// Only the leading slice of content is scanned for keywords.
	contentPrefixChars = 1000

	minTopics = 3
	maxTopics = 5
)

type keywordTopic struct {
	keyword string
	topic   string
}

// Fixed keyword→topic table. Order matters: within one call the first
// matching keyword determines topic discovery order.
var keywordTable = []keywordTopic{
	{"gpt", "GPT"},
	{"claude", "Claude"},
	{"gemini", "Gemini"},
	{"llm", "LLM"},
	{"language model", "LLM"},
	{"multimodal", "Multimodal AI"},
	{"vision", "Computer Vision"},
	{"image", "Computer Vision"},
	{"code", "Coding"},
	{"programming", "Coding"},
	{"safety", "AI Safety"},
	{"alignment", "AI Alignment"},
	{"regulation", "AI Regulation"},
	{"policy", "AI Policy"},
	{"open source", "Open Source"},
	{"research", "Research"},
	{"robot", "Robotics"},
	{"diffusion", "Generative AI"},
	{"generative", "Generative AI"},
	{"healthcare", "Healthcare"},
}

// Tagger classifies articles into topic labels via keyword matching.
type Tagger struct {
	defaults []string
}

// NewTagger builds a tagger that pads sparse results with the given
// default topics.
func NewTagger(defaults []string) *Tagger {
	if len(defaults) == 0 {
		defaults = []string{"AI", "Technology", "Machine Learning"}
	}
	return &Tagger{defaults: defaults}
}

// Tag returns 1-5 distinct topic labels for an article, deterministic
// for a given title and content.
func (t *Tagger) Tag(title, content string) []string {
	if len(content) > contentPrefixChars {
		content = content[:contentPrefixChars]
	}
	text := strings.ToLower(title + " " + content)

	var topics []string
	seen := map[string]struct{}{}
	add := func(topic string) {
		if _, ok := seen[topic]; ok {
			return
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}

	for _, kt := range keywordTable {
		if strings.Contains(text, kt.keyword) {
			add(kt.topic)
		}
	}

	if len(topics) < minTopics {
		for _, d := range t.defaults {
			add(d)
		}
	}

	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}
