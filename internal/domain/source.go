package domain

// SourceKind selects the harvesting strategy for a source.
type SourceKind string

const (
	SourceRSS    SourceKind = "rss"
	SourceHTML   SourceKind = "html"
	SourceSearch SourceKind = "search"
)

// Source is a configured remote feed or page. Compiled once at startup,
// never mutated at runtime.
type Source struct {
	Name    string
	Kind    SourceKind
	URL     string
	BaseURL string

	// Selectors for HTML sources: where to find article cards on the
	// listing page and the title/link within each card.
	CardSelector  string
	TitleSelector string
	LinkSelector  string

	// Query for search sources.
	Query string
}

// FetchResult is the transient outcome of a successful HTTP fetch.
type FetchResult struct {
	Status   int
	Body     []byte
	FinalURL string
}

// SourceError records a per-source failure inside a run summary.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// RunSummary is the orchestrator's report for one full pipeline run.
type RunSummary struct {
	Success          bool          `json:"success"`
	Articles         []Article     `json:"articles"`
	SourcesAttempted int           `json:"sourcesAttempted"`
	SourcesSucceeded int           `json:"sourcesSucceeded"`
	Errors           []SourceError `json:"errors"`
}
