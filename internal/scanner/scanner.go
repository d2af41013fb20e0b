package scanner

import (
	"context"
	"fmt"

	"newsdash/internal/domain"
)

// Scanner captures a single harvesting strategy (RSS feed, HTML listing,
// web search).
type Scanner interface {
	Kind() domain.SourceKind
	Scan(ctx context.Context, src domain.Source) ([]domain.Article, error)
}

// Registry keeps a mapping from source kinds to their strategies.
type Registry struct {
	scanners map[domain.SourceKind]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[domain.SourceKind]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(s Scanner) {
	if r.scanners == nil {
		r.scanners = map[domain.SourceKind]Scanner{}
	}
	r.scanners[s.Kind()] = s
}

// Resolve returns the scanner for a source kind or an error if absent.
func (r *Registry) Resolve(kind domain.SourceKind) (Scanner, error) {
	if s, ok := r.scanners[kind]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no scanner registered for source kind %q", kind)
}
