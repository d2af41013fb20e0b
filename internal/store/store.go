// Package store implements the layered article cache: in-process memory
// first, a persistent KV snapshot second, synthetic fallback articles
// last. Callers never observe an empty collection.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"newsdash/internal/domain"
	"newsdash/internal/ports"
)

// Store holds the current article working set.
type Store struct {
	mu       sync.RWMutex
	articles []domain.Article

	kv     ports.KeyValueStore // nil means memory-only
	key    string
	logger *slog.Logger

	fallbackSources []string
	fallbackTopics  []string
}

// New builds a store. kv may be nil; the KV layer is a warm-restart aid,
// not the source of truth. sourceNames and defaultTopics feed the
// synthetic fallback generator.
func New(kv ports.KeyValueStore, key string, sourceNames, defaultTopics []string, logger *slog.Logger) *Store {
	if key == "" {
		key = "newsdash:articles"
	}
	return &Store{
		kv:              kv,
		key:             key,
		logger:          logger,
		fallbackSources: sourceNames,
		fallbackTopics:  defaultTopics,
	}
}

// Get returns the freshest available collection: the in-memory working
// set, else the persisted snapshot, else the synthetic fallback set.
func (s *Store) Get(ctx context.Context) []domain.Article {
	s.mu.RLock()
	if len(s.articles) > 0 {
		out := make([]domain.Article, len(s.articles))
		copy(out, s.articles)
		s.mu.RUnlock()
		return out
	}
	s.mu.RUnlock()

	if persisted := s.readSnapshot(ctx); len(persisted) > 0 {
		s.mu.Lock()
		if len(s.articles) == 0 {
			s.articles = persisted
		}
		s.mu.Unlock()
		out := make([]domain.Article, len(persisted))
		copy(out, persisted)
		return out
	}

	return s.Fallback()
}

// Set replaces the working set and writes the snapshot through to the
// KV layer. A KV write failure is logged, never returned: the in-memory
// snapshot already reflects the new batch.
func (s *Store) Set(ctx context.Context, articles []domain.Article) {
	batch := make([]domain.Article, len(articles))
	copy(batch, articles)

	s.mu.Lock()
	s.articles = batch
	s.mu.Unlock()

	if s.kv == nil {
		return
	}

	raw, err := json.Marshal(batch)
	if err != nil {
		s.warn("marshal snapshot", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.warn("persist snapshot", "error", err)
	}
}

// Clear empties the working set and removes the persisted snapshot plus
// any date-suffixed variants, so stale entries cannot leak into a fresh,
// possibly smaller batch.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.articles = nil
	s.mu.Unlock()

	if s.kv == nil {
		return
	}

	keys := []string{s.key}
	if suffixed, err := s.kv.Keys(ctx, s.key+":"); err != nil {
		s.warn("list snapshot keys", "error", err)
	} else {
		keys = append(keys, suffixed...)
	}
	if err := s.kv.Del(ctx, keys...); err != nil {
		s.warn("delete snapshot", "error", err)
	}
}

func (s *Store) readSnapshot(ctx context.Context) []domain.Article {
	if s.kv == nil {
		return nil
	}
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.warn("read snapshot", "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var articles []domain.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		s.warn("decode snapshot", "error", err)
		return nil
	}
	return articles
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
