package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timesheet/internal/adapters"
	"timesheet/internal/core"
)

// EntryStore caches each user's entry list in front of a backend. Any
// successful write by that user drops the cached list. Range queries are
// never cached because invoices must see current data.
type EntryStore struct {
	adapters.Store
	recent *LRUCache[[]core.Entry]

	// gen counts writes per user. A list read while a write landed is
	// returned but not cached.
	mu  sync.Mutex
	gen map[string]uint64
}

var _ adapters.Store = (*EntryStore)(nil)

func NewEntryStore(store adapters.Store, maxUsers int, ttl time.Duration) *EntryStore {
	return &EntryStore{
		Store:  store,
		recent: NewLRUCache[[]core.Entry](maxUsers, ttl),
		gen:    make(map[string]uint64),
	}
}

// Recent exposes the underlying cache so it can be registered with a Manager.
func (s *EntryStore) Recent() *LRUCache[[]core.Entry] { return s.recent }

func (s *EntryStore) ListEntries(ctx context.Context, userID string) ([]core.Entry, error) {
	if list, ok := s.recent.Get(userID); ok {
		slog.DebugContext(ctx, "Recent entries served from cache", "component", "cache", "user_id", userID, "count", len(list))
		return append([]core.Entry(nil), list...), nil
	}
	s.mu.Lock()
	gen := s.gen[userID]
	s.mu.Unlock()

	list, err := s.Store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen[userID] == gen {
		s.recent.Set(userID, append([]core.Entry(nil), list...))
	}
	s.mu.Unlock()
	return list, nil
}

func (s *EntryStore) invalidate(userID string) {
	s.mu.Lock()
	s.gen[userID]++
	s.recent.Delete(userID)
	s.mu.Unlock()
}

func (s *EntryStore) Create(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	created, err := s.Store.Create(ctx, userID, e)
	if err == nil {
		s.invalidate(userID)
	}
	return created, err
}

func (s *EntryStore) UpdateEntry(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	updated, err := s.Store.UpdateEntry(ctx, userID, e)
	if err == nil {
		s.invalidate(userID)
	}
	return updated, err
}

func (s *EntryStore) DeleteEntry(ctx context.Context, userID, id string) error {
	err := s.Store.DeleteEntry(ctx, userID, id)
	if err == nil {
		s.invalidate(userID)
	}
	return err
}
