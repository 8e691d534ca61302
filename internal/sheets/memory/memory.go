package memory

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/core"
	ports "timesheet/internal/sheets"
)

// SeedFile is the optional JSON array of entries loaded by NewFromFiles.
const SeedFile = "seed_entries.json"

type Store struct {
	mu    sync.Mutex
	items []core.Entry
	now   func() time.Time
}

var (
	_ ports.EntryWriter   = (*Store)(nil)
	_ ports.EntryLister   = (*Store)(nil)
	_ ports.RangeLister   = (*Store)(nil)
	_ ports.EntryUpdater  = (*Store)(nil)
	_ ports.EntryDeleter  = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

func New(seed ...core.Entry) *Store {
	s := &Store{now: time.Now}
	for _, e := range seed {
		e.Normalize()
		ports.Stamp(&e, e.UserID, uuid.NewString(), s.now())
		s.items = append(s.items, e)
	}
	return s
}

// NewFromFiles seeds the store from base/seed_entries.json when present.
// Seed entries without a user are assigned to defaultUser. An unreadable
// or malformed seed file is logged and the store starts empty.
func NewFromFiles(base, defaultUser string) *Store {
	var seed []core.Entry
	path := filepath.Join(base, SeedFile)
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		slog.Warn("Failed to read seed file", "component", "storage", "path", path, "error", err)
	default:
		if err := json.Unmarshal(b, &seed); err != nil {
			slog.Warn("Ignoring malformed seed file", "component", "storage", "path", path, "error", err)
			seed = nil
		}
	}
	for i := range seed {
		if seed[i].UserID == "" {
			seed[i].UserID = defaultUser
		}
	}
	return New(seed...)
}

func (s *Store) Create(_ context.Context, userID string, e core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ports.Stamp(&e, userID, uuid.NewString(), s.now())
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) ListEntries(_ context.Context, userID string) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Entry, 0, len(s.items))
	for _, e := range s.items {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	ports.SortNewest(out)
	return out, nil
}

func (s *Store) ListEntriesInRange(_ context.Context, userID string, r core.DateRange) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := ports.InRange(s.items, userID, r)
	ports.SortOldest(out)
	return out, nil
}

func (s *Store) UpdateEntry(_ context.Context, userID string, e core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, e.ID)
	if i < 0 {
		return core.Entry{}, ports.ErrNotFound
	}
	prev := s.items[i]
	e.EntryID = prev.EntryID
	e.UserID = userID
	e.CreatedAt = prev.CreatedAt
	e.UpdatedAt = s.now()
	s.items[i] = e
	return e, nil
}

func (s *Store) DeleteEntry(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(userID, id)
	if i < 0 {
		return ports.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) indexOf(userID, id string) int {
	for i, e := range s.items {
		if e.ID == id && e.UserID == userID {
			return i
		}
	}
	return -1
}
