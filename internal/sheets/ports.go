package sheets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"timesheet/internal/core"
)

var (
	// ErrUnavailable wraps every failure of a backing store.
	ErrUnavailable = errors.New("record store unavailable")
	ErrNotFound    = errors.New("entry not found")
)

// Ports for outbound adapters.
type (
	EntryWriter interface {
		// Create stores e for userID and returns it with ID and EntryID set.
		Create(ctx context.Context, userID string, e core.Entry) (core.Entry, error)
	}

	// EntryLister returns the recent entries of a user, newest date first.
	EntryLister interface {
		ListEntries(ctx context.Context, userID string) ([]core.Entry, error)
	}

	// RangeLister returns the entries dated strictly inside r, oldest first.
	RangeLister interface {
		ListEntriesInRange(ctx context.Context, userID string, r core.DateRange) ([]core.Entry, error)
	}

	EntryUpdater interface {
		UpdateEntry(ctx context.Context, userID string, e core.Entry) (core.Entry, error)
	}

	EntryDeleter interface {
		DeleteEntry(ctx context.Context, userID, id string) error
	}

	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)

// Unavailable wraps err so callers can match ErrUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// Stamp fills the identity fields a backend owns on create.
func Stamp(e *core.Entry, userID, id string, now time.Time) {
	if e.ID == "" {
		e.ID = id
	}
	if e.EntryID == "" {
		e.EntryID = "Entry " + strconv.FormatInt(now.UnixMilli(), 10)
	}
	e.UserID = userID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
}

// SortNewest orders entries by date descending, ties by creation time.
func SortNewest(entries []core.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// SortOldest orders entries by date ascending, ties by creation time.
func SortOldest(entries []core.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// InRange keeps the entries of userID whose date r contains.
func InRange(entries []core.Entry, userID string, r core.DateRange) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if e.UserID == userID && r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}
