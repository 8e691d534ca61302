package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"timesheet/internal/core"
	"timesheet/internal/sheets"
)

// EntryStore is what EntryService needs from a backend.
type EntryStore interface {
	sheets.EntryWriter
	sheets.EntryLister
	sheets.EntryUpdater
	sheets.EntryDeleter
}

// EntryService validates entries before they reach the record store and
// scopes every call to the configured user.
type EntryService struct {
	store  EntryStore
	userID string
}

func NewEntryService(store EntryStore, userID string) *EntryService {
	return &EntryService{store: store, userID: userID}
}

// UserID is the owner all entries are stored under.
func (s *EntryService) UserID() string { return s.userID }

// Create normalizes and validates e, then stores it. Identity and
// timestamps from the caller are dropped; the backend assigns them.
func (s *EntryService) Create(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.ID, e.EntryID, e.UserID = "", "", ""
	e.CreatedAt, e.UpdatedAt = time.Time{}, time.Time{}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	created, err := s.store.Create(ctx, s.userID, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}
	return created, nil
}

// Recent lists the user's entries, newest date first.
func (s *EntryService) Recent(ctx context.Context) ([]core.Entry, error) {
	entries, err := s.store.ListEntries(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Update replaces the editable fields of the entry with the given id.
func (s *EntryService) Update(ctx context.Context, id string, e core.Entry) (core.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return core.Entry{}, fmt.Errorf("%w: id", core.ErrMissingField)
	}
	e.ID = id
	e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	updated, err := s.store.UpdateEntry(ctx, s.userID, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry %s: %w", id, err)
	}
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id", core.ErrMissingField)
	}
	if err := s.store.DeleteEntry(ctx, s.userID, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}
