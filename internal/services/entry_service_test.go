package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"timesheet/internal/core"
	"timesheet/internal/sheets/memory"
)

// countingStore records how often the backend is reached.
type countingStore struct {
	*memory.Store
	calls int
}

func (c *countingStore) Create(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	c.calls++
	return c.Store.Create(ctx, userID, e)
}

func (c *countingStore) UpdateEntry(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	c.calls++
	return c.Store.UpdateEntry(ctx, userID, e)
}

func TestEntryServiceCreate(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	svc := NewEntryService(store, "owner")

	got, err := svc.Create(context.Background(), core.Entry{
		Date: "2024-03-05", TimeIn: "08:00", TimeOut: "17:30", Description: " onboarding ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Hours != "9.50" || got.Description != "onboarding" || got.UserID != "owner" {
		t.Fatalf("unexpected entry: %+v", got)
	}

	list, _ := svc.Recent(context.Background())
	if len(list) != 1 || list[0].ID != got.ID {
		t.Fatalf("recent = %+v", list)
	}
}

func TestEntryServiceCreateOwnsIdentity(t *testing.T) {
	svc := NewEntryService(memory.New(), "owner")
	forged := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.Create(context.Background(), core.Entry{
		ID: "client-id", EntryID: "Entry 1", UserID: "someone-else",
		CreatedAt: forged, UpdatedAt: forged,
		Date: "2024-03-05", TimeIn: "09:00", TimeOut: "10:00", Description: "work",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == "client-id" || got.EntryID == "Entry 1" || got.UserID != "owner" {
		t.Fatalf("client identity kept: %+v", got)
	}
	if got.CreatedAt.Equal(forged) || got.UpdatedAt.Equal(forged) {
		t.Fatalf("client timestamps kept: %+v", got)
	}
}

func TestEntryServiceRejectsBeforePersistence(t *testing.T) {
	store := &countingStore{Store: memory.New()}
	svc := NewEntryService(store, "owner")

	_, err := svc.Create(context.Background(), core.Entry{Date: "2024-03-05", TimeIn: "08:00", TimeOut: "09:00"})
	if !errors.Is(err, core.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	_, err = svc.Update(context.Background(), "some-id", core.Entry{Date: "2024-03-05"})
	if !errors.Is(err, core.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if store.calls != 0 {
		t.Fatalf("store reached %d times for invalid input", store.calls)
	}
}

func TestEntryServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewEntryService(memory.New(), "owner")
	e, _ := svc.Create(ctx, core.Entry{Date: "2024-03-05", TimeIn: "09:00", TimeOut: "10:00", Description: "a"})

	e.Description = "b"
	e.Hours = ""
	e.TimeOut = "11:00"
	updated, err := svc.Update(ctx, e.ID, e)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "b" || updated.Hours != "2.00" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if err := svc.Delete(ctx, ""); !errors.Is(err, core.ErrMissingField) {
		t.Fatalf("expected ErrMissingField for empty id, got %v", err)
	}
	if err := svc.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
