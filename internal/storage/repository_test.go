package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timesheet/internal/core"
	ports "timesheet/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "timesheet.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func work(date, hours string) core.Entry {
	return core.Entry{Date: date, TimeIn: "09:00", TimeOut: "10:00", Hours: core.Hours(hours), Description: "work " + date}
}

func TestRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	in := work("2024-03-05", "1.005")
	in.WinOfDay = "shipped"
	created, err := repo.Create(ctx, "owner", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.GetEntry(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Hours != "1.005" || got.WinOfDay != "shipped" || got.UserID != "owner" {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt.UTC()) {
		t.Fatalf("created at %v, want %v", got.CreatedAt, created.CreatedAt)
	}
	if _, err := repo.GetEntry(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryListOrderingAndRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, d := range []string{"2024-03-01", "2024-04-02", "2024-03-15", "2024-04-30"} {
		if _, err := repo.Create(ctx, "owner", work(d, "1")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_, _ = repo.Create(ctx, "other", work("2024-03-20", "1"))

	list, err := repo.ListEntries(ctx, "owner")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"2024-04-30", "2024-04-02", "2024-03-15", "2024-03-01"}
	if len(list) != len(want) {
		t.Fatalf("got %d entries, want %d", len(list), len(want))
	}
	for i, d := range want {
		if list[i].Date != d {
			t.Fatalf("list[%d] = %s, want %s", i, list[i].Date, d)
		}
	}

	inRange, err := repo.ListEntriesInRange(ctx, "owner", core.DateRange{Start: "2024-03-01", End: "2024-04-30"})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(inRange) != 2 || inRange[0].Date != "2024-03-15" || inRange[1].Date != "2024-04-02" {
		t.Fatalf("expected interior entries oldest first, got %+v", inRange)
	}

	all, err := repo.AllEntries(ctx)
	if err != nil || len(all) != 5 {
		t.Fatalf("all entries = %d err=%v", len(all), err)
	}
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	repo.now = func() time.Time { return time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC) }

	e, _ := repo.Create(ctx, "owner", work("2024-03-05", "1"))
	repo.now = func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) }

	e.Description = "rewritten"
	e.Hours = "2.25"
	updated, err := repo.UpdateEntry(ctx, "owner", e)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "rewritten" || updated.Hours != "2.25" || updated.EntryID != e.EntryID {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updated_at not bumped: %+v", updated)
	}
	if _, err := repo.UpdateEntry(ctx, "other", e); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("update by another user should be not found, got %v", err)
	}

	if err := repo.DeleteEntry(ctx, "owner", e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteEntry(ctx, "owner", e.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestRepositoryPingAfterClose(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = repo.Close()
	if err := repo.Ping(context.Background()); !errors.Is(err, ports.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after close, got %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	fresh := filepath.Join(t.TempDir(), "fresh.db")
	if v, err := SchemaVersion(fresh); err != nil || v != 0 {
		t.Fatalf("unmigrated version = %d, %v; want 0", v, err)
	}

	path := filepath.Join(t.TempDir(), "timesheet.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	if err := RunMigrations(path); err != nil {
		t.Fatalf("re-running migrations should be a no-op: %v", err)
	}
	if v, err := SchemaVersion(path); err != nil || v != 1 {
		t.Fatalf("version = %d, %v; want 1", v, err)
	}
}
