package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/core"
	ports "timesheet/internal/sheets"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps order lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var (
	_ ports.EntryWriter   = (*SQLiteRepository)(nil)
	_ ports.EntryLister   = (*SQLiteRepository)(nil)
	_ ports.RangeLister   = (*SQLiteRepository)(nil)
	_ ports.EntryUpdater  = (*SQLiteRepository)(nil)
	_ ports.EntryDeleter  = (*SQLiteRepository)(nil)
	_ ports.HealthChecker = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create implements sheets.EntryWriter
func (r *SQLiteRepository) Create(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	ports.Stamp(&e, userID, uuid.NewString(), r.now())
	if err := r.queries.CreateEntry(ctx, toRow(e)); err != nil {
		return core.Entry{}, ports.Unavailable("create entry", err)
	}
	slog.InfoContext(ctx, "Entry saved to SQLite", "id", e.ID, "date", e.Date, "hours", e.Hours.String())
	return e, nil
}

// ListEntries implements sheets.EntryLister
func (r *SQLiteRepository) ListEntries(ctx context.Context, userID string) ([]core.Entry, error) {
	rows, err := r.queries.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, ports.Unavailable("list entries", err)
	}
	return fromRows(rows), nil
}

// ListEntriesInRange implements sheets.RangeLister
func (r *SQLiteRepository) ListEntriesInRange(ctx context.Context, userID string, dr core.DateRange) ([]core.Entry, error) {
	rows, err := r.queries.ListEntriesInRange(ctx, ListEntriesInRangeParams{UserID: userID, After: dr.Start, Before: dr.End})
	if err != nil {
		return nil, ports.Unavailable("list entries in range", err)
	}
	return fromRows(rows), nil
}

// UpdateEntry implements sheets.EntryUpdater
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	e.UserID = userID
	e.UpdatedAt = r.now()
	n, err := r.queries.UpdateEntry(ctx, toRow(e))
	if err != nil {
		return core.Entry{}, ports.Unavailable("update entry", err)
	}
	if n == 0 {
		return core.Entry{}, ports.ErrNotFound
	}
	return r.GetEntry(ctx, e.ID)
}

// DeleteEntry implements sheets.EntryDeleter
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteEntry(ctx, id, userID)
	if err != nil {
		return ports.Unavailable("delete entry", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	slog.InfoContext(ctx, "Entry deleted from SQLite", "id", id)
	return nil
}

// GetEntry retrieves a single entry by record ID regardless of owner.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Entry{}, ports.Unavailable("get entry", err)
	}
	return fromRow(row), nil
}

// AllEntries returns every stored entry, oldest first.
func (r *SQLiteRepository) AllEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.queries.ListAllEntries(ctx)
	if err != nil {
		return nil, ports.Unavailable("list all entries", err)
	}
	return fromRows(rows), nil
}

// Ping implements sheets.HealthChecker
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return ports.Unavailable("ping sqlite", r.db.PingContext(ctx))
}

func toRow(e core.Entry) Entry {
	return Entry{
		ID:           e.ID,
		EntryID:      e.EntryID,
		UserID:       e.UserID,
		Date:         e.Date,
		TimeIn:       e.TimeIn,
		TimeOut:      e.TimeOut,
		Hours:        e.Hours.String(),
		Description:  e.Description,
		WinOfDay:     e.WinOfDay,
		TomorrowPlan: e.TomorrowPlan,
		CreatedAt:    e.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:    e.UpdatedAt.UTC().Format(timeLayout),
	}
}

func fromRow(r Entry) core.Entry {
	created, _ := time.Parse(timeLayout, r.CreatedAt)
	updated, _ := time.Parse(timeLayout, r.UpdatedAt)
	return core.Entry{
		ID:           r.ID,
		EntryID:      r.EntryID,
		UserID:       r.UserID,
		Date:         r.Date,
		TimeIn:       r.TimeIn,
		TimeOut:      r.TimeOut,
		Hours:        core.Hours(r.Hours),
		Description:  r.Description,
		WinOfDay:     r.WinOfDay,
		TomorrowPlan: r.TomorrowPlan,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

func fromRows(rows []Entry) []core.Entry {
	out := make([]core.Entry, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out
}
