package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Entry is a row of the entries table.
type Entry struct {
	ID           string
	EntryID      string
	UserID       string
	Date         string
	TimeIn       string
	TimeOut      string
	Hours        string
	Description  string
	WinOfDay     string
	TomorrowPlan string
	CreatedAt    string
	UpdatedAt    string
}

const entryColumns = `id, entry_id, user_id, date, time_in, time_out, hours, description, win_of_day, tomorrow_plan, created_at, updated_at`

const createEntry = `INSERT INTO entries (` + entryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateEntry(ctx context.Context, e Entry) error {
	_, err := q.db.ExecContext(ctx, createEntry,
		e.ID, e.EntryID, e.UserID, e.Date, e.TimeIn, e.TimeOut,
		e.Hours, e.Description, e.WinOfDay, e.TomorrowPlan, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

const getEntry = `SELECT ` + entryColumns + ` FROM entries WHERE id = ?`

func (q *Queries) GetEntry(ctx context.Context, id string) (Entry, error) {
	return scanEntry(q.db.QueryRowContext(ctx, getEntry, id))
}

const listEntriesByUser = `SELECT ` + entryColumns + ` FROM entries
WHERE user_id = ?
ORDER BY date DESC, created_at DESC`

func (q *Queries) ListEntriesByUser(ctx context.Context, userID string) ([]Entry, error) {
	return q.list(ctx, listEntriesByUser, userID)
}

type ListEntriesInRangeParams struct {
	UserID string
	After  string
	Before string
}

const listEntriesInRange = `SELECT ` + entryColumns + ` FROM entries
WHERE user_id = ? AND date > ? AND date < ?
ORDER BY date ASC, created_at ASC`

func (q *Queries) ListEntriesInRange(ctx context.Context, arg ListEntriesInRangeParams) ([]Entry, error) {
	return q.list(ctx, listEntriesInRange, arg.UserID, arg.After, arg.Before)
}

const listAllEntries = `SELECT ` + entryColumns + ` FROM entries ORDER BY created_at ASC`

func (q *Queries) ListAllEntries(ctx context.Context) ([]Entry, error) {
	return q.list(ctx, listAllEntries)
}

const updateEntry = `UPDATE entries
SET date = ?, time_in = ?, time_out = ?, hours = ?, description = ?,
    win_of_day = ?, tomorrow_plan = ?, updated_at = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateEntry(ctx context.Context, e Entry) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateEntry,
		e.Date, e.TimeIn, e.TimeOut, e.Hours, e.Description,
		e.WinOfDay, e.TomorrowPlan, e.UpdatedAt, e.ID, e.UserID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteEntry = `DELETE FROM entries WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteEntry(ctx context.Context, id, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEntry, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entry
	for rows.Next() {
		i, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (Entry, error) {
	var i Entry
	err := s.Scan(
		&i.ID, &i.EntryID, &i.UserID, &i.Date, &i.TimeIn, &i.TimeOut,
		&i.Hours, &i.Description, &i.WinOfDay, &i.TomorrowPlan, &i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}
