package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"timesheet/internal/amqp"
	"timesheet/internal/core"
	"timesheet/internal/sheets"
)

// Source is the primary store the mirror reads from.
type Source interface {
	GetEntry(ctx context.Context, id string) (core.Entry, error)
	AllEntries(ctx context.Context) ([]core.Entry, error)
}

// Sink is the hosted sheet the mirror writes to.
type Sink interface {
	Mirror(ctx context.Context, e core.Entry) error
	Remove(ctx context.Context, id string) error
}

// MirrorWorker copies entries from the primary store into the hosted sheet
// as entry events arrive.
type MirrorWorker struct {
	source Source
	sink   Sink
}

func NewMirrorWorker(source Source, sink Sink) *MirrorWorker {
	return &MirrorWorker{source: source, sink: sink}
}

// HandleEvent applies one entry event to the sheet. The entry is always
// reloaded from the source, so replayed or reordered events converge on
// the stored state.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.EntryEvent) error {
	if ev.Type == amqp.EntryDeleted {
		if err := w.sink.Remove(ctx, ev.ID); err != nil {
			return fmt.Errorf("remove entry %s from sheet: %w", ev.ID, err)
		}
		slog.InfoContext(ctx, "Removed entry from sheet", "id", ev.ID)
		return nil
	}

	e, err := w.source.GetEntry(ctx, ev.ID)
	if errors.Is(err, sheets.ErrNotFound) {
		slog.InfoContext(ctx, "Entry no longer stored, removing from sheet", "id", ev.ID, "type", ev.Type)
		return w.sink.Remove(ctx, ev.ID)
	}
	if err != nil {
		return fmt.Errorf("get entry %s from storage: %w", ev.ID, err)
	}
	if err := w.sink.Mirror(ctx, e); err != nil {
		return fmt.Errorf("mirror entry %s: %w", ev.ID, err)
	}
	slog.InfoContext(ctx, "Mirrored entry to sheet", "id", e.ID, "date", e.Date, "type", ev.Type)
	return nil
}

// Backfill mirrors every stored entry. It recovers from events lost while
// the worker was down and returns how many entries were written.
func (w *MirrorWorker) Backfill(ctx context.Context) (int, error) {
	entries, err := w.source.AllEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("list entries for backfill: %w", err)
	}
	synced, failed := 0, 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.sink.Mirror(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror entry during backfill", "id", e.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	slog.InfoContext(ctx, "Backfill completed", "total", len(entries), "synced", synced, "errors", failed)
	if failed > 0 {
		return synced, fmt.Errorf("backfill: %d of %d entries failed", failed, len(entries))
	}
	return synced, nil
}
