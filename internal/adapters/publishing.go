package adapters

import (
	"context"
	"log/slog"

	"timesheet/internal/amqp"
	"timesheet/internal/core"
	"timesheet/internal/sheets"
)

// Store is the full set of entry operations a backend offers.
type Store interface {
	sheets.EntryWriter
	sheets.EntryLister
	sheets.RangeLister
	sheets.EntryUpdater
	sheets.EntryDeleter
	sheets.HealthChecker
}

// Publisher emits entry events to the broker.
type Publisher interface {
	PublishEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error
}

// PublishingStore wraps a Store and announces every successful write.
// Reads pass straight through. A failed publish is logged and never fails
// the write: the entry is already stored.
type PublishingStore struct {
	Store
	pub Publisher
}

var _ Store = (*PublishingStore)(nil)

func NewPublishingStore(store Store, pub Publisher) *PublishingStore {
	return &PublishingStore{Store: store, pub: pub}
}

// Create implements sheets.EntryWriter
func (s *PublishingStore) Create(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	created, err := s.Store.Create(ctx, userID, e)
	if err != nil {
		return created, err
	}
	s.publish(ctx, amqp.EntryCreated, created.ID, userID)
	return created, nil
}

// UpdateEntry implements sheets.EntryUpdater
func (s *PublishingStore) UpdateEntry(ctx context.Context, userID string, e core.Entry) (core.Entry, error) {
	updated, err := s.Store.UpdateEntry(ctx, userID, e)
	if err != nil {
		return updated, err
	}
	s.publish(ctx, amqp.EntryUpdated, updated.ID, userID)
	return updated, nil
}

// DeleteEntry implements sheets.EntryDeleter
func (s *PublishingStore) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := s.Store.DeleteEntry(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntryDeleted, id, userID)
	return nil
}

func (s *PublishingStore) publish(ctx context.Context, t amqp.EventType, id, userID string) {
	if s.pub == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping entry event", "type", t, "id", id)
		return
	}
	if err := s.pub.PublishEntryEvent(ctx, amqp.NewEntryEvent(t, id, userID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry event", "type", t, "id", id, "error", err)
	}
}
