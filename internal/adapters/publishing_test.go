package adapters

import (
	"context"
	"errors"
	"testing"

	"timesheet/internal/amqp"
	"timesheet/internal/core"
	"timesheet/internal/sheets"
	"timesheet/internal/sheets/memory"
)

type recordingPublisher struct {
	events []amqp.EntryEvent
	err    error
}

func (p *recordingPublisher) PublishEntryEvent(_ context.Context, ev *amqp.EntryEvent) error {
	p.events = append(p.events, *ev)
	return p.err
}

func work() core.Entry {
	return core.Entry{Date: "2024-03-05", TimeIn: "09:00", TimeOut: "10:00", Hours: "1", Description: "work"}
}

func TestPublishingStoreEmitsOneEventPerWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	s := NewPublishingStore(memory.New(), pub)

	e, err := s.Create(ctx, "owner", work())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e.Description = "more work"
	if _, err := s.UpdateEntry(ctx, "owner", e); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.ListEntries(ctx, "owner"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := s.DeleteEntry(ctx, "owner", e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []amqp.EventType{amqp.EntryCreated, amqp.EntryUpdated, amqp.EntryDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("got %d events, want %d", len(pub.events), len(want))
	}
	for i, ev := range pub.events {
		if ev.Type != want[i] || ev.ID != e.ID || ev.UserID != "owner" {
			t.Errorf("event %d = %+v", i, ev)
		}
	}
}

func TestPublishingStoreSwallowsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	s := NewPublishingStore(memory.New(), pub)
	if _, err := s.Create(context.Background(), "owner", work()); err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected a publish attempt")
	}
}

func TestPublishingStoreSkipsFailedWrites(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewPublishingStore(memory.New(), pub)
	if err := s.DeleteEntry(context.Background(), "owner", "missing"); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed writes must not publish: %+v", pub.events)
	}
}

func TestPublishingStoreWithoutPublisher(t *testing.T) {
	s := NewPublishingStore(memory.New(), nil)
	if _, err := s.Create(context.Background(), "owner", work()); err != nil {
		t.Fatalf("create: %v", err)
	}
}
