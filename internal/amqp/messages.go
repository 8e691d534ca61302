package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType names what happened to an entry.
type EventType string

const (
	EntryCreated EventType = "entry.created"
	EntryUpdated EventType = "entry.updated"
	EntryDeleted EventType = "entry.deleted"
)

func (t EventType) IsValid() bool {
	switch t {
	case EntryCreated, EntryUpdated, EntryDeleted:
		return true
	}
	return false
}

// EntryEvent is a lightweight notification about a stored entry.
// It carries only the identity; consumers load the entry themselves.
type EntryEvent struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryEvent(t EventType, id, userID string) *EntryEvent {
	return &EntryEvent{
		Type:      t,
		ID:        id,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventFromJSON decodes and checks a message body.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.ID == "" {
		return nil, errors.New("event without entry id")
	}
	return &msg, nil
}
