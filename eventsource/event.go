// Package eventsource provides append-only event streams with optimistic
// concurrency control, backed by memory or SQLite, and a Journal that
// persists accepted token-ledger operations so ledger state can be rebuilt
// by replay.
package eventsource

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a single immutable record in a stream. Version is assigned by the
// store at append time, starting at 0 per stream.
type Event struct {
	ID        string          `json:"id"`
	StreamID  string          `json:"stream_id"`
	Type      string          `json:"type"`
	Version   int             `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent creates an event with a fresh ID and the payload marshaled to
// JSON. The version is unset until the event is appended.
func NewEvent(streamID, eventType string, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("eventsource: marshal event data: %w", err)
		}
		raw = b
	}
	return &Event{
		ID:        uuid.New().String(),
		StreamID:  streamID,
		Type:      eventType,
		Version:   -1,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

// Decode unmarshals the event payload into v. A nil payload is a no-op.
func (e *Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}
