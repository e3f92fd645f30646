package eventsource

import (
	"context"
	"errors"
)

var (
	// ErrConcurrencyConflict is returned by Append when the expected version
	// does not match the stream's current version.
	ErrConcurrencyConflict = errors.New("eventsource: concurrency conflict")

	// ErrStreamNotFound is returned when a journal stream does not exist.
	ErrStreamNotFound = errors.New("eventsource: stream not found")

	// ErrStreamExists is returned when creating a journal on a non-empty stream.
	ErrStreamExists = errors.New("eventsource: stream already exists")
)

// EventFilter selects events for ReadAll. Zero-value fields match everything.
type EventFilter struct {
	StreamID string   // exact stream match
	Types    []string // any of these event types
}

func (f EventFilter) matches(e *Event) bool {
	if f.StreamID != "" && e.StreamID != f.StreamID {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if e.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Store persists event streams. Append is atomic per stream: either every
// event is appended with consecutive versions or none is.
type Store interface {
	// Append adds events to a stream. expectedVersion is the version of the
	// last event already in the stream (-1 for a new stream); on mismatch it
	// returns ErrConcurrencyConflict. Returns the stream's new version.
	Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error)

	// Read returns events of a stream with version >= fromVersion, in order.
	Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error)

	// ReadAll returns events across streams matching the filter, in global
	// append order.
	ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error)

	// StreamVersion returns the version of the last event in the stream,
	// or -1 if the stream does not exist.
	StreamVersion(ctx context.Context, streamID string) (int, error)

	// DeleteStream removes a stream and all its events.
	DeleteStream(ctx context.Context, streamID string) error

	// Close releases store resources.
	Close() error
}
