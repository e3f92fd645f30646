package eventsource

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store, suitable for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	order   []*Event // global append order for ReadAll
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]*Event),
	}
}

// Append adds events to a stream with optimistic concurrency control.
func (s *MemoryStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	current := len(stream) - 1
	if expectedVersion != current {
		return current, ErrConcurrencyConflict
	}

	for _, e := range events {
		e.StreamID = streamID
		e.Version = len(stream)
		stream = append(stream, e)
		s.order = append(s.order, e)
	}
	s.streams[streamID] = stream
	return len(stream) - 1, nil
}

// Read returns events of a stream from the given version on.
func (s *MemoryStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	var out []*Event
	for _, e := range stream {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAll returns all events matching the filter in global append order.
func (s *MemoryStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.order {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// StreamVersion returns the last version of a stream, -1 if absent.
func (s *MemoryStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[streamID]) - 1, nil
}

// DeleteStream removes a stream and its events.
func (s *MemoryStore) DeleteStream(ctx context.Context, streamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.streams, streamID)
	kept := s.order[:0]
	for _, e := range s.order {
		if e.StreamID != streamID {
			kept = append(kept, e)
		}
	}
	s.order = kept
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
