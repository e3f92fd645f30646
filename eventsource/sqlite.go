package eventsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database. The (stream_id,
// version) primary key makes concurrent appends to the same version fail
// inside the transaction, so optimistic concurrency holds across processes.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path. Use
// ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventsource: open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventsource: migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		stream_id TEXT NOT NULL,
		version   INTEGER NOT NULL,
		id        TEXT NOT NULL,
		type      TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		data      BLOB,
		UNIQUE (stream_id, version)
	);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds events to a stream with optimistic concurrency control.
func (s *SQLiteStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, fmt.Errorf("eventsource: begin: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, streamID)
	if err != nil {
		return -1, err
	}
	if expectedVersion != current {
		return current, ErrConcurrencyConflict
	}

	version := current
	for _, e := range events {
		version++
		e.StreamID = streamID
		e.Version = version
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (stream_id, version, id, type, timestamp, data) VALUES (?, ?, ?, ?, ?, ?)`,
			streamID, e.Version, e.ID, e.Type, e.Timestamp.Format(time.RFC3339Nano), []byte(e.Data))
		if err != nil {
			return -1, fmt.Errorf("eventsource: insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("eventsource: commit: %w", err)
	}
	return version, nil
}

// Read returns events of a stream from the given version on.
func (s *SQLiteStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stream_id, version, id, type, timestamp, data FROM events
		 WHERE stream_id = ? AND version >= ? ORDER BY version`,
		streamID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("eventsource: read: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadAll returns all events matching the filter in global append order.
func (s *SQLiteStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	query := `SELECT stream_id, version, id, type, timestamp, data FROM events`
	var conds []string
	var args []any
	if filter.StreamID != "" {
		conds = append(conds, "stream_id = ?")
		args = append(args, filter.StreamID)
	}
	if len(filter.Types) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Types))
		conds = append(conds, fmt.Sprintf("type IN (%s)", placeholders[:len(placeholders)-1]))
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventsource: read all: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// StreamVersion returns the last version of a stream, -1 if absent.
func (s *SQLiteStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil {
		return -1, fmt.Errorf("eventsource: stream version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

// DeleteStream removes a stream and its events.
func (s *SQLiteStore) DeleteStream(ctx context.Context, streamID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE stream_id = ?`, streamID)
	if err != nil {
		return fmt.Errorf("eventsource: delete stream: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func streamVersionTx(ctx context.Context, tx *sql.Tx, streamID string) (int, error) {
	var version sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil {
		return -1, fmt.Errorf("eventsource: stream version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var e Event
		var ts string
		var data []byte
		if err := rows.Scan(&e.StreamID, &e.Version, &e.ID, &e.Type, &ts, &data); err != nil {
			return nil, fmt.Errorf("eventsource: scan event: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("eventsource: parse timestamp: %w", err)
		}
		e.Timestamp = t
		if len(data) > 0 {
			e.Data = data
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventsource: iterate events: %w", err)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
