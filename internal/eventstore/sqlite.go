package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and creates) the event store at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err).WithContext("path", dbPath).Build()
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, wrap(ErrInitializeSchemaFailed, err).WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stream_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_stream_id ON events(stream_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, streamID, eventType string, payload []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var metadataJSON []byte
	if metadata != nil {
		var err error
		if metadataJSON, err = json.Marshal(metadata); err != nil {
			return wrap(ErrEventAppendFailed, err).WithContext("stream", streamID).WithContext("event", eventType).Build()
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (stream_id, event_type, timestamp, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		streamID, eventType, time.Now().UnixNano(), payload, metadataJSON,
	)
	if err != nil {
		return wrap(ErrEventAppendFailed, err).WithContext("stream", streamID).WithContext("event", eventType).Build()
	}
	return nil
}

func (s *SQLiteStore) GetByStream(ctx context.Context, streamID string) ([]Event, error) {
	return s.query(ctx,
		"SELECT id, stream_id, event_type, timestamp, payload, metadata FROM events WHERE stream_id = ? ORDER BY id",
		streamID)
}

func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	return s.query(ctx,
		"SELECT id, stream_id, event_type, timestamp, payload, metadata FROM events WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.UnixNano(), end.UnixNano())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(ErrEventQueryFailed, err).Build()
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			r            Record
			ts           int64
			metadataJSON []byte
		)
		if err := rows.Scan(&r.Seq, &r.Path, &r.Name, &ts, &r.Data, &metadataJSON); err != nil {
			return nil, wrap(ErrEventQueryFailed, err).Build()
		}
		r.Recorded = time.Unix(0, ts)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &r.Meta); err != nil {
				return nil, wrap(ErrEventQueryFailed, err).Build()
			}
		}
		events = append(events, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrEventQueryFailed, err).Build()
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
