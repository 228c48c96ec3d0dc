package communication

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/communication"
)

const selectColumns = "SELECT id, recipient, channel, content, status, attempts, timestamp FROM communication_log"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new communication log store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a LogEntry (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.LogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO communication_log (id, recipient, channel, content, status, attempts, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status, attempts=excluded.attempts, timestamp=excluded.timestamp`,
		e.ID, strings.ToLower(strings.TrimSpace(e.Recipient)), e.Channel, e.Content, e.Status, e.Attempts, storage.FormatTime(e.Timestamp),
	)
	return err
}

// List retrieves the whole log, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.LogEntry, error) {
	return s.list(ctx, selectColumns+" ORDER BY timestamp DESC")
}

// ListByRecipient retrieves the log for one recipient, ignoring case.
// PRE: recipient is non-empty
func (s *SQLiteStore) ListByRecipient(ctx context.Context, recipient string) ([]domain.LogEntry, error) {
	return s.list(ctx, selectColumns+" WHERE recipient = ? ORDER BY timestamp DESC", strings.ToLower(strings.TrimSpace(recipient)))
}

// ListRetryable retrieves failed email entries with attempts left, oldest first.
// PRE: maxAttempts > 0
func (s *SQLiteStore) ListRetryable(ctx context.Context, maxAttempts int) ([]domain.LogEntry, error) {
	return s.list(ctx,
		selectColumns+" WHERE channel = ? AND status = ? AND attempts < ? ORDER BY timestamp",
		domain.ChannelEmail, domain.StatusFailed, maxAttempts)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var ts sql.NullString
		if err := rows.Scan(&e.ID, &e.Recipient, &e.Channel, &e.Content, &e.Status, &e.Attempts, &ts); err != nil {
			return nil, err
		}
		if e.Timestamp, err = storage.ParseTime(ts); err != nil {
			return nil, fmt.Errorf("communication %s timestamp: %w", e.ID, err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
