package expense

import (
	"context"
	"database/sql"
	"fmt"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/expense"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new expense store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an Expense (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Expense) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expense (id, type, description, amount, timestamp) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET type=excluded.type, description=excluded.description, amount=excluded.amount, timestamp=excluded.timestamp`,
		e.ID, e.Type, e.Description, e.Amount, storage.FormatTime(e.Timestamp),
	)
	return err
}

// Delete removes an Expense.
// PRE: id is non-empty
// POST: Entity removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expense WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// List retrieves all expenses, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, type, description, amount, timestamp FROM expense ORDER BY timestamp DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var ts sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.Description, &e.Amount, &ts); err != nil {
			return nil, err
		}
		if e.Timestamp, err = storage.ParseTime(ts); err != nil {
			return nil, fmt.Errorf("expense %s timestamp: %w", e.ID, err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
