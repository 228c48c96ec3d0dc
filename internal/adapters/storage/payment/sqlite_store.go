package payment

import (
	"context"
	"database/sql"
	"fmt"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/payment"
)

const selectColumns = "SELECT id, member_id, amount, status, timestamp FROM payment"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new payment store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Payment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment %s: %w", id, storage.ErrNotFound)
	}
	return p, err
}

// Save persists a Payment (insert or update).
// PRE: entity has been validated and the member exists
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment (id, member_id, amount, status, timestamp) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET member_id=excluded.member_id, amount=excluded.amount, status=excluded.status, timestamp=excluded.timestamp`,
		p.ID, p.MemberID, p.Amount, p.Status, storage.FormatTime(p.Timestamp),
	)
	return err
}

// Delete removes a Payment.
// PRE: id is non-empty
// POST: Entity removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM payment WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// List retrieves all payments, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Payment, error) {
	return s.list(ctx, selectColumns+" ORDER BY timestamp DESC")
}

// ListByMemberID retrieves a member's payments, newest first.
// PRE: memberID > 0
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID int64) ([]domain.Payment, error) {
	return s.list(ctx, selectColumns+" WHERE member_id = ? ORDER BY timestamp DESC", memberID)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(row scanner) (domain.Payment, error) {
	var p domain.Payment
	var ts sql.NullString
	if err := row.Scan(&p.ID, &p.MemberID, &p.Amount, &p.Status, &ts); err != nil {
		return domain.Payment{}, err
	}
	var err error
	if p.Timestamp, err = storage.ParseTime(ts); err != nil {
		return domain.Payment{}, fmt.Errorf("payment %s timestamp: %w", p.ID, err)
	}
	return p, nil
}
