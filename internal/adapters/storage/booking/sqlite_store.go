package booking

import (
	"context"
	"database/sql"
	"fmt"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/booking"
)

const selectColumns = "SELECT id, member_id, class_type, date, status FROM class_booking"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Booking by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Booking{}, fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
	}
	return b, err
}

// Save persists a Booking (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, b domain.Booking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class_booking (id, member_id, class_type, date, status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET member_id=excluded.member_id, class_type=excluded.class_type, date=excluded.date, status=excluded.status`,
		b.ID, b.MemberID, b.ClassType, storage.FormatTime(b.Date), b.Status,
	)
	return err
}

// ListByMemberID retrieves a member's bookings in date order.
// PRE: memberID > 0
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID int64) ([]domain.Booking, error) {
	return s.list(ctx, selectColumns+" WHERE member_id = ? ORDER BY date", memberID)
}

// ListByStatus retrieves all bookings with status in date order.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Booking, error) {
	return s.list(ctx, selectColumns+" WHERE status = ? ORDER BY date", status)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (domain.Booking, error) {
	var b domain.Booking
	var date sql.NullString
	if err := row.Scan(&b.ID, &b.MemberID, &b.ClassType, &date, &b.Status); err != nil {
		return domain.Booking{}, err
	}
	var err error
	if b.Date, err = storage.ParseTime(date); err != nil {
		return domain.Booking{}, fmt.Errorf("booking %s date: %w", b.ID, err)
	}
	return b, nil
}
