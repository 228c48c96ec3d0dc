package attendance

import (
	"context"
	"database/sql"
	"fmt"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/attendance"
)

const selectColumns = "SELECT a.id, a.member_id, a.check_in_time, a.check_out_time FROM attendance a"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Record by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+" WHERE a.id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("attendance %s: %w", id, storage.ErrNotFound)
	}
	return r, err
}

// GetOpenByMemberID retrieves the member's latest visit without a check-out.
// PRE: memberID > 0
// POST: Returns the open record or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetOpenByMemberID(ctx context.Context, memberID int64) (domain.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx,
		selectColumns+" WHERE a.member_id = ? AND a.check_out_time IS NULL ORDER BY a.check_in_time DESC LIMIT 1", memberID))
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("open attendance for member %d: %w", memberID, storage.ErrNotFound)
	}
	return r, err
}

// Save persists a Record (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, r domain.Record) error {
	var checkOut any
	if r.CheckOutTime != nil {
		checkOut = storage.FormatTime(*r.CheckOutTime)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, member_id, check_in_time, check_out_time) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET member_id=excluded.member_id, check_in_time=excluded.check_in_time, check_out_time=excluded.check_out_time`,
		r.ID, r.MemberID, storage.FormatTime(r.CheckInTime), checkOut,
	)
	return err
}

// List retrieves every record, newest check-in first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Record, error) {
	return s.list(ctx, selectColumns+" ORDER BY a.check_in_time DESC")
}

// ListByMemberID retrieves a member's records, newest check-in first.
// PRE: memberID > 0
func (s *SQLiteStore) ListByMemberID(ctx context.Context, memberID int64) ([]domain.Record, error) {
	return s.list(ctx, selectColumns+" WHERE a.member_id = ? ORDER BY a.check_in_time DESC", memberID)
}

// ListByMemberStatus retrieves records of members whose membership has status.
// PRE: status is a membership status
func (s *SQLiteStore) ListByMemberStatus(ctx context.Context, status string) ([]domain.Record, error) {
	return s.list(ctx,
		selectColumns+" JOIN member m ON m.id = a.member_id WHERE m.membership_status = ? ORDER BY a.check_in_time DESC", status)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var r domain.Record
	var checkIn, checkOut sql.NullString
	if err := row.Scan(&r.ID, &r.MemberID, &checkIn, &checkOut); err != nil {
		return domain.Record{}, err
	}
	var err error
	if r.CheckInTime, err = storage.ParseTime(checkIn); err != nil {
		return domain.Record{}, fmt.Errorf("attendance %s check_in_time: %w", r.ID, err)
	}
	if checkOut.Valid {
		out, err := storage.ParseTime(checkOut)
		if err != nil {
			return domain.Record{}, fmt.Errorf("attendance %s check_out_time: %w", r.ID, err)
		}
		r.CheckOutTime = &out
	}
	return r, nil
}
