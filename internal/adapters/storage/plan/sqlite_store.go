package plan

import (
	"context"
	"database/sql"
	"fmt"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/membership"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new plan store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Plan by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	var p domain.Plan
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, duration_months, benefits, price FROM membership_plan WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.DurationMonths, &p.Benefits, &p.Price)
	if err == sql.ErrNoRows {
		return domain.Plan{}, fmt.Errorf("membership plan %s: %w", id, storage.ErrNotFound)
	}
	return p, err
}

// Save persists a Plan (insert or update).
// PRE: entity has been validated
// POST: Entity is persisted
func (s *SQLiteStore) Save(ctx context.Context, p domain.Plan) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO membership_plan (id, name, duration_months, benefits, price) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, duration_months=excluded.duration_months, benefits=excluded.benefits, price=excluded.price`,
		p.ID, p.Name, p.DurationMonths, p.Benefits, p.Price,
	)
	return err
}

// Delete removes a Plan. Members keep their embedded copy.
// PRE: id is non-empty
// POST: Entity with given id is removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM membership_plan WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("membership plan %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// List retrieves all plans ordered by duration then price.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Plan, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, duration_months, benefits, price FROM membership_plan ORDER BY duration_months, price, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationMonths, &p.Benefits, &p.Price); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
