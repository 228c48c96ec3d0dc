package member

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"primefit/internal/adapters/storage"
	"primefit/internal/domain/fitness"
	domain "primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

const selectColumns = "SELECT id, principal, name, email, phone, membership_status, start_date, end_date, membership_plan, workout_plan, diet_plan, profile_pic, password_hash FROM member"

// SQLiteStore implements Store using SQLite.
// Plans are stored as JSON copies; a member keeps the plan terms it joined on.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id > 0
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Member, error) {
	return s.getOne(ctx, selectColumns+" WHERE id = ?", fmt.Sprintf("member %d", id), id)
}

// GetByEmail retrieves a Member by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Member, error) {
	return s.getOne(ctx, selectColumns+" WHERE email = ?", "member with email", domain.NormalizeEmail(email))
}

// GetByPhone retrieves the first Member with the given phone number.
// PRE: phone is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByPhone(ctx context.Context, phone string) (domain.Member, error) {
	return s.getOne(ctx, selectColumns+" WHERE phone = ? ORDER BY id LIMIT 1", "member with phone", strings.TrimSpace(phone))
}

// GetByPrincipal retrieves the Member bound to a principal.
// PRE: p is not anonymous
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByPrincipal(ctx context.Context, p principal.Principal) (domain.Member, error) {
	return s.getOne(ctx, selectColumns+" WHERE principal = ? ORDER BY id LIMIT 1", "member for principal", p.String())
}

func (s *SQLiteStore) getOne(ctx context.Context, query, what string, args ...any) (domain.Member, error) {
	entity, err := scanMember(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Member and returns its assigned ID.
// PRE: entity has been validated; entity.ID is ignored
// POST: Entity is persisted with a fresh ID
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Member) (int64, error) {
	args, err := memberArgs(entity)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO member (principal, name, email, phone, membership_status, start_date, end_date, membership_plan, workout_plan, diet_plan, profile_pic, password_hash) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		args...,
	)
	if err != nil {
		return 0, translate(err)
	}
	return res.LastInsertId()
}

// Save updates an existing Member.
// PRE: entity has been validated and entity.ID exists
// POST: Entity is persisted, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	args, err := memberArgs(entity)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE member SET principal=?, name=?, email=?, phone=?, membership_status=?, start_date=?, end_date=?, membership_plan=?, workout_plan=?, diet_plan=?, profile_pic=?, password_hash=? WHERE id = ?",
		append(args, entity.ID)...,
	)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %d: %w", entity.ID, storage.ErrNotFound)
	}
	return nil
}

// Delete removes a Member and, through foreign keys, its payments, attendance and bookings.
// PRE: id > 0
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// List retrieves Members matching the filter, ordered by id.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	query := selectColumns
	var where []string
	var args []any
	if filter.Status != "" {
		where = append(where, "membership_status = ?")
		args = append(args, filter.Status)
	}
	if filter.Registered {
		where = append(where, "principal != ?")
		args = append(args, principal.Anonymous().String())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, entity)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (domain.Member, error) {
	var entity domain.Member
	var principalText, planJSON string
	var startDate, endDate, workoutJSON, dietJSON sql.NullString
	err := row.Scan(
		&entity.ID,
		&principalText,
		&entity.Name,
		&entity.Email,
		&entity.Phone,
		&entity.MembershipStatus,
		&startDate,
		&endDate,
		&planJSON,
		&workoutJSON,
		&dietJSON,
		&entity.ProfilePicURL,
		&entity.PasswordHash,
	)
	if err != nil {
		return domain.Member{}, err
	}
	if entity.Principal, err = principal.FromText(principalText); err != nil {
		return domain.Member{}, fmt.Errorf("member %d principal: %w", entity.ID, err)
	}
	if entity.StartDate, err = storage.ParseTime(startDate); err != nil {
		return domain.Member{}, fmt.Errorf("member %d start_date: %w", entity.ID, err)
	}
	if entity.EndDate, err = storage.ParseTime(endDate); err != nil {
		return domain.Member{}, fmt.Errorf("member %d end_date: %w", entity.ID, err)
	}
	if err := json.Unmarshal([]byte(planJSON), &entity.MembershipPlan); err != nil {
		return domain.Member{}, fmt.Errorf("member %d membership_plan: %w", entity.ID, err)
	}
	if workoutJSON.Valid {
		entity.WorkoutPlan = &fitness.WorkoutPlan{}
		if err := json.Unmarshal([]byte(workoutJSON.String), entity.WorkoutPlan); err != nil {
			return domain.Member{}, fmt.Errorf("member %d workout_plan: %w", entity.ID, err)
		}
	}
	if dietJSON.Valid {
		entity.DietPlan = &fitness.DietPlan{}
		if err := json.Unmarshal([]byte(dietJSON.String), entity.DietPlan); err != nil {
			return domain.Member{}, fmt.Errorf("member %d diet_plan: %w", entity.ID, err)
		}
	}
	return entity, nil
}

func memberArgs(entity domain.Member) ([]any, error) {
	plan, err := json.Marshal(entity.MembershipPlan)
	if err != nil {
		return nil, err
	}
	workout, err := nullableJSON(entity.WorkoutPlan)
	if err != nil {
		return nil, err
	}
	diet, err := nullableJSON(entity.DietPlan)
	if err != nil {
		return nil, err
	}
	p := entity.Principal
	if len(p.Bytes()) == 0 {
		p = principal.Anonymous()
	}
	return []any{
		p.String(),
		entity.Name,
		domain.NormalizeEmail(entity.Email),
		strings.TrimSpace(entity.Phone),
		entity.MembershipStatus,
		storage.FormatTime(entity.StartDate),
		storage.FormatTime(entity.EndDate),
		string(plan),
		workout,
		diet,
		entity.ProfilePicURL,
		entity.PasswordHash,
	}, nil
}

func nullableJSON[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func translate(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed: member.email") {
		return ErrDuplicateEmail
	}
	return err
}
