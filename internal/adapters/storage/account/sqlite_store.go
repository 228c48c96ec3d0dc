package account

import (
	"context"
	"database/sql"
	"fmt"

	"primefit/internal/adapters/storage"
	domain "primefit/internal/domain/account"
	"primefit/internal/domain/principal"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetProfile retrieves the profile a principal saved.
// PRE: p is not anonymous
// POST: Returns the profile or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetProfile(ctx context.Context, p principal.Principal) (domain.UserProfile, error) {
	u := domain.UserProfile{Principal: p}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, email, app_role, profile_pic FROM user_profile WHERE principal = ?", p.String(),
	).Scan(&u.Name, &u.Email, &u.AppRole, &u.ProfilePicURL)
	if err == sql.ErrNoRows {
		return domain.UserProfile{}, fmt.Errorf("profile for %s: %w", p, storage.ErrNotFound)
	}
	return u, err
}

// SaveProfile persists a profile (insert or update).
// PRE: value has been validated
// POST: Profile is persisted
func (s *SQLiteStore) SaveProfile(ctx context.Context, u domain.UserProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profile (principal, name, email, app_role, profile_pic) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(principal) DO UPDATE SET name=excluded.name, email=excluded.email, app_role=excluded.app_role, profile_pic=excluded.profile_pic`,
		u.Principal.String(), u.Name, u.Email, u.AppRole, u.ProfilePicURL,
	)
	return err
}

// GetRole retrieves a principal's access-control role.
// PRE: none
// POST: Returns RoleGuest when no role is assigned
func (s *SQLiteStore) GetRole(ctx context.Context, p principal.Principal) (string, error) {
	role, ok, err := s.LookupRole(ctx, p)
	if err != nil {
		return "", err
	}
	if !ok {
		return domain.RoleGuest, nil
	}
	return role, nil
}

// LookupRole retrieves an assigned role.
// PRE: none
// POST: ok is false when the principal never had a role
func (s *SQLiteStore) LookupRole(ctx context.Context, p principal.Principal) (string, bool, error) {
	var role string
	err := s.db.QueryRowContext(ctx, "SELECT role FROM user_role WHERE principal = ?", p.String()).Scan(&role)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

// ListRoles returns every assigned role keyed by principal text.
func (s *SQLiteStore) ListRoles(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT principal, role FROM user_role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make(map[string]string)
	for rows.Next() {
		var p, role string
		if err := rows.Scan(&p, &role); err != nil {
			return nil, err
		}
		roles[p] = role
	}
	return roles, rows.Err()
}

// SetRole assigns an access-control role.
// PRE: role is valid
// POST: Role is persisted
func (s *SQLiteStore) SetRole(ctx context.Context, p principal.Principal, role string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO user_role (principal, role) VALUES (?, ?) ON CONFLICT(principal) DO UPDATE SET role=excluded.role",
		p.String(), role,
	)
	return err
}

// AdminExists reports whether any principal holds the admin role.
func (s *SQLiteStore) AdminExists(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_role WHERE role = ?", domain.RoleAdmin).Scan(&n)
	return n > 0, err
}

// GetApproval retrieves a principal's approval.
// PRE: none
// POST: Returns the approval or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetApproval(ctx context.Context, p principal.Principal) (domain.Approval, error) {
	a := domain.Approval{Principal: p}
	err := s.db.QueryRowContext(ctx, "SELECT status FROM approval WHERE principal = ?", p.String()).Scan(&a.Status)
	if err == sql.ErrNoRows {
		return domain.Approval{}, fmt.Errorf("approval for %s: %w", p, storage.ErrNotFound)
	}
	return a, err
}

// SetApproval persists an approval (insert or update).
// PRE: value has been validated
// POST: Approval is persisted
func (s *SQLiteStore) SetApproval(ctx context.Context, a domain.Approval) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO approval (principal, status) VALUES (?, ?) ON CONFLICT(principal) DO UPDATE SET status=excluded.status",
		a.Principal.String(), a.Status,
	)
	return err
}

// ListApprovals retrieves every approval.
func (s *SQLiteStore) ListApprovals(ctx context.Context) ([]domain.Approval, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT principal, status FROM approval ORDER BY principal")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Approval
	for rows.Next() {
		var text string
		var a domain.Approval
		if err := rows.Scan(&text, &a.Status); err != nil {
			return nil, err
		}
		if a.Principal, err = principal.FromText(text); err != nil {
			return nil, fmt.Errorf("approval principal %q: %w", text, err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
