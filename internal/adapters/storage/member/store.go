package member

import (
	"context"
	"errors"

	domain "primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

// ErrDuplicateEmail is returned when another member already uses the email.
var ErrDuplicateEmail = errors.New("a member with this email already exists")

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (domain.Member, error)
	GetByPrincipal(ctx context.Context, p principal.Principal) (domain.Member, error)
	Create(ctx context.Context, value domain.Member) (int64, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	// Registered restricts the list to members bound to a real principal.
	Registered bool
}
