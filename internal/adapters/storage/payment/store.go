package payment

import (
	"context"

	domain "primefit/internal/domain/payment"
)

// Store persists Payment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	Save(ctx context.Context, value domain.Payment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Payment, error)
	ListByMemberID(ctx context.Context, memberID int64) ([]domain.Payment, error)
}
