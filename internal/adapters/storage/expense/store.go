package expense

import (
	"context"

	domain "primefit/internal/domain/expense"
)

// Store persists Expense state.
type Store interface {
	Save(ctx context.Context, value domain.Expense) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Expense, error)
}
