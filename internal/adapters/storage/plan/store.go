package plan

import (
	"context"

	domain "primefit/internal/domain/membership"
)

// Store persists membership plans.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	Save(ctx context.Context, value domain.Plan) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Plan, error)
}
