package attendance

import (
	"context"

	domain "primefit/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	GetOpenByMemberID(ctx context.Context, memberID int64) (domain.Record, error)
	Save(ctx context.Context, value domain.Record) error
	List(ctx context.Context) ([]domain.Record, error)
	ListByMemberID(ctx context.Context, memberID int64) ([]domain.Record, error)
	ListByMemberStatus(ctx context.Context, status string) ([]domain.Record, error)
}
