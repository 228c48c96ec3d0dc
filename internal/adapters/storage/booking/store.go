package booking

import (
	"context"

	domain "primefit/internal/domain/booking"
)

// Store persists class bookings.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Save(ctx context.Context, value domain.Booking) error
	ListByMemberID(ctx context.Context, memberID int64) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Booking, error)
}
