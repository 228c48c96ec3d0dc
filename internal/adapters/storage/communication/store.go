package communication

import (
	"context"

	domain "primefit/internal/domain/communication"
)

// Store persists the communication log.
type Store interface {
	Save(ctx context.Context, value domain.LogEntry) error
	List(ctx context.Context) ([]domain.LogEntry, error)
	ListByRecipient(ctx context.Context, recipient string) ([]domain.LogEntry, error)
	// ListRetryable returns failed email entries with fewer than maxAttempts attempts.
	ListRetryable(ctx context.Context, maxAttempts int) ([]domain.LogEntry, error)
}
