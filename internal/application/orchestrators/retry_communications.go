package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"primefit/internal/domain/communication"
)

// RetryCommunicationsResult summarises one retry pass.
type RetryCommunicationsResult struct {
	Attempted int
	Sent      int
}

// ExecuteRetryCommunications re-sends failed emails that have attempts left.
// PRE: deps.Sender is configured; nothing is retried without one
// POST: Each attempted entry is saved with its new status and attempt count
func ExecuteRetryCommunications(ctx context.Context, deps CommunicationDeps) (RetryCommunicationsResult, error) {
	var res RetryCommunicationsResult
	if deps.Sender == nil {
		return res, nil
	}
	entries, err := deps.Store.ListRetryable(ctx, communication.MaxAttempts)
	if err != nil {
		return res, fmt.Errorf("list retryable communications: %w", err)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !e.IsRetryable() {
			continue
		}
		res.Attempted++
		e.RecordAttempt(sendEmail(ctx, deps.Sender, e), deps.Clock.now())
		if e.Status == communication.StatusSent {
			res.Sent++
		}
		if err := deps.Store.Save(ctx, e); err != nil {
			slog.Error("communication_retry_save_failed", "id", e.ID, "error", err)
		}
	}

	if res.Attempted > 0 {
		slog.Info("communication_event", "event", "retry_pass", "attempted", res.Attempted, "sent", res.Sent)
	}
	return res, nil
}
