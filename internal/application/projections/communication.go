package projections

import (
	"context"

	"primefit/internal/domain/account"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/member"
)

// CommunicationDeps holds dependencies for communication log queries.
type CommunicationDeps struct {
	CommunicationStore CommunicationStore
}

// QueryAllCommunicationLogs lists every logged message, newest first.
// PRE: caller is an admin
func QueryAllCommunicationLogs(ctx context.Context, caller account.Caller, deps CommunicationDeps) ([]communication.LogEntry, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.CommunicationStore.List(ctx)
}

// QueryCommunicationLogsByEmail lists messages sent to one address.
// PRE: caller is an admin
// INVARIANT: the address matches case-insensitively
func QueryCommunicationLogsByEmail(ctx context.Context, caller account.Caller, email string, deps CommunicationDeps) ([]communication.LogEntry, error) {
	if err := caller.RequireAdmin(); err != nil {
		return nil, err
	}
	return deps.CommunicationStore.ListByRecipient(ctx, member.NormalizeEmail(email))
}
