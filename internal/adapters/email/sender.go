// Package email delivers member messages through an external provider.
package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send one email.
type SendRequest struct {
	To      []string // Recipient addresses
	From    string   // Sender address, e.g. "Prime Fit <noreply@primefit.app>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string
}

// SendResult contains the provider's acceptance of a message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender sends email via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
