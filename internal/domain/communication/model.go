package communication

import (
	"errors"
	"strings"
	"time"
)

// Channel constants
const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// Status constants
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// MaxAttempts is how many delivery attempts a failed email gets.
const MaxAttempts = 3

// MaxContentLength caps message bodies.
const MaxContentLength = 2000

// Domain errors
var (
	ErrNoRecipient    = errors.New("message recipient cannot be empty")
	ErrInvalidChannel = errors.New("channel must be 'sms', 'whatsapp', or 'email'")
	ErrInvalidStatus  = errors.New("status must be 'pending', 'sent', or 'failed'")
	ErrContentSize    = errors.New("message content must be 1-2000 characters")
)

// LogEntry records a message sent (or simulated) to a member.
type LogEntry struct {
	ID        string    `json:"id"`
	Recipient string    `json:"to"`
	Channel   string    `json:"channel"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks if the LogEntry has valid data.
// PRE: LogEntry struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (e *LogEntry) Validate() error {
	if strings.TrimSpace(e.Recipient) == "" {
		return ErrNoRecipient
	}
	switch e.Channel {
	case ChannelSMS, ChannelWhatsApp, ChannelEmail:
	default:
		return ErrInvalidChannel
	}
	switch e.Status {
	case StatusPending, StatusSent, StatusFailed:
	default:
		return ErrInvalidStatus
	}
	if strings.TrimSpace(e.Content) == "" || len(e.Content) > MaxContentLength {
		return ErrContentSize
	}
	return nil
}

// IsRetryable reports whether a failed email still has attempts left.
// INVARIANT: LogEntry fields are not mutated
func (e *LogEntry) IsRetryable() bool {
	return e.Channel == ChannelEmail && e.Status == StatusFailed && e.Attempts < MaxAttempts
}

// RecordAttempt stores the outcome of a delivery attempt.
// POST: Attempts incremented, Status is sent or failed
func (e *LogEntry) RecordAttempt(err error, at time.Time) {
	e.Attempts++
	e.Timestamp = at
	if err != nil {
		e.Status = StatusFailed
		return
	}
	e.Status = StatusSent
}

// CredentialsMessage is the welcome text carrying a member's login details.
func CredentialsMessage(name, email, password string) string {
	return "Welcome to Prime Fit, " + name + "! Log in with " + email + " / " + password + " and change your password after your first visit."
}
