package orchestrators

import (
	"context"
	"html"
	"log/slog"
	"time"

	"github.com/google/uuid"

	emailAdapter "primefit/internal/adapters/email"
	"primefit/internal/application/validation"
	"primefit/internal/domain/account"
	"primefit/internal/domain/communication"
	"primefit/internal/domain/member"
)

// CredentialsSubject is the subject line of credential emails.
const CredentialsSubject = "Your Prime Fit login"

// CommunicationDeps holds dependencies for sending and logging messages.
type CommunicationDeps struct {
	Store CommunicationStore
	// Sender delivers email. nil simulates every channel.
	Sender emailAdapter.Sender
	Clock  Clock
}

// deliverCredentials sends a new member their login on every channel they
// can be reached on and logs each attempt. SMS and WhatsApp are simulated.
// POST: Returns the log entries written; delivery failures do not fail the caller
func deliverCredentials(ctx context.Context, deps CommunicationDeps, m member.Member, password string) []communication.LogEntry {
	content := communication.CredentialsMessage(m.Name, m.Email, password)
	now := deps.Clock.now()

	var entries []communication.LogEntry
	if m.Phone != "" {
		for _, ch := range []string{communication.ChannelSMS, communication.ChannelWhatsApp} {
			e := newLogEntry(m.Phone, ch, content, now)
			e.RecordAttempt(nil, now)
			slog.Info("communication_event", "event", "simulated", "channel", ch, "member_id", m.ID)
			entries = append(entries, e)
		}
	}

	e := newLogEntry(m.Email, communication.ChannelEmail, content, now)
	e.RecordAttempt(sendEmail(ctx, deps.Sender, e), deps.Clock.now())
	entries = append(entries, e)

	for _, e := range entries {
		if err := deps.Store.Save(ctx, e); err != nil {
			slog.Error("communication_log_failed", "id", e.ID, "channel", e.Channel, "error", err)
		}
	}
	return entries
}

// sendEmail delivers one logged email. A nil sender simulates success.
func sendEmail(ctx context.Context, sender emailAdapter.Sender, e communication.LogEntry) error {
	if sender == nil {
		slog.Info("communication_event", "event", "simulated", "channel", e.Channel, "to", e.Recipient)
		return nil
	}
	_, err := sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{e.Recipient},
		Subject: CredentialsSubject,
		HTML:    "<p>" + html.EscapeString(e.Content) + "</p>",
	})
	if err != nil {
		slog.Warn("communication_event", "event", "email_failed", "id", e.ID, "to", e.Recipient, "error", err)
	}
	return err
}

func newLogEntry(to, channel, content string, now time.Time) communication.LogEntry {
	return communication.LogEntry{
		ID:        uuid.New().String(),
		Recipient: to,
		Channel:   channel,
		Content:   content,
		Status:    communication.StatusPending,
		Timestamp: now,
	}
}

// LogCommunicationInput carries a manually logged message.
type LogCommunicationInput struct {
	To      string `json:"to" validate:"required,max=254"`
	Channel string `json:"channel" validate:"channel"`
	Content string `json:"content" validate:"required,max=2000"`
	Status  string `json:"status" validate:"required"`
}

// ExecuteLogCommunication records a message an admin sent outside the app.
// PRE: caller is an admin
// POST: Log entry is persisted
func ExecuteLogCommunication(ctx context.Context, caller account.Caller, input LogCommunicationInput, deps CommunicationDeps) (communication.LogEntry, error) {
	if err := caller.RequireAdmin(); err != nil {
		return communication.LogEntry{}, err
	}
	if err := validation.Struct(input); err != nil {
		return communication.LogEntry{}, err
	}
	e := newLogEntry(input.To, input.Channel, input.Content, deps.Clock.now())
	e.Status = input.Status
	if e.Status != communication.StatusPending {
		e.Attempts = 1
	}
	if err := e.Validate(); err != nil {
		return communication.LogEntry{}, validation.Invalid(err)
	}
	if err := deps.Store.Save(ctx, e); err != nil {
		return communication.LogEntry{}, err
	}
	slog.Info("communication_event", "event", "logged", "channel", e.Channel, "status", e.Status)
	return e, nil
}
