package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

// Resend accepts a limited number of API calls per second per key.
const (
	resendRequestsPerSecond = 2
	resendBatchSize         = 100
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	limiter *rate.Limiter
}

// NewResendSender creates a sender with the given API key and default from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		limiter: rate.NewLimiter(rate.Limit(resendRequestsPerSecond), 1),
	}
}

func (s *ResendSender) params(req SendRequest) *resend.SendEmailRequest {
	p := &resend.SendEmailRequest{
		From:    lo.Ternary(req.From != "", req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		p.ReplyTo = req.ReplyTo
	}
	return p
}

// Send sends a single email.
// PRE: req has at least one recipient and a subject
// POST: Returns the Resend message id once the email is queued
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return SendResult{}, err
	}
	sent, err := s.client.Emails.SendWithContext(ctx, s.params(req))
	if err != nil {
		slog.Error("resend_send_failed", "error", err, "to", req.To, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("resend_sent", "message_id", sent.Id, "to", req.To)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch sends emails in chunks of up to 100 per call.
// POST: Results are in request order; on error, results cover the chunks already sent
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	var results []SendResult
	for _, chunk := range lo.Chunk(reqs, resendBatchSize) {
		if err := s.limiter.Wait(ctx); err != nil {
			return results, err
		}
		resp, err := s.client.Batch.SendWithContext(ctx, lo.Map(chunk, func(r SendRequest, _ int) *resend.SendEmailRequest {
			return s.params(r)
		}))
		if err != nil {
			slog.Error("resend_batch_failed", "error", err, "batch_size", len(chunk))
			return results, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			results = append(results, SendResult{MessageID: item.Id, SentAt: time.Now()})
		}
	}
	slog.Info("resend_batch_sent", "total", len(results))
	return results, nil
}
