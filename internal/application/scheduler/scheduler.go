// Package scheduler runs the recurring maintenance jobs: the membership
// expiry sweep and the retry of failed email deliveries.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"primefit/internal/application/orchestrators"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 2 * time.Minute

// Jobs is what the scheduler runs.
type Jobs interface {
	ExpireMemberships(ctx context.Context) (int, error)
	RetryCommunications(ctx context.Context) (orchestrators.RetryCommunicationsResult, error)
}

// Config holds the cron specs for each job.
type Config struct {
	ExpirySpec    string
	CommRetrySpec string
	Timeout       time.Duration
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	timeout time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// New registers the jobs.
// PRE: jobs is non-nil; specs parse as standard cron expressions or descriptors
func New(jobs Jobs, cfg Config) (*Scheduler, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{}))),
		jobs:    jobs,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := s.cron.AddFunc(cfg.ExpirySpec, s.RunExpiry); err != nil {
		cancel()
		return nil, fmt.Errorf("expiry schedule: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.CommRetrySpec, s.RunCommRetry); err != nil {
		cancel()
		return nil, fmt.Errorf("communication retry schedule: %w", err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	slog.Info("scheduler_started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.cron.Stop().Done()
	}
	slog.Info("scheduler_stopped")
}

// RunExpiry runs the expiry sweep once.
func (s *Scheduler) RunExpiry() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	start := time.Now()
	n, err := s.jobs.ExpireMemberships(ctx)
	if err != nil {
		slog.Error("job_event", "job", "membership_expiry", "error", err)
		return
	}
	slog.Info("job_event", "job", "membership_expiry", "expired", n, "duration_ms", time.Since(start).Milliseconds())
}

// RunCommRetry retries failed deliveries once.
func (s *Scheduler) RunCommRetry() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	res, err := s.jobs.RetryCommunications(ctx)
	if err != nil {
		slog.Error("job_event", "job", "communication_retry", "error", err)
		return
	}
	if res.Attempted > 0 {
		slog.Info("job_event", "job", "communication_retry", "attempted", res.Attempted, "sent", res.Sent)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron_"+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron_"+msg, append([]any{"error", err}, keysAndValues...)...)
}
