// internal/scheduler/cron_scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"holter-distributor/internal/domain"
	"holter-distributor/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PassService runs one locked distribution pass.
type PassService interface {
	RunPass(ctx context.Context) (*domain.PassReport, error)
}

// cronScheduler triggers passes on a fixed schedule while it is enabled.
type cronScheduler struct {
	cron     *cron.Cron
	service  PassService
	schedule string
	logger   *slog.Logger
	tracer   trace.Tracer

	mu      sync.Mutex
	entryID cron.EntryID
	enabled bool
}

// NewCronScheduler creates a disabled scheduler firing on schedule, which
// uses the standard five-field syntax or a descriptor such as "@every 5s".
func NewCronScheduler(service PassService, schedule string, logger *slog.Logger) domain.Schedular {
	l := logger.With("component", "cron-scheduler")
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{l}),
		cron.SkipIfStillRunning(cronLogger{l}),
	))
	metrics.SchedulerEnabled.Set(0)
	return &cronScheduler{
		cron:     c,
		service:  service,
		schedule: schedule,
		logger:   l,
		tracer:   otel.Tracer("holter-distributor-scheduler"),
	}
}

func (s *cronScheduler) Start(ctx context.Context) error {
	s.logger.Info("cron scheduler started", "schedule", s.schedule)
	s.cron.Start()
	<-ctx.Done()
	s.logger.Info("cron scheduler stopping...")
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("cron scheduler stopped")
	return ctx.Err()
}

// Enable registers the pass job. Enabling twice is a no-op.
func (s *cronScheduler) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return nil
	}

	job := &passJob{
		service: s.service,
		logger:  s.logger,
		tracer:  s.tracer,
	}
	entryID, err := s.cron.AddJob(s.schedule, job)
	if err != nil {
		s.logger.Error("failed to add pass job to cron", "schedule", s.schedule, "error", err)
		return fmt.Errorf("invalid pass schedule %q: %w", s.schedule, err)
	}

	s.entryID = entryID
	s.enabled = true
	metrics.SchedulerEnabled.Set(1)
	s.logger.Info("periodic passes enabled", "schedule", s.schedule)
	return nil
}

// Disable removes the pass job. A pass already running finishes normally.
func (s *cronScheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return
	}
	s.cron.Remove(s.entryID)
	s.enabled = false
	metrics.SchedulerEnabled.Set(0)
	s.logger.Info("periodic passes disabled")
}

func (s *cronScheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// passJob is what the cron library calls on every tick.
type passJob struct {
	service PassService
	logger  *slog.Logger
	tracer  trace.Tracer
}

func (j *passJob) Run() {
	// Every tick is its own trace.
	ctx, span := j.tracer.Start(context.Background(), "scheduler.Tick")
	defer span.End()

	report, err := j.service.RunPass(ctx)
	if errors.Is(err, domain.ErrLockNotAcquired) {
		j.logger.Debug("previous pass still in flight, tick skipped")
		return
	}
	if err != nil {
		j.logger.Error("distribution pass failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "distribution pass failed")
		return
	}
	if report != nil && report.Total() > 0 {
		span.SetAttributes(attribute.String("pass.id", report.ID), attribute.Int("pass.items", report.Total()))
		j.logger.Info("distribution pass finished",
			"pass_id", report.ID,
			"assigned", len(report.Assigned),
			"rejected", len(report.Rejected),
			"unassignable", len(report.Unassignable),
			"failed", len(report.Failed),
		)
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
