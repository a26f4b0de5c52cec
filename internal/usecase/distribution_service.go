package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"holter-distributor/internal/domain"
	"holter-distributor/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DistributionService is the only entry point that runs passes. It holds the
// pass lock for the duration of a pass, so overlapping triggers (scheduler
// ticks, manual runs) never enumerate the same inbound item twice.
type DistributionService struct {
	runner domain.PassRunner
	locker domain.Locker
	repo   domain.PassRepository
	logger *slog.Logger
	tracer trace.Tracer
}

// NewDistributionService creates a new DistributionService instance.
func NewDistributionService(runner domain.PassRunner, locker domain.Locker, repo domain.PassRepository, logger *slog.Logger) *DistributionService {
	return &DistributionService{
		runner: runner,
		locker: locker,
		repo:   repo,
		logger: logger.With("component", "distribution-service"),
		tracer: otel.Tracer("holter-distributor-usecase"),
	}
}

// RunPass runs one distribution pass under the pass lock. It returns
// domain.ErrLockNotAcquired without doing anything when a pass is in flight.
// The pass runs detached from ctx cancellation: once started it resolves every
// enumerated item even if the caller goes away.
func (s *DistributionService) RunPass(ctx context.Context) (*domain.PassReport, error) {
	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "service.RunPass")
	defer span.End()

	lock, err := s.locker.Lock(ctx, domain.PassLockName)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			metrics.PassesTotal.WithLabelValues("skipped").Inc()
			s.logger.Warn("distribution pass already in flight, skipping")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire pass lock")
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(ctx); err != nil {
			s.logger.Error("failed to release pass lock", "error", err)
		}
	}()

	start := time.Now()
	report, err := s.runner.RunOnePass(ctx)
	metrics.PassDuration.Observe(time.Since(start).Seconds())

	if report != nil {
		span.SetAttributes(attribute.String("pass.id", report.ID))
		for outcome, n := range report.Counts() {
			if n > 0 {
				metrics.ItemsTotal.WithLabelValues(string(outcome)).Add(float64(n))
			}
		}
		// Passes with nothing to do are not worth keeping.
		if err != nil || report.Total() > 0 {
			if saveErr := s.repo.Save(ctx, report); saveErr != nil {
				s.logger.Error("failed to save pass report", "pass_id", report.ID, "error", saveErr)
			}
		}
	}

	if err != nil {
		metrics.PassesTotal.WithLabelValues(string(domain.PassStatusFailed)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "distribution pass failed")
		return report, err
	}
	metrics.PassesTotal.WithLabelValues(string(domain.PassStatusSuccess)).Inc()
	return report, nil
}

// ListPasses lists the most recent pass reports, newest first.
func (s *DistributionService) ListPasses(ctx context.Context, limit int) ([]*domain.PassReport, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListPasses")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	reports, err := s.repo.List(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list passes from repository")
	}
	return reports, err
}

// GetPass returns one pass report.
func (s *DistributionService) GetPass(ctx context.Context, id string) (*domain.PassReport, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetPass")
	defer span.End()
	span.SetAttributes(attribute.String("pass.id", id))

	report, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get pass from repository")
	}
	return report, err
}
