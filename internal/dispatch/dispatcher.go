// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"holter-distributor/internal/config"
	"holter-distributor/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Dispatcher runs distribution passes over the inbound directory.
// It is not re-entrant; see usecase.DistributionService for the locked entry point.
type Dispatcher struct {
	provider config.Provider
	dir      Directory
	selector *Selector
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides the wall clock used to compute the business day.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithRand sets the random source used to break load ties.
func WithRand(rnd *rand.Rand) Option {
	return func(d *Dispatcher) {
		d.selector = NewSelector(rnd)
	}
}

// WithIDGenerator overrides how pass IDs are generated.
func WithIDGenerator(gen func() string) Option {
	return func(d *Dispatcher) {
		d.newID = gen
	}
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(provider config.Provider, dir Directory, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		provider: provider,
		dir:      dir,
		selector: NewSelector(rand.New(rand.NewSource(time.Now().UnixNano()))),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		logger:   logger.With("component", "dispatcher"),
		tracer:   otel.Tracer("holter-distributor-dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ domain.PassRunner = (*Dispatcher)(nil)

// RunOnePass enumerates the inbound directory once and resolves every item to
// exactly one of assigned, rejected, unassignable or failed. Configuration and
// enumeration errors abort the pass before anything is moved; item level
// errors are recorded in the report. ctx only carries trace context: a pass
// that has started is never cut short.
func (d *Dispatcher) RunOnePass(ctx context.Context) (*domain.PassReport, error) {
	report := domain.NewPassReport(d.newID(), d.now())
	_, span := d.tracer.Start(ctx, "dispatcher.RunOnePass",
		trace.WithAttributes(attribute.String("pass.id", report.ID)))
	defer span.End()

	err := d.run(report)
	report.FinishedAt = d.now()
	if err != nil {
		report.Status = domain.PassStatusFailed
		report.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "distribution pass aborted")
		d.logger.Error("distribution pass aborted", "pass_id", report.ID, "error", err)
		return report, err
	}

	span.SetAttributes(
		attribute.Int("pass.assigned", len(report.Assigned)),
		attribute.Int("pass.rejected", len(report.Rejected)),
		attribute.Int("pass.unassignable", len(report.Unassignable)),
		attribute.Int("pass.failed", len(report.Failed)),
	)
	if report.Total() > 0 {
		d.logger.Info("distribution pass finished",
			"pass_id", report.ID,
			"business_day", report.BusinessDay,
			"assigned", len(report.Assigned),
			"rejected", len(report.Rejected),
			"unassignable", len(report.Unassignable),
			"failed", len(report.Failed),
		)
	}
	return report, nil
}

func (d *Dispatcher) run(report *domain.PassReport) error {
	// 1. Load a fresh policy snapshot and rebuild the roster.
	policy, err := d.provider.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidConfig) {
			err = fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		return err
	}
	roster := NewRoster(policy)
	report.BusinessDay = domain.FormatDay(domain.BusinessDay(report.StartedAt, policy.EveningHours))

	// 2. Enumerate pending items, one level deep.
	items, err := d.dir.ListItems(policy.InputPath)
	if err != nil {
		return fmt.Errorf("%w: inbound: %v", domain.ErrEnumeration, err)
	}
	if len(items) == 0 {
		return nil
	}

	// 3. One recursive walk of the output tree serves every item in the pass.
	index, err := BuildDedupIndex(d.dir, policy.OutputPath)
	if err != nil {
		return err
	}

	relocator := NewRelocator(d.dir, d.logger)
	// Every enumerated item is resolved before the pass ends.
	for _, item := range items {
		d.dispatchItem(item, policy, roster, index, relocator, report)
	}
	return nil
}

func (d *Dispatcher) dispatchItem(item domain.WorkItem, policy *config.Policy, roster *Roster,
	index *DedupIndex, relocator *Relocator, report *domain.PassReport) {

	// a. Already handed out under this name: reject without consulting workers.
	if index.Contains(item.Name) {
		d.logger.Warn("duplicate item, rejecting", "item", item.Name)
		res := relocator.Relocate(item, policy.RejectedPath)
		if !res.OK() {
			report.Failed = append(report.Failed, domain.ItemFailure{Item: item.Name, Error: res.Err.Error()})
			return
		}
		report.Rejected = append(report.Rejected, item.Name)
		return
	}

	// b. Filter workers. The business day is recomputed for every item.
	day := domain.FormatDay(domain.BusinessDay(d.now(), policy.EveningHours))
	evaluator := NewEvaluator(d.dir, roster, day, d.logger)
	candidates := evaluator.Candidates(item)

	// c. Pick the least loaded worker and move the item.
	chosen, ok := d.selector.Select(candidates)
	if !ok {
		d.logger.Error("no doctor can take item, please update the configuration", "item", item.Name,
			"error", domain.ErrNoEligibleWorker)
		report.Unassignable = append(report.Unassignable, item.Name)
		return
	}

	res := relocator.Relocate(item, roster.Folder(chosen.Worker, day))
	if !res.OK() {
		report.Failed = append(report.Failed, domain.ItemFailure{Item: item.Name, Error: res.Err.Error()})
		return
	}
	index.Add(item.Name)
	report.Assigned = append(report.Assigned, domain.Assignment{
		Item:   item.Name,
		Worker: chosen.Worker.Name,
		Target: res.Target,
	})
}
