// internal/infra/etcd/etcd_pass_repository.go
package etcd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"holter-distributor/internal/domain"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	PassHistoryDir = "/holter-distributor/passes/"
)

type etcdPassRepository struct {
	client *clientv3.Client
	max    int
	logger *slog.Logger
	tracer trace.Tracer
}

// NewEtcdPassRepository creates a new repository for pass reports backed by
// etcd, retaining at most max reports.
func NewEtcdPassRepository(client *clientv3.Client, max int, logger *slog.Logger) domain.PassRepository {
	if max < 1 {
		max = 1
	}
	return &etcdPassRepository{
		client: client,
		max:    max,
		logger: logger.With("component", "etcd-pass-repo"),
		tracer: otel.Tracer("holter-distributor-etcd-pass-repo"),
	}
}

// Save persists a single pass report to etcd under /holter-distributor/passes/{id}.
func (r *etcdPassRepository) Save(ctx context.Context, report *domain.PassReport) error {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.SavePass")
	defer span.End()

	if err := report.Validate(); err != nil {
		return err
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal pass report")
		return fmt.Errorf("failed to marshal pass report %s to JSON: %w", report.ID, err)
	}

	key := path.Join(PassHistoryDir, report.ID)
	span.SetAttributes(
		attribute.String("pass.id", report.ID),
		attribute.String("etcd.key", key),
	)

	if _, err := r.client.Put(ctx, key, string(reportJSON)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to put pass report to etcd")
		return fmt.Errorf("failed to save pass report %s to etcd: %w", report.ID, err)
	}

	// A failed trim leaves extra history behind; the report itself is saved.
	if err := r.trim(ctx); err != nil {
		r.logger.Warn("failed to trim pass history", "error", err)
	}
	return nil
}

// trim deletes the oldest reports beyond the retention limit.
func (r *etcdPassRepository) trim(ctx context.Context) error {
	count, err := r.client.Get(ctx, PassHistoryDir, clientv3.WithPrefix(), clientv3.WithCountOnly())
	if err != nil {
		return err
	}
	over := count.Count - int64(r.max)
	if over <= 0 {
		return nil
	}

	oldest, err := r.client.Get(ctx, PassHistoryDir,
		clientv3.WithPrefix(),
		clientv3.WithKeysOnly(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortAscend),
		clientv3.WithLimit(over),
	)
	if err != nil {
		return err
	}

	ops := make([]clientv3.Op, 0, len(oldest.Kvs))
	for _, kv := range oldest.Kvs {
		ops = append(ops, clientv3.OpDelete(string(kv.Key)))
	}
	if _, err := r.client.Txn(ctx).Then(ops...).Commit(); err != nil {
		return err
	}
	r.logger.Debug("trimmed pass history", "deleted", len(ops))
	return nil
}

// Get retrieves a single pass report by ID.
func (r *etcdPassRepository) Get(ctx context.Context, id string) (*domain.PassReport, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.GetPass")
	defer span.End()
	span.SetAttributes(attribute.String("pass.id", id))

	resp, err := r.client.Get(ctx, path.Join(PassHistoryDir, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get pass report from etcd")
		return nil, fmt.Errorf("failed to get pass report %s from etcd: %w", id, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("pass %s: %w", id, domain.ErrPassNotFound)
	}

	var report domain.PassReport
	if err := json.Unmarshal(resp.Kvs[0].Value, &report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal pass report")
		return nil, fmt.Errorf("failed to unmarshal pass report %s from JSON: %w", id, err)
	}
	return &report, nil
}

// List returns at most limit pass reports, newest first.
func (r *etcdPassRepository) List(ctx context.Context, limit int) ([]*domain.PassReport, error) {
	ctx, span := r.tracer.Start(ctx, "repo.etcd.ListPasses")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	opts := []clientv3.OpOption{
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortDescend), // Newest first
	}
	if limit > 0 {
		opts = append(opts, clientv3.WithLimit(int64(limit)))
	}

	resp, err := r.client.Get(ctx, PassHistoryDir, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list pass reports from etcd")
		return nil, fmt.Errorf("failed to list pass reports from etcd: %w", err)
	}

	reports := make([]*domain.PassReport, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var report domain.PassReport
		if err := json.Unmarshal(kv.Value, &report); err != nil {
			r.logger.Warn("failed to unmarshal pass report from etcd", "key", string(kv.Key), "error", err)
			continue
		}
		reports = append(reports, &report)
	}
	span.SetAttributes(attribute.Int("records_returned", len(reports)))
	return reports, nil
}
