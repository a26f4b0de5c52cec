package etcd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"holter-distributor/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// These tests need a live cluster: ETCD_ENDPOINTS=127.0.0.1:2379 go test ./internal/infra/etcd/
func etcdEndpoints(t *testing.T) []string {
	t.Helper()
	raw := os.Getenv("ETCD_ENDPOINTS")
	if raw == "" {
		t.Skip("ETCD_ENDPOINTS not set")
	}
	return strings.Split(raw, ",")
}

func TestEtcdLocker(t *testing.T) {
	client, err := NewClient(etcdEndpoints(t), 5*time.Second)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	name := "test-" + uuid.NewString()
	locker := NewEtcdLocker(client)

	held, err := locker.Lock(ctx, name)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, name)
	require.ErrorIs(t, err, domain.ErrLockNotAcquired)

	require.NoError(t, held.Unlock(ctx))

	again, err := locker.Lock(ctx, name)
	require.NoError(t, err)
	require.NoError(t, again.Unlock(ctx))
}

func TestEtcdPassRepository(t *testing.T) {
	client, err := NewClient(etcdEndpoints(t), 5*time.Second)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	repo := NewEtcdPassRepository(client, 100, slog.New(slog.NewTextHandler(io.Discard, nil)))

	report := domain.NewPassReport(uuid.NewString(), time.Now().UTC())
	report.Rejected = append(report.Rejected, "AB1.zhr")
	require.NoError(t, repo.Save(ctx, report))

	got, err := repo.Get(ctx, report.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"AB1.zhr"}, got.Rejected)

	list, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, report.ID, list[0].ID)

	_, err = repo.Get(ctx, "missing-"+uuid.NewString())
	require.ErrorIs(t, err, domain.ErrPassNotFound)
}

func TestEtcdPassRepository_RetainsAtMostMax(t *testing.T) {
	client, err := NewClient(etcdEndpoints(t), 5*time.Second)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	_, err = client.Delete(ctx, PassHistoryDir, clientv3.WithPrefix())
	require.NoError(t, err)

	repo := NewEtcdPassRepository(client, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var ids []string
	for i := 0; i < 4; i++ {
		report := domain.NewPassReport(uuid.NewString(), time.Now().UTC())
		report.Assigned = append(report.Assigned, domain.Assignment{Item: "AB1.zhr", Worker: "doc"})
		require.NoError(t, repo.Save(ctx, report))
		ids = append(ids, report.ID)
	}

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, ids[3], list[0].ID)
	require.Equal(t, ids[2], list[1].ID)

	_, err = repo.Get(ctx, ids[0])
	require.ErrorIs(t, err, domain.ErrPassNotFound)
}
