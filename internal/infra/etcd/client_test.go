package etcd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientConfig(t *testing.T) {
	cfg := clientConfig([]string{"127.0.0.1:2379"}, 3*time.Second)

	require.Equal(t, []string{"127.0.0.1:2379"}, cfg.Endpoints)
	require.Equal(t, 3*time.Second, cfg.DialTimeout)
	require.Len(t, cfg.DialOptions, 1, "client must carry the tracing stats handler")
}
