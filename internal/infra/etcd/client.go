package etcd

import (
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

// NewClient connects to the etcd cluster used for pass locks and history.
func NewClient(endpoints []string, timeout time.Duration) (*clientv3.Client, error) {
	return clientv3.New(clientConfig(endpoints, timeout))
}

func clientConfig(endpoints []string, timeout time.Duration) clientv3.Config {
	return clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: timeout,
		// Lock and history RPCs join the trace of the pass that issued them.
		DialOptions: []grpc.DialOption{
			grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		},
	}
}
