// cmd/distributor/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	http_api "holter-distributor/internal/api/http"
	"holter-distributor/internal/config"
	"holter-distributor/internal/dispatch"
	"holter-distributor/internal/domain"
	"holter-distributor/internal/infra/etcd"
	"holter-distributor/internal/infra/memory"
	"holter-distributor/internal/scheduler"
	"holter-distributor/internal/storage"
	"holter-distributor/internal/tracing"
	"holter-distributor/internal/usecase"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	clientv3 "go.etcd.io/etcd/client/v3"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yaml (default: ./configs/config.yaml or ./config.yaml)")
	traceOut := pflag.Bool("trace-stdout", false, "export trace spans to stdout")
	pflag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize logger and tracer
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if *traceOut {
		tracerShutdown, err := tracing.InitTracer("holter-distributor", os.Stdout)
		if err != nil {
			log.Fatalf("failed to initialize tracer: %v", err)
		}
		defer func() {
			if err := tracerShutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	logger.Info("starting holter distributor",
		"input_path", cfg.InputPath,
		"output_path", cfg.OutputPath,
		"doctors", len(cfg.Doctors),
		"lock_backend", cfg.LockBackend,
		"history_backend", cfg.HistoryBackend,
	)

	// 3. Create root context for lifecycle management
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupGracefulShutdown(cancel, logger)

	// 4. Init etcd client when a backend needs it
	var etcdClient *clientv3.Client
	if cfg.LockBackend == "etcd" || cfg.HistoryBackend == "etcd" {
		etcdClient, err = etcd.NewClient(cfg.EtcdEndpoints, cfg.EtcdTimeout)
		if err != nil {
			log.Fatalf("Failed to create etcd client: %v", err)
		}
		defer etcdClient.Close()
		logger.Info("connected to etcd", "endpoints", cfg.EtcdEndpoints)
	}

	var locker domain.Locker = memory.NewLocker()
	if cfg.LockBackend == "etcd" {
		locker = etcd.NewEtcdLocker(etcdClient)
	}
	var passRepo domain.PassRepository = memory.NewPassRepository(cfg.HistorySize)
	if cfg.HistoryBackend == "etcd" {
		passRepo = etcd.NewEtcdPassRepository(etcdClient, cfg.HistorySize, logger)
	}

	// 5. Instantiate components
	store := storage.NewOS()
	provider := config.NewFileProvider(*configPath)
	dispatcher := dispatch.NewDispatcher(provider, store, logger)
	distributionService := usecase.NewDistributionService(dispatcher, locker, passRepo, logger)
	statsService := usecase.NewStatsService(provider, store, logger)

	cronScheduler := scheduler.NewCronScheduler(distributionService, cfg.PassSchedule, logger)
	if cfg.SchedulerAutostart {
		if err := cronScheduler.Enable(); err != nil {
			log.Fatalf("Failed to enable scheduler: %v", err)
		}
	}

	handler := http_api.NewHandler(distributionService, statsService, cronScheduler, logger)

	// 6. Register routes and metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	// 7. Start scheduler
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		if err := cronScheduler.Start(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler stopped with error", "error", err)
		}
	}()

	// 8. Start HTTP API server
	logger.Info("starting HTTP API server", "addr", cfg.HttpListenAddr)
	server := &http.Server{
		Addr:    cfg.HttpListenAddr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	// 9. Block until shutdown
	<-rootCtx.Done()
	logger.Info("shutting down application gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	// Waits for an in-flight pass to finish.
	<-schedulerDone

	logger.Info("application shut down")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func setupGracefulShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, initiating graceful shutdown", "signal", sig.String())
		cancel()
	}()
}
