package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kopisenja/pos-client/internal/api"
	"github.com/kopisenja/pos-client/internal/cart"
	"github.com/kopisenja/pos-client/internal/checkout"
	"github.com/kopisenja/pos-client/internal/queue"
	"github.com/kopisenja/pos-client/internal/session"
	"github.com/kopisenja/pos-client/internal/sync"
	"github.com/kopisenja/pos-client/pkg/config"
	"github.com/kopisenja/pos-client/pkg/logger"
	"github.com/kopisenja/pos-client/pkg/metrics"
	"github.com/kopisenja/pos-client/pkg/storage"
	"github.com/kopisenja/pos-client/pkg/storage/memory"
	"github.com/kopisenja/pos-client/pkg/storage/redisstore"
	"github.com/kopisenja/pos-client/pkg/storage/sqlite"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := openStorage(context.Background(), cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to open terminal storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	sess, err := session.New(context.Background(), store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to load session", err)
		os.Exit(1)
	}

	client, err := api.NewClient(api.Params{
		Config: cfg.API,
		Tokens: sess,
		Logger: logg,
		OnUnauthenticated: func() {
			sess.Logout(context.Background())
		},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	carts, err := cart.NewStore(context.Background(), store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to load cart state", err)
		os.Exit(1)
	}

	orderQueue, err := queue.New(store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to load order queue", err)
		os.Exit(1)
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

	// The worker submits through checkout and checkout wakes the worker; the
	// closure breaks the construction cycle.
	var checkoutService *checkout.Service
	worker, err := sync.NewWorker(sync.WorkerParams{
		Logger: logg,
		Queue:  orderQueue,
		Submit: func(ctx context.Context, data json.RawMessage) error {
			return checkoutService.Submit(ctx, data)
		},
		Probe:   sync.NewHTTPProbe(cfg.API.BaseURL, nil),
		Metrics: syncMetrics,
		Config:  cfg.Sync,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build sync worker", err)
		os.Exit(1)
	}

	checkoutService, err = checkout.NewService(checkout.ServiceParams{
		Logger:   logg,
		Cart:     carts,
		Queue:    orderQueue,
		Orders:   client.Orders,
		Notifier: worker,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting pos terminal")

	if cfg.App.MetricsAddr != "" {
		go serveMetrics(ctx, logg, cfg.App.MetricsAddr)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "pos terminal shutting down gracefully")
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		return sqlite.Open(cfg.Storage.Path)
	case config.StorageDriverRedis:
		return redisstore.New(ctx, cfg.Redis)
	default:
		return memory.New(), nil
	}
}

func serveMetrics(ctx context.Context, logg *logger.Logger, addr string) {
	server := &http.Server{Addr: addr, Handler: promhttp.Handler()}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	logg.Info(ctx, "metrics endpoint listening on "+addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics endpoint failed", err)
	}
}
