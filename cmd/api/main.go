package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	httpx "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/repo/memory"
	"github.com/geocoder89/storefront/internal/repo/mongodb"
	"github.com/geocoder89/storefront/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	if cfg.OTelEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "storefront-api",
			Environment: cfg.Env,
			Endpoint:    cfg.OTelEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps := httpx.Deps{
		Config:   cfg,
		Tokens:   auth.NewManager(cfg.JWTSecret),
		Prom:     prom,
		Gatherer: reg,
	}

	closeStores, err := wireStores(ctx, cfg, prom, &deps)
	if err != nil {
		return err
	}
	defer closeStores()

	seeded, err := db.EnsureSeller(ctx, deps.Users, cfg)
	if err != nil {
		return fmt.Errorf("seed seller: %w", err)
	}
	if seeded {
		log.Info("seeded seller account", "email", cfg.SeedSellerEmail)
	}

	closeCache := wireCache(ctx, cfg, log, &deps)
	defer closeCache()

	closeNotifier := wireNotifier(cfg, log, &deps)
	defer closeNotifier()

	router := httpx.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-stop:
	}

	log.Info("server shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func wireStores(ctx context.Context, cfg config.Config, prom *observability.Prom, deps *httpx.Deps) (func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		deps.Users = memory.NewUsersRepo()
		deps.Products = memory.NewProductsRepo()
		deps.Orders = memory.NewOrdersRepo()
		return func() {}, nil

	case "mongo":
		client, err := mongodb.Connect(cfg.MongoURI)
		if err != nil {
			return nil, err
		}

		database := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}

		deps.Users = mongodb.NewUsersRepo(database, prom)
		deps.Products = mongodb.NewProductsRepo(database, prom)
		deps.Orders = mongodb.NewOrdersRepo(database, prom)
		deps.Ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }

		return func() { _ = client.Disconnect(context.Background()) }, nil

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}

		deps.Users = postgres.NewUsersRepo(pool, prom)
		deps.Products = postgres.NewProductsRepo(pool, prom)
		deps.Orders = postgres.NewOrdersRepo(pool, prom)
		deps.Ping = pool.Ping

		return pool.Close, nil
	}
}

// wireCache prefers Redis so every API process sees the same analytics; without it each
// process keeps its own short-lived copy.
func wireCache(ctx context.Context, cfg config.Config, log *slog.Logger, deps *httpx.Deps) func() {
	if cfg.RedisAddr == "" {
		deps.Cache = cache.New(cfg.AnalyticsCacheTTL)
		return func() {}
	}

	rdb := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rc := cache.NewRedisCache(rdb, "storefront:", cfg.AnalyticsCacheTTL)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pctx); err != nil {
		log.Warn("redis unavailable, using in-process analytics cache", "err", err)
		_ = rdb.Close()
		deps.Cache = cache.New(cfg.AnalyticsCacheTTL)
		return func() {}
	}

	deps.Cache = rc
	return func() { _ = rdb.Close() }
}

func wireNotifier(cfg config.Config, log *slog.Logger, deps *httpx.Deps) func() {
	var inner notifications.Notifier = notifications.NewLogNotifier(log)
	closeFn := func() {}

	if cfg.AMQPURL != "" {
		amqpNotifier, err := notifications.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("amqp unavailable, logging order notifications instead", "err", err)
		} else {
			inner = amqpNotifier
			closeFn = func() { _ = amqpNotifier.Close() }
		}
	}

	deps.Notifier = notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          2 * time.Second,
		FailureThreshold: 3,
		Cooldown:         15 * time.Second,
	})
	return closeFn
}
