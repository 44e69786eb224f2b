package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/freshsouq/freshsouq-backend/api/controllers"
	"github.com/freshsouq/freshsouq-backend/api/routes"
	"github.com/freshsouq/freshsouq-backend/internal/cart"
	"github.com/freshsouq/freshsouq-backend/internal/cartstore"
	"github.com/freshsouq/freshsouq-backend/internal/catalog"
	"github.com/freshsouq/freshsouq-backend/internal/orders"
	"github.com/freshsouq/freshsouq-backend/internal/session"
	"github.com/freshsouq/freshsouq-backend/pkg/config"
	pkgdb "github.com/freshsouq/freshsouq-backend/pkg/db"
	"github.com/freshsouq/freshsouq-backend/pkg/instance"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
	"github.com/freshsouq/freshsouq-backend/pkg/metrics"
	pkgredis "github.com/freshsouq/freshsouq-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	var closers []func() error
	closeAll := func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(ctx, "error closing backends", errs)
		}
	}
	defer closeAll()

	backends := map[string]controllers.Pinger{}

	var stores session.StoreFactory
	switch cfg.Cart.Backend {
	case config.CartBackendRedis:
		redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		backends["redis"] = redisClient

		fallback := cartstore.NewMemory()
		stores = func(sessionID string) cart.Store {
			store, err := cartstore.NewRedis(redisClient, redisClient.CartKey(cfg.Cart.KeyPrefix, sessionID), cfg.Cart.TTL)
			if err != nil {
				logg.Error(ctx, "redis cart store unavailable, using in-memory store", err)
				return fallback.ForKey(sessionID)
			}
			return store
		}

	case config.CartBackendDatabase:
		dbClient, err := pkgdb.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)
		backends["database"] = dbClient

		if err := cartstore.AutoMigrateCartBlobs(dbClient); err != nil {
			logg.Error(ctx, "failed to prepare cart table", err)
			closeAll()
			os.Exit(1)
		}

		fallback := cartstore.NewMemory()
		stores = func(sessionID string) cart.Store {
			store, err := cartstore.NewDatabase(dbClient, cfg.Cart.KeyPrefix+":"+sessionID)
			if err != nil {
				logg.Error(ctx, "database cart store unavailable, using in-memory store", err)
				return fallback.ForKey(sessionID)
			}
			return store
		}

	default:
		keyspace := cartstore.NewMemory()
		stores = keyspace.ForKey
	}

	catalogClient, err := catalog.NewClient(cfg.Catalog, logg)
	if err != nil {
		logg.Error(ctx, "failed to build catalog client", err)
		closeAll()
		os.Exit(1)
	}

	ordersClient, err := orders.NewClient(cfg.Orders, logg)
	if err != nil {
		logg.Error(ctx, "failed to build orders client", err)
		closeAll()
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	sessions, err := session.NewRegistry(stores, ordersClient, logg, cartMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build session registry", err)
		closeAll()
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	lctx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"backend":  cfg.Cart.Backend,
		"instance": instance.GetID(),
	})
	logg.Info(lctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Registry:    sessions,
			Catalog:     catalogClient,
			CartMetrics: cartMetrics,
			Gatherer:    registry,
			Backends:    backends,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(lctx, "api server stopped unexpectedly", err)
			closeAll()
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(lctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(lctx, "graceful shutdown failed", err)
		}
	}
}
