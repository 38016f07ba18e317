package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fx-converter/internal/adapter/cache"
	httpRouter "fx-converter/internal/adapter/http"
	"fx-converter/internal/adapter/kvstore"
	"fx-converter/internal/adapter/repository"
	"fx-converter/internal/config"
	"fx-converter/internal/domain/ports"
	"fx-converter/internal/metrics"
	"fx-converter/internal/service"
	"fx-converter/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting currency converter service", "store_backend", cfg.Store.Backend)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	kv, closeStore, err := openStore(context.Background(), cfg.Store, log)
	if err != nil {
		log.Error("Failed to open rate store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	rateStore := cache.NewRateStore(kv, log, appMetrics)
	rateStore.Seed(context.Background())

	rateSource := repository.NewCurrencyAPI(repository.DefaultProviders(), nil, log, appMetrics)

	exchangeService := service.NewExchangeService(rateSource, rateStore, log, appMetrics)
	handler := httpRouter.NewHandler(exchangeService, log, appMetrics)

	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

// openStore builds the configured KeyValueStore and a func releasing its resources.
func openStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (ports.KeyValueStore, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.StoreBackendMemory:
		log.Warn("Using in-memory rate store, cached rates will not survive a restart")
		return kvstore.NewMemoryStore(cfg.MemorySize), noop, nil

	case config.StoreBackendRedis:
		store, closeFn, err := kvstore.NewRedisStore(ctx, kvstore.RedisConfig{
			Addr:           cfg.RedisAddr,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			Prefix:         cfg.RedisPrefix,
			ConnectTimeout: cfg.ConnectTimeout,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return store, closeFn, nil

	case config.StoreBackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		db, err := kvstore.OpenPostgres(connectCtx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := kvstore.NewPostgresStore(db)
		if err := store.EnsureSchema(connectCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close postgres pool", "error", err)
			}
		}, nil

	default:
		store, err := kvstore.NewFileStore(cfg.FileDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using file rate store", "dir", cfg.FileDir)
		return store, noop, nil
	}
}
