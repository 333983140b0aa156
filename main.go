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

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/jharris/campwise/app/db"
	"github.com/jharris/campwise/app/observability/metrics"
	"github.com/jharris/campwise/app/tracer"
	"github.com/jharris/campwise/config"
	"github.com/jharris/campwise/internal/container"
	"github.com/jharris/campwise/internal/router"
)

const shutdownTimeout = 10 * time.Second

func setupLogger(mode string) *slog.Logger {
	var handler slog.Handler
	if mode == "development" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func run() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment")
	}

	cfg, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Mode)
	logger.Info("Starting campwise", slog.String("mode", cfg.Mode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build database config: %w", err)
	}
	if err := database.RunMigrations(dbCfg.ConnectionURL, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := database.Init(dbCfg.ConnectionURL, logger)
	if err != nil {
		return fmt.Errorf("failed to init database pool: %w", err)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		return errors.New("database is not reachable")
	}

	promHandler := tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()

	c, err := container.NewContainer(ctx, &cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	appServer := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router.New(c),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promHandler)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.Handlers.Prometheus.Port,
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", appServer.Addr))
		if err := appServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Metrics server listening", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := appServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	return g.Wait()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}
