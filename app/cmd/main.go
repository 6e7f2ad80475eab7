package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"mcgenerator/app/config"
	"mcgenerator/app/usecase"
	"mcgenerator/internal/infrastructure/machineconfig"
	"mcgenerator/internal/infrastructure/metrics"
	"mcgenerator/internal/infrastructure/transport"
	"mcgenerator/internal/infrastructure/validator"
)

func main() {
	// load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Usecases / services
	manifestSvc := usecase.NewManifestService(
		machineconfig.NewRenderer(),
		validator.NewMachineConfigAnalyzer(),
		logger,
	)

	// Transport (HTTP handlers)
	handler, err := transport.NewGeneratorHandler(
		manifestSvc,
		transport.Options{
			DefaultHostCount: cfg.Generator.DefaultHostCount,
			MaxHostsPerRole:  cfg.Generator.MaxHostsPerRole,
		},
		logger,
		prometheus.DefaultRegisterer,
	)
	if err != nil {
		logger.Error("init handler failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Router and server
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(r)
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)(corsHandler)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      recovered,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Server.MetricsAddr != "" {
		go func() {
			logger.Info("starting metrics server", "addr", cfg.Server.MetricsAddr)
			if err := metrics.StartMetricsServer(cfg.Server.MetricsAddr); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "err", err)
			cancel()
		}
	}()

	// OS signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	// Shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}

	logger.Info("service stopped")
}
