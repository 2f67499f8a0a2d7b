package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"metrics-collector/api/rest/routes"
	"metrics-collector/config"
	"metrics-collector/core/collector"
	"metrics-collector/core/repository"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize databases
	readDB, err := repository.NewDB("postgres", cfg.ReadDatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to read database", zap.Error(err))
	}
	defer readDB.Close()

	writeDB, err := repository.NewDB("postgres", cfg.WriteDatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to write database", zap.Error(err))
	}
	defer writeDB.Close()

	logger.Info("Databases connected successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repository
	metricRepo := repository.NewMetricRepository(writeDB)
	if err := metricRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure metric schema", zap.Error(err))
	}

	// Initialize collector
	coll := collector.New(readDB.DB, metricRepo, collector.Options{
		Concurrency: cfg.Concurrency,
		Interval:    cfg.Interval,
		UploadTypes: cfg.UploadTypes,
		PinStatuses: cfg.PinStatuses,
	}, logger)

	// Run one batch at startup, then on the configured interval
	go func() {
		if err := coll.RunOnce(ctx); err != nil {
			logger.Error("Initial metrics collection failed", zap.Error(err))
		}
		coll.Start(ctx)
	}()

	// Setup routes with the write store
	r := mux.NewRouter()
	routes.SetupRoutes(r, writeDB)

	// Health check endpoint, reports the last run state
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(coll.Status()))
	}).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Collector exited")
}
