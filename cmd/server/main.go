package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldos-dispatch/internal/infrastructure/config"
	"fieldos-dispatch/internal/infrastructure/session"
	"fieldos-dispatch/internal/interface/api"
	"fieldos-dispatch/internal/interface/notifier"
	fieldos "fieldos-dispatch/internal/interface/repository"
	"fieldos-dispatch/internal/usecase"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/metrics"
	"fieldos-dispatch/pkg/utils"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting FieldOS Dispatch Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve the viewer time zone used for day bucketing
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("Invalid dispatch timezone", "timezone", cfg.Timezone, "error", err)
	}

	// Authenticate against the FieldOS backend
	sess, err := session.NewSession(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create FieldOS session", "error", err)
	}

	// Set up metrics and the backend client repositories
	m := metrics.NewMetrics("fieldos_dispatch")
	client := fieldos.NewClient(cfg.FieldOSBaseURL, sess, cfg.RequestTimeout, log, m)
	jobRepo := fieldos.NewFieldOSJobRepository(client, loc, log)
	techRepo := fieldos.NewFieldOSTechnicianRepository(client, log)

	// Set up usecases
	notif := notifier.NewLogNotifier(log)
	builder := usecase.NewBoardBuilder(loc)
	refresher := usecase.NewRefresher(jobRepo, techRepo, builder, notif, m, log, cfg.PollInterval)
	dispatcher := usecase.NewDispatcher(jobRepo, refresher, notif, m, log)

	// Start polling today's board
	refresher.Start(ctx, utils.Today(loc))

	// Set up the HTTP API
	handler := api.NewHandler(refresher, dispatcher, builder, jobRepo, techRepo, log)
	router := api.NewRouter(handler, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	refresher.Stop()
	cancel() // Cancel the context to stop all goroutines

	log.Info("FieldOS Dispatch Service stopped")
}
