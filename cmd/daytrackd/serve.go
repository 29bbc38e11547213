package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"daytrack-backend/internal/api"
	"daytrack-backend/internal/model"
	"daytrack-backend/internal/mw"
	"daytrack-backend/internal/notification"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Setup logger
	logger := log.New(os.Stdout, "daytrack ", log.LstdFlags)

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Slot events are logged off the write path.
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start(ctx)
	a.timeline.OnSlotCreated(pool.Wrap(func(slot model.TimeSlot) {
		logger.Printf("slot started %s: %s", slot.StartTime.Format(time.RFC3339), slot.Category)
	}))
	a.timeline.OnSlotUpdated(pool.Wrap(func(slot model.TimeSlot) {
		end := "running"
		if slot.EndTime != nil {
			end = slot.EndTime.Format(time.RFC3339)
		}
		logger.Printf("slot updated %s-%s: %s", slot.StartTime.Format(time.RFC3339), end, slot.Category)
	}))

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go limiter.PruneEvery(ctx, cfg.Server.RateLimitIdle)

	handler := api.NewHandler(a.timeline, a.engine, a.tracker, a.location, mw.NewTimelineCache(cfg.Server.CacheTTL))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, limiter),
	}

	// Start the server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received or the server fails.
	select {
	case <-stop:
		logger.Println("Shutdown signal received, stopping services...")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	}

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	logger.Printf("Server gracefully stopped (%d slot events dropped)", pool.Dropped())
	return nil
}
