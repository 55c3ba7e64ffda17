package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dealflow-backend/internal/bootstrap"
	"dealflow-backend/internal/shared/config"
)

const (
	defaultSweepIntervalSec   = 30
	defaultShutdownTimeoutSec = 30
)

// The worker daemon drives the pipeline without serving HTTP. Because the
// job queue is in-process, it finds work by sweeping the database for
// non-terminal documents; the pipeline's status guards make a sweep that
// overlaps an API-process run harmless.
func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	if app.DB == nil {
		log.Printf("worker running on in-memory repositories; only documents submitted to this process will be seen")
	}

	sweepInterval := time.Duration(envInt("WORKER_SWEEP_INTERVAL_SECONDS", defaultSweepIntervalSec)) * time.Second
	shutdownTimeout := time.Duration(envInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Scheduler.Start(ctx)
	log.Printf("worker started workers=%d queue=%d sweep=%s", cfg.WorkerPoolSize, cfg.QueueDepth, sweepInterval)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	sweep(ctx, app)
	for {
		select {
		case <-ctx.Done():
			log.Printf("shutdown requested, draining for up to %s", shutdownTimeout)
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := app.Scheduler.Stop(stopCtx); err != nil {
				log.Printf("scheduler stop: %v", err)
			}
			if app.DB != nil {
				_ = app.DB.Close()
			}
			return
		case <-ticker.C:
			sweep(ctx, app)
		}
	}
}

func sweep(ctx context.Context, app *bootstrap.App) {
	recovered, err := app.RecoverUnfinished(ctx)
	if err != nil {
		log.Printf("sweep: %v", err)
		return
	}
	if recovered > 0 {
		log.Printf("sweep enqueued %d documents", recovered)
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
