// jobwatch-watcher-service
//
// Polls job-board APIs on a schedule, diffs postings against the stored
// state, matches changes against user subscriptions and delivers webhook
// notifications exactly once per (subscription, posting) pair.
//
// HTTP surface:
//   - POST /api/v1/poll/trigger              — run one sweep now
//   - POST /api/v1/subscriptions             — create subscription + initial alert
//   - POST /api/v1/subscriptions/test-target — probe a webhook URL
//   - GET  /api/v1/sources, /api/v1/postings — read-only listings
//
// Publishes EVENT_SWEEP_COMPLETED to Redis after each sweep.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"jobwatch/watcher-service/internal/api"
	"jobwatch/watcher-service/internal/config"
	"jobwatch/watcher-service/internal/greenhouse"
	"jobwatch/watcher-service/internal/location"
	"jobwatch/watcher-service/internal/logging"
	"jobwatch/watcher-service/internal/match"
	"jobwatch/watcher-service/internal/notify"
	"jobwatch/watcher-service/internal/poller"
	"jobwatch/watcher-service/internal/scheduler"
	"jobwatch/watcher-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[watcher-service] Config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[watcher-service] Logger error: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	logger.Info("connecting to PostgreSQL")
	pool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer pool.Close()

	// ── Redis ────────────────────────────────────────────────────────────────
	logger.Info("connecting to Redis")
	rdb, err := store.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// ── Pipeline wiring ──────────────────────────────────────────────────────
	st := store.New(pool)
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	resolver := location.New(location.DefaultAliases())
	engine := match.NewEngine(resolver)
	fetcher := greenhouse.NewClient(cfg.GreenhouseBaseURL, timeout, logger)
	dispatcher := notify.NewDispatcher(st, timeout, logger)
	pipeline := poller.New(st, fetcher, engine, dispatcher, rdb, cfg.MaxConcurrentPolls, logger)

	sched := scheduler.New(pipeline, cfg.PollIntervalMinutes, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	api.NewHandler(pipeline, dispatcher, st, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	// Stop the scheduler before cancelling the context: an in-flight sweep
	// keeps its fetches and deliveries alive until it finishes.
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "watcher-service",
		"version": version,
	})
}
