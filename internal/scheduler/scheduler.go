// Package scheduler wires up the cron job that periodically drives sweeps.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobwatch/watcher-service/internal/model"
	"jobwatch/watcher-service/internal/poller"
)

// errorCooldown is how long the loop pauses after a failed sweep before
// the next tick is honored, so a persistently failing dependency does not
// spin the loop.
const errorCooldown = time.Minute

// Sweeper runs one full polling pass. Satisfied by *poller.Poller.
type Sweeper interface {
	RunSweep(ctx context.Context) (model.SweepStats, error)
}

// Scheduler owns the background sweep loop. It is an explicit handle with
// Start/Stop so the application lifecycle controls it; a sweep error never
// terminates the loop.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string // cron spec, e.g. "@every 15m"
	logger  *zap.Logger

	wg          sync.WaitGroup
	mu          sync.Mutex
	coolingDown time.Time
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(sweeper Sweeper, intervalMinutes int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
		logger:  logger.With(zap.String("component", "scheduler")),
	}
}

// Start registers the sweep job and starts the loop. Also runs one sweep
// immediately so new deployments do not wait a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	// The WaitGroup must be incremented before the goroutine is spawned;
	// otherwise a Stop racing the startup sweep could see a zero counter
	// and return while the sweep is still pending.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSweep(ctx)
	}()
	return nil
}

// Stop halts the loop and waits for an in-flight sweep to finish,
// including the immediate startup sweep.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// runSweep executes one sweep, containing every failure. An overlapping
// tick is a no-op: the poller's own guard rejects it. Cron-driven calls
// are covered by cron's own Stop context; the startup sweep is covered by
// the WaitGroup incremented in Start.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.mu.Lock()
	cooling := time.Now().Before(s.coolingDown)
	s.mu.Unlock()
	if cooling {
		s.logger.Debug("skipping tick during error cooldown")
		return
	}

	stats, err := s.sweeper.RunSweep(ctx)
	if err != nil {
		if errors.Is(err, poller.ErrSweepInFlight) {
			s.logger.Debug("tick skipped, sweep already in flight")
			return
		}
		s.logger.Error("sweep failed", zap.Error(err))
		s.mu.Lock()
		s.coolingDown = time.Now().Add(errorCooldown)
		s.mu.Unlock()
		return
	}

	s.logger.Info("sweep tick complete",
		zap.Int("sources_polled", stats.SourcesPolled),
		zap.Int("new_postings", stats.NewPostings),
		zap.Int("notifications_sent", stats.NotificationsSent))
}
