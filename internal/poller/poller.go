package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobwatch/watcher-service/internal/match"
	"jobwatch/watcher-service/internal/model"
	"jobwatch/watcher-service/internal/notify"
)

// ErrSweepInFlight is returned when a sweep is requested while another one
// holds the single-sweep guard.
var ErrSweepInFlight = errors.New("a sweep is already in flight")

// sweepEventChannel receives a JSON SweepStats payload after every sweep.
const sweepEventChannel = "EVENT_SWEEP_COMPLETED"

// Store is the persistence slice the poller needs.
type Store interface {
	ListActiveSources(ctx context.Context) ([]model.Source, error)
	MarkSourcePolled(ctx context.Context, sourceID int64, at time.Time) error

	FindPosting(ctx context.Context, sourceID int64, externalID string) (*model.Posting, error)
	InsertPosting(ctx context.Context, p *model.Posting) error
	UpdatePosting(ctx context.Context, p *model.Posting) error
	TouchPosting(ctx context.Context, postingID int64, at time.Time) error
	ListActivePostings(ctx context.Context, slugs []string) ([]model.Posting, error)

	ListActiveSubscriptions(ctx context.Context) ([]model.Subscription, error)

	StartPollAudit(ctx context.Context, sourceID int64) (int64, error)
	FinishPollAudit(ctx context.Context, auditID int64, a model.PollAudit) error
}

// Fetcher is the source adapter boundary.
type Fetcher interface {
	Fetch(ctx context.Context, slug string) ([]model.Posting, error)
}

// Notifier is the dispatcher boundary.
type Notifier interface {
	Notify(ctx context.Context, sub model.Subscription, postings []model.Posting, isInitial bool) notify.Result
}

// Poller runs full sweeps across all due sources. Per-source work is
// isolated: one source's failure never aborts the others.
type Poller struct {
	store       Store
	fetcher     Fetcher
	engine      *match.Engine
	notifier    Notifier
	rdb         *redis.Client
	lock        *sweepLock
	maxInFlight int
	logger      *zap.Logger
}

// New constructs a Poller. rdb may be nil in tests; the sweep guard then
// degrades to the in-process mutex.
func New(store Store, fetcher Fetcher, engine *match.Engine, notifier Notifier, rdb *redis.Client, maxInFlight int, logger *zap.Logger) *Poller {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Poller{
		store:       store,
		fetcher:     fetcher,
		engine:      engine,
		notifier:    notifier,
		rdb:         rdb,
		lock:        newSweepLock(rdb),
		maxInFlight: maxInFlight,
		logger:      logger.With(zap.String("component", "poller")),
	}
}

// sourceResult aggregates one source's contribution to the sweep stats.
type sourceResult struct {
	ok                  bool
	postingsFound       int
	newPostings         int
	updatedPostings     int
	notificationsSent   int
	notificationsFailed int
}

// RunSweep polls every due source once and returns aggregate statistics.
// Returns ErrSweepInFlight when another sweep holds the guard.
func (p *Poller) RunSweep(ctx context.Context) (model.SweepStats, error) {
	sweepID := uuid.NewString()
	stats := model.SweepStats{SweepID: sweepID, StartedAt: time.Now().UTC()}

	acquired, err := p.lock.TryAcquire(ctx, sweepID)
	if err != nil {
		return stats, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !acquired {
		return stats, ErrSweepInFlight
	}
	defer p.lock.Release(ctx)

	log := p.logger.With(zap.String("sweep_id", sweepID))

	sources, err := p.store.ListActiveSources(ctx)
	if err != nil {
		return stats, fmt.Errorf("list sources: %w", err)
	}

	now := time.Now().UTC()
	due := make([]model.Source, 0, len(sources))
	for _, src := range sources {
		if src.Due(now) {
			due = append(due, src)
		}
	}
	stats.SourcesPolled = len(due)

	if len(due) == 0 {
		stats.CompletedAt = time.Now().UTC()
		log.Info("sweep complete, no sources due")
		return stats, nil
	}

	subs, err := p.store.ListActiveSubscriptions(ctx)
	if err != nil {
		return stats, fmt.Errorf("list subscriptions: %w", err)
	}

	log.Info("sweep started",
		zap.Int("sources_due", len(due)),
		zap.Int("subscriptions", len(subs)))

	// Sources are independent; fan out with a bounded number of in-flight
	// fetches. Each source's own pipeline stays strictly sequential.
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.maxInFlight)
	)
	for _, src := range due {
		wg.Add(1)
		go func(src model.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := p.pollSource(ctx, src, subs)

			mu.Lock()
			defer mu.Unlock()
			if res.ok {
				stats.SourcesOK++
			} else {
				stats.SourcesFailed++
			}
			stats.PostingsFound += res.postingsFound
			stats.NewPostings += res.newPostings
			stats.UpdatedPostings += res.updatedPostings
			stats.NotificationsSent += res.notificationsSent
			stats.NotificationsFailed += res.notificationsFailed
		}(src)
	}
	wg.Wait()

	stats.CompletedAt = time.Now().UTC()
	log.Info("sweep complete",
		zap.Int("sources_ok", stats.SourcesOK),
		zap.Int("sources_failed", stats.SourcesFailed),
		zap.Int("new_postings", stats.NewPostings),
		zap.Int("updated_postings", stats.UpdatedPostings),
		zap.Int("notifications_sent", stats.NotificationsSent),
		zap.Duration("duration", stats.CompletedAt.Sub(stats.StartedAt)))

	p.publishSweepEvent(ctx, stats)
	return stats, nil
}

// pollSource runs fetch → diff → match → notify for one source. Every
// attempt, including failed ones, closes its audit row; last_polled_at is
// only advanced when fetch+diff completed, so a failed source is due again
// on the next cycle.
func (p *Poller) pollSource(ctx context.Context, src model.Source, subs []model.Subscription) sourceResult {
	var res sourceResult
	log := p.logger.With(zap.String("source", src.Slug))

	att := newAttempt()
	auditID, err := p.store.StartPollAudit(ctx, src.ID)
	if err != nil {
		log.Error("start poll audit failed", zap.Error(err))
		auditID = 0
	}
	if err := att.advance(model.PollStatusRunning); err != nil {
		log.Error("attempt state error", zap.Error(err))
	}

	started := time.Now()
	finish := func(status model.PollStatus, errMsg string) {
		if err := att.advance(status); err != nil {
			log.Error("attempt state error", zap.Error(err))
		}
		if auditID == 0 {
			return
		}
		audit := model.PollAudit{
			Status:       status,
			JobsFound:    res.postingsFound,
			NewJobs:      res.newPostings,
			UpdatedJobs:  res.updatedPostings,
			LatencyMS:    int(time.Since(started).Milliseconds()),
			ErrorMessage: errMsg,
		}
		if err := p.store.FinishPollAudit(ctx, auditID, audit); err != nil {
			log.Error("finish poll audit failed", zap.Error(err))
		}
	}

	fetched, err := p.fetcher.Fetch(ctx, src.Slug)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		finish(model.PollStatusError, err.Error())
		return res
	}
	res.postingsFound = len(fetched)

	// Diff, collecting the new/changed postings that enter the match path.
	var affected []model.Posting
	for _, fp := range fetched {
		fp.SourceID = src.ID
		fp.SourceSlug = src.Slug

		outcome, stored, err := p.diffPosting(ctx, fp)
		if err != nil {
			log.Warn("diff failed",
				zap.String("external_id", fp.ExternalID), zap.Error(err))
			continue
		}
		switch outcome {
		case diffNew:
			res.newPostings++
			affected = append(affected, *stored)
		case diffChanged:
			res.updatedPostings++
			affected = append(affected, *stored)
		}
	}

	if err := p.store.MarkSourcePolled(ctx, src.ID, time.Now().UTC()); err != nil {
		log.Error("mark source polled failed", zap.Error(err))
	}

	// Match and dispatch: one batch per subscription for this cycle.
	for _, sub := range subs {
		var matched []model.Posting
		for _, posting := range affected {
			if p.engine.Matches(posting, sub) {
				matched = append(matched, posting)
			}
		}
		if len(matched) == 0 {
			continue
		}
		nres := p.notifier.Notify(ctx, sub, matched, false)
		res.notificationsSent += nres.Sent
		res.notificationsFailed += nres.Failed
	}

	res.ok = true
	finish(model.PollStatusSuccess, "")
	log.Info("source polled",
		zap.Int("found", res.postingsFound),
		zap.Int("new", res.newPostings),
		zap.Int("updated", res.updatedPostings))
	return res
}

type diffOutcome int

const (
	diffUnchanged diffOutcome = iota
	diffNew
	diffChanged
)

// diffPosting classifies one fetched posting against stored state.
// Fingerprint equality is necessary and sufficient for "unchanged".
func (p *Poller) diffPosting(ctx context.Context, fetched model.Posting) (diffOutcome, *model.Posting, error) {
	existing, err := p.store.FindPosting(ctx, fetched.SourceID, fetched.ExternalID)
	if err != nil {
		return diffUnchanged, nil, err
	}

	if existing == nil {
		if err := p.store.InsertPosting(ctx, &fetched); err != nil {
			return diffUnchanged, nil, err
		}
		return diffNew, &fetched, nil
	}

	if existing.Fingerprint == fetched.Fingerprint {
		if err := p.store.TouchPosting(ctx, existing.ID, time.Now().UTC()); err != nil {
			return diffUnchanged, nil, err
		}
		return diffUnchanged, existing, nil
	}

	fetched.ID = existing.ID
	fetched.FirstSeenAt = existing.FirstSeenAt
	if err := p.store.UpdatePosting(ctx, &fetched); err != nil {
		return diffUnchanged, nil, err
	}
	return diffChanged, &fetched, nil
}

// SendInitialNotification delivers the one-time summary of already-stored
// postings that match a freshly created subscription.
func (p *Poller) SendInitialNotification(ctx context.Context, sub model.Subscription) (notify.Result, error) {
	postings, err := p.store.ListActivePostings(ctx, sub.SourceSlugs)
	if err != nil {
		return notify.Result{}, fmt.Errorf("list active postings: %w", err)
	}

	var matched []model.Posting
	for _, posting := range postings {
		if p.engine.Matches(posting, sub) {
			matched = append(matched, posting)
		}
	}
	if len(matched) == 0 {
		return notify.Result{}, nil
	}
	return p.notifier.Notify(ctx, sub, matched, true), nil
}

// publishSweepEvent announces sweep completion on Redis (non-fatal).
func (p *Poller) publishSweepEvent(ctx context.Context, stats model.SweepStats) {
	if p.rdb == nil {
		return
	}
	event, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := p.rdb.Publish(ctx, sweepEventChannel, event).Err(); err != nil {
		p.logger.Warn("publish sweep event failed", zap.Error(err))
	}
}
