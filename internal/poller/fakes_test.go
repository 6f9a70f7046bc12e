package poller_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobwatch/watcher-service/internal/model"
	"jobwatch/watcher-service/internal/notify"
)

// fakeStore is an in-memory poller.Store.
type fakeStore struct {
	mu            sync.Mutex
	sources       []model.Source
	postings      map[string]*model.Posting // key: sourceID/externalID
	subscriptions []model.Subscription
	audits        map[int64]*model.PollAudit
	nextPostingID int64
	nextAuditID   int64
	polled        map[int64]time.Time
	touched       map[int64]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		postings: make(map[string]*model.Posting),
		audits:   make(map[int64]*model.PollAudit),
		polled:   make(map[int64]time.Time),
		touched:  make(map[int64]int),
	}
}

func postingKey(sourceID int64, externalID string) string {
	return fmt.Sprintf("%d/%s", sourceID, externalID)
}

func (s *fakeStore) ListActiveSources(context.Context) ([]model.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []model.Source
	for _, src := range s.sources {
		if src.IsActive {
			active = append(active, src)
		}
	}
	return active, nil
}

func (s *fakeStore) MarkSourcePolled(_ context.Context, sourceID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polled[sourceID] = at
	for i := range s.sources {
		if s.sources[i].ID == sourceID {
			t := at
			s.sources[i].LastPolledAt = &t
		}
	}
	return nil
}

func (s *fakeStore) FindPosting(_ context.Context, sourceID int64, externalID string) (*model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postings[postingKey(sourceID, externalID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) InsertPosting(_ context.Context, p *model.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPostingID++
	p.ID = s.nextPostingID
	p.FirstSeenAt = time.Now().UTC()
	p.LastSeenAt = p.FirstSeenAt
	cp := *p
	s.postings[postingKey(p.SourceID, p.ExternalID)] = &cp
	return nil
}

func (s *fakeStore) UpdatePosting(_ context.Context, p *model.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.LastSeenAt = time.Now().UTC()
	s.postings[postingKey(p.SourceID, p.ExternalID)] = &cp
	return nil
}

func (s *fakeStore) TouchPosting(_ context.Context, postingID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[postingID]++
	for _, p := range s.postings {
		if p.ID == postingID {
			p.LastSeenAt = at
		}
	}
	return nil
}

func (s *fakeStore) ListActivePostings(_ context.Context, slugs []string) ([]model.Posting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		want[slug] = true
	}
	var out []model.Posting
	for _, p := range s.postings {
		if p.IsActive && (len(want) == 0 || want[p.SourceSlug]) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) ListActiveSubscriptions(context.Context) ([]model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []model.Subscription
	for _, sub := range s.subscriptions {
		if sub.IsActive {
			active = append(active, sub)
		}
	}
	return active, nil
}

func (s *fakeStore) StartPollAudit(_ context.Context, sourceID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAuditID++
	s.audits[s.nextAuditID] = &model.PollAudit{
		ID:        s.nextAuditID,
		SourceID:  sourceID,
		StartedAt: time.Now().UTC(),
		Status:    model.PollStatusRunning,
	}
	return s.nextAuditID, nil
}

func (s *fakeStore) FinishPollAudit(_ context.Context, auditID int64, a model.PollAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.audits[auditID]
	if !ok {
		return fmt.Errorf("no audit row %d", auditID)
	}
	now := time.Now().UTC()
	row.CompletedAt = &now
	row.Status = a.Status
	row.JobsFound = a.JobsFound
	row.NewJobs = a.NewJobs
	row.UpdatedJobs = a.UpdatedJobs
	row.LatencyMS = a.LatencyMS
	row.ErrorMessage = a.ErrorMessage
	return nil
}

func (s *fakeStore) auditsFor(sourceID int64) []model.PollAudit {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PollAudit
	for _, a := range s.audits {
		if a.SourceID == sourceID {
			out = append(out, *a)
		}
	}
	return out
}

// fakeFetcher serves canned postings (or errors) per slug.
type fakeFetcher struct {
	mu       sync.Mutex
	boards   map[string][]model.Posting
	failures map[string]error
	delay    time.Duration
	inFlight int
	peak     int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		boards:   make(map[string][]model.Posting),
		failures: make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, slug string) ([]model.Posting, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	err := f.failures[slug]
	board := f.boards[slug]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := make([]model.Posting, len(board))
	copy(out, board)
	return out, nil
}

// fakeNotifier records batches and reports everything as sent.
type fakeNotifier struct {
	mu      sync.Mutex
	batches []batch
}

type batch struct {
	subID     int64
	postings  []model.Posting
	isInitial bool
}

func (n *fakeNotifier) Notify(_ context.Context, sub model.Subscription, postings []model.Posting, isInitial bool) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := make([]model.Posting, len(postings))
	copy(cp, postings)
	n.batches = append(n.batches, batch{subID: sub.ID, postings: cp, isInitial: isInitial})
	return notify.Result{Sent: len(postings)}
}

func (n *fakeNotifier) batchesFor(subID int64) []batch {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []batch
	for _, b := range n.batches {
		if b.subID == subID {
			out = append(out, b)
		}
	}
	return out
}
