// Package model defines shared data structures for the watcher service.
package model

import (
	"encoding/json"
	"time"
)

// Source mirrors a sources table row: one monitored upstream job board.
// Only the poller mutates LastPolledAt; everything else is administrative.
type Source struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Slug                string     `json:"slug"`
	APIEndpoint         string     `json:"apiEndpoint"`
	IsActive            bool       `json:"isActive"`
	PollIntervalMinutes int        `json:"pollIntervalMinutes"`
	LastPolledAt        *time.Time `json:"lastPolledAt"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Due reports whether the source should be polled at the given instant.
// A never-polled source is always due.
func (s Source) Due(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.LastPolledAt == nil {
		return true
	}
	return s.LastPolledAt.Before(now.Add(-time.Duration(s.PollIntervalMinutes) * time.Minute))
}

// Posting is a normalized job listing. (SourceID, ExternalID) is the
// identity key across polls; Fingerprint detects content changes.
type Posting struct {
	ID          int64           `json:"id"`
	SourceID    int64           `json:"sourceId"`
	SourceSlug  string          `json:"sourceSlug,omitempty"`
	ExternalID  string          `json:"externalId"`
	Title       string          `json:"title"`
	Department  string          `json:"department,omitempty"`
	Location    string          `json:"location,omitempty"`
	JobType     string          `json:"jobType,omitempty"`
	ApplyURL    string          `json:"applyUrl"`
	Fingerprint string          `json:"-"`
	RawData     json.RawMessage `json:"-"`
	FirstSeenAt time.Time       `json:"firstSeenAt"`
	LastSeenAt  time.Time       `json:"lastSeenAt"`
	IsActive    bool            `json:"isActive"`
}

// Subscription is a user's alert definition. The pipeline treats it as
// read-only except for LastNotifiedAt.
type Subscription struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	IsActive        bool       `json:"isActive"`
	SourceSlugs     []string   `json:"sourceSlugs"`
	IncludeKeywords []string   `json:"includeKeywords"`
	ExcludeKeywords []string   `json:"excludeKeywords"`
	Departments     []string   `json:"departments"`
	Locations       []string   `json:"locations"`
	JobTypes        []string   `json:"jobTypes"`
	IncludeRemote   bool       `json:"includeRemote"`
	WebhookURL      string     `json:"webhookUrl"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	LastNotifiedAt  *time.Time `json:"lastNotifiedAt"`
}

// Notification ledger statuses. A ledger row is claimed as pending, then
// finalized exactly once to sent or failed.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification is a dedup ledger entry keyed by (SubscriptionID, PostingID).
// The unique constraint on that pair is the at-most-once guarantee.
type Notification struct {
	ID             int64
	SubscriptionID int64
	PostingID      int64
	Type           string // "webhook"
	Status         string
	ErrorMessage   string
	SentAt         time.Time
}

// PollStatus is the poll_audit status vocabulary. The poller's attempt
// state machine transitions over these values; the store writes them
// as-is.
type PollStatus string

const (
	PollStatusPending PollStatus = "pending"
	PollStatusRunning PollStatus = "running"
	PollStatusSuccess PollStatus = "success"
	PollStatusError   PollStatus = "error"
)

// PollAudit is one row per polling attempt against a source. Write-only
// trail; the pipeline never reads it back.
type PollAudit struct {
	ID           int64
	SourceID     int64
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       PollStatus
	JobsFound    int
	NewJobs      int
	UpdatedJobs  int
	LatencyMS    int
	ErrorMessage string
}

// SweepStats summarises one full pass across all due sources.
type SweepStats struct {
	SweepID             string    `json:"sweepId"`
	SourcesPolled       int       `json:"sourcesPolled"`
	SourcesOK           int       `json:"sourcesOk"`
	SourcesFailed       int       `json:"sourcesFailed"`
	PostingsFound       int       `json:"postingsFound"`
	NewPostings         int       `json:"newPostings"`
	UpdatedPostings     int       `json:"updatedPostings"`
	NotificationsSent   int       `json:"notificationsSent"`
	NotificationsFailed int       `json:"notificationsFailed"`
	StartedAt           time.Time `json:"startedAt"`
	CompletedAt         time.Time `json:"completedAt"`
}
