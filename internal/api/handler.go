// Package api implements the HTTP boundary of the watcher service.
//
// Routes:
//
//	POST /api/v1/poll/trigger              → run one sweep now, return stats
//	POST /api/v1/subscriptions             → create subscription + initial alert
//	POST /api/v1/subscriptions/test-target → probe a webhook URL
//	GET  /api/v1/sources                   → read-only source listing
//	GET  /api/v1/postings                  → read-only posting listing
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"jobwatch/watcher-service/internal/model"
	"jobwatch/watcher-service/internal/notify"
	"jobwatch/watcher-service/internal/poller"
)

// ─── Dependencies ────────────────────────────────────────────────────────────

// Pipeline is the poller surface the API needs.
type Pipeline interface {
	RunSweep(ctx context.Context) (model.SweepStats, error)
	SendInitialNotification(ctx context.Context, sub model.Subscription) (notify.Result, error)
}

// TargetTester probes a delivery target.
type TargetTester interface {
	TestTarget(ctx context.Context, url string) bool
}

// Catalog is the read/create slice of the store the API exposes.
type Catalog interface {
	ListActiveSources(ctx context.Context) ([]model.Source, error)
	ListActivePostings(ctx context.Context, slugs []string) ([]model.Posting, error)
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// Handler holds shared dependencies.
type Handler struct {
	pipeline Pipeline
	tester   TargetTester
	catalog  Catalog
	logger   *zap.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(pipeline Pipeline, tester TargetTester, catalog Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		tester:   tester,
		catalog:  catalog,
		logger:   logger.With(zap.String("component", "api")),
	}
}

// RegisterRoutes mounts all watcher-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/poll/trigger", h.handleTrigger)
	mux.HandleFunc("/api/v1/subscriptions", h.handleCreateSubscription)
	mux.HandleFunc("/api/v1/subscriptions/test-target", h.handleTestTarget)
	mux.HandleFunc("/api/v1/sources", h.handleListSources)
	mux.HandleFunc("/api/v1/postings", h.handleListPostings)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

// handleTrigger runs a single sweep on demand. A sweep already in flight
// yields 409 rather than a second overlapping pass.
func (h *Handler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.pipeline.RunSweep(r.Context())
	if err != nil {
		if errors.Is(err, poller.ErrSweepInFlight) {
			jsonError(w, "a sweep is already in flight", http.StatusConflict)
			return
		}
		h.logger.Error("manual sweep failed", zap.Error(err))
		jsonError(w, "sweep failed", http.StatusInternalServerError)
		return
	}
	jsonOK(w, stats)
}

type createSubscriptionRequest struct {
	UserID          string   `json:"userId"`
	Name            string   `json:"name"`
	SourceSlugs     []string `json:"sourceSlugs"`
	IncludeKeywords []string `json:"includeKeywords"`
	ExcludeKeywords []string `json:"excludeKeywords"`
	Departments     []string `json:"departments"`
	Locations       []string `json:"locations"`
	JobTypes        []string `json:"jobTypes"`
	IncludeRemote   *bool    `json:"includeRemote"`
	WebhookURL      string   `json:"webhookUrl"`
}

// handleCreateSubscription stores a subscription and sends the one-time
// initial summary of already-matching postings.
func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.UserID == "" || body.Name == "" || body.WebhookURL == "" {
		jsonError(w, "userId, name and webhookUrl are required", http.StatusBadRequest)
		return
	}

	includeRemote := true
	if body.IncludeRemote != nil {
		includeRemote = *body.IncludeRemote
	}

	sub := model.Subscription{
		UserID:          body.UserID,
		Name:            body.Name,
		SourceSlugs:     body.SourceSlugs,
		IncludeKeywords: body.IncludeKeywords,
		ExcludeKeywords: body.ExcludeKeywords,
		Departments:     body.Departments,
		Locations:       body.Locations,
		JobTypes:        body.JobTypes,
		IncludeRemote:   includeRemote,
		WebhookURL:      body.WebhookURL,
	}
	if err := h.catalog.CreateSubscription(r.Context(), &sub); err != nil {
		h.logger.Error("create subscription failed", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	// Initial notification failure is recorded by the dispatcher, not
	// surfaced to the creator.
	if _, err := h.pipeline.SendInitialNotification(r.Context(), sub); err != nil {
		h.logger.Warn("initial notification failed",
			zap.Int64("subscription_id", sub.ID), zap.Error(err))
	}

	jsonOK(w, sub)
}

func (h *Handler) handleTestTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	jsonOK(w, map[string]bool{"ok": h.tester.TestTarget(r.Context(), body.URL)})
}

func (h *Handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sources, err := h.catalog.ListActiveSources(r.Context())
	if err != nil {
		h.logger.Error("list sources failed", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if sources == nil {
		sources = []model.Source{}
	}
	jsonOK(w, sources)
}

func (h *Handler) handleListPostings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var slugs []string
	if slug := r.URL.Query().Get("source"); slug != "" {
		slugs = []string{slug}
	}

	postings, err := h.catalog.ListActivePostings(r.Context(), slugs)
	if err != nil {
		h.logger.Error("list postings failed", zap.Error(err))
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	if postings == nil {
		postings = []model.Posting{}
	}
	jsonOK(w, postings)
}

// ─── JSON helpers ─────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
