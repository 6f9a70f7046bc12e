// Package notify delivers matched posting batches to subscription webhooks
// and enforces the per-(subscription, posting) dedup ledger.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jobwatch/watcher-service/internal/model"
)

// TypeWebhook is the only delivery type currently supported.
const TypeWebhook = "webhook"

// Ledger is the slice of the store the dispatcher needs. The reserve call
// must be atomic against concurrent dispatch for the same pair.
type Ledger interface {
	ReserveNotification(ctx context.Context, subscriptionID, postingID int64, notifType string) (bool, error)
	FinalizeNotification(ctx context.Context, subscriptionID, postingID int64, status, errorMessage string) error
	MarkSubscriptionNotified(ctx context.Context, subscriptionID int64, at time.Time) error
}

// Result records the outcome of one Notify call.
type Result struct {
	Sent    int // postings delivered and recorded as sent
	Failed  int // postings recorded as failed
	Skipped int // postings suppressed by the dedup ledger
}

// Dispatcher renders and sends notification batches. Delivery failure is
// recorded, never raised; a failed attempt still occupies its dedup slot.
type Dispatcher struct {
	ledger Ledger
	client *http.Client
	logger *zap.Logger
}

// NewDispatcher constructs a Dispatcher with its own HTTP client.
func NewDispatcher(ledger Ledger, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		ledger: ledger,
		client: &http.Client{Timeout: timeout},
		logger: logger.With(zap.String("component", "notify")),
	}
}

// Notify sends one batch of postings to the subscription's webhook.
// Each posting's dedup slot is claimed before sending; postings whose slot
// is already taken are dropped from the batch. isInitial only changes the
// rendered wording.
func (d *Dispatcher) Notify(ctx context.Context, sub model.Subscription, postings []model.Posting, isInitial bool) Result {
	var res Result

	claimed := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		ok, err := d.ledger.ReserveNotification(ctx, sub.ID, p.ID, TypeWebhook)
		if err != nil {
			d.logger.Error("ledger reserve failed",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("posting_id", p.ID),
				zap.Error(err))
			res.Failed++
			continue
		}
		if !ok {
			res.Skipped++
			continue
		}
		claimed = append(claimed, p)
	}

	if len(claimed) == 0 {
		return res
	}

	sendErr := d.send(ctx, sub.WebhookURL, buildPayload(sub, claimed, isInitial))

	status := model.NotificationSent
	errMsg := ""
	if sendErr != nil {
		status = model.NotificationFailed
		errMsg = sendErr.Error()
		d.logger.Warn("webhook delivery failed",
			zap.Int64("subscription_id", sub.ID),
			zap.Int("postings", len(claimed)),
			zap.Error(sendErr))
	}

	for _, p := range claimed {
		if err := d.ledger.FinalizeNotification(ctx, sub.ID, p.ID, status, errMsg); err != nil {
			d.logger.Error("ledger finalize failed",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("posting_id", p.ID),
				zap.Error(err))
		}
	}

	if sendErr != nil {
		res.Failed += len(claimed)
		return res
	}

	res.Sent += len(claimed)
	if err := d.ledger.MarkSubscriptionNotified(ctx, sub.ID, time.Now().UTC()); err != nil {
		d.logger.Error("mark subscription notified failed",
			zap.Int64("subscription_id", sub.ID), zap.Error(err))
	}
	d.logger.Info("notification sent",
		zap.Int64("subscription_id", sub.ID),
		zap.String("subscription", sub.Name),
		zap.Int("postings", len(claimed)),
		zap.Bool("initial", isInitial))
	return res
}

// TestTarget posts a test message to the webhook and reports whether the
// sink accepted it.
func (d *Dispatcher) TestTarget(ctx context.Context, url string) bool {
	err := d.send(ctx, url, testPayload())
	if err != nil {
		d.logger.Warn("webhook test failed", zap.Error(err))
	}
	return err == nil
}

// send performs one POST; any 2xx response is success.
func (d *Dispatcher) send(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
