package store

import (
	"context"
	"fmt"

	"jobwatch/watcher-service/internal/model"
)

// ReserveNotification claims the (subscription, posting) dedup slot with an
// atomic insert against the ledger's unique constraint. It returns false
// when the slot is already taken — by a completed attempt or by a
// concurrent dispatcher racing on the same pair.
func (s *Store) ReserveNotification(ctx context.Context, subscriptionID, postingID int64, notifType string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO notification_ledger (subscription_id, posting_id, notification_type, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (subscription_id, posting_id) DO NOTHING`,
		subscriptionID, postingID, notifType, model.NotificationPending,
	)
	if err != nil {
		return false, fmt.Errorf("reserve notification: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FinalizeNotification sets the outcome of a reserved slot exactly once.
// A sent or failed row is never transitioned again.
func (s *Store) FinalizeNotification(ctx context.Context, subscriptionID, postingID int64, status, errorMessage string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notification_ledger
		 SET status = $3, error_message = NULLIF($4, ''), sent_at = now()
		 WHERE subscription_id = $1 AND posting_id = $2 AND status = $5`,
		subscriptionID, postingID, status, errorMessage, model.NotificationPending,
	)
	if err != nil {
		return fmt.Errorf("finalize notification: %w", err)
	}
	return nil
}
