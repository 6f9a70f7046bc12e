package store

import (
	"context"
	"fmt"
	"time"

	"jobwatch/watcher-service/internal/model"
)

const subscriptionColumns = `id, user_id, name, is_active, source_slugs,
	include_keywords, exclude_keywords, departments, locations, job_types,
	include_remote, webhook_url, created_at, updated_at, last_notified_at`

func scanSubscription(row interface{ Scan(...any) error }) (model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Name, &sub.IsActive, &sub.SourceSlugs,
		&sub.IncludeKeywords, &sub.ExcludeKeywords, &sub.Departments,
		&sub.Locations, &sub.JobTypes, &sub.IncludeRemote, &sub.WebhookURL,
		&sub.CreatedAt, &sub.UpdatedAt, &sub.LastNotifiedAt,
	)
	return sub, err
}

// ListActiveSubscriptions returns every subscription the matching engine
// should evaluate.
func (s *Store) ListActiveSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE is_active = true`,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CreateSubscription inserts a subscription and fills in its row id.
func (s *Store) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (user_id, name, source_slugs, include_keywords,
		                            exclude_keywords, departments, locations, job_types,
		                            include_remote, webhook_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, is_active, created_at, updated_at`,
		sub.UserID, sub.Name, sub.SourceSlugs, sub.IncludeKeywords,
		sub.ExcludeKeywords, sub.Departments, sub.Locations, sub.JobTypes,
		sub.IncludeRemote, sub.WebhookURL,
	).Scan(&sub.ID, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// MarkSubscriptionNotified updates last_notified_at after a successful send.
func (s *Store) MarkSubscriptionNotified(ctx context.Context, subscriptionID int64, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE subscriptions SET last_notified_at = $2, updated_at = now() WHERE id = $1`,
		subscriptionID, at,
	)
	if err != nil {
		return fmt.Errorf("mark subscription notified: %w", err)
	}
	return nil
}
