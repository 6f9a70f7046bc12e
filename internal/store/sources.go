package store

import (
	"context"
	"fmt"
	"time"

	"jobwatch/watcher-service/internal/model"
)

// ListActiveSources returns all active sources; due-ness is decided by the
// poller so the selection clock stays in one place.
func (s *Store) ListActiveSources(ctx context.Context) ([]model.Source, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, slug, api_endpoint, is_active, poll_interval_minutes,
		        last_polled_at, created_at, updated_at
		 FROM sources
		 WHERE is_active = true
		 ORDER BY slug`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []model.Source
	for rows.Next() {
		var src model.Source
		if err := rows.Scan(
			&src.ID, &src.Name, &src.Slug, &src.APIEndpoint, &src.IsActive,
			&src.PollIntervalMinutes, &src.LastPolledAt, &src.CreatedAt, &src.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// MarkSourcePolled sets last_polled_at; called only for attempts that
// completed fetch+diff, so a failed source is retried on the next due cycle.
func (s *Store) MarkSourcePolled(ctx context.Context, sourceID int64, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sources SET last_polled_at = $2, updated_at = now() WHERE id = $1`,
		sourceID, at,
	)
	if err != nil {
		return fmt.Errorf("mark source polled: %w", err)
	}
	return nil
}
