package store

import (
	"context"
	"fmt"

	"jobwatch/watcher-service/internal/model"
)

// StartPollAudit records the beginning of one polling attempt and returns
// the audit row id.
func (s *Store) StartPollAudit(ctx context.Context, sourceID int64) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO poll_audit (source_id, status) VALUES ($1, $2) RETURNING id`,
		sourceID, model.PollStatusRunning,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start poll audit: %w", err)
	}
	return id, nil
}

// FinishPollAudit closes an audit row with the attempt's outcome. Every
// attempt, including failed ones, ends up here.
func (s *Store) FinishPollAudit(ctx context.Context, auditID int64, a model.PollAudit) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE poll_audit
		 SET completed_at = now(), status = $2, jobs_found = $3, new_jobs = $4,
		     updated_jobs = $5, latency_ms = $6, error_message = NULLIF($7, '')
		 WHERE id = $1`,
		auditID, a.Status, a.JobsFound, a.NewJobs, a.UpdatedJobs, a.LatencyMS, a.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("finish poll audit: %w", err)
	}
	return nil
}
