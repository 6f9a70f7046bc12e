package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"jobwatch/watcher-service/internal/model"
)

const postingColumns = `id, source_id, external_id, title, department, location,
	job_type, apply_url, content_hash, raw_data, first_seen_at, last_seen_at, is_active`

// FindPosting looks a posting up by its identity key. Returns (nil, nil)
// when no row exists.
func (s *Store) FindPosting(ctx context.Context, sourceID int64, externalID string) (*model.Posting, error) {
	var p model.Posting
	err := s.pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE source_id = $1 AND external_id = $2`,
		sourceID, externalID,
	).Scan(
		&p.ID, &p.SourceID, &p.ExternalID, &p.Title, &p.Department, &p.Location,
		&p.JobType, &p.ApplyURL, &p.Fingerprint, &p.RawData,
		&p.FirstSeenAt, &p.LastSeenAt, &p.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find posting: %w", err)
	}
	return &p, nil
}

// InsertPosting stores a newly observed posting and fills in its row id.
func (s *Store) InsertPosting(ctx context.Context, p *model.Posting) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO postings (source_id, external_id, title, department, location,
		                       job_type, apply_url, content_hash, raw_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, first_seen_at, last_seen_at`,
		p.SourceID, p.ExternalID, p.Title, p.Department, p.Location,
		p.JobType, p.ApplyURL, p.Fingerprint, p.RawData,
	).Scan(&p.ID, &p.FirstSeenAt, &p.LastSeenAt)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	return nil
}

// UpdatePosting overwrites the mutable fields of a changed posting and
// refreshes last_seen_at.
func (s *Store) UpdatePosting(ctx context.Context, p *model.Posting) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE postings
		 SET title = $2, department = $3, location = $4, job_type = $5,
		     apply_url = $6, content_hash = $7, raw_data = $8, last_seen_at = now()
		 WHERE id = $1`,
		p.ID, p.Title, p.Department, p.Location, p.JobType,
		p.ApplyURL, p.Fingerprint, p.RawData,
	)
	if err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	return nil
}

// TouchPosting refreshes last_seen_at for an unchanged posting.
func (s *Store) TouchPosting(ctx context.Context, postingID int64, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE postings SET last_seen_at = $2 WHERE id = $1`,
		postingID, at,
	)
	if err != nil {
		return fmt.Errorf("touch posting: %w", err)
	}
	return nil
}

// ListActivePostings returns active postings, optionally restricted to the
// given source slugs. Used for the initial notification of a new
// subscription.
func (s *Store) ListActivePostings(ctx context.Context, slugs []string) ([]model.Posting, error) {
	query := `SELECT p.id, p.source_id, p.external_id, p.title, p.department, p.location,
	                 p.job_type, p.apply_url, p.content_hash, p.raw_data,
	                 p.first_seen_at, p.last_seen_at, p.is_active, s.slug
	          FROM postings p
	          JOIN sources s ON s.id = p.source_id
	          WHERE p.is_active = true`
	args := []any{}
	if len(slugs) > 0 {
		query += ` AND s.slug = ANY($1)`
		args = append(args, slugs)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		if err := rows.Scan(
			&p.ID, &p.SourceID, &p.ExternalID, &p.Title, &p.Department, &p.Location,
			&p.JobType, &p.ApplyURL, &p.Fingerprint, &p.RawData,
			&p.FirstSeenAt, &p.LastSeenAt, &p.IsActive, &p.SourceSlug,
		); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}
