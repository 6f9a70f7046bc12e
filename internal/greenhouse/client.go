// Package greenhouse fetches job postings from the Greenhouse board API and
// normalizes them into model.Posting records.
package greenhouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jobwatch/watcher-service/internal/model"
)

// Fetch failure taxonomy. All are terminal for the current cycle; the
// poller retries on the normal schedule only.
var (
	// ErrNotFound — the board slug does not exist upstream (HTTP 404).
	ErrNotFound = errors.New("source not found upstream")
	// ErrRateLimited — upstream throttled the request (HTTP 429).
	ErrRateLimited = errors.New("source rate limited")
	// ErrTimeout — connect or read deadline exceeded.
	ErrTimeout = errors.New("source fetch timed out")
	// ErrUpstream — any other non-2xx status or a malformed body.
	ErrUpstream = errors.New("upstream source error")
)

// Client fetches and normalizes postings for Greenhouse board slugs.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient constructs a Client with a shared HTTP client. baseURL is the
// API root without a trailing slash, e.g. "https://boards-api.greenhouse.io".
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "greenhouse")),
	}
}

// boardResponse mirrors the top-level Greenhouse board JSON response.
type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

// boardJob mirrors a single Greenhouse job listing.
type boardJob struct {
	ID          json.Number     `json:"id"`
	Title       string          `json:"title"`
	AbsoluteURL string          `json:"absolute_url"`
	Location    boardLocation   `json:"location"`
	Departments []boardDept     `json:"departments"`
	Metadata    []boardMetadata `json:"metadata"`
}

type boardLocation struct {
	Name string `json:"name"`
}

type boardDept struct {
	Name string `json:"name"`
}

type boardMetadata struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Fetch retrieves all postings for a board slug. A 200 response with an
// empty jobs array is a valid zero-result outcome, not an error. Failures
// are classified as ErrNotFound, ErrRateLimited, ErrTimeout or ErrUpstream.
func (c *Client) Fetch(ctx context.Context, slug string) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/v1/boards/%s/jobs", c.baseURL, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jobwatch/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: GET %s: %v", ErrTimeout, url, err)
		}
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, slug)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, slug, resp.StatusCode)
	}

	var board boardResponse
	if err := json.Unmarshal(body, &board); err != nil {
		return nil, fmt.Errorf("%w: unmarshal board: %v", ErrUpstream, err)
	}

	postings := make([]model.Posting, 0, len(board.Jobs))
	for _, job := range board.Jobs {
		raw, err := json.Marshal(job)
		if err != nil {
			c.logger.Warn("marshal raw job failed", zap.String("slug", slug), zap.Error(err))
			continue
		}
		postings = append(postings, normalize(slug, job, raw))
	}

	c.logger.Debug("fetched board", zap.String("slug", slug), zap.Int("postings", len(postings)))
	return postings, nil
}

// TestEndpoint reports whether a board slug is viable. Only a definite 404
// rules a slug out; transient errors count as reachable.
func (c *Client) TestEndpoint(ctx context.Context, slug string) bool {
	_, err := c.Fetch(ctx, slug)
	return !errors.Is(err, ErrNotFound)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
