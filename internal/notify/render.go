package notify

import (
	"fmt"
	"strings"
	"time"

	"jobwatch/watcher-service/internal/model"
)

// maxPostingsPerMessage bounds the message body against downstream payload
// limits; the overflow is folded into a single summary entry.
const maxPostingsPerMessage = 10

// Payload is the webhook message body. The sink only needs a readable
// rendering; the exact shape is not load-bearing.
type Payload struct {
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Entries   []Entry `json:"entries"`
	Criteria  string  `json:"criteria"`
	Timestamp string  `json:"timestamp"`
}

// Entry is one posting line in the message, or the overflow summary.
type Entry struct {
	Title      string `json:"title"`
	Source     string `json:"source,omitempty"`
	Department string `json:"department,omitempty"`
	Location   string `json:"location,omitempty"`
	JobType    string `json:"jobType,omitempty"`
	ApplyURL   string `json:"applyUrl,omitempty"`
	Summary    bool   `json:"summary,omitempty"`
}

func buildPayload(sub model.Subscription, postings []model.Posting, isInitial bool) Payload {
	var title, body string
	if isInitial {
		title = fmt.Sprintf("Job alert created: %s", sub.Name)
		body = fmt.Sprintf("Found %d existing postings matching your criteria.", len(postings))
	} else {
		title = fmt.Sprintf("New job alert: %s", sub.Name)
		if len(postings) == 1 {
			body = "A new posting matches your criteria."
		} else {
			body = fmt.Sprintf("%d new postings match your criteria.", len(postings))
		}
	}

	shown := postings
	if len(shown) > maxPostingsPerMessage {
		shown = shown[:maxPostingsPerMessage]
	}

	entries := make([]Entry, 0, len(shown)+1)
	for _, p := range shown {
		entries = append(entries, Entry{
			Title:      p.Title,
			Source:     p.SourceSlug,
			Department: p.Department,
			Location:   p.Location,
			JobType:    p.JobType,
			ApplyURL:   p.ApplyURL,
		})
	}
	if extra := len(postings) - len(shown); extra > 0 {
		entries = append(entries, Entry{
			Title:   fmt.Sprintf("… and %d more", extra),
			Summary: true,
		})
	}

	return Payload{
		Title:     title,
		Body:      body,
		Entries:   entries,
		Criteria:  criteriaSummary(sub),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// criteriaSummary renders the subscription's filter set for the message
// footer, truncating long lists.
func criteriaSummary(sub model.Subscription) string {
	var lines []string

	if len(sub.SourceSlugs) > 0 {
		lines = append(lines, "Sources: "+truncated(sub.SourceSlugs, 3))
	}
	if len(sub.IncludeKeywords) > 0 {
		lines = append(lines, "Keywords: "+truncated(sub.IncludeKeywords, 5))
	}
	if len(sub.ExcludeKeywords) > 0 {
		lines = append(lines, "Excluding: "+truncated(sub.ExcludeKeywords, 3))
	}
	if len(sub.Departments) > 0 {
		lines = append(lines, "Departments: "+truncated(sub.Departments, 3))
	}
	if len(sub.Locations) > 0 {
		lines = append(lines, "Locations: "+truncated(sub.Locations, 3))
	}
	if len(sub.JobTypes) > 0 {
		lines = append(lines, "Types: "+strings.Join(sub.JobTypes, ", "))
	}
	if sub.IncludeRemote {
		lines = append(lines, "Remote: yes")
	} else {
		lines = append(lines, "Remote: no")
	}

	return strings.Join(lines, "\n")
}

func truncated(values []string, max int) string {
	if len(values) <= max {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:max], ", "), len(values)-max)
}

func testPayload() Payload {
	return Payload{
		Title:     "Webhook test",
		Body:      "Your job alert webhook is configured correctly.",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
