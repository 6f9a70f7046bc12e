// Package match evaluates postings against subscription criteria.
//
// The engine is a short-circuit conjunction of seven predicates, each
// vacuously true when its criterion set is empty. It is a pure function of
// its inputs and total over any combination of absent optional fields.
package match

import (
	"strings"

	"jobwatch/watcher-service/internal/location"
	"jobwatch/watcher-service/internal/model"
)

// Reason identifies which step rejected a candidate. Matched means no step
// rejected it.
type Reason string

const (
	Matched          Reason = "matched"
	RejectedSource   Reason = "source"
	RejectedKeywords Reason = "include_keywords"
	RejectedExcluded Reason = "exclude_keywords"
	RejectedDept     Reason = "department"
	RejectedLocation Reason = "location"
	RejectedJobType  Reason = "job_type"
	RejectedRemote   Reason = "remote_excluded"
)

// Engine evaluates postings against subscriptions using an injected
// location resolver.
type Engine struct {
	locations *location.Resolver
}

// NewEngine returns an Engine backed by the given resolver.
func NewEngine(locations *location.Resolver) *Engine {
	return &Engine{locations: locations}
}

// Matches reports whether the posting satisfies every criterion of the
// subscription.
func (e *Engine) Matches(p model.Posting, sub model.Subscription) bool {
	ok, _ := e.Evaluate(p, sub)
	return ok
}

// Evaluate runs the seven predicates in order and reports the first one
// that rejected the posting. The ordering is fixed: it gives early exit on
// the cheap checks and makes rejection diagnostics predictable.
func (e *Engine) Evaluate(p model.Posting, sub model.Subscription) (bool, Reason) {
	// 1. Source filter.
	if len(sub.SourceSlugs) > 0 && !containsString(sub.SourceSlugs, p.SourceSlug) {
		return false, RejectedSource
	}

	title := strings.ToLower(p.Title)

	// 2. Include-keywords: at least one must appear in the title.
	if len(sub.IncludeKeywords) > 0 && !anyKeyword(title, sub.IncludeKeywords) {
		return false, RejectedKeywords
	}

	// 3. Exclude-keywords: any hit rejects.
	if anyKeyword(title, sub.ExcludeKeywords) {
		return false, RejectedExcluded
	}

	// 4. Department: exact membership, case-sensitive as stored. Unlike
	// location this is deliberately not alias-matched.
	if len(sub.Departments) > 0 && p.Department != "" && !containsString(sub.Departments, p.Department) {
		return false, RejectedDept
	}

	// 5. Location: the resolver match against any subscription location, or
	// remote when the subscription includes remote. A posting without a
	// location cannot satisfy a non-empty location filter.
	if len(sub.Locations) > 0 {
		if p.Location == "" {
			return false, RejectedLocation
		}
		if !e.locationMatches(p.Location, sub) {
			return false, RejectedLocation
		}
	}

	// 6. Job type: exact membership, symmetric to department.
	if len(sub.JobTypes) > 0 && p.JobType != "" && !containsString(sub.JobTypes, p.JobType) {
		return false, RejectedJobType
	}

	// 7. Remote override: evaluated last so it rejects even postings that
	// passed the location filter via another path.
	if !sub.IncludeRemote && p.Location != "" && e.locations.IsRemote(p.Location) {
		return false, RejectedRemote
	}

	return true, Matched
}

func (e *Engine) locationMatches(postingLocation string, sub model.Subscription) bool {
	for _, want := range sub.Locations {
		if e.locations.Matches(postingLocation, want) {
			return true
		}
	}
	return sub.IncludeRemote && e.locations.IsRemote(postingLocation)
}

func anyKeyword(lowerTitle string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowerTitle, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
