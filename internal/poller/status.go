// Package poller orchestrates polling cycles: due-source selection, diffing
// fetched postings against stored state, matching, dispatch and audit.
//
// Per-source attempt state machine:
//
//	PENDING ──► RUNNING ──► SUCCESS
//	                 │
//	                 └─────► ERROR
//
// SUCCESS and ERROR are terminal states.
package poller

import (
	"fmt"

	"jobwatch/watcher-service/internal/model"
)

// validTransitions lists every allowed (from → to) pair over the
// model.PollStatus vocabulary.
var validTransitions = map[model.PollStatus][]model.PollStatus{
	model.PollStatusPending: {model.PollStatusRunning},
	model.PollStatusRunning: {model.PollStatusSuccess, model.PollStatusError},
	// SUCCESS and ERROR are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a PollStatus, returning an error
// for unknown values.
func ParseStatus(s string) (model.PollStatus, error) {
	st := model.PollStatus(s)
	switch st {
	case model.PollStatusPending, model.PollStatusRunning,
		model.PollStatusSuccess, model.PollStatusError:
		return st, nil
	}
	return "", fmt.Errorf("unknown poll status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by
// the state machine.
func IsTransitionAllowed(from, to model.PollStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions.
func IsTerminal(s model.PollStatus) bool {
	_, ok := validTransitions[s]
	return !ok
}

// attempt tracks one source's progress through a sweep and enforces the
// transition rules above.
type attempt struct {
	status model.PollStatus
}

func newAttempt() *attempt {
	return &attempt{status: model.PollStatusPending}
}

func (a *attempt) advance(to model.PollStatus) error {
	if !IsTransitionAllowed(a.status, to) {
		return fmt.Errorf("invalid poll transition %s → %s", a.status, to)
	}
	a.status = to
	return nil
}
