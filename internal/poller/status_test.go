package poller_test

import (
	"testing"

	"jobwatch/watcher-service/internal/model"
	"jobwatch/watcher-service/internal/poller"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"pending", "running", "success", "error"}
	for _, s := range valid {
		got, err := poller.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	if _, err := poller.ParseStatus("RUNNING"); err == nil {
		t.Error("ParseStatus(\"RUNNING\") expected error, got nil")
	}
	if _, err := poller.ParseStatus(""); err == nil {
		t.Error("ParseStatus(\"\") expected error, got nil")
	}
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_ValidForward(t *testing.T) {
	cases := []struct {
		from model.PollStatus
		to   model.PollStatus
	}{
		{model.PollStatusPending, model.PollStatusRunning},
		{model.PollStatusRunning, model.PollStatusSuccess},
		{model.PollStatusRunning, model.PollStatusError},
	}
	for _, c := range cases {
		if !poller.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []model.PollStatus{model.PollStatusSuccess, model.PollStatusError}
	targets := []model.PollStatus{
		model.PollStatusPending, model.PollStatusRunning,
		model.PollStatusSuccess, model.PollStatusError,
	}
	for _, from := range terminals {
		for _, to := range targets {
			if poller.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_SkipLevel(t *testing.T) {
	if poller.IsTransitionAllowed(model.PollStatusPending, model.PollStatusSuccess) {
		t.Error("IsTransitionAllowed(pending → success) should be false (skip running)")
	}
	if poller.IsTransitionAllowed(model.PollStatusPending, model.PollStatusError) {
		t.Error("IsTransitionAllowed(pending → error) should be false (skip running)")
	}
}

func TestIsTerminal(t *testing.T) {
	if poller.IsTerminal(model.PollStatusPending) || poller.IsTerminal(model.PollStatusRunning) {
		t.Error("pending and running are not terminal")
	}
	if !poller.IsTerminal(model.PollStatusSuccess) || !poller.IsTerminal(model.PollStatusError) {
		t.Error("success and error are terminal")
	}
}
