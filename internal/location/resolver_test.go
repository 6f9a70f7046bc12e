package location_test

import (
	"testing"

	"jobwatch/watcher-service/internal/location"
)

func newResolver() *location.Resolver {
	return location.New(location.DefaultAliases())
}

// ── Normalize ──────────────────────────────────────────────────────────────

func TestNormalize_EmptyInput(t *testing.T) {
	if got := newResolver().Normalize(""); len(got) != 0 {
		t.Errorf("Normalize(\"\") = %v, want no tokens", got)
	}
}

func TestNormalize_SingleLocation(t *testing.T) {
	got := newResolver().Normalize("Seattle")
	if len(got) != 1 || got[0] != "seattle" {
		t.Errorf("Normalize(\"Seattle\") = %v, want [seattle]", got)
	}
}

func TestNormalize_RegionPrefixStripped(t *testing.T) {
	cases := map[string]string{
		"US-NYC":    "nyc",
		"DE-Berlin": "berlin",
		"CA-Toronto": "toronto",
	}
	for in, want := range cases {
		got := newResolver().Normalize(in)
		if len(got) != 1 || got[0] != want {
			t.Errorf("Normalize(%q) = %v, want [%s]", in, got, want)
		}
	}
}

func TestNormalize_TrailingHQStripped(t *testing.T) {
	got := newResolver().Normalize("Dublin HQ")
	if len(got) != 1 || got[0] != "dublin" {
		t.Errorf("Normalize(\"Dublin HQ\") = %v, want [dublin]", got)
	}
}

func TestNormalize_MultiLocationSplit(t *testing.T) {
	got := newResolver().Normalize("Seattle, San Francisco, Remote")
	want := []string{"seattle", "san francisco", "remote"}
	if len(got) != len(want) {
		t.Fatalf("Normalize split = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalize_NoiseWordsDropped(t *testing.T) {
	got := newResolver().Normalize("New York / the")
	if len(got) != 1 || got[0] != "new york" {
		t.Errorf("Normalize noise filtering = %v, want [new york]", got)
	}
}

// ── Matches ────────────────────────────────────────────────────────────────

func TestMatches_EmptyNeverMatches(t *testing.T) {
	r := newResolver()
	if r.Matches("", "Seattle") || r.Matches("Seattle", "") || r.Matches("", "") {
		t.Error("empty input should never match")
	}
}

func TestMatches_Direct(t *testing.T) {
	if !newResolver().Matches("Seattle", "seattle") {
		t.Error("identical locations should match")
	}
}

func TestMatches_Substring(t *testing.T) {
	if !newResolver().Matches("New York City", "New York") {
		t.Error("substring locations should match")
	}
}

func TestMatches_AliasGroup(t *testing.T) {
	cases := [][2]string{
		{"NYC", "New York"},
		{"SF", "San Francisco"},
		{"DE-Berlin", "Berlin"},  // prefix-stripped alias
		{"Germany", "Berlin"},
	}
	r := newResolver()
	for _, c := range cases {
		if !r.Matches(c[0], c[1]) {
			t.Errorf("Matches(%q, %q) = false, want true", c[0], c[1])
		}
	}
}

func TestMatches_MultiLocationSubToken(t *testing.T) {
	// Any sub-location of a multi-location string is enough.
	if !newResolver().Matches("Seattle, San Francisco, US-Remote", "Remote") {
		t.Error("multi-location string containing a remote token should match Remote")
	}
}

func TestMatches_Unrelated(t *testing.T) {
	if newResolver().Matches("Tokyo", "Bogota") {
		t.Error("unrelated locations should not match")
	}
}

func TestMatches_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Seattle", "Washington"},
		{"NYC", "New York"},
		{"Seattle, San Francisco, US-Remote", "Remote"},
		{"Tokyo", "Bogota"},
		{"", "Seattle"},
		{"DE-Berlin", "Berlin"},
	}
	r := newResolver()
	for _, p := range pairs {
		if r.Matches(p[0], p[1]) != r.Matches(p[1], p[0]) {
			t.Errorf("Matches(%q, %q) is not symmetric", p[0], p[1])
		}
	}
}

func TestMatches_InjectedTable(t *testing.T) {
	r := location.New(location.AliasTable{
		"gotham": {"gotham", "gotham city"},
	})
	if !r.Matches("Gotham City", "gotham") {
		t.Error("custom alias table should drive matching")
	}
	if r.Matches("NYC", "New York") {
		t.Error("default aliases must not leak into a custom table")
	}
}

// ── IsRemote ───────────────────────────────────────────────────────────────

func TestIsRemote(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Remote", true},
		{"US-Remote", true},
		{"Work from Home", true},
		{"Distributed team, anywhere", true},
		{"Seattle, San Francisco, US-Remote", true},
		{"Seattle", false},
		{"", false},
	}
	r := newResolver()
	for _, c := range cases {
		if got := r.IsRemote(c.in); got != c.want {
			t.Errorf("IsRemote(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
