// Package location normalizes free-text location strings and matches them
// against each other using a canonical alias table.
//
// A single raw string may name several candidate locations
// ("Seattle, San Francisco, Remote"); matching is evaluated per token pair,
// so two strings match as soon as any sub-location does.
package location

import (
	"regexp"
	"strings"
)

// AliasTable maps a canonical place name to its known aliases, abbreviations
// and regional codes. It is an immutable configuration value injected into
// the Resolver so tests can substitute their own table.
type AliasTable map[string][]string

// Resolver performs normalization, matching and remote detection. The zero
// value is unusable; construct with New.
type Resolver struct {
	aliases AliasTable
}

// New returns a Resolver backed by the given alias table.
func New(aliases AliasTable) *Resolver {
	return &Resolver{aliases: aliases}
}

var (
	regionPrefix = regexp.MustCompile(`^[a-z]{2}-`)
	trailingHQ   = regexp.MustCompile(`\s+(hq|headquarters)$`)
	punctuation  = regexp.MustCompile(`[^\w\s,;/-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// separators are tried in order; the first one present in the cleaned
// string wins, mirroring how multi-location strings are written upstream.
var separators = []string{",", ";", " and ", " or ", "/"}

// noiseWords are dropped from normalized output entirely.
var noiseWords = map[string]bool{
	"and": true, "or": true, "the": true,
	"area": true, "metro": true, "region": true, "greater": true,
}

// remoteIndicators mark a location as remote by substring containment.
var remoteIndicators = []string{
	"remote", "work from home", "wfh", "telecommute", "distributed",
	"anywhere", "virtual", "home-based", "home based",
}

// Normalize lower-cases the input, strips a leading two-letter region code
// joined by a hyphen and a trailing "HQ"/"headquarters", then splits on
// the first separator found, returning the independent location tokens.
// Empty input yields no tokens.
func (r *Resolver) Normalize(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := strings.ToLower(text)
	cleaned = regionPrefix.ReplaceAllString(cleaned, "")
	cleaned = trailingHQ.ReplaceAllString(cleaned, "")
	cleaned = punctuation.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))

	parts := []string{cleaned}
	for _, sep := range separators {
		if strings.Contains(cleaned, sep) {
			parts = strings.Split(cleaned, sep)
			break
		}
	}

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || noiseWords[p] {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// Matches reports whether two location strings refer to at least one common
// place. Two strings match when any token of one equals or contains any
// token of the other, or when both sides hit the same canonical alias
// group. Matching is symmetric; empty input never matches.
func (r *Resolver) Matches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	aTokens := r.Normalize(a)
	bTokens := r.Normalize(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return false
	}

	for _, at := range aTokens {
		for _, bt := range bTokens {
			if at == bt || strings.Contains(at, bt) || strings.Contains(bt, at) {
				return true
			}
		}
	}

	for _, aliases := range r.aliases {
		if hitsGroup(aTokens, aliases) && hitsGroup(bTokens, aliases) {
			return true
		}
	}
	return false
}

// hitsGroup reports whether any token overlaps any alias of one canonical
// group, in either substring direction ("nyc" vs "nyc metro").
func hitsGroup(tokens []string, aliases []string) bool {
	for _, tok := range tokens {
		for _, alias := range aliases {
			if strings.Contains(tok, alias) || strings.Contains(alias, tok) {
				return true
			}
		}
	}
	return false
}

// IsRemote reports whether the location string indicates remote work.
func (r *Resolver) IsRemote(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, indicator := range remoteIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
