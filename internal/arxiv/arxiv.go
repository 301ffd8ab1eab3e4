// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv recognizes arXiv identifiers and talks to the arXiv APIs.
package arxiv

import (
	"regexp"
	"strings"
)

// Base URLs for arxiv.org endpoints. Declared as vars so tests can
// substitute httptest servers.
var (
	EPrintBase = "https://arxiv.org/e-print/"
	apiBase    = "https://export.arxiv.org/api/query"
)

// newIDPattern matches modern arXiv IDs: "2301.07041", "arXiv:2301.07041",
// "2301.07041v2".
var newIDPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// oldIDPattern matches pre-2007 IDs with an archive prefix:
// "math.GT/0309136", "hep-th/9901001v3".
var oldIDPattern = regexp.MustCompile(`^(?:arXiv:)?([a-z-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`)

// Classify reports whether identifier is a recognizable arXiv ID and
// returns the normalized form with the optional "arXiv:" prefix stripped.
func Classify(identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)

	if m := newIDPattern.FindStringSubmatch(identifier); m != nil {
		return m[1], true
	}
	if m := oldIDPattern.FindStringSubmatch(identifier); m != nil {
		return m[1], true
	}
	return identifier, false
}

// EPrintURL returns the source archive download URL for a normalized ID.
func EPrintURL(id string) string {
	return EPrintBase + id
}

// Slug returns a filesystem-safe filename stem for the identifier.
// Old-style IDs contain a slash ("math.GT/0309136" becomes "math.GT-0309136").
func Slug(id string) string {
	return strings.ReplaceAll(id, "/", "-")
}
