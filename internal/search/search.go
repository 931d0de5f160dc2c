// Package search implements the free-text matching used by the membership
// and payment list views: case- and accent-insensitive substring match over
// a record's searchable fields.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks, so "González" folds to
// "gonzalez" and matches queries typed without accents.
func Fold(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// Matches reports whether query is a folded substring of any field. An empty
// query matches everything; nil-ish empty fields never match.
func Matches(query string, fields ...string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}
