package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "maria gonzalez", Fold("María González"))
	assert.Equal(t, "jose", Fold("JOSÉ"))
	assert.Equal(t, "ref123456", Fold("REF123456"))
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields []string
		want   bool
	}{
		{"empty query matches all", "", []string{"anything"}, true},
		{"case insensitive", "MARIA", []string{"María González", "maria.gonzalez@email.com"}, true},
		{"accent insensitive name", "gonzalez", []string{"María González"}, true},
		{"email substring", "gonzalez", []string{"", "maria.gonzalez@email.com"}, true},
		{"sinpe reference", "ref123", []string{"Carlos Rodríguez", "carlos@email.com", "REF123456"}, true},
		{"no match", "lopez", []string{"María González", "maria.gonzalez@email.com"}, false},
		{"empty fields never match", "x", []string{"", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.query, tt.fields...))
		})
	}
}
