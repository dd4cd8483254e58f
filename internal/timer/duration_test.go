package timer

import (
	"testing"

	"github.com/venuehq/playclock/internal/models"
)

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		expected int
	}{
		{name: "plain minutes", spec: "60 minutes", expected: 60},
		{name: "short duration", spec: "5 minutes", expected: 5},
		{name: "digits only", spec: "90", expected: 90},
		{name: "digits embedded", spec: "approx 45 min per round", expected: 45},
		{name: "first run of digits wins", spec: "30 min + 15 bonus", expected: 30},
		{name: "empty string defaults", spec: "", expected: 60},
		{name: "no digits defaults", spec: "no digits here", expected: 60},
		{name: "zero defaults", spec: "0 minutes", expected: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMinutes(tt.spec); got != tt.expected {
				t.Errorf("ParseMinutes(%q) = %d, want %d", tt.spec, got, tt.expected)
			}
		})
	}
}

func TestResolveMinutes_FallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		tier     string
		game     string
		expected int
	}{
		{name: "tier spec wins", tier: "30 minutes", game: "60 minutes", expected: 30},
		{name: "falls back to game spec", tier: "", game: "45 minutes", expected: 45},
		{name: "both absent defaults", tier: "", game: "", expected: 60},
		{name: "tier present but unparsable defaults", tier: "unlimited fun", game: "45 minutes", expected: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.Session{TierDuration: tt.tier, GameDuration: tt.game}
			if got := ResolveMinutes(s); got != tt.expected {
				t.Errorf("ResolveMinutes() = %d, want %d", got, tt.expected)
			}
		})
	}
}
