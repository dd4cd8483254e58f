package timer

import (
	"regexp"
	"strconv"

	"github.com/venuehq/playclock/internal/models"
)

// DefaultDurationMinutes is used whenever a duration spec is missing or
// carries no usable number. Duration strings are free text entered upstream,
// so parsing must always produce a value.
const DefaultDurationMinutes = 60

var digitRun = regexp.MustCompile(`\d+`)

// ParseMinutes extracts the first run of digits from a free-text duration
// spec ("60 minutes", "5 min") and returns it as whole minutes. Empty input,
// input without digits, or a non-positive value all yield
// DefaultDurationMinutes.
func ParseMinutes(spec string) int {
	digits := digitRun.FindString(spec)
	if digits == "" {
		return DefaultDurationMinutes
	}
	minutes, err := strconv.Atoi(digits)
	if err != nil || minutes <= 0 {
		return DefaultDurationMinutes
	}
	return minutes
}

// ResolveMinutes applies the session's duration fallback chain: the pricing
// tier's spec when present, otherwise the game-level spec, otherwise the
// default.
func ResolveMinutes(s models.Session) int {
	spec := s.TierDuration
	if spec == "" {
		spec = s.GameDuration
	}
	return ParseMinutes(spec)
}
