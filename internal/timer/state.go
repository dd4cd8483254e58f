package timer

import (
	"time"

	"github.com/google/uuid"

	"github.com/venuehq/playclock/internal/models"
)

// Phase classifies a session's derived timer state for presentation.
type Phase string

const (
	PhaseUnlimited Phase = "UNLIMITED"
	PhaseExpired   Phase = "EXPIRED"
	PhaseExpiring  Phase = "EXPIRING"
	PhaseActive    Phase = "ACTIVE"
)

// ExpiringSoonThreshold is the remaining time at or below which a limited
// session is flagged as expiring.
const ExpiringSoonThreshold = 5 * time.Minute

// State is a session's derived timer state at a single instant. It is a pure
// function of (session, now) and is recomputed from scratch on every tick,
// never stored.
type State struct {
	SessionID uuid.UUID       `json:"session_id"`
	GameType  models.GameType `json:"game_type"`
	Phase     Phase           `json:"phase"`

	StartedAt      time.Time `json:"started_at"`
	ElapsedMinutes int       `json:"elapsed_minutes"`

	// Limited sessions only; zero values for unlimited.
	DurationMinutes  int        `json:"duration_minutes,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds"`
	ProgressPercent  float64    `json:"progress_percent"`
	IsExpired        bool       `json:"is_expired"`
	IsExpiringSoon   bool       `json:"is_expiring_soon"`

	ComputedAt time.Time `json:"computed_at"`
}

// Derive computes the timer state for a session at the given instant.
// Unlimited sessions only accrue elapsed time; they never expire and carry no
// progress data.
func Derive(s models.Session, now time.Time) State {
	started := s.StartedAt()
	state := State{
		SessionID:      s.ID,
		GameType:       s.GameType,
		StartedAt:      started,
		ElapsedMinutes: int(now.Sub(started) / time.Minute),
		ComputedAt:     now,
	}

	if s.GameType == models.GameTypeUnlimited {
		state.Phase = PhaseUnlimited
		return state
	}

	minutes := ResolveMinutes(s)
	total := time.Duration(minutes) * time.Minute
	end := started.Add(total)

	remaining := end.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	state.DurationMinutes = minutes
	state.EndTime = &end
	state.RemainingSeconds = int(remaining / time.Second)
	state.IsExpired = state.RemainingSeconds <= 0
	state.IsExpiringSoon = !state.IsExpired && state.RemainingSeconds <= int(ExpiringSoonThreshold/time.Second)
	state.ProgressPercent = progressPercent(total, remaining)

	switch {
	case state.IsExpired:
		state.Phase = PhaseExpired
	case state.IsExpiringSoon:
		state.Phase = PhaseExpiring
	default:
		state.Phase = PhaseActive
	}
	return state
}

func progressPercent(total, remaining time.Duration) float64 {
	if total <= 0 {
		return 100
	}
	pct := float64(total-remaining) / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
