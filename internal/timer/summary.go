package timer

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/venuehq/playclock/internal/models"
)

// Summary is the static duration comparison for a completed session. It is
// computed once from (startedAt, completedAt); nothing here ticks.
type Summary struct {
	SessionID uuid.UUID       `json:"session_id"`
	GameName  string          `json:"game_name"`
	AssetName string          `json:"asset_name"`
	GameType  models.GameType `json:"game_type"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	ActualDurationMinutes int `json:"actual_duration_minutes"`

	// Limited sessions only. Unlimited sessions have no expected duration,
	// so no early-completion comparison is made for them.
	ExpectedDurationMinutes int  `json:"expected_duration_minutes,omitempty"`
	WasCompletedEarly       bool `json:"was_completed_early,omitempty"`
	MinutesSaved            int  `json:"minutes_saved,omitempty"`
}

// Summarize builds the completed-session summary. The session must carry a
// completion timestamp.
func Summarize(s models.Session) (Summary, error) {
	if s.CompletedAt == nil {
		return Summary{}, fmt.Errorf("session %s has no completion time", s.ID)
	}

	started := s.StartedAt()
	completed := *s.CompletedAt
	actual := int(math.Round(completed.Sub(started).Minutes()))

	summary := Summary{
		SessionID:             s.ID,
		GameName:              s.GameName,
		AssetName:             s.AssetName,
		GameType:              s.GameType,
		StartedAt:             started,
		CompletedAt:           completed,
		ActualDurationMinutes: actual,
	}

	if s.GameType == models.GameTypeLimited {
		expected := ResolveMinutes(s)
		summary.ExpectedDurationMinutes = expected
		if actual < expected {
			summary.WasCompletedEarly = true
			summary.MinutesSaved = expected - actual
		}
	}
	return summary, nil
}
