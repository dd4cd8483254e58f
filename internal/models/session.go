package models

import (
	"time"

	"github.com/google/uuid"
)

// GameType defines how a session's play time is bounded.
type GameType string

const (
	GameTypeLimited   GameType = "limited"
	GameTypeUnlimited GameType = "unlimited"
)

// Session represents a single instance of a game being played at the venue,
// from ticket scan to completion. The backend API owns the record; playclock
// only derives timer state from it.
type Session struct {
	ID           uuid.UUID `json:"id"`
	GameName     string    `json:"game_name"`
	AssetName    string    `json:"asset_name"`
	TicketCode   string    `json:"ticket_code"`
	OperatorName string    `json:"operator_name"`
	GameType     GameType  `json:"game_type"`

	// TierDuration is the free-text duration attached to the chosen pricing
	// tier (e.g. "60 minutes"). GameDuration is the game-level fallback.
	// Only meaningful for limited sessions.
	TierDuration string  `json:"tier_duration,omitempty"`
	GameDuration string  `json:"game_duration,omitempty"`
	UnitPrice    float64 `json:"unit_price"`

	ScannedAt   *time.Time `json:"scanned_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StartedAt resolves the session's start time: the ticket scan time when
// present, otherwise the record creation time.
func (s Session) StartedAt() time.Time {
	if s.ScannedAt != nil {
		return *s.ScannedAt
	}
	return s.CreatedAt
}

// IsCompleted reports whether the backend has marked the session finished.
func (s Session) IsCompleted() bool {
	return s.CompletedAt != nil
}
