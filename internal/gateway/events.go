package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/venuehq/playclock/internal/models"
	"github.com/venuehq/playclock/internal/timer"
)

// SessionEvent is the envelope pushed to dashboard clients.
type SessionEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType identifies a dashboard event.
type EventType string

const (
	EventTypeTimerTick        EventType = "TimerTick"
	EventTypeSessionExpiring  EventType = "SessionExpiring"
	EventTypeSessionExpired   EventType = "SessionExpired"
	EventTypeSessionCompleted EventType = "SessionCompleted"
)

// TimerTickPayload carries a session's derived timer state for one tick.
type TimerTickPayload struct {
	GameName         string      `json:"game_name"`
	AssetName        string      `json:"asset_name"`
	Phase            timer.Phase `json:"phase"`
	RemainingSeconds int         `json:"remaining_seconds"`
	ElapsedMinutes   int         `json:"elapsed_minutes"`
	ProgressPercent  float64     `json:"progress_percent"`
	TickedAt         time.Time   `json:"ticked_at"`
}

// SessionExpiringPayload announces a limited session entering its final
// five minutes.
type SessionExpiringPayload struct {
	GameName         string    `json:"game_name"`
	AssetName        string    `json:"asset_name"`
	RemainingSeconds int       `json:"remaining_seconds"`
	At               time.Time `json:"at"`
}

// SessionExpiredPayload announces a limited session passing its end time.
// Sent once per session; hosts use it for the audible cue.
type SessionExpiredPayload struct {
	GameName        string    `json:"game_name"`
	AssetName       string    `json:"asset_name"`
	TicketCode      string    `json:"ticket_code"`
	DurationMinutes int       `json:"duration_minutes"`
	ExpiredAt       time.Time `json:"expired_at"`
}

// SessionCompletedPayload announces a session arriving on the completed feed.
type SessionCompletedPayload struct {
	GameName              string    `json:"game_name"`
	ActualDurationMinutes int       `json:"actual_duration_minutes"`
	WasCompletedEarly     bool      `json:"was_completed_early"`
	MinutesSaved          int       `json:"minutes_saved"`
	CompletedAt           time.Time `json:"completed_at"`
}

// NewSessionEvent wraps a payload in the event envelope.
func NewSessionEvent(eventType EventType, sessionID uuid.UUID, at time.Time, payload interface{}) (*SessionEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &SessionEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      eventType,
		Timestamp: at,
		Data:      data,
	}, nil
}

// TickEvent builds a TimerTick event from a derived state.
func TickEvent(s models.Session, st timer.State) (*SessionEvent, error) {
	return NewSessionEvent(EventTypeTimerTick, s.ID, st.ComputedAt, TimerTickPayload{
		GameName:         s.GameName,
		AssetName:        s.AssetName,
		Phase:            st.Phase,
		RemainingSeconds: st.RemainingSeconds,
		ElapsedMinutes:   st.ElapsedMinutes,
		ProgressPercent:  st.ProgressPercent,
		TickedAt:         st.ComputedAt,
	})
}

// ExpiringEvent builds a SessionExpiring event for the warning transition.
func ExpiringEvent(s models.Session, st timer.State) (*SessionEvent, error) {
	return NewSessionEvent(EventTypeSessionExpiring, s.ID, st.ComputedAt, SessionExpiringPayload{
		GameName:         s.GameName,
		AssetName:        s.AssetName,
		RemainingSeconds: st.RemainingSeconds,
		At:               st.ComputedAt,
	})
}

// ExpiredEvent builds the one-shot SessionExpired event.
func ExpiredEvent(s models.Session, st timer.State) (*SessionEvent, error) {
	return NewSessionEvent(EventTypeSessionExpired, s.ID, st.ComputedAt, SessionExpiredPayload{
		GameName:        s.GameName,
		AssetName:       s.AssetName,
		TicketCode:      s.TicketCode,
		DurationMinutes: st.DurationMinutes,
		ExpiredAt:       st.ComputedAt,
	})
}

// CompletedEvent builds a SessionCompleted event from a summary.
func CompletedEvent(summary timer.Summary) (*SessionEvent, error) {
	return NewSessionEvent(EventTypeSessionCompleted, summary.SessionID, summary.CompletedAt, SessionCompletedPayload{
		GameName:              summary.GameName,
		ActualDurationMinutes: summary.ActualDurationMinutes,
		WasCompletedEarly:     summary.WasCompletedEarly,
		MinutesSaved:          summary.MinutesSaved,
		CompletedAt:           summary.CompletedAt,
	})
}
