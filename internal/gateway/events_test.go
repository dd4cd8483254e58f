package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/venuehq/playclock/internal/models"
	"github.com/venuehq/playclock/internal/timer"
)

func TestTickEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := models.Session{
		ID:           uuid.New(),
		GameName:     "Laser Maze",
		AssetName:    "Maze Unit 2",
		GameType:     models.GameTypeLimited,
		TierDuration: "10 minutes",
		CreatedAt:    now.Add(-7 * time.Minute),
	}
	st := timer.Derive(s, now)

	event, err := TickEvent(s, st)
	if err != nil {
		t.Fatalf("TickEvent() error: %v", err)
	}

	if event.Type != EventTypeTimerTick {
		t.Errorf("Type = %s, want %s", event.Type, EventTypeTimerTick)
	}
	if event.SessionID != s.ID.String() {
		t.Errorf("SessionID = %s, want %s", event.SessionID, s.ID)
	}

	var payload TimerTickPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Phase != timer.PhaseExpiring {
		t.Errorf("Phase = %s, want %s", payload.Phase, timer.PhaseExpiring)
	}
	if payload.RemainingSeconds != 3*60 {
		t.Errorf("RemainingSeconds = %d, want %d", payload.RemainingSeconds, 3*60)
	}
}

func TestExpiredEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := models.Session{
		ID:           uuid.New(),
		GameName:     "Laser Maze",
		TicketCode:   "TCK-1042",
		GameType:     models.GameTypeLimited,
		TierDuration: "5 minutes",
		CreatedAt:    now.Add(-6 * time.Minute),
	}
	st := timer.Derive(s, now)
	if !st.IsExpired {
		t.Fatal("fixture should be expired")
	}

	event, err := ExpiredEvent(s, st)
	if err != nil {
		t.Fatalf("ExpiredEvent() error: %v", err)
	}

	var payload SessionExpiredPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.DurationMinutes != 5 {
		t.Errorf("DurationMinutes = %d, want 5", payload.DurationMinutes)
	}
	if payload.TicketCode != "TCK-1042" {
		t.Errorf("TicketCode = %q, want TCK-1042", payload.TicketCode)
	}
}

func TestCompletedEvent(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	completedAt := started.Add(37 * time.Minute)
	s := models.Session{
		ID:           uuid.New(),
		GameName:     "Laser Maze",
		GameType:     models.GameTypeLimited,
		TierDuration: "45 minutes",
		CreatedAt:    started,
		CompletedAt:  &completedAt,
	}
	summary, err := timer.Summarize(s)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	event, err := CompletedEvent(summary)
	if err != nil {
		t.Fatalf("CompletedEvent() error: %v", err)
	}

	var payload SessionCompletedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !payload.WasCompletedEarly || payload.MinutesSaved != 8 {
		t.Errorf("early completion payload wrong: %+v", payload)
	}
}
