package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/venuehq/playclock/internal/feed"
	"github.com/venuehq/playclock/internal/models"
	"github.com/venuehq/playclock/internal/timer"
)

type apiHarness struct {
	api       *API
	engine    *timer.Engine
	clock     *clockwork.FakeClock
	completed *[]uuid.UUID
	failWith  error
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	completed := &[]uuid.UUID{}
	h := &apiHarness{clock: clock, completed: completed}

	h.engine = timer.NewEngine(clock, timer.Callbacks{}, func(_ context.Context, id uuid.UUID) error {
		if h.failWith != nil {
			return h.failWith
		}
		*completed = append(*completed, id)
		return nil
	})
	t.Cleanup(h.engine.Stop)

	poller := feed.NewPoller(feed.NewClient("http://backend.invalid", ""), h.engine, clock, 10*time.Second, nil)
	h.api = NewAPI(h.engine, poller, NewConnectionManager(DefaultConnectionConfig()))
	return h
}

func (h *apiHarness) request(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	h.api.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAPI_Health(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.request(t, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestAPI_ActiveSessions(t *testing.T) {
	h := newAPIHarness(t)

	session := models.Session{
		ID:           uuid.New(),
		GameName:     "Laser Maze",
		GameType:     models.GameTypeLimited,
		TierDuration: "30 minutes",
		CreatedAt:    h.clock.Now().Add(-10 * time.Minute),
	}
	h.engine.SyncActive([]models.Session{session})

	rec := h.request(t, http.MethodGet, "/api/sessions/active")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var states []timer.State
	if err := json.Unmarshal(rec.Body.Bytes(), &states); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].SessionID != session.ID {
		t.Errorf("SessionID = %s, want %s", states[0].SessionID, session.ID)
	}
	if states[0].RemainingSeconds != 20*60 {
		t.Errorf("RemainingSeconds = %d, want %d", states[0].RemainingSeconds, 20*60)
	}
}

func TestAPI_CompleteSession(t *testing.T) {
	h := newAPIHarness(t)
	id := uuid.New()

	rec := h.request(t, http.MethodPost, "/api/sessions/"+id.String()+"/complete")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body: %s", rec.Code, rec.Body.String())
	}
	if len(*h.completed) != 1 || (*h.completed)[0] != id {
		t.Errorf("completion sink saw %v, want [%s]", *h.completed, id)
	}
}

func TestAPI_CompleteSessionInvalidID(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.request(t, http.MethodPost, "/api/sessions/not-a-uuid/complete")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(*h.completed) != 0 {
		t.Error("completion sink invoked for invalid id")
	}
}

func TestAPI_CompleteSessionBackendFailure(t *testing.T) {
	h := newAPIHarness(t)
	h.failWith = errors.New("backend down")

	rec := h.request(t, http.MethodPost, "/api/sessions/"+uuid.New().String()+"/complete")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestAPI_CompletedSessionsEmpty(t *testing.T) {
	h := newAPIHarness(t)

	rec := h.request(t, http.MethodGet, "/api/sessions/completed")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var summaries []timer.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("got %d summaries, want 0", len(summaries))
	}
}
