package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/venuehq/playclock/internal/feed"
	"github.com/venuehq/playclock/internal/timer"
)

// API serves the dashboard's JSON endpoints and the WebSocket upgrade.
type API struct {
	engine *timer.Engine
	poller *feed.Poller
	hub    *ConnectionManager
}

// NewAPI wires the HTTP surface to the engine, poller, and WebSocket hub.
func NewAPI(engine *timer.Engine, poller *feed.Poller, hub *ConnectionManager) *API {
	return &API{
		engine: engine,
		poller: poller,
		hub:    hub,
	}
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", a.handleHealth)
	r.Get("/ws", a.handleWebSocket)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/active", a.handleActiveSessions)
		r.Get("/completed", a.handleCompletedSessions)
		r.Post("/{sessionID}/complete", a.handleCompleteSession)
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": a.hub.ConnectionCount(),
	})
}

func (a *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := a.hub.UpgradeConnection(w, r); err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
	}
}

// handleActiveSessions returns the current derived timer state for every
// tracked session.
func (a *API) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.engine.Snapshots())
}

// handleCompletedSessions returns the cached summaries for today's completed
// feed.
func (a *API) handleCompletedSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.poller.CompletedSummaries())
}

// handleCompleteSession force-completes a session. Available regardless of
// timer state; the tracker is unmounted only once the backend confirms via
// the feed, which the Wake below accelerates.
func (a *API) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := a.engine.Complete(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("force completion failed")
		respondError(w, http.StatusBadGateway, "completion failed")
		return
	}

	a.poller.Wake()
	respondJSON(w, http.StatusAccepted, map[string]string{
		"session_id": sessionID.String(),
		"status":     "completing",
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
