package timer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/venuehq/playclock/internal/models"
)

// CompleteFunc posts a force-completion for a session to the venue backend.
type CompleteFunc func(ctx context.Context, sessionID uuid.UUID) error

// Engine keeps one Tracker per active session. The session feed drives
// membership through SyncActive; the engine never removes a session on its
// own, completion only takes effect when the backend drops the session from
// the active feed on a later poll.
type Engine struct {
	clock    clockwork.Clock
	cb       Callbacks
	complete CompleteFunc

	mu       sync.Mutex
	trackers map[uuid.UUID]*Tracker
}

// NewEngine creates an engine. The callbacks are shared by every tracker the
// engine mounts.
func NewEngine(clock clockwork.Clock, cb Callbacks, complete CompleteFunc) *Engine {
	return &Engine{
		clock:    clock,
		cb:       cb,
		complete: complete,
		trackers: make(map[uuid.UUID]*Tracker),
	}
}

// SyncActive reconciles the tracker set against the latest active feed:
// unseen sessions get a fresh tracker, tracked sessions that left the feed
// are stopped. Trackers for sessions still present are left untouched so
// their expiry edge detection survives polls.
func (e *Engine) SyncActive(sessions []models.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(sessions))
	for _, s := range sessions {
		seen[s.ID] = true
		if _, ok := e.trackers[s.ID]; ok {
			continue
		}
		t := NewTracker(s, e.clock, e.cb)
		e.trackers[s.ID] = t
		t.Start()
		log.Debug().
			Str("session_id", s.ID.String()).
			Str("game", s.GameName).
			Str("game_type", string(s.GameType)).
			Msg("tracker mounted")
	}

	for id, t := range e.trackers {
		if seen[id] {
			continue
		}
		t.Stop()
		delete(e.trackers, id)
		log.Debug().Str("session_id", id.String()).Msg("tracker unmounted")
	}
}

// Snapshots returns the current derived state of every tracked session,
// ordered by start time.
func (e *Engine) Snapshots() []State {
	e.mu.Lock()
	trackers := make([]*Tracker, 0, len(e.trackers))
	for _, t := range e.trackers {
		trackers = append(trackers, t)
	}
	e.mu.Unlock()

	states := make([]State, 0, len(trackers))
	for _, t := range trackers {
		states = append(states, t.State())
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].StartedAt.Before(states[j].StartedAt)
	})
	return states
}

// Tracked reports whether a session currently has a mounted tracker.
func (e *Engine) Tracked(sessionID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.trackers[sessionID]
	return ok
}

// Complete forwards a force-completion to the backend. The action is
// available regardless of timer state; the tracker stays mounted until the
// feed confirms the completion.
func (e *Engine) Complete(ctx context.Context, sessionID uuid.UUID) error {
	if e.complete == nil {
		return fmt.Errorf("no completion sink configured")
	}
	if err := e.complete(ctx, sessionID); err != nil {
		return fmt.Errorf("complete session %s: %w", sessionID, err)
	}
	log.Info().Str("session_id", sessionID.String()).Msg("session completion requested")
	return nil
}

// Stop unmounts every tracker. Used on shutdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, t := range e.trackers {
		t.Stop()
		delete(e.trackers, id)
	}
}
