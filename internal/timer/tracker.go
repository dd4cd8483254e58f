package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/venuehq/playclock/internal/models"
)

// TickInterval is the recompute cadence for active sessions. Drift correction
// is deliberately omitted; sub-second error is acceptable.
const TickInterval = time.Second

// Callbacks are the sinks a Tracker reports into. All callbacks are invoked
// from the tracker's own goroutine and must not block for long.
type Callbacks struct {
	// OnTick receives the freshly derived state on every tick, including the
	// initial computation at start.
	OnTick func(models.Session, State)

	// OnPhaseChange fires whenever the derived phase differs from the
	// previous tick's phase.
	OnPhaseChange func(models.Session, State)

	// OnExpired fires exactly once per tracker when a limited session is
	// first observed expired. Subsequent ticks while still expired do not
	// re-fire; only a fresh tracker for the same session would.
	OnExpired func(models.Session, State)
}

// Tracker owns the ticking clock for one active session. It holds no derived
// state across ticks other than the previous phase used for edge detection.
type Tracker struct {
	session models.Session
	clock   clockwork.Clock
	cb      Callbacks

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu   sync.RWMutex
	last State
}

// NewTracker creates a tracker for an active session. Call Start to begin
// ticking and Stop when the session leaves the active feed.
func NewTracker(s models.Session, clock clockwork.Clock, cb Callbacks) *Tracker {
	t := &Tracker{
		session: s,
		clock:   clock,
		cb:      cb,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	t.last = Derive(s, clock.Now())
	return t
}

// Session returns the session this tracker was mounted for.
func (t *Tracker) Session() models.Session {
	return t.session
}

// State returns the most recently derived state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Start launches the tick loop in its own goroutine.
func (t *Tracker) Start() {
	go t.run()
}

// Stop cancels the ticker and waits for the tick loop to exit. After Stop
// returns no further recomputation or callback happens. Safe to call more
// than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
	<-t.doneCh
}

func (t *Tracker) run() {
	defer close(t.doneCh)

	ticker := t.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	// Initial observation. A session mounted already past its end time still
	// gets its one expiry notification here.
	cur := t.publish(t.clock.Now())
	expiredNotified := false
	if cur.IsExpired {
		t.notifyExpired(cur)
		expiredNotified = true
	}
	prev := cur

	for {
		select {
		case <-t.stopCh:
			return
		case now := <-ticker.Chan():
			cur = t.publish(now)
			if cur.Phase != prev.Phase && t.cb.OnPhaseChange != nil {
				t.cb.OnPhaseChange(t.session, cur)
			}
			if cur.IsExpired && !expiredNotified {
				t.notifyExpired(cur)
				expiredNotified = true
			}
			prev = cur
		}
	}
}

// publish derives state at the given instant, stores it, and reports it.
func (t *Tracker) publish(now time.Time) State {
	state := Derive(t.session, now)

	t.mu.Lock()
	t.last = state
	t.mu.Unlock()

	if t.cb.OnTick != nil {
		t.cb.OnTick(t.session, state)
	}
	return state
}

func (t *Tracker) notifyExpired(state State) {
	log.Info().
		Str("session_id", t.session.ID.String()).
		Str("game", t.session.GameName).
		Int("duration_min", state.DurationMinutes).
		Msg("session expired")

	if t.cb.OnExpired != nil {
		t.cb.OnExpired(t.session, state)
	}
}
