package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/venuehq/playclock/internal/timer"
)

// Poller drives the timer engine from the backend's session feeds. It polls
// both feeds on a fixed interval, reconciles the engine's tracker set against
// the active feed, and caches summaries for the completed feed.
type Poller struct {
	client      *Client
	engine      *timer.Engine
	clock       clockwork.Clock
	interval    time.Duration
	retryWait   time.Duration
	wakeCh      chan struct{}
	onCompleted func(timer.Summary)

	mu        sync.RWMutex
	completed []timer.Summary
	seen      map[uuid.UUID]bool
}

// NewPoller creates a poller. onCompleted, when non-nil, fires once for each
// session newly observed in the completed feed.
func NewPoller(client *Client, engine *timer.Engine, clock clockwork.Clock, interval time.Duration, onCompleted func(timer.Summary)) *Poller {
	return &Poller{
		client:      client,
		engine:      engine,
		clock:       clock,
		interval:    interval,
		retryWait:   2 * time.Second,
		wakeCh:      make(chan struct{}, 1),
		onCompleted: onCompleted,
	}
}

// Wake triggers an immediate re-poll, e.g. right after a force-completion so
// the dashboard converges without waiting out the interval.
func (p *Poller) Wake() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// CompletedSummaries returns the cached summaries from the last successful
// poll of the completed feed.
func (p *Poller) CompletedSummaries() []timer.Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]timer.Summary, len(p.completed))
	copy(out, p.completed)
	return out
}

// Run polls until the context is cancelled. The engine's trackers are left
// for the caller to stop.
func (p *Poller) Run(ctx context.Context) error {
	log.Info().Dur("interval", p.interval).Msg("session feed poller started")

	pollTimer := p.clock.NewTimer(0)
	defer pollTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session feed poller stopped")
			return ctx.Err()
		case <-pollTimer.Chan():
		case <-p.wakeCh:
			log.Debug().Msg("poller woken early")
		}

		if err := p.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("session feed poll failed, retrying")
			pollTimer.Reset(p.retryWait)
			continue
		}
		pollTimer.Reset(p.interval)
	}
}

func (p *Poller) pollOnce(ctx context.Context) error {
	active, err := p.client.FetchActiveSessions(ctx)
	if err != nil {
		return err
	}
	completed, err := p.client.FetchCompletedSessions(ctx)
	if err != nil {
		return err
	}

	p.engine.SyncActive(active)

	summaries := make([]timer.Summary, 0, len(completed))
	seen := make(map[uuid.UUID]bool, len(completed))
	var fresh []timer.Summary

	p.mu.Lock()
	for _, s := range completed {
		summary, err := timer.Summarize(s)
		if err != nil {
			log.Warn().Err(err).Str("session_id", s.ID.String()).Msg("skipping malformed completed session")
			continue
		}
		summaries = append(summaries, summary)
		seen[s.ID] = true
		if !p.seen[s.ID] {
			fresh = append(fresh, summary)
		}
	}
	firstPoll := p.seen == nil
	p.completed = summaries
	p.seen = seen
	p.mu.Unlock()

	// Completion events only fire for sessions that moved to the completed
	// feed while we were watching, not for the backlog on the first poll.
	if !firstPoll && p.onCompleted != nil {
		for _, summary := range fresh {
			p.onCompleted(summary)
		}
	}

	log.Debug().
		Int("active", len(active)).
		Int("completed", len(completed)).
		Msg("session feeds polled")
	return nil
}
