package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/venuehq/playclock/internal/models"
	"github.com/venuehq/playclock/internal/timer"
)

// PublisherConfig holds NATS connection settings.
type PublisherConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultPublisherConfig returns defaults for a venue-local NATS server.
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "playclock",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher emits session cues to NATS. Venue-side subscribers (the expiry
// bell, reporting jobs) react to them; publishing is fire-and-forget and
// never blocks or fails the timer engine.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// NewPublisher connects to NATS with reconnect handling.
func NewPublisher(config PublisherConfig) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Publisher{nc: nc, prefix: config.SubjectPrefix}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.Error().Err(err).Msg("NATS drain failed")
	}
}

// expiredCue is the wire payload for session.expired.
type expiredCue struct {
	SessionID       string    `json:"session_id"`
	GameName        string    `json:"game_name"`
	AssetName       string    `json:"asset_name"`
	TicketCode      string    `json:"ticket_code"`
	DurationMinutes int       `json:"duration_minutes"`
	ExpiredAt       time.Time `json:"expired_at"`
}

// completedCue is the wire payload for session.completed.
type completedCue struct {
	SessionID             string    `json:"session_id"`
	GameName              string    `json:"game_name"`
	ActualDurationMinutes int       `json:"actual_duration_minutes"`
	WasCompletedEarly     bool      `json:"was_completed_early"`
	CompletedAt           time.Time `json:"completed_at"`
}

// SessionExpired publishes the one-shot expiry cue for a limited session.
func (p *Publisher) SessionExpired(s models.Session, st timer.State) {
	p.publish("session.expired", expiredCue{
		SessionID:       s.ID.String(),
		GameName:        s.GameName,
		AssetName:       s.AssetName,
		TicketCode:      s.TicketCode,
		DurationMinutes: st.DurationMinutes,
		ExpiredAt:       st.ComputedAt,
	})
}

// SessionCompleted publishes a completion cue.
func (p *Publisher) SessionCompleted(summary timer.Summary) {
	p.publish("session.completed", completedCue{
		SessionID:             summary.SessionID.String(),
		GameName:              summary.GameName,
		ActualDurationMinutes: summary.ActualDurationMinutes,
		WasCompletedEarly:     summary.WasCompletedEarly,
		CompletedAt:           summary.CompletedAt,
	})
}

func (p *Publisher) publish(subject string, payload interface{}) {
	full := fmt.Sprintf("%s.%s", p.prefix, subject)

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("subject", full).Msg("failed to marshal cue")
		return
	}
	if err := p.nc.Publish(full, data); err != nil {
		log.Error().Err(err).Str("subject", full).Msg("failed to publish cue")
		return
	}
	log.Debug().Str("subject", full).Int("size", len(data)).Msg("cue published")
}
