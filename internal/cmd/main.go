package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/venuehq/playclock/internal/events"
	"github.com/venuehq/playclock/internal/feed"
	"github.com/venuehq/playclock/internal/gateway"
	"github.com/venuehq/playclock/internal/models"
	"github.com/venuehq/playclock/internal/timer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	setupLogging()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	client := feed.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey)
	hub := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	var publisher *events.Publisher
	if cfg.NATS.Enabled {
		pubCfg := events.DefaultPublisherConfig()
		pubCfg.URL = cfg.NATS.URL
		pubCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		publisher, err = events.NewPublisher(pubCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer publisher.Close()
	} else {
		log.Info().Msg("NATS cues disabled")
	}

	engine := timer.NewEngine(clock, timer.Callbacks{
		OnTick: func(s models.Session, st timer.State) {
			event, err := gateway.TickEvent(s, st)
			if err != nil {
				log.Error().Err(err).Msg("failed to build tick event")
				return
			}
			hub.Broadcast(event)
		},
		OnPhaseChange: func(s models.Session, st timer.State) {
			if st.Phase != timer.PhaseExpiring {
				return
			}
			event, err := gateway.ExpiringEvent(s, st)
			if err != nil {
				log.Error().Err(err).Msg("failed to build expiring event")
				return
			}
			hub.Broadcast(event)
		},
		OnExpired: func(s models.Session, st timer.State) {
			event, err := gateway.ExpiredEvent(s, st)
			if err != nil {
				log.Error().Err(err).Msg("failed to build expired event")
			} else {
				hub.Broadcast(event)
			}
			if publisher != nil {
				publisher.SessionExpired(s, st)
			}
		},
	}, client.CompleteSession)
	defer engine.Stop()

	poller := feed.NewPoller(client, engine, clock,
		time.Duration(cfg.Backend.PollIntervalSec)*time.Second,
		func(summary timer.Summary) {
			event, err := gateway.CompletedEvent(summary)
			if err != nil {
				log.Error().Err(err).Msg("failed to build completed event")
			} else {
				hub.Broadcast(event)
			}
			if publisher != nil {
				publisher.SessionCompleted(summary)
			}
		})

	api := gateway.NewAPI(engine, poller, hub)
	srv := setupServer(cfg.Server.Addr, api.Routes())

	go hub.Start(ctx)
	go func() {
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("poller exited")
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("playclockd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(getEnv("PLAYCLOCK_LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if getEnv("PLAYCLOCK_LOG_PRETTY", "") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
