package main

import (
	"context"
	"fmt"

	"github.com/maelkermann/plouf-plouf/go/internal/config"
	"github.com/maelkermann/plouf-plouf/go/internal/draw"
	"github.com/maelkermann/plouf-plouf/go/internal/gateway"
	"github.com/maelkermann/plouf-plouf/go/internal/health"
	"github.com/maelkermann/plouf-plouf/go/internal/publisher"
	"github.com/maelkermann/plouf-plouf/go/internal/savedlists"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Draw    *draw.Manager
	Gateway *gateway.Service
	Lists   *savedlists.App
	Health  *health.Checker

	closers []func()
}

// Close releases the bus connection and database in reverse setup order
func (s *Services) Close() {
	s.Draw.Close()
	s.closeAll()
}

func setupServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	// Storage → App, Publisher → Draw manager → Gateway
	s := &Services{}
	var deps healthDeps

	repo, err := setupRepository(ctx, cfg, s, &deps)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	s.Lists = savedlists.NewApp(repo, nil)

	pub, err := setupPublisher(ctx, cfg, s, &deps)
	if err != nil {
		s.closeAll()
		return nil, err
	}

	connections := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	s.Draw = draw.NewManager(connections, pub, draw.WithSpinnerConfig(cfg.Spinner))
	s.Gateway = gateway.NewService(connections, s.Draw, s.Lists)
	s.Health = health.NewChecker(s.Draw, deps.db, deps.bus)
	return s, nil
}

func (s *Services) closeAll() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// healthDeps collects the optional dependencies the readiness check probes
type healthDeps struct {
	db  health.Pinger
	bus health.ConnectionState
}

func setupRepository(ctx context.Context, cfg *config.Config, s *Services, deps *healthDeps) (savedlists.Repository, error) {
	if cfg.Storage.Backend != config.StoragePostgres {
		log.Info().Str("path", cfg.Storage.FilePath).Msg("storing saved lists in file")
		return savedlists.NewFileRepository(cfg.Storage.FilePath), nil
	}

	database, err := setupDatabase(ctx)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() { database.Close() })
	deps.db = database

	repo := savedlists.NewPostgresRepository(database)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func setupPublisher(ctx context.Context, cfg *config.Config, s *Services, deps *healthDeps) (draw.Publisher, error) {
	if cfg.NATS.URL == "" {
		log.Info().Msg("NATS_URL not set, logging spin events only")
		return publisher.NewLogPublisher(), nil
	}

	jsCfg := publisher.DefaultJetStreamConfig()
	jsCfg.URL = cfg.NATS.URL
	jsCfg.StreamName = cfg.NATS.StreamName
	jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

	pub, err := publisher.NewNATSPublisher(ctx, jsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up NATS publisher: %w", err)
	}
	deps.bus = pub
	s.closers = append(s.closers, func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close NATS publisher")
		}
	})

	log.Info().
		Str("url", jsCfg.URL).
		Str("stream", jsCfg.StreamName).
		Msg("publishing spin events to JetStream")
	return pub, nil
}
