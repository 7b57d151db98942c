// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/dataset"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/feedback"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/algorithms"
	"github.com/tomtom215/marquee/internal/recommend/trustpool"
	"github.com/tomtom215/marquee/internal/sentiment"
	"github.com/tomtom215/marquee/internal/store"
)

// app holds the wired components shared by every command.
type app struct {
	cfg *config.Config

	store    store.Store
	scorer   sentiment.Scorer
	index    *algorithms.TitleIndex
	pool     *trustpool.Manager
	engine   *recommend.Engine
	feedback *feedback.Service

	// Nil unless events are enabled.
	bus       *eventprocessor.Bus
	publisher *eventprocessor.Publisher
	router    *eventprocessor.Router
}

type appOptions struct {
	// events wires the feedback event bus and router.
	events bool
	// seed imports cfg.Dataset into an empty store before building the index.
	seed bool
}

// openStore opens the configured record store.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreBadger:
		bs, err := store.OpenBadger(cfg.Store.BadgerConfig(), logging.WithComponent("store"))
		if err != nil {
			return nil, err
		}
		return bs, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newScorer builds the review polarity scorer. The HTTP backend falls back
// to the built-in lexicon when the remote scorer is unavailable.
func newScorer(cfg *config.Config) (sentiment.Scorer, error) {
	lexicon := sentiment.NewLexicon(nil)
	if cfg.Sentiment.Backend != config.SentimentHTTP {
		return sentiment.Instrumented{Scorer: lexicon}, nil
	}

	logger := logging.WithComponent("sentiment")
	client, err := sentiment.NewClient(cfg.Sentiment.ClientConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("sentiment client: %w", err)
	}
	logger.Info().Str("url", cfg.Sentiment.URL).Msg("using remote sentiment scorer with lexicon fallback")
	return sentiment.Instrumented{Scorer: &sentiment.Fallback{
		Primary:   client,
		Secondary: lexicon,
		Logger:    logger,
	}}, nil
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.wire(ctx, opts); err != nil {
		if closeErr := a.close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("cleanup after failed startup")
		}
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, opts appOptions) (err error) {
	cfg := a.cfg
	if a.store, err = openStore(cfg); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if a.scorer, err = newScorer(cfg); err != nil {
		return err
	}

	if opts.seed && cfg.Dataset.Dir != "" {
		if err = a.seedStore(ctx); err != nil {
			return err
		}
	}

	engineCfg := cfg.Recommend.EngineConfig()

	items, err := a.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list movies: %w", err)
	}
	a.index = algorithms.NewTitleIndex(engineCfg.Index)
	a.index.Build(items)
	logging.Info().
		Int("movies", a.index.Len()).
		Int("vocabulary", a.index.VocabularySize()).
		Msg("title index built")

	a.pool, err = trustpool.NewManager(a.store, engineCfg.Thresholds, engineCfg.Pool, logging.WithComponent("trustpool"))
	if err != nil {
		return fmt.Errorf("trust pool: %w", err)
	}

	collab := algorithms.NewCollaborative(engineCfg.Thresholds, engineCfg.Limits, a.store)
	a.engine, err = recommend.NewEngine(engineCfg, a.index, collab, a.pool, logging.Logger())
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	// Keep the interface nil when events are off so feedback notifies directly.
	var pub feedback.Publisher
	if opts.events && cfg.Events.Enabled {
		if err = a.wireEvents(); err != nil {
			return err
		}
		pub = a.publisher
	}

	a.feedback, err = feedback.NewService(a.store, a.scorer, a.engine, pub, logging.WithComponent("feedback"))
	if err != nil {
		return err
	}
	if a.router != nil {
		a.feedback.SetConsumer(a.router)
	}
	return nil
}

// seedStore imports the dataset directory when the store holds no movies yet.
func (a *app) seedStore(ctx context.Context) error {
	existing, err := a.store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list movies: %w", err)
	}
	if len(existing) > 0 {
		logging.Info().Int("movies", len(existing)).Msg("store already populated, skipping dataset import")
		return nil
	}

	importer := dataset.NewImporter(a.store, a.scorer, logging.WithComponent("dataset"))
	if _, err := importer.Import(ctx, a.cfg.Dataset); err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}
	return nil
}

func (a *app) wireEvents() error {
	wmLogger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("events"))

	bus, err := eventprocessor.NewBus(a.cfg.Events, wmLogger)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	a.bus = bus
	a.publisher = eventprocessor.NewPublisher(bus.Publisher, a.cfg.Events)

	a.router, err = eventprocessor.NewRouter(a.cfg.Events, wmLogger)
	if err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	eventprocessor.NewInvalidationHandler(a.engine, logging.WithComponent("events")).Register(a.router, bus.Subscriber)

	logging.Info().Str("transport", bus.Transport()).Msg("feedback events enabled")
	return nil
}

// close releases resources in reverse order of creation.
func (a *app) close() error {
	var errs []error
	if a.engine != nil {
		a.engine.Close()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
