// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/sentiment"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

// Importer loads CSV datasets into a record store.
type Importer struct {
	store  store.Store
	scorer sentiment.Scorer
	logger zerolog.Logger
}

// NewImporter creates an importer. scorer is only used when
// Config.ScoreMissingPolarity is set and may be nil otherwise.
func NewImporter(st store.Store, scorer sentiment.Scorer, logger zerolog.Logger) *Importer {
	return &Importer{
		store:  st,
		scorer: scorer,
		logger: logger.With().Str("component", "dataset").Logger(),
	}
}

func (c Config) path(name, def string) string {
	if name == "" {
		name = def
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// Load reads the three dataset files in parallel. The movies file is
// required; missing ratings or comments files yield empty slices.
func Load(ctx context.Context, cfg Config) (*Dataset, error) {
	ds := &Dataset{Skipped: make(map[string]int, 3)}
	var movieSkips, ratingSkips, commentSkips int

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds.Items, movieSkips, err = ReadMovies(cfg.path(cfg.Movies, MoviesFile))
		if err != nil {
			return fmt.Errorf("load movies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ds.Ratings, ratingSkips, err = ReadRatings(cfg.path(cfg.Ratings, RatingsFile))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load ratings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ds.Comments, commentSkips, err = ReadComments(cfg.path(cfg.Comments, CommentsFile))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load comments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds.Skipped["movies"] = movieSkips
	ds.Skipped["ratings"] = ratingSkips
	ds.Skipped["comments"] = commentSkips
	return ds, nil
}

// Import loads the dataset described by cfg and writes every valid record
// to the store. Invalid rows are logged and skipped.
func (i *Importer) Import(ctx context.Context, cfg Config) (*ImportStats, error) {
	stats := &ImportStats{StartTime: time.Now(), DryRun: cfg.DryRun}
	defer func() { stats.EndTime = time.Now() }()

	ds, err := Load(ctx, cfg)
	if err != nil {
		return stats, err
	}
	for _, n := range ds.Skipped {
		stats.Skipped += n
	}

	items := make([]recommend.Item, 0, len(ds.Items))
	for _, it := range ds.Items {
		if i.valid("movies", it) {
			items = append(items, it.WithNormalizedTitle())
		} else {
			stats.Skipped++
		}
	}
	ratings := make([]recommend.Rating, 0, len(ds.Ratings))
	for _, r := range ds.Ratings {
		if i.valid("ratings", r) {
			ratings = append(ratings, r)
		} else {
			stats.Skipped++
		}
	}
	comments, err := i.prepareComments(ctx, cfg, ds.Comments, stats)
	if err != nil {
		return stats, err
	}

	if cfg.DryRun {
		stats.Movies, stats.Ratings, stats.Comments = len(items), len(ratings), len(comments)
		i.logStats(stats)
		return stats, nil
	}

	for _, it := range items {
		if _, err := i.store.PutItem(ctx, it); err != nil {
			return stats, fmt.Errorf("store movie %d: %w", it.ID, err)
		}
		stats.Movies++
	}
	metrics.DatasetRecordsImported.WithLabelValues("movies").Add(float64(stats.Movies))

	// Ratings and comments are independent of each other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, r := range ratings {
			if err := i.store.PutRating(gctx, r); err != nil {
				return fmt.Errorf("store rating %d/%d: %w", r.UserID, r.ItemID, err)
			}
			stats.Ratings++
		}
		return nil
	})
	g.Go(func() error {
		for _, c := range comments {
			if _, err := i.store.CreateComment(gctx, c); err != nil {
				return fmt.Errorf("store comment %d: %w", c.ID, err)
			}
			stats.Comments++
		}
		return nil
	})
	err = g.Wait()
	metrics.DatasetRecordsImported.WithLabelValues("ratings").Add(float64(stats.Ratings))
	metrics.DatasetRecordsImported.WithLabelValues("comments").Add(float64(stats.Comments))
	if err != nil {
		return stats, err
	}

	i.logStats(stats)
	return stats, nil
}

func (i *Importer) prepareComments(ctx context.Context, cfg Config, in []recommend.Comment, stats *ImportStats) ([]recommend.Comment, error) {
	out := make([]recommend.Comment, 0, len(in))
	for _, c := range in {
		if math.IsNaN(c.Polarity) {
			if !cfg.ScoreMissingPolarity || i.scorer == nil {
				stats.Skipped++
				continue
			}
			p, err := i.scorer.Polarity(ctx, c.Content)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				i.logger.Warn().Err(err).Int("comment_id", c.ID).Msg("Scoring comment failed, skipping")
				stats.Skipped++
				continue
			}
			if c.Polarity, err = sentiment.Clamp(p); err != nil {
				stats.Skipped++
				continue
			}
			stats.Scored++
		}
		if !i.valid("comments", c) {
			stats.Skipped++
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (i *Importer) valid(kind string, record any) bool {
	if verr := validation.ValidateStruct(record); verr != nil {
		i.logger.Debug().Str("kind", kind).Interface("record", record).Err(verr).Msg("Skipping invalid record")
		return false
	}
	return true
}

func (i *Importer) logStats(stats *ImportStats) {
	i.logger.Info().
		Int("movies", stats.Movies).
		Int("ratings", stats.Ratings).
		Int("comments", stats.Comments).
		Int("skipped", stats.Skipped).
		Int("scored", stats.Scored).
		Bool("dry_run", stats.DryRun).
		Dur("duration", stats.Duration()).
		Msg("Dataset import completed")
}
