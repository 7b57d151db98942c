// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/trustpool"
	"github.com/tomtom215/marquee/internal/store"
)

// Recommender produces recommendations. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Status() recommend.Status
}

// FeedbackService applies movie, rating and review writes. *feedback.Service implements it.
type FeedbackService interface {
	AddMovie(ctx context.Context, item recommend.Item) (bool, error)
	GetMovie(ctx context.Context, id int) (recommend.Item, error)
	Rate(ctx context.Context, r recommend.Rating) error
	Unrate(ctx context.Context, userID, itemID int) error
	GetRating(ctx context.Context, userID, itemID int) (recommend.Rating, error)
	RatingStats(ctx context.Context, itemID int) (store.RatingStats, error)
	AddComment(ctx context.Context, userID, itemID int, content string) (recommend.Comment, error)
	EditComment(ctx context.Context, id int, content string) (recommend.Comment, error)
	DeleteComment(ctx context.Context, id int) error
	ListComments(ctx context.Context, itemID int) ([]recommend.Comment, error)
}

// PoolStats reports trust pool health. *trustpool.Manager implements it.
type PoolStats interface {
	Stats() trustpool.Stats
}

// Handler serves the HTTP endpoints.
type Handler struct {
	engine    Recommender
	feedback  FeedbackService
	pool      PoolStats
	perf      *middleware.PerformanceMonitor
	timeout   time.Duration
	startTime time.Time
	version   string
}

// HandlerConfig bundles the handler dependencies.
type HandlerConfig struct {
	Engine   Recommender
	Feedback FeedbackService
	Pool     PoolStats

	// Performance is optional; when set its stats appear in /api/v1/status.
	Performance *middleware.PerformanceMonitor

	// RecommendTimeout bounds one recommendation request.
	// Default: 10s
	RecommendTimeout time.Duration

	Version string
}

// NewHandler creates a handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Engine == nil || cfg.Feedback == nil || cfg.Pool == nil {
		return nil, errors.New("api: engine, feedback and pool are required")
	}
	if cfg.RecommendTimeout <= 0 {
		cfg.RecommendTimeout = 10 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		engine:    cfg.Engine,
		feedback:  cfg.Feedback,
		pool:      cfg.Pool,
		perf:      cfg.Performance,
		timeout:   cfg.RecommendTimeout,
		startTime: time.Now(),
		version:   cfg.Version,
	}, nil
}

// idParam parses a positive integer URL parameter, writing a 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		respondError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid "+name, nil)
		return 0, false
	}
	return v, true
}
