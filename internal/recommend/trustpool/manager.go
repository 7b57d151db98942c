// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package trustpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/algorithms"
)

// Source supplies the raw feedback the pool is computed from.
type Source interface {
	// ListRatings returns every stored rating.
	ListRatings(ctx context.Context) ([]recommend.Rating, error)

	// ListComments returns every stored comment with its polarity.
	ListComments(ctx context.Context) ([]recommend.Comment, error)
}

// Stats describes the manager's recompute history.
type Stats struct {
	Generation    uint64        `json:"generation"`
	PoolSize      int           `json:"pool_size"`
	ComputedAt    time.Time     `json:"computed_at"`
	Recomputes    int64         `json:"recomputes"`
	Failures      int64         `json:"failures"`
	Invalidations int64         `json:"invalidations"`
	LastDuration  time.Duration `json:"last_duration"`
	LastError     string        `json:"last_error,omitempty"`
	LastErrorAt   time.Time     `json:"last_error_at,omitempty"`
}

// Manager owns the current trust pool snapshot.
//
// Readers call Current and never block. Writers call Invalidate, which only
// signals; the actual recomputation happens in Recompute, driven by a
// debouncing worker that drains Pending. Recompute is serialized, so a
// snapshot is always built by a single writer and published atomically.
type Manager struct {
	source     Source
	thresholds recommend.Thresholds
	config     recommend.PoolConfig
	logger     zerolog.Logger

	current atomic.Pointer[recommend.TrustPool]
	pending chan struct{}

	// mu serializes recomputation and guards the fields below.
	mu         sync.Mutex
	generation uint64
	lastDur    time.Duration
	lastErr    error
	lastErrAt  time.Time

	// published is closed and replaced each time a snapshot is stored.
	pubMu     sync.Mutex
	published chan struct{}

	recomputes    atomic.Int64
	failures      atomic.Int64
	invalidations atomic.Int64
}

// NewManager creates a manager. No snapshot exists until the first Recompute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewManager(source Source, th recommend.Thresholds, cfg recommend.PoolConfig, logger zerolog.Logger) (*Manager, error) {
	if source == nil {
		return nil, fmt.Errorf("trustpool: source is required")
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("trustpool: %w", err)
	}
	return &Manager{
		source:     source,
		thresholds: th,
		config:     cfg,
		logger:     logger.With().Str("component", "trustpool").Logger(),
		pending:    make(chan struct{}, 1),
		published:  make(chan struct{}),
	}, nil
}

// Current returns the last completed snapshot, or nil before the first one.
func (m *Manager) Current() *recommend.TrustPool {
	return m.current.Load()
}

// Invalidate marks the snapshot stale. Bursts coalesce into one pending signal.
func (m *Manager) Invalidate() {
	m.invalidations.Add(1)
	metrics.TrustPoolInvalidations.Inc()
	select {
	case m.pending <- struct{}{}:
	default:
	}
}

// Pending delivers a value whenever at least one Invalidate happened since
// the last receive.
func (m *Manager) Pending() <-chan struct{} {
	return m.pending
}

// Config returns the debounce settings the worker should use.
func (m *Manager) Config() recommend.PoolConfig {
	return m.config
}

// Recompute rebuilds the pool from the source and publishes it.
// On failure the previous snapshot stays visible and the error is returned.
func (m *Manager) Recompute(ctx context.Context) (*recommend.TrustPool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	pool, err := m.build(ctx)
	elapsed := time.Since(start)
	m.lastDur = elapsed
	m.recomputes.Add(1)

	if err != nil {
		m.failures.Add(1)
		m.lastErr = err
		m.lastErrAt = time.Now()
		metrics.RecordTrustPoolRecompute(elapsed, m.generation, m.poolSize(), err)
		m.logger.Error().Err(err).
			Uint64("generation", m.generation).
			Dur("duration", elapsed).
			Msg("trust pool recompute failed, keeping previous snapshot")
		return nil, err
	}

	m.generation++
	pool.Generation = m.generation
	pool.ComputedAt = time.Now()
	m.current.Store(pool)
	m.lastErr = nil
	m.signalPublished()

	metrics.RecordTrustPoolRecompute(elapsed, pool.Generation, pool.Size(), nil)
	m.logger.Info().
		Uint64("generation", pool.Generation).
		Int("trusted_ratings", pool.Size()).
		Int("all_ratings", pool.All.Len()).
		Int("commenters", len(pool.Trust)).
		Dur("duration", elapsed).
		Msg("trust pool recomputed")
	return pool, nil
}

func (m *Manager) build(ctx context.Context) (*recommend.TrustPool, error) {
	ratings, err := m.source.ListRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	comments, err := m.source.ListComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return algorithms.ComputeTrustPool(ratings, comments, m.thresholds)
}

// poolSize must be called with mu held.
func (m *Manager) poolSize() int {
	return m.current.Load().Size()
}

func (m *Manager) signalPublished() {
	m.pubMu.Lock()
	close(m.published)
	m.published = make(chan struct{})
	m.pubMu.Unlock()
}

// WaitForGeneration blocks until a snapshot with Generation >= g is published
// or ctx is done.
func (m *Manager) WaitForGeneration(ctx context.Context, g uint64) (*recommend.TrustPool, error) {
	for {
		m.pubMu.Lock()
		ch := m.published
		m.pubMu.Unlock()

		if pool := m.current.Load(); pool != nil && pool.Generation >= g {
			return pool, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}

// Stats returns a point-in-time view of the manager.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{
		Generation:    m.generation,
		Recomputes:    m.recomputes.Load(),
		Failures:      m.failures.Load(),
		Invalidations: m.invalidations.Load(),
		LastDuration:  m.lastDur,
	}
	if pool := m.current.Load(); pool != nil {
		st.PoolSize = pool.Size()
		st.ComputedAt = pool.ComputedAt
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
		st.LastErrorAt = m.lastErrAt
	}
	return st
}

// String implements fmt.Stringer.
func (m *Manager) String() string {
	return "trustpool-manager"
}
