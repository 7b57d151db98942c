// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// PoolRecomputer is the part of *trustpool.Manager the worker drives.
type PoolRecomputer interface {
	Recompute(ctx context.Context) (*recommend.TrustPool, error)
	Pending() <-chan struct{}
	Config() recommend.PoolConfig
}

// TrustPoolService keeps the trust pool current.
//
// It computes the pool once at startup, then waits for invalidation signals.
// A burst of signals is coalesced: the recompute starts after Debounce of
// quiet, or after MaxDelay since the first signal, whichever comes first.
// A failed recompute is retried after RetryInterval; the previous snapshot
// keeps serving in the meantime.
type TrustPoolService struct {
	pool          PoolRecomputer
	logger        zerolog.Logger
	retryInterval time.Duration
	name          string
}

// NewTrustPoolService creates the recompute worker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrustPoolService(pool PoolRecomputer, logger zerolog.Logger) *TrustPoolService {
	return &TrustPoolService{
		pool:          pool,
		logger:        logger.With().Str("service", "trust-pool").Logger(),
		retryInterval: 5 * time.Second,
		name:          "trust-pool",
	}
}

// WithRetryInterval overrides the delay before a failed recompute is retried.
func (s *TrustPoolService) WithRetryInterval(d time.Duration) *TrustPoolService {
	if d > 0 {
		s.retryInterval = d
	}
	return s
}

// Serve implements suture.Service.
func (s *TrustPoolService) Serve(ctx context.Context) error {
	cfg := s.pool.Config()
	s.logger.Info().
		Dur("debounce", cfg.Debounce).
		Dur("max_delay", cfg.MaxDelay).
		Msg("trust pool worker starting")

	var retry <-chan time.Time
	if !s.recompute(ctx) {
		retry = time.After(s.retryInterval)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trust pool worker shutting down")
			return ctx.Err()

		case <-retry:
			retry = nil
			if !s.recompute(ctx) {
				retry = time.After(s.retryInterval)
			}

		case <-s.pool.Pending():
			if !s.settle(ctx, cfg) {
				return ctx.Err()
			}
			retry = nil
			if !s.recompute(ctx) {
				retry = time.After(s.retryInterval)
			}
		}
	}
}

// settle waits out a burst of signals. It returns false if ctx ended first.
func (s *TrustPoolService) settle(ctx context.Context, cfg recommend.PoolConfig) bool {
	if cfg.Debounce <= 0 {
		return ctx.Err() == nil
	}

	quiet := time.NewTimer(cfg.Debounce)
	defer quiet.Stop()
	var deadline <-chan time.Time
	if cfg.MaxDelay > 0 {
		deadline = time.After(cfg.MaxDelay)
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case <-quiet.C:
			return true
		case <-deadline:
			return true
		case <-s.pool.Pending():
			quiet.Reset(cfg.Debounce)
		}
	}
}

func (s *TrustPoolService) recompute(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if _, err := s.pool.Recompute(ctx); err != nil {
		s.logger.Warn().Err(err).Dur("retry_in", s.retryInterval).Msg("trust pool recompute failed")
		return false
	}
	return true
}

// String implements fmt.Stringer.
func (s *TrustPoolService) String() string {
	return s.name
}
