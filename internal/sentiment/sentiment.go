// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
)

// ErrInvalidPolarity is returned when a scorer produces NaN or infinity.
var ErrInvalidPolarity = errors.New("sentiment: invalid polarity")

// Scorer maps free text to a polarity in [-1, 1].
type Scorer interface {
	Polarity(ctx context.Context, text string) (float64, error)
}

// Func adapts a plain function to Scorer.
type Func func(ctx context.Context, text string) (float64, error)

// Polarity implements Scorer.
func (f Func) Polarity(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

// Clamp validates p and limits it to [-1, 1].
func Clamp(p float64) (float64, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPolarity, p)
	}
	return math.Max(-1, math.Min(1, p)), nil
}

// Fallback tries Primary and, when it fails, scores with Secondary.
// Context errors are returned as is.
type Fallback struct {
	Primary   Scorer
	Secondary Scorer
	Logger    zerolog.Logger
}

// Polarity implements Scorer.
func (f *Fallback) Polarity(ctx context.Context, text string) (float64, error) {
	p, err := f.Primary.Polarity(ctx, text)
	if err == nil {
		return p, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	f.Logger.Warn().Err(err).Msg("primary sentiment scorer failed, using fallback")
	metrics.SentimentRequests.WithLabelValues("fallback").Inc()
	return f.Secondary.Polarity(ctx, text)
}

// Instrumented records latency and outcome of every call on the wrapped scorer
// and clamps its output.
type Instrumented struct {
	Scorer Scorer
}

// Polarity implements Scorer.
func (s Instrumented) Polarity(ctx context.Context, text string) (float64, error) {
	start := time.Now()
	p, err := s.Scorer.Polarity(ctx, text)
	if err == nil {
		p, err = Clamp(p)
	}
	metrics.RecordSentiment(outcome(err), time.Since(start))
	return p, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}
