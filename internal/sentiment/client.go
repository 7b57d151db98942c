// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package sentiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/metrics"
)

var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("sentiment: circuit open")

	// ErrRateLimited is returned when the limiter cannot grant a token before the deadline.
	ErrRateLimited = errors.New("sentiment: rate limited")
)

// ClientConfig configures the remote sentiment scorer.
type ClientConfig struct {
	// URL receives POST {"text": "..."} and answers {"polarity": 0.42}.
	URL string

	// Timeout bounds one HTTP round trip.
	// Default: 5s
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the client-side rate limit.
	// Zero RequestsPerSecond disables limiting.
	RequestsPerSecond float64
	Burst             int

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	// Default: 5
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	// Default: 30s
	OpenTimeout time.Duration
}

type polarityRequest struct {
	Text string `json:"text"`
}

type polarityResponse struct {
	Polarity *float64 `json:"polarity"`
}

// Client scores text through an HTTP sentiment service.
//
// Calls pass through a token bucket and a circuit breaker. The breaker uses
// real time for its interval and timeout; tests drive it with an httptest
// server rather than a fake clock.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[float64]
	name    string
	logger  zerolog.Logger
}

// NewClient creates a remote scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("sentiment: url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	c := &Client{
		url:    cfg.URL,
		http:   &http.Client{Timeout: cfg.Timeout},
		name:   "sentiment-api",
		logger: logger.With().Str("component", "sentiment").Logger(),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(c.name).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        c.name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A canceled caller says nothing about the service's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return c, nil
}

// Polarity implements Scorer.
func (c *Client) Polarity(ctx context.Context, text string) (float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			return 0, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}

	p, err := c.cb.Execute(func() (float64, error) {
		return c.call(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return p, err
}

// State reports the breaker state for status endpoints.
func (c *Client) State() string {
	return c.cb.State().String()
}

func (c *Client) call(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(polarityRequest{Text: text})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out polarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Polarity == nil {
		return 0, errors.New("response missing polarity")
	}
	return Clamp(*out.Polarity)
}

// stateToFloat converts circuit breaker state to numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
