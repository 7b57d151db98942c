// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Thresholds are the fixed constants of the scoring policy.
	Thresholds Thresholds `json:"thresholds"`

	// Index contains title index parameters.
	Index IndexConfig `json:"index"`

	// Pool contains trust pool recomputation parameters.
	Pool PoolConfig `json:"pool"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`
}

// Thresholds holds the scoring policy constants. The defaults reproduce the
// reference behaviour exactly; change them only deliberately.
type Thresholds struct {
	// RatingThreshold admits ratings of users without comments into the pool
	// when score > RatingThreshold.
	// Default: 4.
	RatingThreshold float64 `json:"rating_threshold"`

	// TrustThreshold admits every rating of a commenting user into the pool
	// when their average polarity > TrustThreshold.
	// Default: 0.5.
	TrustThreshold float64 `json:"trust_threshold"`

	// LikedThreshold is the score above which a rating counts as "liked" by
	// the collaborative scorer. Independent of RatingThreshold.
	// Default: 4.
	LikedThreshold float64 `json:"liked_threshold"`

	// MinFanShare is the share of trusted fans that must like an item for it
	// to become a candidate (exclusive).
	// Default: 0.1.
	MinFanShare float64 `json:"min_fan_share"`
}

// DefaultThresholds returns the reference scoring policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RatingThreshold: 4,
		TrustThreshold:  0.5,
		LikedThreshold:  4,
		MinFanShare:     0.1,
	}
}

// IndexConfig contains title index parameters.
type IndexConfig struct {
	// SmoothIDF switches idf from ln(N/df) to ln((1+N)/(1+df))+1.
	// Default: false.
	SmoothIDF bool `json:"smooth_idf"`

	// MaxNGram is the longest word n-gram in the vocabulary (1 or 2).
	// Default: 2.
	MaxNGram int `json:"max_ngram"`
}

// PoolConfig contains trust pool recomputation parameters.
type PoolConfig struct {
	// Debounce is the quiet period after the last mutation before a recompute starts.
	// Default: 250ms.
	Debounce time.Duration `json:"debounce"`

	// MaxDelay bounds how long a continuous burst can postpone a recompute.
	// Default: 5s.
	MaxDelay time.Duration `json:"max_delay"`

	// Timeout is the maximum time allowed for one recompute.
	// Default: 2m.
	Timeout time.Duration `json:"timeout"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// SearchK is the number of title candidates the orchestrator tries.
	// Default: 10.
	SearchK int `json:"search_k"`

	// MaxK is the maximum allowed K on a request.
	// Default: 100.
	MaxK int `json:"max_k"`

	// TopN is the number of collaborative recommendations returned.
	// Default: 10.
	TopN int `json:"top_n"`

	// ExcludeSeed drops the anchor item from its own collaborative result.
	// Default: false.
	ExcludeSeed bool `json:"exclude_seed"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether responses are memoized.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with the reference policy and production defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: DefaultThresholds(),
		Index: IndexConfig{
			SmoothIDF: false,
			MaxNGram:  2,
		},
		Pool: PoolConfig{
			Debounce: 250 * time.Millisecond,
			MaxDelay: 5 * time.Second,
			Timeout:  2 * time.Minute,
		},
		Limits: LimitsConfig{
			SearchK: 10,
			MaxK:    100,
			TopN:    10,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}

	if c.Index.MaxNGram < 1 || c.Index.MaxNGram > 2 {
		return fmt.Errorf("index.max_ngram must be 1 or 2, got %d", c.Index.MaxNGram)
	}

	if c.Pool.Debounce < 0 {
		return fmt.Errorf("pool.debounce must be non-negative, got %v", c.Pool.Debounce)
	}
	if c.Pool.MaxDelay < c.Pool.Debounce {
		return fmt.Errorf("pool.max_delay must be >= pool.debounce, got %v < %v", c.Pool.MaxDelay, c.Pool.Debounce)
	}
	if c.Pool.Timeout <= 0 {
		return fmt.Errorf("pool.timeout must be positive, got %v", c.Pool.Timeout)
	}

	if c.Limits.SearchK < 1 {
		return fmt.Errorf("limits.search_k must be positive, got %d", c.Limits.SearchK)
	}
	if c.Limits.MaxK < c.Limits.SearchK {
		return fmt.Errorf("limits.max_k must be >= limits.search_k, got %d < %d", c.Limits.MaxK, c.Limits.SearchK)
	}
	if c.Limits.TopN < 1 {
		return fmt.Errorf("limits.top_n must be positive, got %d", c.Limits.TopN)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be non-negative, got %d", c.Cache.MaxEntries)
	}

	return nil
}

// Validate checks the scoring policy constants.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.RatingThreshold) || t.RatingThreshold < 0 || t.RatingThreshold > 5 {
		return fmt.Errorf("thresholds.rating_threshold must be in [0, 5], got %f", t.RatingThreshold)
	}
	if math.IsNaN(t.TrustThreshold) || t.TrustThreshold < -1 || t.TrustThreshold > 1 {
		return fmt.Errorf("thresholds.trust_threshold must be in [-1, 1], got %f", t.TrustThreshold)
	}
	if math.IsNaN(t.LikedThreshold) || t.LikedThreshold < 0 || t.LikedThreshold > 5 {
		return fmt.Errorf("thresholds.liked_threshold must be in [0, 5], got %f", t.LikedThreshold)
	}
	if math.IsNaN(t.MinFanShare) || t.MinFanShare < 0 || t.MinFanShare >= 1 {
		return fmt.Errorf("thresholds.min_fan_share must be in [0, 1), got %f", t.MinFanShare)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}
