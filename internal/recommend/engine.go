// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Note: the engine depends on its collaborators through the interfaces
// below. Concrete implementations live in recommend/algorithms and
// recommend/trustpool and are wired together in cmd/marquee.

// TitleIndex answers "which titles are textually closest to this query".
type TitleIndex interface {
	// Search returns up to k items, most similar first.
	Search(query string, k int) []SearchResult

	// Ingest projects new items into the index and returns how many were added.
	Ingest(items ...Item) int

	// Replace swaps the title of an indexed item. It reports false when the
	// item is not indexed or its title is unchanged.
	Replace(item Item) bool

	// Len returns the number of indexed items.
	Len() int
}

// CollaborativeScorer ranks items loved by the trusted fans of a seed item.
type CollaborativeScorer interface {
	// Score returns recommendations anchored on seedItemID, best first.
	// An empty result means no signal and is not an error.
	Score(ctx context.Context, seedItemID int, pool *TrustPool, all *RatingIndex) ([]ScoredItem, error)
}

// PoolHandle gives read access to the current trust pool snapshot.
type PoolHandle interface {
	// Current returns the last completed snapshot, or nil before the first one.
	Current() *TrustPool

	// Invalidate schedules an asynchronous recomputation and returns immediately.
	Invalidate()
}

// Engine is the recommendation orchestrator. It resolves a free-text query
// to title candidates and returns the first collaborative result anchored on
// one of them, falling back to the candidates themselves.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	index  TitleIndex
	scorer CollaborativeScorer
	pool   PoolHandle

	// Memoized responses keyed by query, catalog version and pool generation.
	cache *cache.Cache[*Response]

	// catalogVersion moves whenever an ingest adds or retitles a movie.
	catalogVersion atomic.Uint64

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
	scoreErrors  atomic.Int64
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, index TitleIndex, scorer CollaborativeScorer, pool PoolHandle, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if index == nil || scorer == nil || pool == nil {
		return nil, errors.New("recommend: index, scorer and pool are required")
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		index:  index,
		scorer: scorer,
		pool:   pool,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.New[*Response](cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	return e, nil
}

// Close releases the response cache.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Recommend resolves req.Query to recommendations.
//
// Candidates come from the title index. The collaborative scorer runs on each
// candidate in similarity order and the first non-empty result is returned.
// When no candidate yields one, the candidates themselves are returned.
// Every scorer call in one request reads the same pool snapshot. A candidate
// whose scoring fails is skipped; if every candidate fails the last error is
// returned instead of a content fallback.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.recommend(ctx, req, start)
	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation("error", false, 0, time.Since(start))
		return nil, err
	}
	metrics.RecordRecommendation(resp.Source.String(), resp.Metadata.CacheHit, resp.Metadata.Attempts, time.Since(start))
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) recommend(ctx context.Context, req Request, start time.Time) (*Response, error) {
	req = e.prepareRequest(req)
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: title must not be blank", ErrInvalidQuery)
	}

	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	pool := e.pool.Current()

	key := e.cacheKey(req, pool)
	if resp := e.tryGetCachedResponse(key, req.RequestID, start, logger); resp != nil {
		return resp, nil
	}

	candidates := e.index.Search(req.Query, req.K)
	if len(candidates) == 0 {
		logger.Debug().Msg("no title candidates")
		resp := e.buildResponse(req, pool, nil, SourceNone, 0, 0, 0, start)
		e.cacheResponse(key, resp)
		return resp, nil
	}

	var (
		failed  int
		lastErr error
	)
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := e.scorer.Score(ctx, candidate.Item.ID, pool, poolRatings(pool))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.scoreErrors.Add(1)
			failed, lastErr = failed+1, err
			logger.Warn().Err(err).
				Int("candidate_id", candidate.Item.ID).
				Msg("collaborative scoring failed, trying next candidate")
			continue
		}
		if len(items) == 0 {
			continue
		}

		resp := e.buildResponse(req, pool, items, SourceCollaborative, candidate.Item.ID, len(candidates), i+1, start)
		e.cacheResponse(key, resp)
		logger.Debug().
			Int("anchor_id", candidate.Item.ID).
			Int("returned", len(items)).
			Int64("latency_ms", resp.Metadata.LatencyMS).
			Msg("collaborative recommendation complete")
		return resp, nil
	}

	if failed == len(candidates) {
		return nil, fmt.Errorf("collaborative scoring failed for all %d candidates: %w", failed, lastErr)
	}

	items := make([]ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, ScoredItem{ID: c.Item.ID, Title: c.Item.Title, Score: c.Similarity})
	}
	resp := e.buildResponse(req, pool, items, SourceContent, 0, len(candidates), len(candidates), start)
	e.cacheResponse(key, resp)
	logger.Debug().
		Int("returned", len(items)).
		Msg("no collaborative signal, returning content candidates")
	return resp, nil
}

// IngestItem extends the title index with a movie that just entered the record store.
// It returns false when the item was already indexed; a changed title then
// replaces the indexed one.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (e *Engine) IngestItem(item Item) (bool, error) {
	if item.ID <= 0 {
		return false, NewComputationError("ingest", "item id must be positive, got %d", item.ID)
	}
	if strings.TrimSpace(item.Title) == "" {
		return false, NewComputationError("ingest", "item %d has a blank title", item.ID)
	}

	added := e.index.Ingest(item) > 0
	replaced := !added && e.index.Replace(item)
	if added || replaced {
		e.catalogVersion.Add(1)
	}
	e.logger.Debug().
		Int("item_id", item.ID).
		Bool("added", added).
		Bool("retitled", replaced).
		Msg("ingested item")
	return added, nil
}

// NotifyRatingChanged schedules a trust pool recomputation. It does not wait.
func (e *Engine) NotifyRatingChanged() {
	e.logger.Debug().Msg("rating changed, invalidating trust pool")
	e.pool.Invalidate()
}

// NotifyCommentChanged schedules a trust pool recomputation. It does not wait.
func (e *Engine) NotifyCommentChanged() {
	e.logger.Debug().Msg("comment changed, invalidating trust pool")
	e.pool.Invalidate()
}

// Status returns a point-in-time view of the engine.
func (e *Engine) Status() Status {
	st := Status{
		IndexedItems: e.index.Len(),
		Requests:     e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		Errors:       e.errorCount.Load(),
		ScoreErrors:  e.scoreErrors.Load(),
	}
	if pool := e.pool.Current(); pool != nil {
		st.PoolGeneration = pool.Generation
		st.PoolSize = pool.Size()
		st.PoolComputedAt = pool.ComputedAt
	}
	return st
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.K <= 0 {
		req.K = e.config.Limits.SearchK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("query", req.Query).
		Int("k", req.K).
		Logger()
}

// cacheKey identifies a response. A new pool generation or a changed catalog
// yields a new key, so stale entries simply age out.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheKey(req Request, pool *TrustPool) string {
	var generation uint64
	if pool != nil {
		generation = pool.Generation
	}
	return cache.GenerateKey("recommend", struct {
		Query      string `json:"q"`
		K          int    `json:"k"`
		Indexed    int    `json:"n"`
		Catalog    uint64 `json:"c"`
		Generation uint64 `json:"g"`
	}{
		Query:      strings.ToLower(strings.TrimSpace(NormalizeTitle(req.Query))),
		K:          req.K,
		Indexed:    e.index.Len(),
		Catalog:    e.catalogVersion.Load(),
		Generation: generation,
	})
}

// tryGetCachedResponse returns a copy of a memoized response, or nil.
func (e *Engine) tryGetCachedResponse(key, requestID string, start time.Time, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cache.Get(key)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp := *cached
	resp.Items = append([]ScoredItem(nil), cached.Items...)
	resp.Metadata.RequestID = requestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("cache hit")
	return &resp
}

// cacheResponse stores the response if caching is enabled.
func (e *Engine) cacheResponse(key string, resp *Response) {
	if e.cache != nil {
		e.cache.Set(key, resp)
	}
}

// buildResponse constructs the final response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, pool *TrustPool, items []ScoredItem, source Source, anchor, candidates, attempts int, start time.Time) *Response {
	if items == nil {
		items = []ScoredItem{}
	}
	var generation uint64
	if pool != nil {
		generation = pool.Generation
	}
	return &Response{
		Items:        items,
		Source:       source,
		AnchorItemID: anchor,
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			Query:          req.Query,
			Candidates:     candidates,
			Attempts:       attempts,
			PoolGeneration: generation,
			LatencyMS:      time.Since(start).Milliseconds(),
			Timestamp:      time.Now(),
		},
	}
}

// poolRatings returns the full rating view captured with the snapshot.
func poolRatings(pool *TrustPool) *RatingIndex {
	if pool == nil {
		return nil
	}
	return pool.All
}
