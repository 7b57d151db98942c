// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
)

// mockIndex implements TitleIndex with canned results.
type mockIndex struct {
	mu       sync.Mutex
	results  []SearchResult
	ingested []Item
	queries  []string
}

func (m *mockIndex) Search(query string, k int) []SearchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if len(m.results) > k {
		return m.results[:k]
	}
	return m.results
}

func (m *mockIndex) Ingest(items ...Item) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	added := 0
	for _, it := range items {
		dup := false
		for _, have := range m.ingested {
			if have.ID == it.ID {
				dup = true
			}
		}
		if !dup {
			m.ingested = append(m.ingested, it)
			added++
		}
	}
	return added
}

func (m *mockIndex) Replace(item Item) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, have := range m.ingested {
		if have.ID == item.ID && have.Title != item.Title {
			m.ingested[i] = item
			return true
		}
	}
	return false
}

func (m *mockIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results) + len(m.ingested)
}

func (m *mockIndex) searches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// mockScorer returns per-seed results and records which pools it saw.
type mockScorer struct {
	mu     sync.Mutex
	bySeed map[int][]ScoredItem
	errs   map[int]error
	seeds  []int
	pools  []*TrustPool
	hook   func(seed int)
}

func (m *mockScorer) Score(ctx context.Context, seed int, pool *TrustPool, _ *RatingIndex) ([]ScoredItem, error) {
	if m.hook != nil {
		m.hook(seed)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeds = append(m.seeds, seed)
	m.pools = append(m.pools, pool)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.errs[seed]; err != nil {
		return nil, err
	}
	return m.bySeed[seed], nil
}

// mockPool is a PoolHandle whose snapshot can be swapped mid-request.
type mockPool struct {
	current     atomic.Pointer[TrustPool]
	invalidated atomic.Int32
}

func (m *mockPool) Current() *TrustPool { return m.current.Load() }
func (m *mockPool) Invalidate()         { m.invalidated.Add(1) }

func newPool(generation uint64) *TrustPool {
	return &TrustPool{Generation: generation, Trusted: NewRatingIndex(nil), All: NewRatingIndex(nil)}
}

func candidates(ids ...int) []SearchResult {
	out := make([]SearchResult, len(ids))
	for i, id := range ids {
		out[i] = SearchResult{Item: Item{ID: id, Title: "Movie " + string(rune('A'+i))}, Similarity: 1 - float64(i)/10, Position: i}
	}
	return out
}

func newTestEngine(t *testing.T, cfg *Config, idx *mockIndex, sc *mockScorer, pool *mockPool) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, idx, sc, pool, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestNewEngine(t *testing.T) {
	idx, sc, pool := &mockIndex{}, &mockScorer{}, &mockPool{}

	tests := []struct {
		name    string
		cfg     *Config
		index   TitleIndex
		scorer  CollaborativeScorer
		pool    PoolHandle
		wantErr bool
	}{
		{name: "nil config uses defaults", index: idx, scorer: sc, pool: pool},
		{name: "invalid config", cfg: &Config{}, index: idx, scorer: sc, pool: pool, wantErr: true},
		{name: "missing index", scorer: sc, pool: pool, wantErr: true},
		{name: "missing scorer", index: idx, pool: pool, wantErr: true},
		{name: "missing pool", index: idx, scorer: sc, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.cfg, tt.index, tt.scorer, tt.pool, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if e != nil {
				e.Close()
			}
		})
	}
}

func TestEngine_Recommend(t *testing.T) {
	collab := []ScoredItem{{ID: 9, Title: "Nine", Score: 2}}

	tests := []struct {
		name       string
		results    []SearchResult
		bySeed     map[int][]ScoredItem
		errs       map[int]error
		wantSource Source
		wantAnchor int
		wantIDs    []int
		wantSeeds  []int
	}{
		{
			name:       "no candidates",
			wantSource: SourceNone,
		},
		{
			name:       "first candidate has signal",
			results:    candidates(1, 2, 3),
			bySeed:     map[int][]ScoredItem{1: collab},
			wantSource: SourceCollaborative,
			wantAnchor: 1,
			wantIDs:    []int{9},
			wantSeeds:  []int{1},
		},
		{
			name:       "ladder skips empty candidates",
			results:    candidates(1, 2, 3),
			bySeed:     map[int][]ScoredItem{3: collab},
			wantSource: SourceCollaborative,
			wantAnchor: 3,
			wantIDs:    []int{9},
			wantSeeds:  []int{1, 2, 3},
		},
		{
			name:       "scorer error does not stop the ladder",
			results:    candidates(1, 2),
			bySeed:     map[int][]ScoredItem{2: collab},
			errs:       map[int]error{1: errors.New("boom")},
			wantSource: SourceCollaborative,
			wantAnchor: 2,
			wantIDs:    []int{9},
			wantSeeds:  []int{1, 2},
		},
		{
			name:       "content fallback",
			results:    candidates(4, 5),
			wantSource: SourceContent,
			wantIDs:    []int{4, 5},
			wantSeeds:  []int{4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &mockIndex{results: tt.results}
			sc := &mockScorer{bySeed: tt.bySeed, errs: tt.errs}
			pool := &mockPool{}
			pool.current.Store(newPool(1))
			e := newTestEngine(t, nil, idx, sc, pool)

			resp, err := e.Recommend(context.Background(), Request{Query: "anything"})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if resp.Source != tt.wantSource {
				t.Errorf("Source = %v, want %v", resp.Source, tt.wantSource)
			}
			if resp.AnchorItemID != tt.wantAnchor {
				t.Errorf("AnchorItemID = %d, want %d", resp.AnchorItemID, tt.wantAnchor)
			}
			if resp.Items == nil {
				t.Error("Items should never be nil")
			}
			if len(resp.Items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", len(resp.Items), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if resp.Items[i].ID != id {
					t.Errorf("Items[%d].ID = %d, want %d", i, resp.Items[i].ID, id)
				}
			}
			if len(sc.seeds) != len(tt.wantSeeds) {
				t.Errorf("scorer called with %v, want %v", sc.seeds, tt.wantSeeds)
			}
			if resp.Metadata.RequestID == "" {
				t.Error("RequestID should be generated")
			}
		})
	}
}

func TestEngine_Recommend_ContentFallbackKeepsSimilarity(t *testing.T) {
	idx := &mockIndex{results: candidates(4, 5)}
	e := newTestEngine(t, nil, idx, &mockScorer{}, &mockPool{})

	resp, err := e.Recommend(context.Background(), Request{Query: "x"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Items[0].Title != "Movie A" || resp.Items[0].Score != 1 {
		t.Errorf("unexpected first item: %+v", resp.Items[0])
	}
}

func TestEngine_Recommend_BlankQuery(t *testing.T) {
	e := newTestEngine(t, nil, &mockIndex{}, &mockScorer{}, &mockPool{})

	for _, q := range []string{"", "   ", "\t\n"} {
		if _, err := e.Recommend(context.Background(), Request{Query: q}); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Recommend(%q) error = %v, want ErrInvalidQuery", q, err)
		}
	}
	if got := e.Status().Errors; got != 3 {
		t.Errorf("Errors = %d, want 3", got)
	}
}

func TestEngine_Recommend_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sc := &mockScorer{hook: func(int) { cancel() }}
	e := newTestEngine(t, nil, &mockIndex{results: candidates(1, 2, 3)}, sc, &mockPool{})

	_, err := e.Recommend(ctx, Request{Query: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(sc.seeds) != 1 {
		t.Errorf("scorer called %d times after cancel, want 1", len(sc.seeds))
	}
}

func TestEngine_Recommend_SnapshotReadOnce(t *testing.T) {
	pool := &mockPool{}
	first := newPool(1)
	pool.current.Store(first)

	// Publish a new generation while the ladder is running.
	sc := &mockScorer{hook: func(int) { pool.current.Store(newPool(2)) }}
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	e := newTestEngine(t, cfg, &mockIndex{results: candidates(1, 2, 3)}, sc, pool)

	resp, err := e.Recommend(context.Background(), Request{Query: "x"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i, p := range sc.pools {
		if p != first {
			t.Errorf("scorer call %d saw generation %d, want 1", i, p.Generation)
		}
	}
	if resp.Metadata.PoolGeneration != 1 {
		t.Errorf("PoolGeneration = %d, want 1", resp.Metadata.PoolGeneration)
	}
}

func TestEngine_Recommend_KClamped(t *testing.T) {
	idx := &mockIndex{results: candidates(1, 2, 3, 4, 5)}
	cfg := DefaultConfig()
	cfg.Limits.SearchK = 2
	cfg.Limits.MaxK = 3
	e := newTestEngine(t, cfg, idx, &mockScorer{}, &mockPool{})

	tests := []struct {
		k    int
		want int
	}{
		{0, 2},
		{-1, 2},
		{1, 1},
		{50, 3},
	}
	for _, tt := range tests {
		resp, err := e.Recommend(context.Background(), Request{Query: "q", K: tt.k})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(resp.Items) != tt.want {
			t.Errorf("K=%d: got %d items, want %d", tt.k, len(resp.Items), tt.want)
		}
	}
}

func TestEngine_Recommend_Cache(t *testing.T) {
	idx := &mockIndex{results: candidates(1)}
	sc := &mockScorer{bySeed: map[int][]ScoredItem{1: {{ID: 7, Title: "Seven", Score: 1}}}}
	pool := &mockPool{}
	pool.current.Store(newPool(1))
	e := newTestEngine(t, nil, idx, sc, pool)
	ctx := context.Background()

	first, err := e.Recommend(ctx, Request{Query: "Toy Story"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first request should miss the cache")
	}

	second, _ := e.Recommend(ctx, Request{Query: "toy story!", RequestID: "req-2"})
	if !second.Metadata.CacheHit {
		t.Error("normalized query should hit the cache")
	}
	if second.Metadata.RequestID != "req-2" {
		t.Errorf("cached response RequestID = %q, want req-2", second.Metadata.RequestID)
	}
	if idx.searches() != 1 {
		t.Errorf("index searched %d times, want 1", idx.searches())
	}

	// Mutating a cached copy must not leak into later hits.
	second.Items[0].Title = "mutated"

	// A new pool generation invalidates the memo.
	pool.current.Store(newPool(2))
	third, _ := e.Recommend(ctx, Request{Query: "Toy Story"})
	if third.Metadata.CacheHit {
		t.Error("new pool generation should miss the cache")
	}
	if third.Items[0].Title != "Seven" {
		t.Errorf("Title = %q, want Seven", third.Items[0].Title)
	}

	st := e.Status()
	if st.CacheHits != 1 || st.CacheMisses != 2 {
		t.Errorf("cache stats = %d hits / %d misses, want 1/2", st.CacheHits, st.CacheMisses)
	}
}

func TestEngine_Recommend_CacheDisabled(t *testing.T) {
	idx := &mockIndex{results: candidates(1)}
	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	e := newTestEngine(t, cfg, idx, &mockScorer{}, &mockPool{})

	for range 3 {
		if _, err := e.Recommend(context.Background(), Request{Query: "q"}); err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
	}
	if idx.searches() != 3 {
		t.Errorf("index searched %d times, want 3", idx.searches())
	}
}

func TestEngine_IngestItem(t *testing.T) {
	idx := &mockIndex{}
	e := newTestEngine(t, nil, idx, &mockScorer{}, &mockPool{})

	tests := []struct {
		name      string
		item      Item
		wantAdded bool
		wantErr   bool
	}{
		{name: "new item", item: Item{ID: 1, Title: "Heat"}, wantAdded: true},
		{name: "duplicate", item: Item{ID: 1, Title: "Heat"}},
		{name: "zero id", item: Item{Title: "Nope"}, wantErr: true},
		{name: "blank title", item: Item{ID: 2, Title: "  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := e.IngestItem(tt.item)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IngestItem() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrComputation) {
				t.Errorf("error %v should wrap ErrComputation", err)
			}
			if added != tt.wantAdded {
				t.Errorf("added = %v, want %v", added, tt.wantAdded)
			}
		})
	}
}

func TestEngine_NotifyInvalidatesPool(t *testing.T) {
	pool := &mockPool{}
	e := newTestEngine(t, nil, &mockIndex{}, &mockScorer{}, pool)

	e.NotifyRatingChanged()
	e.NotifyCommentChanged()

	if got := pool.invalidated.Load(); got != 2 {
		t.Errorf("Invalidate called %d times, want 2", got)
	}
}

func TestEngine_Status(t *testing.T) {
	pool := &mockPool{}
	p := newPool(7)
	p.Trusted = NewRatingIndex([]Rating{{UserID: 1, ItemID: 1, Score: 5}})
	pool.current.Store(p)
	e := newTestEngine(t, nil, &mockIndex{results: candidates(1, 2)}, &mockScorer{}, pool)

	st := e.Status()
	if st.IndexedItems != 2 {
		t.Errorf("IndexedItems = %d, want 2", st.IndexedItems)
	}
	if st.PoolGeneration != 7 || st.PoolSize != 1 {
		t.Errorf("pool status = gen %d size %d, want 7/1", st.PoolGeneration, st.PoolSize)
	}
}

func TestEngine_ConcurrentAccess(t *testing.T) {
	sc := &mockScorer{bySeed: map[int][]ScoredItem{2: {{ID: 3, Title: "Three"}}}}
	pool := &mockPool{}
	pool.current.Store(newPool(1))
	e := newTestEngine(t, nil, &mockIndex{results: candidates(1, 2)}, sc, pool)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				pool.current.Store(newPool(uint64(i + 2)))
			}
			if _, err := e.Recommend(context.Background(), Request{Query: "q"}); err != nil {
				t.Errorf("Recommend() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := e.Status().Requests; got != 20 {
		t.Errorf("Requests = %d, want 20", got)
	}
}

func TestEngine_IngestItemRetitleInvalidatesCache(t *testing.T) {
	idx := &mockIndex{results: candidates(1)}
	pool := &mockPool{}
	pool.current.Store(newPool(1))
	e := newTestEngine(t, nil, idx, &mockScorer{}, pool)
	ctx := context.Background()

	if added, _ := e.IngestItem(Item{ID: 5, Title: "Heat"}); !added {
		t.Fatal("first ingest should add")
	}
	if _, err := e.Recommend(ctx, Request{Query: "heat"}); err != nil {
		t.Fatal(err)
	}
	if resp, _ := e.Recommend(ctx, Request{Query: "heat"}); !resp.Metadata.CacheHit {
		t.Fatal("second identical request should hit the cache")
	}

	added, err := e.IngestItem(Item{ID: 5, Title: "Heat Returns"})
	if err != nil || added {
		t.Fatalf("IngestItem(retitle) = %v, %v; want false, nil", added, err)
	}
	if idx.ingested[0].Title != "Heat Returns" {
		t.Errorf("index title = %q, want Heat Returns", idx.ingested[0].Title)
	}
	if resp, _ := e.Recommend(ctx, Request{Query: "heat"}); resp.Metadata.CacheHit {
		t.Error("retitled catalog served a cached response")
	}
}

func TestEngine_RecommendAllCandidatesFail(t *testing.T) {
	boom := errors.New("store unavailable")
	sc := &mockScorer{errs: map[int]error{1: boom, 2: boom}}
	pool := &mockPool{}
	pool.current.Store(newPool(1))
	e := newTestEngine(t, nil, &mockIndex{results: candidates(1, 2)}, sc, pool)

	errorsBefore := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues("error"))

	_, err := e.Recommend(context.Background(), Request{Query: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("Recommend() error = %v, want wrapped scorer error", err)
	}
	st := e.Status()
	if st.Errors != 1 || st.ScoreErrors != 2 {
		t.Errorf("Errors = %d ScoreErrors = %d, want 1 and 2", st.Errors, st.ScoreErrors)
	}
	if got := testutil.ToFloat64(metrics.RecommendRequests.WithLabelValues("error")) - errorsBefore; got != 1 {
		t.Errorf("error recommendations recorded = %v, want 1", got)
	}
}

func TestEngine_RecommendRecordsMetrics(t *testing.T) {
	pool := &mockPool{}
	pool.current.Store(newPool(1))
	e := newTestEngine(t, nil, &mockIndex{results: candidates(4, 5)}, &mockScorer{}, pool)

	content := metrics.RecommendRequests.WithLabelValues("content")
	hits := metrics.RecommendCacheResults.WithLabelValues("hit")
	contentBefore, hitsBefore := testutil.ToFloat64(content), testutil.ToFloat64(hits)

	for range 2 {
		if _, err := e.Recommend(context.Background(), Request{Query: "metrics"}); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(content) - contentBefore; got != 2 {
		t.Errorf("content recommendations recorded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(hits) - hitsBefore; got != 1 {
		t.Errorf("cache hits recorded = %v, want 1", got)
	}
}
