// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package trustpool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/recommend"
)

// mockSource is an in-memory Source whose contents can change between recomputes.
type mockSource struct {
	mu       sync.Mutex
	ratings  []recommend.Rating
	comments []recommend.Comment
	err      error
	calls    int
}

func (m *mockSource) ListRatings(_ context.Context) ([]recommend.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]recommend.Rating(nil), m.ratings...), nil
}

func (m *mockSource) ListComments(_ context.Context) ([]recommend.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recommend.Comment(nil), m.comments...), nil
}

func (m *mockSource) set(ratings []recommend.Rating, comments []recommend.Comment, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings, m.comments, m.err = ratings, comments, err
}

func newTestManager(t *testing.T, src Source) *Manager {
	t.Helper()
	m, err := NewManager(src, recommend.DefaultThresholds(), recommend.DefaultConfig().Pool, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(nil, recommend.DefaultThresholds(), recommend.PoolConfig{}, zerolog.Nop()); err == nil {
		t.Error("expected error for nil source")
	}

	bad := recommend.DefaultThresholds()
	bad.MinFanShare = 2
	if _, err := NewManager(&mockSource{}, bad, recommend.PoolConfig{}, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid thresholds")
	}
}

func TestManager_CurrentBeforeFirstRecompute(t *testing.T) {
	m := newTestManager(t, &mockSource{})
	if m.Current() != nil {
		t.Error("Current() should be nil before the first recompute")
	}
	if got := m.Current().Size(); got != 0 {
		t.Errorf("nil pool Size() = %d, want 0", got)
	}
}

func TestManager_RecomputeIncrementsGeneration(t *testing.T) {
	src := &mockSource{ratings: []recommend.Rating{
		{UserID: 1, ItemID: 10, Score: 5},
		{UserID: 2, ItemID: 10, Score: 3},
	}}
	m := newTestManager(t, src)
	ctx := context.Background()

	first, err := m.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if first.Generation != 1 {
		t.Errorf("first generation = %d, want 1", first.Generation)
	}
	if first.Size() != 1 {
		t.Errorf("pool size = %d, want 1", first.Size())
	}

	second, err := m.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if second.Generation != 2 {
		t.Errorf("second generation = %d, want 2", second.Generation)
	}
	if m.Current() != second {
		t.Error("Current() should return the latest snapshot")
	}
}

func TestManager_FailureKeepsLastGoodSnapshot(t *testing.T) {
	src := &mockSource{ratings: []recommend.Rating{{UserID: 1, ItemID: 10, Score: 5}}}
	m := newTestManager(t, src)
	ctx := context.Background()

	good, err := m.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}

	tests := []struct {
		name     string
		ratings  []recommend.Rating
		comments []recommend.Comment
		err      error
		wantComp bool
	}{
		{name: "source error", err: errors.New("disk on fire")},
		{name: "malformed rating", ratings: []recommend.Rating{{UserID: 1, ItemID: 10, Score: 9}}, wantComp: true},
		{name: "malformed polarity", ratings: []recommend.Rating{{UserID: 1, ItemID: 10, Score: 5}},
			comments: []recommend.Comment{{ID: 1, UserID: 1, ItemID: 10, Polarity: 3}}, wantComp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.set(tt.ratings, tt.comments, tt.err)

			_, err := m.Recompute(ctx)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantComp && !errors.Is(err, recommend.ErrComputation) {
				t.Errorf("error %v should wrap ErrComputation", err)
			}
			if m.Current() != good {
				t.Error("failed recompute replaced the snapshot")
			}
			if st := m.Stats(); st.LastError == "" || st.Generation != good.Generation {
				t.Errorf("unexpected stats after failure: %+v", st)
			}
		})
	}

	if got := m.Stats().Failures; got != int64(len(tests)) {
		t.Errorf("Failures = %d, want %d", got, len(tests))
	}
}

func TestManager_RecomputeIsIdempotent(t *testing.T) {
	src := &mockSource{
		ratings: []recommend.Rating{
			{UserID: 3, ItemID: 2, Score: 5},
			{UserID: 1, ItemID: 1, Score: 5},
			{UserID: 2, ItemID: 1, Score: 4.5},
		},
		comments: []recommend.Comment{{ID: 1, UserID: 2, ItemID: 1, Polarity: 0.9}},
	}
	m := newTestManager(t, src)

	a, _ := m.Recompute(context.Background())
	b, _ := m.Recompute(context.Background())

	ra, rb := a.Trusted.All(), b.Trusted.All()
	if len(ra) != len(rb) {
		t.Fatalf("trusted sizes differ: %d vs %d", len(ra), len(rb))
	}
	for i := range ra {
		if ra[i] != rb[i] {
			t.Errorf("row %d differs: %+v vs %+v", i, ra[i], rb[i])
		}
	}
}

func TestManager_InvalidateCoalesces(t *testing.T) {
	m := newTestManager(t, &mockSource{})

	for range 50 {
		m.Invalidate()
	}

	select {
	case <-m.Pending():
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-m.Pending():
		t.Fatal("bursts should coalesce into one signal")
	default:
	}

	if got := m.Stats().Invalidations; got != 50 {
		t.Errorf("Invalidations = %d, want 50", got)
	}
}

func TestManager_WaitForGeneration(t *testing.T) {
	m := newTestManager(t, &mockSource{})

	done := make(chan *recommend.TrustPool, 1)
	go func() {
		pool, err := m.WaitForGeneration(context.Background(), 2)
		if err != nil {
			t.Errorf("WaitForGeneration() error = %v", err)
		}
		done <- pool
	}()

	for range 2 {
		if _, err := m.Recompute(context.Background()); err != nil {
			t.Fatalf("Recompute() error = %v", err)
		}
	}

	select {
	case pool := <-done:
		if pool == nil || pool.Generation < 2 {
			t.Errorf("got pool %+v, want generation >= 2", pool)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForGeneration did not return")
	}
}

func TestManager_WaitForGeneration_ContextCanceled(t *testing.T) {
	m := newTestManager(t, &mockSource{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := m.WaitForGeneration(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
}

func TestManager_String(t *testing.T) {
	m := newTestManager(t, &mockSource{})
	if got := m.String(); got != "trustpool-manager" {
		t.Errorf("String() = %q", got)
	}
}
