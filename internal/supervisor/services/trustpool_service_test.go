// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/recommend"
)

type mockPool struct {
	cfg     recommend.PoolConfig
	pending chan struct{}

	mu       sync.Mutex
	failures int // number of upcoming Recompute calls that fail
	calls    atomic.Int32
	done     chan struct{}
}

func newMockPool(cfg recommend.PoolConfig) *mockPool {
	return &mockPool{cfg: cfg, pending: make(chan struct{}, 1), done: make(chan struct{}, 64)}
}

func (m *mockPool) Recompute(context.Context) (*recommend.TrustPool, error) {
	m.calls.Add(1)
	defer func() {
		select {
		case m.done <- struct{}{}:
		default:
		}
	}()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return nil, errors.New("store unavailable")
	}
	return &recommend.TrustPool{Generation: uint64(m.calls.Load())}, nil
}

func (m *mockPool) Pending() <-chan struct{}     { return m.pending }
func (m *mockPool) Config() recommend.PoolConfig { return m.cfg }

func (m *mockPool) invalidate() {
	select {
	case m.pending <- struct{}{}:
	default:
	}
}

func (m *mockPool) waitCall(t *testing.T) {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("recompute was not called")
	}
}

func startService(t *testing.T, svc *TrustPoolService) (cancel func(), errCh <-chan error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- svc.Serve(ctx) }()
	return stop, ch
}

func TestTrustPoolService_Interface(t *testing.T) {
	var _ suture.Service = (*TrustPoolService)(nil)
}

func TestTrustPoolService_ComputesAtStartup(t *testing.T) {
	pool := newMockPool(recommend.PoolConfig{Debounce: 10 * time.Millisecond, MaxDelay: time.Second})
	cancel, errCh := startService(t, NewTrustPoolService(pool, zerolog.Nop()))

	pool.waitCall(t)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := pool.calls.Load(); got != 1 {
		t.Errorf("recomputes = %d, want 1", got)
	}
}

func TestTrustPoolService_CoalescesBurst(t *testing.T) {
	pool := newMockPool(recommend.PoolConfig{Debounce: 50 * time.Millisecond, MaxDelay: 5 * time.Second})
	cancel, _ := startService(t, NewTrustPoolService(pool, zerolog.Nop()))
	defer cancel()
	pool.waitCall(t)

	for i := 0; i < 10; i++ {
		pool.invalidate()
		time.Sleep(5 * time.Millisecond)
	}
	pool.waitCall(t)
	time.Sleep(150 * time.Millisecond)

	if got := pool.calls.Load(); got != 2 {
		t.Errorf("recomputes = %d, want 2 (startup + one for the burst)", got)
	}
}

func TestTrustPoolService_MaxDelayBoundsBurst(t *testing.T) {
	pool := newMockPool(recommend.PoolConfig{Debounce: 40 * time.Millisecond, MaxDelay: 100 * time.Millisecond})
	cancel, _ := startService(t, NewTrustPoolService(pool, zerolog.Nop()))
	defer cancel()
	pool.waitCall(t)

	// Keep signaling faster than the debounce for longer than MaxDelay.
	stop := time.After(400 * time.Millisecond)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-stop:
			break loop
		case <-tick.C:
			pool.invalidate()
		}
	}

	if got := pool.calls.Load(); got < 3 {
		t.Errorf("recomputes = %d, want at least 3 during a continuous burst", got)
	}
}

func TestTrustPoolService_RetriesAfterFailure(t *testing.T) {
	pool := newMockPool(recommend.PoolConfig{Debounce: 10 * time.Millisecond, MaxDelay: time.Second})
	pool.failures = 2
	svc := NewTrustPoolService(pool, zerolog.Nop()).WithRetryInterval(20 * time.Millisecond)
	cancel, _ := startService(t, svc)
	defer cancel()

	pool.waitCall(t)
	pool.waitCall(t)
	pool.waitCall(t)

	if got := pool.calls.Load(); got != 3 {
		t.Errorf("recomputes = %d, want 3 (two failures then success)", got)
	}
}

func TestTrustPoolService_String(t *testing.T) {
	if got := NewTrustPoolService(newMockPool(recommend.PoolConfig{}), zerolog.Nop()).String(); got != "trust-pool" {
		t.Errorf("String() = %q", got)
	}
}
