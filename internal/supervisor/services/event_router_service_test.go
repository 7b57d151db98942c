// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockRouter struct {
	runErr error
	closed atomic.Int32
}

func (m *mockRouter) Run(ctx context.Context) error {
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return nil
}

func (m *mockRouter) Close() error {
	m.closed.Add(1)
	return nil
}

func TestEventRouterService_StopsWithContext(t *testing.T) {
	svc := NewEventRouterService(&mockRouter{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want context.DeadlineExceeded", err)
	}
}

func TestEventRouterService_FailureIsNotRestarted(t *testing.T) {
	runErr := errors.New("subscribe: connection refused")
	router := &mockRouter{runErr: runErr}
	svc := NewEventRouterService(router)

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
	}
	if !errors.Is(err, runErr) {
		t.Errorf("Serve() = %v, want wrapped %v", err, runErr)
	}
	if router.closed.Load() != 1 {
		t.Errorf("Close called %d times, want 1", router.closed.Load())
	}
	if svc.String() != "event-router" {
		t.Errorf("String() = %q", svc.String())
	}
}
