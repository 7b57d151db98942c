// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is the lifecycle of *eventprocessor.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the feedback event router under supervision.
//
// A watermill router cannot be run again after it stops, so a router that
// fails on its own is not restarted. The feedback service sees the router
// stop through IsRunning and invalidates the trust pool directly instead.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router, name: "event-router"}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	closeErr := s.router.Close()
	if err == nil {
		err = errors.New("router stopped unexpectedly")
	}
	return fmt.Errorf("event router: %w: %w", suture.ErrDoNotRestart, errors.Join(err, closeErr))
}

// String implements fmt.Stringer.
func (s *EventRouterService) String() string {
	return s.name
}
