// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	h := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Info("service started", "service", "http", "port", 8080, "ok", true)

	out := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"message":"service started"`,
		`"service":"http"`,
		`"port":8080`,
		`"ok":true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		With("topic", "feedback.rating").
		WithGroup("handler")

	logger.Warn("retrying", "attempt", 2)

	out := buf.String()
	if !strings.Contains(out, `"handler.topic":"feedback.rating"`) && !strings.Contains(out, `"topic":"feedback.rating"`) {
		t.Errorf("missing pre-configured attr: %s", out)
	}
	if !strings.Contains(out, `"handler.attempt":2`) {
		t.Errorf("missing grouped attr: %s", out)
	}
}

func TestAddAttr_NestedGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	event := logger.Info()
	attr := slog.Group("outer", slog.Group("inner", slog.Duration("took", time.Second)))
	addAttr(event, attr, []string{"root"}).Msg("")

	if !strings.Contains(buf.String(), `"root.outer.inner.took"`) {
		t.Errorf("unexpected key layout: %s", buf.String())
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewComponentSlogLogger(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	NewComponentSlogLogger("events").Info("router running")

	if !strings.Contains(buf.String(), `"component":"events"`) {
		t.Errorf("missing component field: %s", buf.String())
	}
}
