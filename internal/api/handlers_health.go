// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/trustpool"
)

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	Uptime         float64 `json:"uptime_seconds"`
	IndexedItems   int     `json:"indexed_items"`
	PoolGeneration uint64  `json:"pool_generation"`
	PoolLastError  string  `json:"pool_last_error,omitempty"`
}

// ServiceStatus is the body of /api/v1/status.
type ServiceStatus struct {
	Engine    recommend.Status           `json:"engine"`
	TrustPool trustpool.Stats            `json:"trust_pool"`
	Endpoints []middleware.EndpointStats `json:"endpoints,omitempty"`
	Uptime    float64                    `json:"uptime_seconds"`
	Version   string                     `json:"version"`
}

func (h *Handler) health() HealthStatus {
	engine := h.engine.Status()
	pool := h.pool.Stats()

	// A pool that was never computed cannot serve collaborative results.
	status := "healthy"
	if pool.Generation == 0 {
		status = "starting"
	} else if pool.LastError != "" && pool.LastErrorAt.After(pool.ComputedAt) {
		status = "degraded"
	}

	return HealthStatus{
		Status:         status,
		Version:        h.version,
		Uptime:         time.Since(h.startTime).Seconds(),
		IndexedItems:   engine.IndexedItems,
		PoolGeneration: pool.Generation,
		PoolLastError:  pool.LastError,
	}
}

// Health handles GET /health
// Always 200; the status field says whether the trust pool is current.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.health())
}

// HealthLive handles GET /health/live
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /health/ready
// Returns 503 until the first trust pool snapshot is published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	hs := h.health()
	if hs.Status == "starting" {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Trust pool not computed yet", nil)
		return
	}
	respondData(w, r, http.StatusOK, hs)
}

// Status handles GET /api/v1/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := ServiceStatus{
		Engine:    h.engine.Status(),
		TrustPool: h.pool.Stats(),
		Uptime:    time.Since(h.startTime).Seconds(),
		Version:   h.version,
	}
	if h.perf != nil {
		st.Endpoints = h.perf.Stats()
	}
	respondData(w, r, http.StatusOK, st)
}
