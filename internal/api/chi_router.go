// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	if router.handler.perf != nil {
		r.Use(router.handler.perf.Middleware)
	}

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/status", router.handler.Status)
		r.Post("/recommend", router.handler.Recommend)

		r.Route("/movies", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.AddMovie)

			r.Route("/{movieID}", func(r chi.Router) {
				r.Get("/", router.handler.GetMovie)
				r.Get("/rating", router.handler.MovieRating)
				r.Get("/rating/{userID}", router.handler.UserRating)
				r.Get("/comments", router.handler.ListComments)

				r.Group(func(r chi.Router) {
					r.Use(router.chiMiddleware.RateLimitWrite())
					r.Post("/ratings", router.handler.Rate)
					r.Delete("/ratings/{userID}", router.handler.Unrate)
					r.Post("/comments", router.handler.AddComment)
				})
			})
		})

		r.Route("/comments/{commentID}", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())
			r.Put("/", router.handler.EditComment)
			r.Delete("/", router.handler.DeleteComment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
