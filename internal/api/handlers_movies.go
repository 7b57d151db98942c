// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/tomtom215/marquee/internal/recommend"
)

type addMovieRequest struct {
	ID    int    `json:"id" validate:"gt=0"`
	Title string `json:"title" validate:"required,notblank,max=512"`
}

type rateRequest struct {
	UserID int      `json:"user_id" validate:"gt=0"`
	Rating *float64 `json:"rating" validate:"required,finite,gte=0,lte=5"`
}

// AddMovie handles POST /api/v1/movies
// Returns 201 for a new movie and 200 when an existing one was replaced.
func (h *Handler) AddMovie(w http.ResponseWriter, r *http.Request) {
	var req addMovieRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.feedback.AddMovie(r.Context(), recommend.Item{ID: req.ID, Title: req.Title})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	item, err := h.feedback.GetMovie(r.Context(), req.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, status, item)
}

// GetMovie handles GET /api/v1/movies/{movieID}
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	item, err := h.feedback.GetMovie(r.Context(), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, item)
}

// MovieRating handles GET /api/v1/movies/{movieID}/rating
// Returns the average rating and vote count.
func (h *Handler) MovieRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	stats, err := h.feedback.RatingStats(r.Context(), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, stats)
}

// UserRating handles GET /api/v1/movies/{movieID}/rating/{userID}
func (h *Handler) UserRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	rating, err := h.feedback.GetRating(r.Context(), userID, movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, rating)
}

// Rate handles POST /api/v1/movies/{movieID}/ratings
// Body: {"user_id": 7, "rating": 4.5}
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rating := recommend.Rating{UserID: req.UserID, ItemID: movieID, Score: *req.Rating}
	if err := h.feedback.Rate(r.Context(), rating); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, rating)
}

// Unrate handles DELETE /api/v1/movies/{movieID}/ratings/{userID}
func (h *Handler) Unrate(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	if err := h.feedback.Unrate(r.Context(), userID, movieID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
