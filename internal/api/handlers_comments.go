// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
)

type addCommentRequest struct {
	UserID  int    `json:"user_id" validate:"gt=0"`
	Content string `json:"content" validate:"required,notblank,max=4096"`
}

type editCommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=4096"`
}

// ListComments handles GET /api/v1/movies/{movieID}/comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	comments, err := h.feedback.ListComments(r.Context(), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, comments)
}

// AddComment handles POST /api/v1/movies/{movieID}/comments
// Body: {"user_id": 7, "content": "..."}
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(w, r, "movieID")
	if !ok {
		return
	}
	var req addCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.feedback.AddComment(r.Context(), req.UserID, movieID, req.Content)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, c)
}

// EditComment handles PUT /api/v1/comments/{commentID}
func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := idParam(w, r, "commentID")
	if !ok {
		return
	}
	var req editCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.feedback.EditComment(r.Context(), commentID, req.Content)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, c)
}

// DeleteComment handles DELETE /api/v1/comments/{commentID}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := idParam(w, r, "commentID")
	if !ok {
		return
	}
	if err := h.feedback.DeleteComment(r.Context(), commentID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
