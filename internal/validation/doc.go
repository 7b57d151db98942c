// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct metadata
// and reports fields by their JSON names. Two custom tags are registered:
//
//   - notblank: the string contains something other than whitespace
//   - finite: the float is neither NaN nor infinite
//
// Usage:
//
//	type rateRequest struct {
//	    UserID int     `json:"user_id" validate:"gt=0"`
//	    Rating float64 `json:"rating" validate:"finite,gte=0,lte=5"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
