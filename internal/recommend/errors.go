// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced movie, rating or comment has no record.
var ErrNotFound = errors.New("not found")

// ErrComputation is returned when input data is malformed. It aborts only the
// operation that saw it.
var ErrComputation = errors.New("computation error")

// ErrInvalidQuery is returned for a blank recommendation query.
var ErrInvalidQuery = errors.New("invalid query")

// ComputationError describes a malformed record.
type ComputationError struct {
	// Op is the operation that rejected the record, e.g. "trustpool".
	Op string

	// Reason describes the problem.
	Reason string
}

// NewComputationError formats a ComputationError.
func NewComputationError(op, format string, args ...any) *ComputationError {
	return &ComputationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrComputation, e.Reason)
}

// Unwrap lets errors.Is match ErrComputation.
func (e *ComputationError) Unwrap() error {
	return ErrComputation
}
