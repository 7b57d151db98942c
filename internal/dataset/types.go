// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package dataset

import (
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Default file names inside a dataset directory.
const (
	MoviesFile   = "movies.csv"
	RatingsFile  = "ratings.csv"
	CommentsFile = "comments.csv"
)

// Config describes where a dataset lives.
type Config struct {
	// Dir is the directory holding the CSV files.
	Dir string `koanf:"dir"`

	// File names relative to Dir. Empty values use the defaults above.
	Movies   string `koanf:"movies"`
	Ratings  string `koanf:"ratings"`
	Comments string `koanf:"comments"`

	// ScoreMissingPolarity runs the sentiment scorer for comments whose
	// polarity column is empty or absent.
	ScoreMissingPolarity bool `koanf:"score_missing_polarity"`

	// DryRun parses and validates without writing to the store.
	DryRun bool `koanf:"dry_run"`
}

// Dataset is the parsed content of one dataset directory.
type Dataset struct {
	Items    []recommend.Item
	Ratings  []recommend.Rating
	Comments []recommend.Comment

	// Skipped counts rows rejected during parsing, per file kind.
	Skipped map[string]int
}

// ImportStats holds statistics about an import run.
type ImportStats struct {
	Movies   int `json:"movies"`
	Ratings  int `json:"ratings"`
	Comments int `json:"comments"`

	// Skipped is the number of rows rejected by parsing or validation.
	Skipped int `json:"skipped"`

	// Scored is the number of comments whose polarity was computed on import.
	Scored int `json:"scored"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	DryRun    bool      `json:"dry_run"`
}

// Duration returns the duration of the import.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Total returns the number of records imported.
func (s *ImportStats) Total() int {
	return s.Movies + s.Ratings + s.Comments
}
