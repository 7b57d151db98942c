// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/recommend"
)

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("missing column")

// errSkipRow marks a row that cannot be parsed but does not abort the file.
var errSkipRow = errors.New("skip row")

// Accepted header names, first match wins.
var (
	movieIDColumns  = []string{"movie_id", "movieId", "id"}
	userIDColumns   = []string{"user_id", "userId"}
	titleColumns    = []string{"title"}
	scoreColumns    = []string{"rating", "content", "score"}
	commentIDCols   = []string{"comment_id", "id"}
	textColumns     = []string{"content", "text", "comment"}
	polarityColumns = []string{"polarity", "sentiment_score", "sentiment"}
)

// header maps column names to positions.
type header map[string]int

func (h header) find(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := h[strings.ToLower(n)]; ok {
			return i, true
		}
	}
	return -1, false
}

func (h header) require(file string, names ...string) (int, error) {
	if i, ok := h.find(names...); ok {
		return i, nil
	}
	return -1, fmt.Errorf("%s: %w %q", file, ErrMissingColumn, names[0])
}

// readCSV opens path and calls fn for every data row. Rows for which fn
// returns errSkipRow are counted and skipped.
func readCSV(path string, fn func(h header, row []string) error) (skipped int, err error) {
	f, err := os.Open(path) //nolint:gosec // dataset path comes from operator configuration
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	names, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read header of %s: %w", path, err)
	}
	h := make(header, len(names))
	for i, n := range names {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(n, "\ufeff")))] = i
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return skipped, fmt.Errorf("read %s: %w", path, err)
		}
		if err := fn(h, row); err != nil {
			if errors.Is(err, errSkipRow) {
				skipped++
				continue
			}
			return skipped, err
		}
	}
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func intField(row []string, i int) (int, error) {
	v, err := strconv.Atoi(field(row, i))
	if err != nil {
		return 0, errSkipRow
	}
	return v, nil
}

func floatField(row []string, i int) (float64, error) {
	v, err := strconv.ParseFloat(field(row, i), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errSkipRow
	}
	return v, nil
}

// ReadMovies parses a movies file with movie_id and title columns.
func ReadMovies(path string) ([]recommend.Item, int, error) {
	var items []recommend.Item
	var idCol, titleCol int
	resolved := false

	skipped, err := readCSV(path, func(h header, row []string) error {
		if !resolved {
			var err error
			if idCol, err = h.require(MoviesFile, movieIDColumns...); err != nil {
				return err
			}
			if titleCol, err = h.require(MoviesFile, titleColumns...); err != nil {
				return err
			}
			resolved = true
		}
		id, err := intField(row, idCol)
		if err != nil {
			return err
		}
		items = append(items, recommend.Item{ID: id, Title: field(row, titleCol)})
		return nil
	})
	return items, skipped, err
}

// ReadRatings parses a ratings file with user_id, movie_id and rating columns.
// The score column may also be named "content".
func ReadRatings(path string) ([]recommend.Rating, int, error) {
	var ratings []recommend.Rating
	var userCol, itemCol, scoreCol int
	resolved := false

	skipped, err := readCSV(path, func(h header, row []string) error {
		if !resolved {
			var err error
			if userCol, err = h.require(RatingsFile, userIDColumns...); err != nil {
				return err
			}
			if itemCol, err = h.require(RatingsFile, movieIDColumns[:2]...); err != nil {
				return err
			}
			if scoreCol, err = h.require(RatingsFile, scoreColumns...); err != nil {
				return err
			}
			resolved = true
		}
		user, err := intField(row, userCol)
		if err != nil {
			return err
		}
		item, err := intField(row, itemCol)
		if err != nil {
			return err
		}
		score, err := floatField(row, scoreCol)
		if err != nil {
			return err
		}
		ratings = append(ratings, recommend.Rating{UserID: user, ItemID: item, Score: score})
		return nil
	})
	return ratings, skipped, err
}

// ReadComments parses a comments file. The comment id and polarity columns
// are optional; a comment without polarity gets NaN so callers can score it.
func ReadComments(path string) ([]recommend.Comment, int, error) {
	var comments []recommend.Comment
	var userCol, itemCol, textCol, idCol, polCol int
	resolved := false

	skipped, err := readCSV(path, func(h header, row []string) error {
		if !resolved {
			var err error
			if userCol, err = h.require(CommentsFile, userIDColumns...); err != nil {
				return err
			}
			if itemCol, err = h.require(CommentsFile, movieIDColumns[:2]...); err != nil {
				return err
			}
			if textCol, err = h.require(CommentsFile, textColumns...); err != nil {
				return err
			}
			idCol, _ = h.find(commentIDCols...)
			polCol, _ = h.find(polarityColumns...)
			resolved = true
		}
		user, err := intField(row, userCol)
		if err != nil {
			return err
		}
		item, err := intField(row, itemCol)
		if err != nil {
			return err
		}
		c := recommend.Comment{UserID: user, ItemID: item, Content: field(row, textCol), Polarity: math.NaN()}
		if idCol >= 0 && field(row, idCol) != "" {
			if c.ID, err = intField(row, idCol); err != nil {
				return err
			}
		}
		if polCol >= 0 && field(row, polCol) != "" {
			if c.Polarity, err = floatField(row, polCol); err != nil {
				return err
			}
		}
		comments = append(comments, c)
		return nil
	})
	return comments, skipped, err
}
