// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package dataset imports movies, ratings and reviews from CSV files.

A dataset directory holds up to three files:

	movies.csv    movie_id,title
	ratings.csv   user_id,movie_id,rating    (the score column may be named "content")
	comments.csv  comment_id,user_id,movie_id,content,polarity

Headers are matched case-insensitively and a few aliases are accepted
(movieId, sentiment_score). Only movies.csv is required. Rows that fail to
parse or validate are skipped and counted rather than aborting the import.
Comments without a polarity are scored with the configured sentiment
scorer when ScoreMissingPolarity is set and skipped otherwise.

The three files are read concurrently with errgroup. Movies are written
first, then ratings and comments in parallel.
*/
package dataset
