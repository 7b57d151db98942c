// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the entry point for Marquee.
//
// Marquee recommends movies from a free-text title. The title is matched
// against a TF-IDF index of movie titles; the closest matches anchor a
// collaborative score computed only from users whose reviews read positive.
//
// # Commands
//
//	marquee serve                       # HTTP API under a supervisor tree
//	marquee recommend "toy story"       # one-shot recommendation
//	marquee recommend                   # interactive prompt
//	marquee import --dir ./data         # load movies.csv, ratings.csv, comments.csv
//
// # Configuration
//
// Settings are layered with Koanf v2 (highest priority wins):
//   - Environment variables (HTTP_PORT, STORE_BACKEND, DATASET_DIR, ...)
//   - Config file (--config, CONFIG_PATH, or /etc/marquee/config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// serve shuts down on SIGINT and SIGTERM: the HTTP server drains, the event
// router stops, then the record store is closed.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
