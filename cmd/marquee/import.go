// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/marquee/internal/dataset"
	"github.com/tomtom215/marquee/internal/logging"
)

var (
	importDir          string
	importDryRun       bool
	importScoreMissing bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import movies, ratings and reviews from CSV files",
	Long: `Import movies.csv, ratings.csv and comments.csv from a directory into the
configured store. movies.csv is required; the other two are optional.
Rows that fail validation are skipped and counted.`,
	Example: `  marquee import --dir ./data
  marquee import --dir ./data --dry-run
  marquee import --dir ./data --score-missing`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "", "Dataset directory (default: dataset.dir)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate without writing")
	importCmd.Flags().BoolVar(&importScoreMissing, "score-missing", false, "Score reviews that have no polarity column value")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	dcfg := cfg.Dataset
	if importDir != "" {
		dcfg.Dir = importDir
	}
	if dcfg.Dir == "" {
		return fmt.Errorf("no dataset directory: pass --dir or set DATASET_DIR")
	}
	dcfg.DryRun = dcfg.DryRun || importDryRun
	dcfg.ScoreMissingPolarity = dcfg.ScoreMissingPolarity || importScoreMissing

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	stats, err := dataset.NewImporter(st, scorer, logging.WithComponent("dataset")).Import(ctx, dcfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	prefix := ""
	if stats.DryRun {
		prefix = "[dry run] "
	}
	fmt.Fprintf(out, "%simported %d movies, %d ratings, %d reviews in %s\n",
		prefix, stats.Movies, stats.Ratings, stats.Comments, stats.Duration().Round(time.Millisecond))
	if stats.Scored > 0 {
		fmt.Fprintf(out, "scored %d reviews without polarity\n", stats.Scored)
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(out, "skipped %d invalid rows\n", stats.Skipped)
	}
	return nil
}
