// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/marquee/internal/recommend"
)

var (
	recommendK      int
	recommendFormat string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [title]",
	Short: "Recommend movies for a title",
	Long: `Recommend movies for a free-text title. With no argument, titles are read
from standard input one per line until EOF or an empty line.`,
	Example: `  marquee recommend "toy story"
  marquee recommend --format json jumanji`,
	Args: cobra.ArbitraryArgs,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendK, "k", "k", 0, "Number of title candidates to try (default: recommend.search_k)")
	recommendCmd.Flags().StringVar(&recommendFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendFormat != "human" && recommendFormat != "json" {
		return fmt.Errorf("invalid --format %q: want human or json", recommendFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, appOptions{seed: true})
	if err != nil {
		return err
	}
	defer a.close() //nolint:errcheck // best effort on exit

	// One-shot runs have no background worker; compute the pool inline.
	if _, err := a.pool.Recompute(ctx); err != nil {
		return fmt.Errorf("compute trust pool: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		return recommendOnce(ctx, a.engine, strings.Join(args, " "), out)
	}
	return recommendInteractive(ctx, a.engine, cmd.InOrStdin(), out)
}

type recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

func recommendOnce(ctx context.Context, engine recommender, title string, out io.Writer) error {
	resp, err := engine.Recommend(ctx, recommend.Request{Query: title, K: recommendK})
	if err != nil {
		return err
	}
	return printResponse(out, resp, recommendFormat)
}

func recommendInteractive(ctx context.Context, engine recommender, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "title> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		title := strings.TrimSpace(scanner.Text())
		if title == "" {
			return nil
		}

		err := recommendOnce(ctx, engine, title, out)
		switch {
		case err == nil:
		case errors.Is(err, recommend.ErrInvalidQuery):
			fmt.Fprintln(out, "  please enter a title")
		default:
			return err
		}
	}
}

func printResponse(out io.Writer, resp *recommend.Response, format string) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Items) == 0 {
		_, err := fmt.Fprintln(out, "  no recommendations")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  #\tID\tTITLE\tSCORE\n")
	for i, item := range resp.Items {
		fmt.Fprintf(tw, "  %d\t%d\t%s\t%.3f\n", i+1, item.ID, item.Title, item.Score)
	}
	fmt.Fprintf(tw, "\n  source: %s, anchor: %d, candidates tried: %d\n",
		resp.Source, resp.AnchorItemID, resp.Metadata.Attempts)
	return tw.Flush()
}
