// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cinedex/internal/output"
	"github.com/pdiddy/cinedex/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <title>",
	Short: "Recommend movies similar to a title",
	Long: `Recommend runs the external scorer with the given seed title and prints
the titles it returns. With --movies the titles are resolved against the
dataset and printed as enriched movies.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().Bool("movies", false, "resolve recommended titles to dataset movies")
	recommendCmd.Flags().Bool("json", false, "output results as JSON")
	recommendCmd.Flags().Bool("offline", false, "skip TMDB lookups")

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	a, err := newApp(cfg, logger, nil, offline)
	if err != nil {
		return err
	}

	titles, err := a.scorer.Recommend(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		var serr *recommend.ScorerError
		if errors.As(err, &serr) && serr.Details != "" {
			fmt.Fprintln(os.Stderr, serr.Details)
		}
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	resolve, _ := cmd.Flags().GetBool("movies")
	if !resolve {
		if asJSON {
			return output.JSON(os.Stdout, titles)
		}
		output.TitleList(os.Stdout, titles)
		return nil
	}

	if len(titles) == 0 {
		output.TitleList(os.Stdout, titles)
		return nil
	}
	page, err := a.pipeline.ByTitles(cmd.Context(), titles)
	if err != nil {
		return err
	}
	return printPage(cmd, page)
}
