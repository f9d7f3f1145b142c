// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cinedex/internal/output"
	"github.com/pdiddy/cinedex/internal/query"
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find movies whose title contains text",
	Long: `Search matches titles containing the given text, ignoring case, and
prints the enriched results. Without --page or --limit every match is
printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

// addQueryFlags registers the paging and output flags shared by the
// query commands.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "page number, 1-based")
	cmd.Flags().Int("limit", 0, "results per page")
	cmd.Flags().Bool("json", false, "output results as JSON")
	cmd.Flags().Bool("offline", false, "skip TMDB lookups")
}

// pageFlags returns the requested page, or nil when neither flag was set.
func pageFlags(cmd *cobra.Command, defaultLimit int) *query.PageRequest {
	if !cmd.Flags().Changed("page") && !cmd.Flags().Changed("limit") {
		return nil
	}
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	p := query.PageRequest{Page: max(page, 1), Limit: defaultLimit}
	if limit > 0 {
		p.Limit = min(limit, cfg.Pages.MaxLimit)
	}
	return &p
}

// printPage writes a page as a table, or as a JSON array with --json.
func printPage(cmd *cobra.Command, page query.Page) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return output.JSON(os.Stdout, page.Movies)
	}
	output.MovieTable(os.Stdout, page)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	a, err := newApp(cfg, logger, nil, offline)
	if err != nil {
		return err
	}

	page, err := a.pipeline.Search(cmd.Context(), strings.Join(args, " "), pageFlags(cmd, cfg.Pages.DefaultLimit))
	if err != nil {
		return err
	}
	return printPage(cmd, page)
}
