// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cinedex/internal/output"
	"github.com/pdiddy/cinedex/internal/query"
)

var genreCmd = &cobra.Command{
	Use:   "genre <name>",
	Short: "List movies tagged with a genre",
	Long: `Genre prints one page of the movies whose genre set contains the given
name exactly, ignoring case.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenre,
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the dataset's genres with movie counts",
	Args:  cobra.NoArgs,
	RunE:  runGenres,
}

func init() {
	addQueryFlags(genreCmd)
	genresCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(genreCmd)
	rootCmd.AddCommand(genresCmd)
}

func runGenre(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	a, err := newApp(cfg, logger, nil, offline)
	if err != nil {
		return err
	}

	p := query.PageRequest{Page: 1, Limit: cfg.Pages.GenreLimit}
	if req := pageFlags(cmd, cfg.Pages.GenreLimit); req != nil {
		p = *req
	}
	page, err := a.pipeline.ByGenre(cmd.Context(), strings.Join(args, " "), p)
	if err != nil {
		return err
	}
	return printPage(cmd, page)
}

func runGenres(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger, nil, true)
	if err != nil {
		return err
	}

	genres := a.pipeline.Genres()
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return output.JSON(os.Stdout, genres)
	}
	output.GenreTable(os.Stdout, genres)
	return nil
}
