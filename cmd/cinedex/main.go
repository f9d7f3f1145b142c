// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cinedex server and CLI.
package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cinedex/internal/logging"
	"github.com/pdiddy/cinedex/internal/secrets"
	"github.com/pdiddy/cinedex/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, populated before any subcommand runs.
	cfg types.Config

	// logger is the root logger built from cfg.Log.
	logger zerolog.Logger
)

// rootCmd is the base command for the cinedex CLI.
var rootCmd = &cobra.Command{
	Use:   "cinedex",
	Short: "Movie search, genre browsing, and recommendations",
	Long: `cinedex serves a movie dataset over HTTP. Titles can be searched, browsed
by genre, and paged through; every result is enriched with poster art and
an overview from TMDB. Recommendations come from an external scorer process.

The serve command runs the HTTP API. The search, genre, genres, and
recommend commands run the same queries from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		return setup(viper.GetViper(), secretsDir)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cinedex.yaml or ~/.config/cinedex/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files (tmdb-api-key)")
	rootCmd.PersistentFlags().String("dataset", "", "movie dataset (.json, .yaml, or .db)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("dataset.path", rootCmd.PersistentFlags().Lookup("dataset"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cinedex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cinedex"))
		}
	}
	setDefaults(viper.GetViper(), types.DefaultConfig())
	bindEnv(viper.GetViper())
}

// setup reads the config file, resolves cfg, builds the logger, and fills
// the catalog key from the secrets directory when no other source set it.
func setup(v *viper.Viper, secretsDir string) error {
	fileErr := readConfigFile(v)

	c, err := loadConfig(v)
	if err != nil {
		return err
	}
	cfg = c
	logger = logging.New(cfg.Log, os.Stderr)

	if fileErr != nil {
		return fileErr
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("using config file")
	}

	s, err := secrets.Load(secretsDir, logger)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		keys := s.Keys()
		sort.Strings(keys)
		logger.Debug().Strs("keys", keys).Msg("loaded secrets")
	}
	if cfg.Catalog.APIKey == "" {
		cfg.Catalog.APIKey = s.Get(secrets.CatalogAPIKey)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
