// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/cinedex/pkg/types"
)

const envPrefix = "CINEDEX"

// setDefaults registers every key of d with v so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)

	v.SetDefault("dataset.path", d.Dataset.Path)

	v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	v.SetDefault("catalog.user_agent", d.Catalog.UserAgent)
	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.image_base_url", d.Catalog.ImageBaseURL)
	v.SetDefault("catalog.api_key", d.Catalog.APIKey)
	v.SetDefault("catalog.max_retries", d.Catalog.MaxRetries)
	v.SetDefault("catalog.retry_base_delay", d.Catalog.RetryBaseDelay)
	v.SetDefault("catalog.requests_per_second", d.Catalog.RequestsPerSecond)
	v.SetDefault("catalog.burst", d.Catalog.Burst)
	v.SetDefault("catalog.breaker_failures", d.Catalog.BreakerFailures)
	v.SetDefault("catalog.breaker_cooldown", d.Catalog.BreakerCooldown)

	v.SetDefault("enrich.workers", d.Enrich.Workers)

	v.SetDefault("pages.default_limit", d.Pages.DefaultLimit)
	v.SetDefault("pages.genre_limit", d.Pages.GenreLimit)
	v.SetDefault("pages.max_limit", d.Pages.MaxLimit)

	v.SetDefault("scorer.command", d.Scorer.Command)
	v.SetDefault("scorer.args", d.Scorer.Args)
	v.SetDefault("scorer.timeout", d.Scorer.Timeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// bindEnv maps CINEDEX_SECTION_KEY variables onto section.key. The TMDB
// key is also read from TMDB_API_KEY.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("catalog.api_key", envPrefix+"_CATALOG_API_KEY", "TMDB_API_KEY")
}

// readConfigFile loads the config file if one exists. A missing default
// file is not an error; a missing explicit file or a malformed one is.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("reading config: %w", err)
}

// loadConfig decodes v into a Config and validates it.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return types.Config{}, err
	}
	return c, nil
}
