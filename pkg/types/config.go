package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout bounds each outbound request, including reading the body.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cinedex/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for the external art lookup client.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the catalog API root (default "https://api.themoviedb.org/3").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// ImageBaseURL is prefixed to poster paths (default "https://image.tmdb.org/t/p/w500").
	ImageBaseURL string `json:"image_base_url" yaml:"image_base_url" mapstructure:"image_base_url" validate:"required,url"`

	// APIKey authenticates catalog calls. Usually supplied through the
	// environment or .secrets/tmdb-api-key rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retries on HTTP 429 and 5xx (default 2, 0 disables).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`

	// RetryBaseDelay is the first backoff interval; later intervals double (default 250ms).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay" validate:"gte=0"`

	// RequestsPerSecond caps outbound lookups across all requests (0 = unlimited).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`

	// Burst is the rate limiter bucket size (default 20).
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst" validate:"gte=0"`

	// BreakerFailures is the number of consecutive upstream failures that
	// opens the circuit breaker (default 10).
	BreakerFailures uint32 `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures" validate:"gte=1"`

	// BreakerCooldown is how long the breaker stays open before probing (default 30s).
	BreakerCooldown time.Duration `json:"breaker_cooldown" yaml:"breaker_cooldown" mapstructure:"breaker_cooldown" validate:"gt=0"`
}

// DatasetConfig locates the base movie dataset.
type DatasetConfig struct {
	// Path is a .json, .yaml/.yml, or .db/.sqlite file.
	Path string `json:"path" yaml:"path" mapstructure:"path" validate:"required"`
}

// EnrichConfig controls the enrichment fan-out.
type EnrichConfig struct {
	// Workers is the maximum number of concurrent catalog lookups per request (default 8).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=256"`
}

// PageConfig holds pagination defaults.
type PageConfig struct {
	// DefaultLimit applies to the full catalog listing (default 50).
	DefaultLimit int `json:"default_limit" yaml:"default_limit" mapstructure:"default_limit" validate:"gte=1"`

	// GenreLimit applies to genre listings (default 25).
	GenreLimit int `json:"genre_limit" yaml:"genre_limit" mapstructure:"genre_limit" validate:"gte=1"`

	// MaxLimit clamps any requested limit (default 250).
	MaxLimit int `json:"max_limit" yaml:"max_limit" mapstructure:"max_limit" validate:"gtefield=DefaultLimit,gtefield=GenreLimit"`
}

// ScorerConfig describes the external recommendation process.
type ScorerConfig struct {
	// Command is the executable (e.g. "python3").
	Command string `json:"command" yaml:"command" mapstructure:"command" validate:"required"`

	// Args precede the seed title on the command line (e.g. the script path).
	Args []string `json:"args" yaml:"args" mapstructure:"args"`

	// Timeout bounds one scorer run (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"gt=0"`

	// RequestTimeout is the deadline put on each API request's context so
	// enrichment stops before the write deadline closes the connection
	// (default 45s, at most WriteTimeout).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout" validate:"gt=0,ltefield=WriteTimeout"`

	// RateLimit is the number of API requests allowed per client IP per minute (0 = unlimited).
	RateLimit int `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`

	// AllowedOrigins lists CORS origins (default "*").
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Config groups every setting of the service.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Dataset DatasetConfig `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Enrich  EnrichConfig  `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	Pages   PageConfig    `json:"pages" yaml:"pages" mapstructure:"pages"`
	Scorer  ScorerConfig  `json:"scorer" yaml:"scorer" mapstructure:"scorer"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  45 * time.Second,
			RateLimit:       300,
			AllowedOrigins:  []string{"*"},
		},
		Dataset: DatasetConfig{Path: "movies.json"},
		Catalog: CatalogConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "cinedex/0.1",
			},
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
			MaxRetries:        2,
			RetryBaseDelay:    250 * time.Millisecond,
			RequestsPerSecond: 40,
			Burst:             20,
			BreakerFailures:   10,
			BreakerCooldown:   30 * time.Second,
		},
		Enrich: EnrichConfig{Workers: 8},
		Pages: PageConfig{
			DefaultLimit: 50,
			GenreLimit:   25,
			MaxLimit:     250,
		},
		Scorer: ScorerConfig{
			Command: "python3",
			Args:    []string{"model/recommendation_script.py"},
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and returns the first violation.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
