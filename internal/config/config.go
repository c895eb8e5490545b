// Package config loads and validates the immutable process configuration.
// All values come from the environment (optionally seeded from a .env file
// by main) and are frozen before the server starts serving.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Secret holds a credential. Its printed and serialized forms are masked so
// key material cannot reach logs through formatting.
type Secret string

func (s Secret) String() string { return "[redacted]" }

// GoString masks %#v output as well.
func (s Secret) GoString() string { return `config.Secret("[redacted]")` }

// MarshalJSON masks the value in any JSON dump of the configuration.
func (s Secret) MarshalJSON() ([]byte, error) { return []byte(`"[redacted]"`), nil }

// Reveal returns the raw credential for request signing and comparison.
func (s Secret) Reveal() string { return string(s) }

// Upstream configures the provider HTTP client.
type Upstream struct {
	BaseURL    string        `mapstructure:"VIANEXUS_BASE_URL" validate:"required,url"`
	APIKey     Secret        `mapstructure:"VIANEXUS_API_KEY" validate:"required"`
	Timeout    time.Duration `mapstructure:"VIANEXUS_TIMEOUT" validate:"required,min=1s,max=60s"`
	MaxRetries int           `mapstructure:"VIANEXUS_MAX_RETRIES" validate:"min=0,max=2"`
}

// Config is the full connector configuration.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT" validate:"required,oneof=development staging production"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	ListenAddr  string `mapstructure:"LISTEN_ADDR" validate:"required"`

	// APIKey authenticates the terminal against this connector. Distinct
	// from the upstream key: one credential per trust boundary.
	APIKey Secret `mapstructure:"CONNECTOR_API_KEY" validate:"required,min=16"`

	// AllowedOrigins is the comma-separated CORS allowlist for the
	// terminal's web origins.
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS" validate:"required"`

	// RateLimit uses the limiter formatted syntax, e.g. "100-M" for one
	// hundred requests per minute per client.
	RateLimit string `mapstructure:"RATE_LIMIT" validate:"required"`

	// CacheTTL enables the in-memory response cache when positive. Zero
	// keeps the connector fully stateless across requests.
	CacheTTL time.Duration `mapstructure:"CACHE_TTL" validate:"min=0"`

	// AppsManifestPath points at an optional apps.json document to serve
	// to the terminal. Empty disables the route.
	AppsManifestPath string `mapstructure:"APPS_MANIFEST_PATH"`

	// ShutdownGrace bounds how long in-flight requests may finish after a
	// termination signal.
	ShutdownGrace time.Duration `mapstructure:"SHUTDOWN_GRACE" validate:"required,min=1s"`

	Upstream Upstream `mapstructure:",squash"`
}

// Origins splits the CORS allowlist into its entries.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// Load reads the environment into a validated Config. Defaults cover every
// non-credential setting; missing credentials fail loading so the process
// can refuse to start rather than serve unauthenticated.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LISTEN_ADDR", ":8000")
	v.SetDefault("CONNECTOR_API_KEY", "")
	v.SetDefault("ALLOWED_ORIGINS", "https://pro.openbb.co,https://pro.openbb.dev,http://localhost:1420")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CACHE_TTL", time.Duration(0))
	v.SetDefault("APPS_MANIFEST_PATH", "")
	v.SetDefault("SHUTDOWN_GRACE", 10*time.Second)
	v.SetDefault("VIANEXUS_BASE_URL", "https://api.blueskyapi.com/v1")
	v.SetDefault("VIANEXUS_API_KEY", "")
	v.SetDefault("VIANEXUS_TIMEOUT", 10*time.Second)
	v.SetDefault("VIANEXUS_MAX_RETRIES", 2)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", describeValidation(err))
	}
	return &cfg, nil
}

// describeValidation rewrites validator's struct-tag errors into messages
// that name the environment variable, without echoing offending values
// (credentials may be among them).
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", envName(fe.StructNamespace()), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

var envNames = map[string]string{
	"Config.Environment":         "ENVIRONMENT",
	"Config.LogLevel":            "LOG_LEVEL",
	"Config.ListenAddr":          "LISTEN_ADDR",
	"Config.APIKey":              "CONNECTOR_API_KEY",
	"Config.AllowedOrigins":      "ALLOWED_ORIGINS",
	"Config.RateLimit":           "RATE_LIMIT",
	"Config.CacheTTL":            "CACHE_TTL",
	"Config.AppsManifestPath":    "APPS_MANIFEST_PATH",
	"Config.ShutdownGrace":       "SHUTDOWN_GRACE",
	"Config.Upstream.BaseURL":    "VIANEXUS_BASE_URL",
	"Config.Upstream.APIKey":     "VIANEXUS_API_KEY",
	"Config.Upstream.Timeout":    "VIANEXUS_TIMEOUT",
	"Config.Upstream.MaxRetries": "VIANEXUS_MAX_RETRIES",
}

func envName(namespace string) string {
	if name, ok := envNames[namespace]; ok {
		return name
	}
	return namespace
}
