// Package config loads the import tool's settings from environment variables
// (optionally seeded from a .env file), applies defaults, and validates them
// up front so a misconfigured run fails before touching the network.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings of an import run.
type Config struct {
	API     APIConfig
	Source  SourceConfig
	Logging LoggingConfig
}

// APIConfig holds the remote tenant and client credentials.
type APIConfig struct {
	// BaseURL is the tenant root, e.g. https://tenant.example.com/ (required)
	BaseURL string `env:"BASE_URL" envAlt:"HALO_BASE_URL" required:"true"`

	// ClientID is the API application's client id (required)
	ClientID string `env:"CLIENT_ID" envAlt:"HALO_CLIENT_ID" required:"true"`

	// ClientSecret is the API application's client secret (required)
	ClientSecret string `env:"CLIENT_SECRET" envAlt:"HALO_CLIENT_SECRET" required:"true"`

	// SubmitDelay is the pause before every field submission (default: 500ms)
	SubmitDelay time.Duration `env:"SUBMIT_DELAY" default:"500ms"`

	// HTTPTimeout bounds each HTTP request; 0 leaves the transport default (default: 0s)
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" default:"0s"`
}

// SourceConfig holds the input file settings.
type SourceConfig struct {
	// FileName is the CSV file of field definitions (default: custom_fields.csv)
	FileName string `env:"SOURCE_FILE_NAME" default:"custom_fields.csv"`

	// CollectErrors reports every invalid row instead of stopping at the first (default: false)
	CollectErrors bool `env:"SOURCE_COLLECT_ERRORS" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// Dir is where run log files are written (default: logs)
	Dir string `env:"LOG_DIR" default:"logs"`

	// MaxAge is how long run logs beyond MaxCount are kept (default: 168h)
	MaxAge time.Duration `env:"LOG_MAX_AGE" default:"168h"`

	// MaxCount is how many of the newest run logs are always kept (default: 100)
	MaxCount int `env:"LOG_MAX_COUNT" default:"100"`
}

// SandboxConfig holds the settings of the local sandbox server.
type SandboxConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SANDBOX_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8089)
	Port int `env:"SANDBOX_PORT" default:"8089"`

	// ClientID is the only client id the sandbox accepts (default: sandbox)
	ClientID string `env:"SANDBOX_CLIENT_ID" envAlt:"CLIENT_ID" default:"sandbox"`

	// ClientSecret is the matching secret (default: sandbox)
	ClientSecret string `env:"SANDBOX_CLIENT_SECRET" envAlt:"CLIENT_SECRET" default:"sandbox"`

	// TokenTTL is the lifetime of issued tokens (default: 1h)
	TokenTTL time.Duration `env:"SANDBOX_TOKEN_TTL" default:"1h"`

	// RateLimit is field requests allowed per RateWindow; 0 disables (default: 700)
	RateLimit int `env:"SANDBOX_RATE_LIMIT" default:"700"`

	// RateWindow is the rate limit window (default: 5m)
	RateWindow time.Duration `env:"SANDBOX_RATE_WINDOW" default:"5m"`

	// ShutdownTimeout is how long to wait for in-flight requests on exit (default: 10s)
	ShutdownTimeout time.Duration `env:"SANDBOX_SHUTDOWN_TIMEOUT" default:"10s"`
}

// ServeConfig holds the settings of the sandbox subcommand.
type ServeConfig struct {
	Sandbox SandboxConfig
	Logging LoggingConfig
}

// TokenURL returns the authorization endpoint, {base}/auth/token.
func (c *APIConfig) TokenURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/auth/token"
}

// APIURL returns the resource API root, {base}/api.
func (c *APIConfig) APIURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/api"
}

// Addr returns the listen address in host:port format.
func (c *SandboxConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
