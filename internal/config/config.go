// ABOUTME: Configuration loading and parsing for adk-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete adk-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Logging   LoggingConfig   `yaml:"logging"`
	UI        UIConfig        `yaml:"ui"`
}

// ServerConfig holds the inbound HTTP server configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	// AllowedOrigin is sent back as Access-Control-Allow-Origin.
	// "*" permits any origin; empty disables CORS headers entirely.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// BackendConfig holds the agent backend connection configuration
type BackendConfig struct {
	// BaseURL is the root URL of the agent backend, e.g. "http://127.0.0.1:8000"
	BaseURL string `yaml:"base_url"`

	// AppName and UserID fill in requests that omit them
	AppName string `yaml:"app_name"`
	UserID  string `yaml:"user_id"`

	CreateSessionTimeout time.Duration `yaml:"-"`
	RunTimeout           time.Duration `yaml:"-"`
	HealthTimeout        time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	CreateSessionTimeoutRaw string `yaml:"create_session_timeout"`
	RunTimeoutRaw           string `yaml:"run_timeout"`
	HealthTimeoutRaw        string `yaml:"health_timeout"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UIConfig controls the embedded browser chat UI
type UIConfig struct {
	// Enabled serves the chat page at "/". Defaults to true when unset.
	Enabled *bool `yaml:"enabled"`
}

// Default timeouts, chosen for the latency profile of each backend call:
// session creation is cheap, generation is not.
const (
	DefaultCreateSessionTimeout = 10 * time.Second
	DefaultRunTimeout           = 30 * time.Second
	DefaultHealthTimeout        = 5 * time.Second
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values and defaults applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse parses raw YAML configuration bytes. Split out from Load so tests
// can exercise parsing without touching the filesystem.
func Parse(data []byte) (*Config, error) {
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment
// variable values. If the environment variable is not set, it is replaced with
// an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in unset fields with their defaults.
func (c *Config) applyDefaults() {
	if c.Backend.AppName == "" {
		c.Backend.AppName = "app"
	}
	if c.Backend.UserID == "" {
		c.Backend.UserID = "user"
	}
	if c.Backend.CreateSessionTimeout == 0 {
		c.Backend.CreateSessionTimeout = DefaultCreateSessionTimeout
	}
	if c.Backend.RunTimeout == 0 {
		c.Backend.RunTimeout = DefaultRunTimeout
	}
	if c.Backend.HealthTimeout == 0 {
		c.Backend.HealthTimeout = DefaultHealthTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// UIEnabled reports whether the embedded chat UI should be served.
func (c *Config) UIEnabled() bool {
	return c.UI.Enabled == nil || *c.UI.Enabled
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale provides the listener
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http:// or https:// URL, got %q", c.Backend.BaseURL)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Backend.CreateSessionTimeoutRaw != "" {
		cfg.Backend.CreateSessionTimeout, err = time.ParseDuration(cfg.Backend.CreateSessionTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing create_session_timeout %q: %w", cfg.Backend.CreateSessionTimeoutRaw, err)
		}
	}

	if cfg.Backend.RunTimeoutRaw != "" {
		cfg.Backend.RunTimeout, err = time.ParseDuration(cfg.Backend.RunTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing run_timeout %q: %w", cfg.Backend.RunTimeoutRaw, err)
		}
	}

	if cfg.Backend.HealthTimeoutRaw != "" {
		cfg.Backend.HealthTimeout, err = time.ParseDuration(cfg.Backend.HealthTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing health_timeout %q: %w", cfg.Backend.HealthTimeoutRaw, err)
		}
	}

	return nil
}
