// Package config loads the sitepress configuration file.
package config

import (
	stdErrors "errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "sitepress.yml"

// Config is the sitepress configuration.
type Config struct {
	// URL is the public site URL; its host is treated as local by the external link filter.
	URL               string             `yaml:"url"`
	SourceDir         string             `yaml:"source_dir"`
	ScaffoldDir       string             `yaml:"scaffold_dir"`
	NewPostName       string             `yaml:"new_post_name"`
	DefaultLayout     string             `yaml:"default_layout"`
	FilenameCase      FilenameCase       `yaml:"filename_case"`
	PostAssetFolder   bool               `yaml:"post_asset_folder"`
	SyntaxHighlighter *bool              `yaml:"syntax_highlighter"`
	HighlightTheme    string             `yaml:"highlight_theme"`
	ExternalLink      ExternalLinkConfig `yaml:"external_link"`
	Logging           LoggingConfig      `yaml:"logging"`
	Metrics           MetricsConfig      `yaml:"metrics"`
	Events            EventsConfig       `yaml:"events"`
}

// ExternalLinkConfig controls the external link filter.
type ExternalLinkConfig struct {
	Enable  *bool    `yaml:"enable"`
	Exclude []string `yaml:"exclude"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures Prometheus output.
type MetricsConfig struct {
	// Textfile is written after each command, for the node exporter textfile collector.
	Textfile string `yaml:"textfile"`
	// Listen serves /metrics while watching, e.g. ":9108".
	Listen string `yaml:"listen"`
	// FlushInterval is how often the textfile is rewritten while watching.
	FlushInterval string `yaml:"flush_interval"`
}

// EventsConfig configures lifecycle event sinks.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
	// Store is a SQLite database path recording every event.
	Store string `yaml:"store"`
	// Retry applies to NATS publishing.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig is the backoff for transient sink failures.
type RetryConfig struct {
	Backoff    string `yaml:"backoff"` // fixed|linear|exponential
	Initial    string `yaml:"initial"`
	Max        string `yaml:"max"`
	MaxRetries *int   `yaml:"max_retries"`
}

// HighlightEnabled reports whether fenced code is highlighted.
func (c *Config) HighlightEnabled() bool {
	return c.SyntaxHighlighter == nil || *c.SyntaxHighlighter
}

// ExternalLinksEnabled reports whether off-site links are rewritten.
func (c *Config) ExternalLinksEnabled() bool {
	return c.ExternalLink.Enable == nil || *c.ExternalLink.Enable
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads the configuration at path.
//
// .env and .env.local are loaded first, then ${VAR} references in the file
// are expanded. A missing file is a config error unless optional is set, in
// which case the defaults are returned.
func Load(path string, optional bool) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && optional {
			return Default(), nil
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(os.ExpandEnv(string(data)))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "load configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML text, applies defaults and validates the result.
func Parse(text string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration YAML").Build()
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
