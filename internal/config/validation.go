package config

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/retry"
)

// Validate checks cfg after defaults were applied.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validatePaths,
		validateLogging,
		validateURL,
		validateMetrics,
		validateRetry,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validatePaths(cfg *Config) error {
	if strings.ContainsAny(cfg.DefaultLayout, `/\`) {
		return invalid("default_layout", cfg.DefaultLayout, "must be a layout name, not a path")
	}
	if filepath.IsAbs(cfg.NewPostName) {
		return invalid("new_post_name", cfg.NewPostName, "must be relative to the posts directory")
	}
	if filepath.Clean(cfg.SourceDir) == filepath.Clean(cfg.ScaffoldDir) {
		return invalid("scaffold_dir", cfg.ScaffoldDir, "must differ from source_dir")
	}
	return nil
}

func validateLogging(cfg *Config) error {
	if _, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level)); err != nil {
		return invalid("logging.level", string(cfg.Logging.Level), err.Error())
	}
	if _, err := logFormatNormalizer.NormalizeWithError(string(cfg.Logging.Format)); err != nil {
		return invalid("logging.format", string(cfg.Logging.Format), err.Error())
	}
	return nil
}

func validateURL(cfg *Config) error {
	if cfg.URL == "" {
		return nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("url", cfg.URL, "must be an absolute http(s) URL")
	}
	return nil
}

func validateMetrics(cfg *Config) error {
	d, err := time.ParseDuration(cfg.Metrics.FlushInterval)
	if err != nil || d <= 0 {
		return invalid("metrics.flush_interval", cfg.Metrics.FlushInterval, "must be a positive duration")
	}
	return nil
}

func validateRetry(cfg *Config) error {
	r := cfg.Events.Retry
	if r.Backoff != "" {
		if _, err := backoffNormalizer.NormalizeWithError(r.Backoff); err != nil {
			return invalid("events.retry.backoff", r.Backoff, err.Error())
		}
	}
	for field, raw := range map[string]string{"events.retry.initial": r.Initial, "events.retry.max": r.Max} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return invalid(field, raw, "must be a positive duration")
		}
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		return invalid("events.retry.max_retries", strconv.Itoa(*r.MaxRetries), "cannot be negative")
	}
	return nil
}

func invalid(field, value, reason string) error {
	return errors.ConfigError("invalid " + field + ": " + reason).
		WithContext("field", field).
		WithContext("value", value).
		Build()
}

// FlushInterval returns the parsed metrics flush interval.
func (c *Config) FlushInterval() time.Duration {
	d, err := time.ParseDuration(c.Metrics.FlushInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultFlushInterval)
	}
	return d
}

// RetryPolicy returns the backoff for NATS publishing. Unset fields keep the
// retry package defaults.
func (c *Config) RetryPolicy() retry.Policy {
	r := c.Events.Retry
	maxRetries := -1
	if r.MaxRetries != nil {
		maxRetries = *r.MaxRetries
	}
	mode := retry.Mode("")
	if r.Backoff != "" {
		mode = backoffNormalizer.Normalize(r.Backoff)
	}
	initial, _ := time.ParseDuration(r.Initial)
	maxDelay, _ := time.ParseDuration(r.Max)
	return retry.NewPolicy(mode, initial, maxDelay, maxRetries)
}
