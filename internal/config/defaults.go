package config

import "git.home.luguber.info/inful/sitepress/internal/events"

// Defaults for unset fields.
const (
	DefaultSourceDir     = "source"
	DefaultScaffoldDir   = "scaffolds"
	DefaultNewPostName   = ":title.md"
	DefaultLayout        = "post"
	DefaultTheme         = "github"
	DefaultFlushInterval = "15s"
)

// ApplyDefaults fills unset fields and canonicalizes enumerations.
func ApplyDefaults(cfg *Config) {
	if cfg.SourceDir == "" {
		cfg.SourceDir = DefaultSourceDir
	}
	if cfg.ScaffoldDir == "" {
		cfg.ScaffoldDir = DefaultScaffoldDir
	}
	if cfg.NewPostName == "" {
		cfg.NewPostName = DefaultNewPostName
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = DefaultLayout
	}
	if cfg.HighlightTheme == "" {
		cfg.HighlightTheme = DefaultTheme
	}

	if cfg.Logging.Level != "" {
		if l, err := logLevelNormalizer.NormalizeWithError(string(cfg.Logging.Level)); err == nil {
			cfg.Logging.Level = l
		}
	} else {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format != "" {
		if f, err := logFormatNormalizer.NormalizeWithError(string(cfg.Logging.Format)); err == nil {
			cfg.Logging.Format = f
		}
	} else {
		cfg.Logging.Format = LogFormatText
	}

	if cfg.Metrics.FlushInterval == "" {
		cfg.Metrics.FlushInterval = DefaultFlushInterval
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = events.DefaultSubject
	}
}
