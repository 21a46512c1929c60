// Package commands implements the sitepress subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/site"
)

// Global is passed to every subcommand.
type Global struct {
	Stdout io.Writer
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitepress.yml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	New     NewCmd     `cmd:"" help:"Create a new document from a scaffold"`
	Publish PublishCmd `cmd:"" help:"Promote a draft to a post"`
	Render  RenderCmd  `cmd:"" help:"Render a document to HTML"`
	History HistoryCmd `cmd:"" help:"Show the recorded lifecycle of documents"`
}

// AfterApply runs after flag parsing and sets up logging until the configuration is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration. The default path may be absent.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config, c.Config == config.DefaultPath)
	if err != nil {
		return nil, err
	}
	ConfigureLogging(cfg.Logging, c.Verbose, os.Stderr)
	return cfg, nil
}

// openSite loads the configuration and builds the site.
func (c *CLI) openSite(opts ...site.Option) (*site.Site, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return site.New(cfg, opts...)
}

// closeSite writes the metrics textfile, if configured, and releases the site.
func closeSite(s *site.Site) {
	if err := metrics.WriteTextfile(s.Config.Metrics.Textfile, s.Metrics); err != nil {
		slog.Warn("metrics textfile not written", logfields.Error(err))
	}
	if err := s.Close(); err != nil {
		slog.Warn("closing site", logfields.Error(err))
	}
}

// ConfigureLogging installs the default logger for cfg. Verbose forces debug.
func ConfigureLogging(cfg config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
