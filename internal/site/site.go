// Package site assembles a post.Manager and its collaborators from configuration.
package site

import (
	stdErrors "errors"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/eventstore"
	"git.home.luguber.info/inful/sitepress/internal/filters"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/post"
	"git.home.luguber.info/inful/sitepress/internal/render"
	"git.home.luguber.info/inful/sitepress/internal/scaffold"
	"git.home.luguber.info/inful/sitepress/internal/tmpl"
)

// Site is a configured document pipeline.
type Site struct {
	Config   *config.Config
	Manager  *post.Manager
	Hooks    *hooks.Registry
	Renderer *render.Registry
	Template *tmpl.Engine
	Bus      *events.Bus
	Metrics  *prom.Registry
	// Store is nil unless events.store is configured.
	Store eventstore.Store

	closers []func() error
}

type options struct {
	fs      afero.Fs
	metrics *prom.Registry
	sinks   []events.Sink
	now     func() time.Time
}

// Option configures New.
type Option func(*options)

// WithFs sets the filesystem; the OS filesystem is used by default.
func WithFs(fs afero.Fs) Option { return func(o *options) { o.fs = fs } }

// WithMetricsRegistry registers metrics on reg instead of a fresh registry.
func WithMetricsRegistry(reg *prom.Registry) Option { return func(o *options) { o.metrics = reg } }

// WithSinks adds event sinks after the configured ones.
func WithSinks(sinks ...events.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, sinks...) }
}

// WithClock overrides the manager's time source.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New builds a Site from cfg.
//
// A NATS sink that fails to connect is logged and skipped; an event store that
// cannot be opened is an error.
func New(cfg *config.Config, opts ...Option) (*Site, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = prom.NewRegistry()
	}

	s := &Site{
		Config:   cfg,
		Hooks:    hooks.NewRegistry(),
		Renderer: render.NewDefaultRegistry(),
		Template: tmpl.New(nil),
		Bus:      events.NewBus(),
		Metrics:  o.metrics,
	}
	s.closers = append(s.closers, func() error { s.Bus.Close(); return nil })

	postCfg := post.Config{
		SourceDir:       cfg.SourceDir,
		NewPostName:     cfg.NewPostName,
		DefaultLayout:   cfg.DefaultLayout,
		FilenameCase:    cfg.FilenameCase.Case(),
		PostAssetFolder: cfg.PostAssetFolder,
	}
	filters.Register(s.Hooks, o.fs, postCfg, filters.Options{
		SyntaxHighlighter: cfg.HighlightEnabled(),
		HighlightTheme:    cfg.HighlightTheme,
		ExternalLink:      cfg.ExternalLinksEnabled(),
		SiteURL:           cfg.URL,
		ExcludeHosts:      cfg.ExternalLink.Exclude,
	})

	dispatcher := events.NewDispatcher(events.BusSink{Bus: s.Bus})
	if cfg.Events.NATSURL != "" {
		sink, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			slog.Warn("NATS event sink disabled", logfields.Error(err))
		} else {
			dispatcher.Add(events.RetrySink{Sink: sink, Policy: cfg.RetryPolicy()})
			s.closers = append(s.closers, func() error { sink.Close(); return nil })
		}
	}
	if cfg.Events.Store != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Events.Store)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Store = store
		dispatcher.Add(eventstore.Sink{Store: store})
		s.closers = append(s.closers, store.Close)
	}
	for _, sink := range o.sinks {
		dispatcher.Add(sink)
	}

	managerOpts := []post.Option{
		post.WithHooks(s.Hooks),
		post.WithComposer(scaffold.NewComposer(scaffold.NewStore(o.fs, cfg.ScaffoldDir), s.Template)),
		post.WithRenderer(s.Renderer),
		post.WithTemplate(s.Template),
		post.WithEmitter(dispatcher),
		post.WithRecorder(metrics.NewPrometheusRecorder(o.metrics)),
	}
	if o.now != nil {
		managerOpts = append(managerOpts, post.WithClock(o.now))
	}
	s.Manager = post.NewManager(o.fs, postCfg, managerOpts...)
	return s, nil
}

// Close releases sinks and stores in reverse order of creation.
func (s *Site) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return stdErrors.Join(errs...)
}
