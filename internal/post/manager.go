// Package post creates, publishes and renders documents.
//
// A Manager owns no global state: the filesystem, hooks, scaffold composer,
// renderers, template engine, event emitter and metrics recorder are all
// injected. Concurrent calls are safe as long as they target distinct paths.
package post

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/render"
	"git.home.luguber.info/inful/sitepress/internal/scaffold"
	"git.home.luguber.info/inful/sitepress/internal/slug"
	"git.home.luguber.info/inful/sitepress/internal/tmpl"
)

// Config holds the settings the manager reads.
type Config struct {
	SourceDir       string
	NewPostName     string
	DefaultLayout   string
	FilenameCase    slug.Case
	PostAssetFolder bool
}

func (c Config) withDefaults() Config {
	if c.SourceDir == "" {
		c.SourceDir = "source"
	}
	if c.NewPostName == "" {
		c.NewPostName = DefaultNewPostName
	}
	if c.DefaultLayout == "" {
		c.DefaultLayout = "post"
	}
	return c
}

// Composer builds the text of a new document.
type Composer interface {
	Compose(ctx context.Context, meta map[string]any, layout string) (string, error)
}

// Renderer converts text by engine and exposes engine capabilities.
type Renderer interface {
	Render(ctx context.Context, req render.Request, opts render.Options) (string, error)
	OutputExt(path string) string
	TemplatingDisabled(ext string) bool
}

// TemplateEngine evaluates template tags in rendered text.
type TemplateEngine interface {
	Render(ctx context.Context, text string, vars map[string]any) (string, error)
}

// Manager implements the document lifecycle and render pipeline.
type Manager struct {
	fs       afero.Fs
	cfg      Config
	hooks    hooks.Runner
	composer Composer
	renderer Renderer
	tmpl     TemplateEngine
	emitter  events.Emitter
	recorder metrics.Recorder
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithHooks sets the hook runner used for the filter phases.
func WithHooks(r hooks.Runner) Option { return func(m *Manager) { m.hooks = r } }

// WithComposer sets the scaffold composer.
func WithComposer(c Composer) Option { return func(m *Manager) { m.composer = c } }

// WithRenderer sets the renderer registry.
func WithRenderer(r Renderer) Option { return func(m *Manager) { m.renderer = r } }

// WithTemplate sets the template engine run after rendering.
func WithTemplate(t TemplateEngine) Option { return func(m *Manager) { m.tmpl = t } }

// WithEmitter sets the lifecycle event emitter.
func WithEmitter(e events.Emitter) Option { return func(m *Manager) { m.emitter = e } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(m *Manager) { m.recorder = r } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager returns a Manager over fs.
//
// Without WithHooks, an empty registry is used; path resolution then falls
// back to the built-in PathResolver. The other collaborators default to the
// built-in scaffolds under "scaffolds", the default render registry and the
// built-in template engine.
func NewManager(fs afero.Fs, cfg Config, opts ...Option) *Manager {
	engine := tmpl.New(nil)
	m := &Manager{
		fs:       fs,
		cfg:      cfg.withDefaults(),
		hooks:    hooks.NewRegistry(),
		composer: scaffold.NewComposer(scaffold.NewStore(fs, "scaffolds"), engine),
		renderer: render.NewDefaultRegistry(),
		tmpl:     engine,
		emitter:  events.NoopEmitter{},
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

func (m *Manager) layoutOrDefault(layout string) string {
	if layout == "" {
		layout = m.cfg.DefaultLayout
	}
	return strings.ToLower(layout)
}

func (m *Manager) record(op string, start time.Time, err error) {
	m.recorder.ObserveOperation(op, time.Since(start))
	m.recorder.IncOperationResult(op, resultLabel(err))
}
