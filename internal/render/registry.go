// Package render holds the content renderers keyed by file extension.
package render

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// Request is one render call.
type Request struct {
	Text string
	// Path is used to pick the engine when Engine is empty.
	Path string
	// Engine forces an engine by extension, e.g. "md".
	Engine string
	// OnRenderEnd, when set, post-processes the engine output before Render returns.
	OnRenderEnd func(ctx context.Context, out string) (string, error)
}

// Options are passed through to the engine.
type Options map[string]any

// Engine converts text of one family of extensions.
type Engine interface {
	Render(ctx context.Context, req Request, opts Options) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, req Request, opts Options) (string, error)

func (f EngineFunc) Render(ctx context.Context, req Request, opts Options) (string, error) {
	return f(ctx, req, opts)
}

// Info describes a registered engine.
type Info struct {
	Engine Engine
	// Output is the extension produced, without the dot.
	Output string
	// DisableTemplating turns off tag escaping and template evaluation for this input.
	DisableTemplating bool
}

// Registry maps input extensions to engines. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Info
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: map[string]Info{}}
}

// NewDefaultRegistry returns a registry with the built-in engines.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register([]string{"md", "markdown", "mkd", "mkdn", "mdwn"}, "html", NewMarkdown(), false)
	r.Register([]string{"html", "htm"}, "html", Passthrough(), false)
	for _, ext := range []string{"css", "js", "json", "txt"} {
		r.Register([]string{ext}, ext, Passthrough(), true)
	}
	return r
}

// Register binds exts to engine.
func (r *Registry) Register(exts []string, output string, engine Engine, disableTemplating bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range exts {
		r.engines[normalizeExt(ext)] = Info{Engine: engine, Output: normalizeExt(output), DisableTemplating: disableTemplating}
	}
}

// Get returns the engine registered for ext.
func (r *Registry) Get(ext string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.engines[normalizeExt(ext)]
	return info, ok
}

// Extensions lists the registered input extensions.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.engines))
	for ext := range r.engines {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsRenderable reports whether an engine exists for path.
func (r *Registry) IsRenderable(path string) bool {
	_, ok := r.Get(filepath.Ext(path))
	return ok
}

// OutputExt returns the extension path renders to; unknown inputs keep theirs.
func (r *Registry) OutputExt(path string) string {
	ext := normalizeExt(filepath.Ext(path))
	if info, ok := r.Get(ext); ok {
		return info.Output
	}
	return ext
}

// TemplatingDisabled reports the DisableTemplating capability of ext.
func (r *Registry) TemplatingDisabled(ext string) bool {
	info, ok := r.Get(ext)
	return ok && info.DisableTemplating
}

// Render runs the engine for req and then req.OnRenderEnd.
// Text with no matching engine is passed through unchanged.
func (r *Registry) Render(ctx context.Context, req Request, opts Options) (string, error) {
	ext := req.Engine
	if ext == "" {
		ext = filepath.Ext(req.Path)
	}

	out := req.Text
	if info, ok := r.Get(ext); ok {
		var err error
		out, err = info.Engine.Render(ctx, req, opts)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryRender, "renderer failed").
				WithContext("engine", normalizeExt(ext)).
				WithContext("path", req.Path).
				Build()
		}
	}

	if req.OnRenderEnd == nil {
		return out, nil
	}
	return req.OnRenderEnd(ctx, out)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Passthrough returns an engine that returns its input unchanged.
func Passthrough() Engine {
	return EngineFunc(func(_ context.Context, req Request, _ Options) (string, error) {
		return req.Text, nil
	})
}
