package post

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/escape"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/observability"
	"git.home.luguber.info/inful/sitepress/internal/render"
)

// RenderInput is one render call.
type RenderInput struct {
	// Path is the source file; it also selects the engine when Engine is empty.
	Path string
	// Content, when non-nil, is rendered instead of reading Path.
	Content *string
	// Engine forces an engine by extension.
	Engine string
	// Vars are exposed to the template engine.
	Vars map[string]any
	// DisableTemplating skips tag escaping and template evaluation.
	DisableTemplating bool
	// Options are passed to the render engine.
	Options render.Options
}

// Text returns a pointer to s, for RenderInput.Content.
func Text(s string) *string { return &s }

// RenderData is the payload of the before_post_render and after_post_render phases.
type RenderData struct {
	Path    string
	Engine  string
	Content string
	// Excerpt and More are filled by the excerpt filter.
	Excerpt string
	More    string
	Vars    map[string]any
}

// Render converts a document to its output form.
//
// Inputs that render to HTML, or carry no path, go through the post pipeline:
// before_post_render hooks, code block and tag escaping, the engine, tag
// restoration and template evaluation, code block restoration and
// after_post_render hooks. Other inputs are handed to the engine directly.
func (m *Manager) Render(ctx context.Context, in RenderInput) (data *RenderData, err error) {
	start := time.Now()
	ctx = observability.WithOperation(ctx, "render")
	if in.Path != "" {
		ctx = observability.WithPath(ctx, in.Path)
	}
	defer func() { m.record("render", start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := m.readInput(in)
	if err != nil {
		return nil, err
	}

	engine := normalizeEngine(in.Engine)
	if engine == "" {
		engine = normalizeEngine(filepath.Ext(in.Path))
	}

	if !m.RendersToHTML(in) {
		out, err := m.renderer.Render(ctx, render.Request{Text: text, Path: in.Path, Engine: engine}, in.Options)
		if err != nil {
			return nil, err
		}
		return &RenderData{Path: in.Path, Engine: engine, Content: out, Vars: in.Vars}, nil
	}

	return m.renderPost(ctx, in, &RenderData{Path: in.Path, Engine: engine, Content: text, Vars: in.Vars})
}

// RendersToHTML reports whether in goes through the post pipeline: it has no
// path, or its engine (forced or picked by extension) outputs HTML.
func (m *Manager) RendersToHTML(in RenderInput) bool {
	if in.Path == "" {
		return true
	}
	name := in.Path
	if e := normalizeEngine(in.Engine); e != "" {
		name = "." + e
	}
	out := m.renderer.OutputExt(name)
	return out == "html" || out == "htm"
}

func (m *Manager) renderPost(ctx context.Context, in RenderInput, data *RenderData) (*RenderData, error) {
	data, err := hooks.RunTyped(ctx, m.hooks, hooks.BeforePostRender, data, nil)
	if err != nil {
		return nil, err
	}
	m.recorder.IncHookRun(hooks.BeforePostRender)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	esc := escape.New()
	disable := in.DisableTemplating || m.renderer.TemplatingDisabled(data.Engine)

	content := esc.EscapeCodeBlocks(data.Content)
	if !disable {
		content = esc.EscapeAllTags(content)
	}

	out, err := m.renderer.Render(ctx, render.Request{
		Text:   content,
		Path:   data.Path,
		Engine: data.Engine,
		OnRenderEnd: func(ctx context.Context, s string) (string, error) {
			s, err := esc.RestoreAllTags(s)
			if err != nil {
				return "", err
			}
			if disable || m.tmpl == nil {
				return s, nil
			}
			return m.tmpl.Render(ctx, s, data.Vars)
		},
	}, in.Options)
	if err != nil {
		return nil, err
	}

	out, err = esc.RestoreCodeBlocks(out)
	if err != nil {
		return nil, err
	}
	if pending := esc.Table().Pending(); pending > 0 {
		observability.WarnContext(ctx, "escaped regions left unrestored", logfields.Count(pending))
	}
	data.Content = out

	stats := esc.Stats()
	m.recorder.AddPlaceholders(escape.KindCode, stats.CodeBlocks)
	m.recorder.AddPlaceholders(escape.KindTag, stats.Tags)

	data, err = hooks.RunTyped(ctx, m.hooks, hooks.AfterPostRender, data, nil)
	if err != nil {
		return nil, err
	}
	m.recorder.IncHookRun(hooks.AfterPostRender)

	observability.DebugContext(ctx, "document rendered", logfields.Engine(data.Engine))
	return data, nil
}

func (m *Manager) readInput(in RenderInput) (string, error) {
	if in.Content != nil {
		return *in.Content, nil
	}
	if in.Path == "" {
		return "", errors.InputError("no input file or string").Build()
	}
	raw, err := afero.ReadFile(m.fs, in.Path)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "read source").
			WithContext("path", in.Path).
			Build()
	}
	return string(raw), nil
}

func normalizeEngine(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
