package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/frontmatter"
	"git.home.luguber.info/inful/sitepress/internal/post"
	"git.home.luguber.info/inful/sitepress/internal/site"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File       string `arg:"" help:"Source file to render"`
	Engine     string `short:"e" help:"Force a render engine by extension, e.g. md"`
	Output     string `short:"o" help:"Write the result to this file instead of stdout"`
	NoTemplate bool   `name:"no-template" help:"Leave template tags untouched"`
	Watch      bool   `short:"w" help:"Re-render whenever the source file changes"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	s, err := root.openSite()
	if err != nil {
		return err
	}
	defer closeSite(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.renderOnce(ctx, g, s); err != nil {
		return err
	}
	if !r.Watch {
		return nil
	}
	return r.watch(ctx, g, s)
}

func (r *RenderCmd) renderOnce(ctx context.Context, g *Global, s *site.Site) error {
	in, err := r.input(s)
	if err != nil {
		return err
	}
	out, err := s.Manager.Render(ctx, in)
	if err != nil {
		return err
	}

	if r.Output == "" {
		_, _ = fmt.Fprint(g.Stdout, out.Content)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.Output), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", r.Output).
			Build()
	}
	if err := os.WriteFile(r.Output, []byte(out.Content), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write output").
			WithContext("path", r.Output).
			Build()
	}
	return nil
}

// input builds the render call. Documents rendering to HTML have their front
// matter stripped and exposed as variables, both top-level and under "page".
func (r *RenderCmd) input(s *site.Site) (post.RenderInput, error) {
	in := post.RenderInput{Path: r.File, Engine: r.Engine, DisableTemplating: r.NoTemplate}

	if !s.Manager.RendersToHTML(in) {
		return in, nil
	}

	raw, err := os.ReadFile(r.File)
	if err != nil {
		return in, errors.WrapError(err, errors.CategoryFileSystem, "read source").
			WithContext("path", r.File).
			Build()
	}
	fields, body, err := frontmatter.ParseDocument(string(raw))
	if err != nil {
		return in, err
	}

	vars := fields.Map()
	vars["page"] = fields.Map()
	in.Content = post.Text(body)
	in.Vars = vars
	return in, nil
}
