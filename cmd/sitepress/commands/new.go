package commands

import (
	"context"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/sitepress/internal/post"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Title   string            `arg:"" help:"Document title"`
	Layout  string            `short:"l" help:"Scaffold layout (post, page, draft, ...)"`
	Slug    string            `short:"s" help:"File name slug; defaults to the slugified title"`
	Path    string            `short:"p" help:"Explicit path relative to the layout directory"`
	Replace bool              `short:"r" help:"Overwrite an existing file instead of picking a free name"`
	Field   map[string]string `short:"f" help:"Extra front matter fields as key=value"`
}

func (n *NewCmd) Run(g *Global, root *CLI) error {
	s, err := root.openSite()
	if err != nil {
		return err
	}
	defer closeSite(s)

	meta := &post.Metadata{Title: n.Title, Slug: n.Slug, Path: n.Path, Layout: n.Layout}
	if err := setFields(meta, n.Field); err != nil {
		return err
	}

	doc, err := s.Manager.Create(context.Background(), meta, n.Replace)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Created: %s\n", doc.Path)
	return nil
}

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Slug    string            `arg:"" help:"Slug of the draft to publish"`
	Layout  string            `short:"l" help:"Layout of the published document"`
	Replace bool              `short:"r" help:"Overwrite an existing file instead of picking a free name"`
	Field   map[string]string `short:"f" help:"Front matter fields overriding the draft's, as key=value"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	s, err := root.openSite()
	if err != nil {
		return err
	}
	defer closeSite(s)

	meta := &post.Metadata{Slug: p.Slug, Layout: p.Layout}
	if err := setFields(meta, p.Field); err != nil {
		return err
	}

	doc, err := s.Manager.Publish(context.Background(), meta, p.Replace)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Published: %s\n", doc.Path)
	return nil
}

func setFields(meta *post.Metadata, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := meta.Set(k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}
