package render

import (
	"bytes"
	"context"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders CommonMark with the GFM extensions.
//
// Raw HTML is kept, which placeholders and pre-highlighted code rely on.
type Markdown struct {
	md goldmark.Markdown
}

// MarkdownOption configures the Markdown engine.
type MarkdownOption func(*markdownConfig)

type markdownConfig struct {
	hardWraps bool
}

// WithHardWraps renders soft line breaks as <br>.
func WithHardWraps() MarkdownOption {
	return func(c *markdownConfig) { c.hardWraps = true }
}

// NewMarkdown returns a goldmark-backed engine.
func NewMarkdown(opts ...MarkdownOption) *Markdown {
	var cfg markdownConfig
	for _, o := range opts {
		o(&cfg)
	}

	htmlOpts := []renderer.Option{goldmarkhtml.WithUnsafe()}
	if cfg.hardWraps {
		htmlOpts = append(htmlOpts, goldmarkhtml.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Markdown{md: md}
}

func (m *Markdown) Render(_ context.Context, req Request, _ Options) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(req.Text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
