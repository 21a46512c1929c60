package filters

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"git.home.luguber.info/inful/sitepress/internal/escape"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/post"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "github"

var fenceOpen = regexp.MustCompile("^( {0,3})(`{3,}|~{3,})[ \t]*([^\\s`]*)[^`]*$")

// Highlighter replaces fenced code blocks with highlighted HTML wrapped in
// code block sentinels, so later stages leave it untouched.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlighter returns a highlighter using the chroma style theme.
func NewHighlighter(theme string) *Highlighter {
	if theme == "" {
		theme = DefaultTheme
	}
	return &Highlighter{
		style:     styles.Get(theme),
		formatter: chromahtml.New(chromahtml.TabWidth(2)),
	}
}

func (h *Highlighter) Name() string { return "highlight" }

func (h *Highlighter) Apply(_ context.Context, payload any, _ hooks.Options) (any, error) {
	data, ok := payload.(*post.RenderData)
	if !ok {
		return nil, errors.InternalError(fmt.Sprintf("highlight payload is %T", payload)).Build()
	}
	out, err := h.Highlight(data.Content)
	if err != nil {
		return nil, err
	}
	data.Content = out
	return nil, nil
}

// Highlight rewrites every closed fence in text. Unclosed fences are left alone.
func (h *Highlighter) Highlight(text string) (string, error) {
	if !strings.Contains(text, "```") && !strings.Contains(text, "~~~") {
		return text, nil
	}

	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(lines); i++ {
		m := fenceOpen.FindStringSubmatch(strings.TrimRight(lines[i], "\r\n"))
		if m == nil {
			b.WriteString(lines[i])
			continue
		}
		indent, fence, lang := len(m[1]), m[2], m[3]

		end := -1
		for j := i + 1; j < len(lines); j++ {
			if closesFence(lines[j], fence) {
				end = j
				break
			}
		}
		if end < 0 {
			b.WriteString(lines[i])
			continue
		}

		var code strings.Builder
		for _, l := range lines[i+1 : end] {
			code.WriteString(trimIndent(l, indent))
		}
		out, err := h.render(code.String(), lang)
		if err != nil {
			return "", errors.RenderError("highlight code block").
				WithCause(err).
				WithContext("lang", lang).
				Build()
		}
		b.WriteString(escape.CodeBlockOpen)
		b.WriteString(out)
		b.WriteString(escape.CodeBlockClose)
		if strings.HasSuffix(lines[end], "\n") {
			b.WriteString("\n")
		}
		i = end
	}
	return b.String(), nil
}

func (h *Highlighter) render(code, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<figure class="highlight %s">`, html.EscapeString(lang))
	if err := h.formatter.Format(&b, h.style, it); err != nil {
		return "", err
	}
	b.WriteString("</figure>")
	return b.String(), nil
}

func closesFence(line, fence string) bool {
	t := strings.TrimRight(line, " \t\r\n")
	trimmed := strings.TrimLeft(t, " ")
	if len(t)-len(trimmed) > 3 || len(trimmed) < len(fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}

func trimIndent(line string, n int) string {
	for i := 0; i < n && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}
