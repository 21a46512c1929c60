package filters

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/escape"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/post"
	"git.home.luguber.info/inful/sitepress/internal/slug"
)

func TestHighlight_WrapsClosedFences(t *testing.T) {
	h := NewHighlighter("")
	out, err := h.Highlight("before\n\n```text\n{{ x }}\n```\nafter\n")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "before\n\n"+escape.CodeBlockOpen+`<figure class="highlight text">`), out)
	assert.True(t, strings.HasSuffix(out, escape.CodeBlockClose+"\nafter\n"), out)
	assert.Contains(t, out, "{{ x }}")
}

func TestHighlight_FenceVariants(t *testing.T) {
	h := NewHighlighter("monokai")

	unclosed := "```go\nfunc main() {}\n"
	out, err := h.Highlight(unclosed)
	require.NoError(t, err)
	assert.Equal(t, unclosed, out)

	out, err = h.Highlight("~~~\nplain\n~~~~~\n")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, escape.CodeBlockOpen))
	assert.Contains(t, out, "plain")

	out, err = h.Highlight("no fences here")
	require.NoError(t, err)
	assert.Equal(t, "no fences here", out)
}

func TestExcerpt_SplitsAtMarker(t *testing.T) {
	data := &post.RenderData{Content: "<p>a</p>\n<!-- more -->\n<p>b</p>\n"}
	SplitExcerpt(data)

	assert.Equal(t, "<p>a</p>", data.Excerpt)
	assert.Equal(t, "<p>b</p>", data.More)
	assert.Equal(t, "<p>a</p>\n"+MoreAnchor+"\n<p>b</p>\n", data.Content)
}

func TestExcerpt_WithoutMarker(t *testing.T) {
	data := &post.RenderData{Content: "<p>all</p>"}
	SplitExcerpt(data)
	assert.Empty(t, data.Excerpt)
	assert.Equal(t, "<p>all</p>", data.More)

	preset := &post.RenderData{Content: "<p>x</p><!--more-->", Excerpt: "given"}
	SplitExcerpt(preset)
	assert.Equal(t, "given", preset.Excerpt)
	assert.Equal(t, "<p>x</p><!--more-->", preset.More)
}

func TestExternalLinks_Rewrite(t *testing.T) {
	l := NewExternalLinks("https://example.com/blog", []string{"skip.org"})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"off-site", `<a href="https://other.com/x">o</a>`, `<a href="https://other.com/x" target="_blank" rel="noopener">o</a>`},
		{"protocol relative", `<a href="//cdn.net/a">c</a>`, `<a href="//cdn.net/a" target="_blank" rel="noopener">c</a>`},
		{"existing rel", `<a href="http://other.com" rel="nofollow">o</a>`, `<a href="http://other.com" rel="nofollow noopener" target="_blank">o</a>`},
		{"site host", `<a href="https://example.com/y">s</a>`, `<a href="https://example.com/y">s</a>`},
		{"relative", `<p><a href="/local">l</a></p>`, `<p><a href="/local">l</a></p>`},
		{"excluded", `<a href="https://skip.org">k</a>`, `<a href="https://skip.org">k</a>`},
		{"has target", `<a href="https://other.com" target="_self">o</a>`, `<a href="https://other.com" target="_self">o</a>`},
		{"mailto", `<a href="mailto:me@other.com">m</a>`, `<a href="mailto:me@other.com">m</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Rewrite(tt.in))
		})
	}
}

func TestRegister_BuildsPhases(t *testing.T) {
	reg := hooks.NewRegistry()
	Register(reg, afero.NewMemMapFs(), post.Config{}, Options{SyntaxHighlighter: true, ExternalLink: true})

	assert.Equal(t, []string{"new_post_path"}, reg.List(hooks.NewPostPath))
	assert.Equal(t, []string{"highlight"}, reg.List(hooks.BeforePostRender))
	assert.Equal(t, []string{"excerpt", "external_link"}, reg.List(hooks.AfterPostRender))

	bare := hooks.NewRegistry()
	Register(bare, afero.NewMemMapFs(), post.Config{}, Options{})
	assert.Empty(t, bare.List(hooks.BeforePostRender))
	assert.Equal(t, []string{"excerpt"}, bare.List(hooks.AfterPostRender))
}

func TestPipeline_HighlightedCodeKeepsTemplateSyntax(t *testing.T) {
	fs := afero.NewMemMapFs()
	reg := hooks.NewRegistry()
	Register(reg, fs, post.Config{}, Options{SyntaxHighlighter: true})
	m := post.NewManager(fs, post.Config{}, post.WithHooks(reg))

	out, err := m.Render(context.Background(), post.RenderInput{
		Content: post.Text("```text\n{{ x }}\n```\n\nValue {{ y }}\n\n<!-- more -->\n\nRest\n"),
		Engine:  "md",
		Vars:    map[string]any{"y": "Y"},
	})
	require.NoError(t, err)
	assert.Contains(t, out.Content, "{{ x }}")
	assert.Contains(t, out.Content, "Value Y")
	assert.NotContains(t, out.Content, "hexoPostRenderCodeBlock")
	assert.Contains(t, out.Excerpt, "Value Y")
	assert.Equal(t, "<p>Rest</p>", out.More)
}

func TestPathResolverHookDrivesCreate(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := post.Config{SourceDir: "src", FilenameCase: slug.CaseLower}
	reg := hooks.NewRegistry()
	Register(reg, fs, cfg, Options{})
	m := post.NewManager(fs, cfg, post.WithHooks(reg))

	doc, err := m.Create(context.Background(), &post.Metadata{Title: "Via Hook"}, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("src", "_posts", "via-hook.md"), doc.Path)
}
