package render

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

func TestDefaultRegistry_Capabilities(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, "html", r.OutputExt("post.md"))
	assert.Equal(t, "html", r.OutputExt("POST.Markdown"))
	assert.Equal(t, "html", r.OutputExt("page.htm"))
	assert.Equal(t, "css", r.OutputExt("style.css"))
	assert.Equal(t, "png", r.OutputExt("image.png"))

	assert.True(t, r.TemplatingDisabled("css"))
	assert.True(t, r.TemplatingDisabled(".js"))
	assert.False(t, r.TemplatingDisabled("md"))
	assert.False(t, r.TemplatingDisabled("unknown"))

	assert.True(t, r.IsRenderable("a.md"))
	assert.False(t, r.IsRenderable("a.png"))
	assert.Contains(t, r.Extensions(), "markdown")
}

func TestRender_MarkdownKeepsPlaceholders(t *testing.T) {
	r := NewDefaultRegistry()
	out, err := r.Render(context.Background(), Request{
		Text: "# Title\n\nHello <!--swig￼0--> world\n\n<!--code￼1-->\n",
		Path: "post.md",
	}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<!--swig￼0-->")
	assert.Contains(t, out, "<!--code￼1-->")
}

func TestRender_OnRenderEndRunsAfterEngine(t *testing.T) {
	r := NewDefaultRegistry()
	out, err := r.Render(context.Background(), Request{
		Text:   "*x*",
		Engine: "md",
		OnRenderEnd: func(_ context.Context, s string) (string, error) {
			return strings.ToUpper(s), nil
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<P><EM>X</EM></P>\n", out)
}

func TestRender_UnknownExtensionPassesThrough(t *testing.T) {
	r := NewDefaultRegistry()
	out, err := r.Render(context.Background(), Request{Text: "*raw*", Path: "notes.rst"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "*raw*", out)
}

func TestRender_EngineErrorIsClassified(t *testing.T) {
	cause := stderrors.New("engine exploded")
	r := NewRegistry()
	r.Register([]string{"boom"}, "html", EngineFunc(func(context.Context, Request, Options) (string, error) {
		return "", cause
	}), false)

	_, err := r.Render(context.Background(), Request{Text: "x", Path: "a.boom"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))
}
