package tmpl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

func render(t *testing.T, src string, vars map[string]any) string {
	t.Helper()
	out, err := New(nil).Render(context.Background(), src, vars)
	require.NoError(t, err)
	return out
}

func TestRender_Variables(t *testing.T) {
	vars := map[string]any{
		"title": "Hello",
		"page":  map[string]any{"author": "Ada", "tags": []any{"go", "web"}},
		"empty": "",
	}
	tests := []struct {
		src, want string
	}{
		{"title: {{ title }}", "title: Hello"},
		{"{{title}}{{title}}", "HelloHello"},
		{"{{ page.author }}", "Ada"},
		{"{{ page.tags.1 }}", "web"},
		{"[{{ missing }}]", "[]"},
		{"[{{ missing.deep.path }}]", "[]"},
		{"{{ title | upper }}", "HELLO"},
		{"{{ title | lower | upper }}", "HELLO"},
		{"{{ empty | default('none') }}", "none"},
		{`{{ missing | default("x") }}`, "x"},
		{"{{ page.tags | join(', ') }}", "go, web"},
		{"{{ page.tags | json }}", `["go","web"]`},
		{"{{ 'a|b' }}", "a|b"},
		{"{# gone #}kept", "kept"},
		{"braces { alone } stay", "braces { alone } stay"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.src, vars))
		})
	}
}

func TestRender_TextIsNotInterpreted(t *testing.T) {
	src := "literal {{ title }} and text/template syntax: {{\"{{\"}} {{ .X }}"
	_, err := New(nil).Render(context.Background(), src, nil)
	require.Error(t, err, ".X is not a supported expression")

	out := render(t, "a }} b %} c", nil)
	assert.Equal(t, "a }} b %} c", out)
}

func TestRender_Raw(t *testing.T) {
	out := render(t, "{% raw %}{{ title }} {% link x /y %}{% endraw %}!", map[string]any{"title": "T"})
	assert.Equal(t, "{{ title }} {% link x /y %}!", out)
}

func TestRender_BlockTagGetsRenderedBody(t *testing.T) {
	out := render(t, "{% blockquote Ada Lovelace, Notes %}Hi {{ name }}{% endblockquote %}", map[string]any{"name": "Bob"})
	assert.Equal(t, "<blockquote>Hi Bob<footer><strong>Ada Lovelace</strong><cite>Notes</cite></footer></blockquote>", out)
}

func TestRender_InlineTags(t *testing.T) {
	out := render(t, `{% link "Go site" https://go.dev true Go %}`, nil)
	assert.Equal(t, `<a href="https://go.dev" title="Go" target="_blank" rel="noopener">Go site</a>`, out)

	out = render(t, "{% iframe https://example.com/v 640 %}", nil)
	assert.Contains(t, out, `src="https://example.com/v"`)
	assert.Contains(t, out, `width="640"`)
	assert.Contains(t, out, `height="300"`)
}

func TestRender_TagOutputIsNotEvaluated(t *testing.T) {
	tags := NewTagRegistry()
	tags.Register("emit", false, func(_ context.Context, args []string, _ string) (string, error) {
		return "{{ " + strings.Join(args, " ") + " }}", nil
	})
	out, err := New(tags).Render(context.Background(), "{% emit secret %}", map[string]any{"secret": "leak"})
	require.NoError(t, err)
	assert.Equal(t, "{{ secret }}", out)
}

func TestRender_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown tag":    "{% nope %}",
		"unclosed block": "{% blockquote %}text",
		"stray end":      "{% endblockquote %}",
		"unknown filter": "{{ x | shout }}",
		"bad expression": "{{ a + b }}",
		"empty":          "{{ }}",
		"unclosed raw":   "{% raw %}abc",
		"tag failure":    "{% iframe %}",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(nil).Render(context.Background(), src, nil)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryRender), "got %v", err)
		})
	}
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitArgs(`a "b c" 'd'`))
	assert.Empty(t, SplitArgs("   "))
	assert.Equal(t, []string{""}, SplitArgs(`""`))
}
