package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitScaffold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Scaffold
	}{
		{
			name: "prefixed yaml",
			in:   "---\ntitle: {{ title }}\n---\nbody\n",
			want: Scaffold{Separator: "---", PrefixSeparator: true, Data: "title: {{ title }}", Content: "body\n"},
		},
		{
			name: "prefixed json",
			in:   ";;;\n\"title\": \"x\"\n;;;\n",
			want: Scaffold{Separator: ";;;", PrefixSeparator: true, Data: "\"title\": \"x\"", Content: ""},
		},
		{
			name: "data then separator",
			in:   "title: x\ndate: 2024-01-02\n---\nbody",
			want: Scaffold{Separator: "---", Data: "title: x\ndate: 2024-01-02", Content: "body"},
		},
		{
			name: "longer separator must match",
			in:   "-----\na: 1\n---\nb: 2\n-----\ntext",
			want: Scaffold{Separator: "-----", PrefixSeparator: true, Data: "a: 1\n---\nb: 2", Content: "text"},
		},
		{
			name: "no front matter",
			in:   "just some text\nwith lines",
			want: Scaffold{Content: "just some text\nwith lines"},
		},
		{
			name: "crlf",
			in:   "---\r\na: 1\r\n---\r\nbody",
			want: Scaffold{Separator: "---", PrefixSeparator: true, Data: "a: 1", Content: "body"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitScaffold(tt.in))
		})
	}
}

func TestScaffoldDialect(t *testing.T) {
	assert.Equal(t, JSON, SplitScaffold(";;;\n\"a\": 1\n;;;\n").Dialect())
	assert.Equal(t, YAML, SplitScaffold("---\na: 1\n---\n").Dialect())
	assert.Equal(t, YAML, Scaffold{}.Dialect())
}

func TestParseYAML_KeepsOrderAndTypes(t *testing.T) {
	fields, err := Parse("title: Hello\ndate: 2024-03-01 10:20:30\ntags:\n  - a\n  - b\ncount: 3\ndraft: true", YAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "date", "tags", "count", "draft"}, fields.Keys())

	date, _ := fields.Get("date")
	ts, ok := date.(interface{ Year() int })
	require.True(t, ok, "date should decode as a timestamp, got %T", date)
	assert.Equal(t, 2024, ts.Year())

	tags, _ := fields.Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)
	count, _ := fields.Get("count")
	assert.Equal(t, 3, count)
	draft, _ := fields.Get("draft")
	assert.Equal(t, true, draft)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse("title: [unclosed", YAML)
	require.Error(t, err)

	_, err = Parse(`"title": `, JSON)
	require.Error(t, err)

	_, err = Parse("- a\n- b", YAML)
	require.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	fields, err := Parse("\"title\": \"x\",\n\"n\": 2,\n\"f\": 1.5,\n\"tags\": [\"a\"]", JSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "n", "f", "tags"}, fields.Keys())
	n, _ := fields.Get("n")
	assert.Equal(t, 2, n)
	f, _ := fields.Get("f")
	assert.InDelta(t, 1.5, f, 0.0001)
}

func TestParseDocument(t *testing.T) {
	fields, body, err := ParseDocument("---\ntitle: Draft\n---\nHello body\n")
	require.NoError(t, err)
	title, _ := fields.Get("title")
	assert.Equal(t, "Draft", title)
	assert.Equal(t, "Hello body\n", body)

	fields, body, err = ParseDocument("no front matter")
	require.NoError(t, err)
	assert.Equal(t, 0, fields.Len())
	assert.Equal(t, "no front matter", body)
}

func TestParseDocument_SetextHeadingIsBody(t *testing.T) {
	text := "My heading\n---\nSome text\n"
	fields, body, err := ParseDocument(text)
	require.NoError(t, err)
	assert.Equal(t, 0, fields.Len())
	assert.Equal(t, text, body)

	// A leading mapping closed by one separator is still front matter.
	fields, body, err = ParseDocument("title: Loose\n---\nbody\n")
	require.NoError(t, err)
	title, _ := fields.Get("title")
	assert.Equal(t, "Loose", title)
	assert.Equal(t, "body\n", body)

	// An enclosed block must still be a mapping.
	_, _, err = ParseDocument("---\njust a line\n---\nbody\n")
	require.Error(t, err)
}

func TestFieldsDelete(t *testing.T) {
	f := NewFields()
	f.Set("a", 1)
	f.Set("b", 2)
	f.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, f.Keys())
	f.Delete("a")
	assert.Equal(t, []string{"b"}, f.Keys())
	assert.False(t, f.Has("a"))
	assert.Equal(t, map[string]any{"b": 2}, f.Map())
}
