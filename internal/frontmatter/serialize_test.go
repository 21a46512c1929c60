package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringifyYAML(t *testing.T) {
	f := NewFields()
	f.Set("title", "Hello")
	f.Set("date", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC))
	f.Set("tags", []any{"a", "b"})

	out, err := Stringify(f, YAML, "")
	require.NoError(t, err)
	assert.Equal(t, "title: Hello\ndate: 2024-03-01 10:20:30\ntags:\n  - a\n  - b\n---\n", out)
}

func TestStringifyJSON(t *testing.T) {
	f := NewFields()
	f.Set("title", "Hello")
	f.Set("tags", []any{"a"})

	out, err := Stringify(f, JSON, "")
	require.NoError(t, err)
	assert.Equal(t, "\n\"title\": \"Hello\",\n\"tags\": [\n  \"a\"\n]\n;;;\n", out)

	back, err := Parse(SplitScaffold(";;;"+out).Data, JSON)
	require.NoError(t, err)
	assert.Equal(t, f.Keys(), back.Keys())
}

func TestStringifyEmpty(t *testing.T) {
	out, err := Stringify(NewFields(), YAML, "---")
	require.NoError(t, err)
	assert.Equal(t, "---\n", out)
}

func TestPrepareValues_QuotesAmbiguousStrings(t *testing.T) {
	in := map[string]any{
		"plain":  "Hello World",
		"colon":  "Hello: World",
		"hash":   "#tag",
		"bang":   "!!str",
		"quote":  `say "hi"`,
		"number": 3,
		"date":   time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)),
	}
	out := PrepareValues(in, YAML)
	assert.Equal(t, "Hello World", out["plain"])
	assert.Equal(t, `"Hello: World"`, out["colon"])
	assert.Equal(t, `"#tag"`, out["hash"])
	assert.Equal(t, `"!!str"`, out["bang"])
	assert.Equal(t, `"say \"hi\""`, out["quote"])
	assert.Equal(t, 3, out["number"])
	assert.Equal(t, "2024-01-02 02:04:05", out["date"])

	assert.Equal(t, `"Hello World"`, PrepareValues(in, JSON)["plain"])
	assert.Equal(t, "Hello: World", in["colon"], "input must not be modified")
}

func TestColonTitleSurvivesYAMLRoundTrip(t *testing.T) {
	prepared := PrepareValues(map[string]any{"title": "Hello: World"}, YAML)
	fields, err := Parse("title: "+prepared["title"].(string), YAML)
	require.NoError(t, err)
	title, _ := fields.Get("title")
	assert.Equal(t, "Hello: World", title)

	out, err := Stringify(fields, YAML, "---")
	require.NoError(t, err)
	assert.NotContains(t, out, "title: Hello: World")

	again, _, err := ParseDocument("---\n" + out)
	require.NoError(t, err)
	title, _ = again.Get("title")
	assert.Equal(t, "Hello: World", title)
}

func TestFingerprintStableAcrossReserialization(t *testing.T) {
	doc := "---\ntitle: A\ntags:\n  - x\n---\nbody\n"
	fp1, err := FingerprintDocument(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, fp1)

	fields, body, err := ParseDocument(doc)
	require.NoError(t, err)
	fields.Set("fingerprint", "stale")
	fp2, err := Fingerprint(fields, body)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestPrepareValues_YAMLRoundTripsAwkwardTitles(t *testing.T) {
	titles := []string{
		`Paths: C:\data`,
		`Tabs: C:\temp`,
		`plain C:\temp`,
		"*Important* update",
		"&anchor-like",
		"| pipe",
		"> folded",
		"%directive",
		"@handle",
		"`code` first",
		"- list-like",
		"? question",
		"true",
		"null",
		"2024",
		" padded ",
		"two\nlines",
		"Hello World",
	}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			prepared := PrepareValues(map[string]any{"title": title}, YAML)
			fields, _, err := ParseDocument("---\ntitle: " + prepared["title"].(string) + "\n---\nbody\n")
			require.NoError(t, err)
			got, _ := fields.Get("title")
			assert.Equal(t, title, got)
		})
	}
	assert.Equal(t, "Hello World", PrepareValues(map[string]any{"t": "Hello World"}, YAML)["t"])
}

func TestQuote_EscapesForJSON(t *testing.T) {
	fields, err := Parse(`{"title": `+Quote("a \"b\" C:\\x\tz")+`}`, JSON)
	require.NoError(t, err)
	got, _ := fields.Get("title")
	assert.Equal(t, "a \"b\" C:\\x\tz", got)
}
