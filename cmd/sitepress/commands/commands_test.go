package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/eventstore"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/post"
)

// inSite switches to an empty site directory and restores the default logger afterwards.
func inSite(t *testing.T, cfg string) (*Global, *bytes.Buffer, *CLI) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	t.Chdir(dir)
	if cfg != "" {
		require.NoError(t, os.WriteFile(config.DefaultPath, []byte(cfg), 0o644))
	}
	var out bytes.Buffer
	return &Global{Stdout: &out}, &out, &CLI{Config: config.DefaultPath}
}

func TestConfigureLogging_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := ConfigureLogging(config.LoggingConfig{Level: config.LogLevelWarn, Format: config.LogFormatJSON}, false, &buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestConfigureLogging_VerboseForcesDebug(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	ConfigureLogging(config.LoggingConfig{Level: config.LogLevelError}, true, &buf)
	slog.Debug("detail")
	assert.Contains(t, buf.String(), "detail")
}

func TestSetFields_RoutesReservedKeys(t *testing.T) {
	meta := &post.Metadata{}
	require.NoError(t, setFields(meta, map[string]string{"title": "Hi", "tags": "go", "date": "2026-05-06"}))

	assert.Equal(t, "Hi", meta.Title)
	assert.Equal(t, 2026, meta.Date.Year())
	assert.Equal(t, "go", meta.Fields["tags"])

	err := setFields(&post.Metadata{}, map[string]string{"date": "someday"})
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryInput, classified.Category())
}

func TestNewThenPublish(t *testing.T) {
	g, out, cli := inSite(t, "filename_case: lower\n")

	require.NoError(t, (&NewCmd{Title: "Hello World", Layout: "draft"}).Run(g, cli))
	draft := filepath.Join("source", "_drafts", "hello-world.md")
	assert.Equal(t, "Created: "+draft+"\n", out.String())
	assert.FileExists(t, draft)

	out.Reset()
	require.NoError(t, (&PublishCmd{Slug: "hello-world", Field: map[string]string{"tags": "intro"}}).Run(g, cli))
	published := filepath.Join("source", "_posts", "hello-world.md")
	assert.Equal(t, "Published: "+published+"\n", out.String())
	assert.NoFileExists(t, draft)

	data, err := os.ReadFile(published)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Hello World")
	assert.Contains(t, string(data), "tags: intro")
}

func TestNew_ExplicitMissingConfigFails(t *testing.T) {
	g, _, cli := inSite(t, "")
	cli.Config = "other.yml"

	err := (&NewCmd{Title: "x"}).Run(g, cli)
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, classified.Category())
}

func TestRender_StripsFrontMatterAndExposesFields(t *testing.T) {
	g, out, cli := inSite(t, "")
	require.NoError(t, os.WriteFile("hello.md", []byte("---\ntitle: Greetings\n---\n# {{ title }}\n\nby {{ page.title }}\n"), 0o644))

	require.NoError(t, (&RenderCmd{File: "hello.md"}).Run(g, cli))
	assert.Contains(t, out.String(), "Greetings</h1>")
	assert.Contains(t, out.String(), "<p>by Greetings</p>")
	assert.NotContains(t, out.String(), "title:")
}

func TestRender_WritesOutputFile(t *testing.T) {
	g, out, cli := inSite(t, "")
	require.NoError(t, os.WriteFile("note.md", []byte("plain *text*\n"), 0o644))

	target := filepath.Join("public", "note.html")
	require.NoError(t, (&RenderCmd{File: "note.md", Output: target}).Run(g, cli))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<p>plain <em>text</em></p>\n", string(data))
}

func TestHistory_RequiresStore(t *testing.T) {
	g, _, cli := inSite(t, "")

	err := (&HistoryCmd{}).Run(g, cli)
	require.Error(t, err)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, classified.Category())
}

func TestHistory_ListsCreatedDocuments(t *testing.T) {
	g, out, cli := inSite(t, "events:\n  store: history.db\n")

	require.NoError(t, (&NewCmd{Title: "First"}).Run(g, cli))
	created := filepath.Join("source", "_posts", "First.md")
	assert.Equal(t, "Created: "+created+"\n", out.String())
	out.Reset()

	require.NoError(t, (&HistoryCmd{JSON: true}).Run(g, cli))
	var docs []eventstore.DocumentSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, created, docs[0].Path)
	assert.Equal(t, "post", docs[0].Layout)

	out.Reset()
	err := (&HistoryCmd{Path: "missing.md"}).Run(g, cli)
	classified, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryNotFound, classified.Category())
}
