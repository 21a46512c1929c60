package site

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitepress/internal/config"
	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/post"
)

func TestNew_WiresLifecycleAndSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Events.Store = ":memory:"
	cfg.PostAssetFolder = true

	fs := afero.NewMemMapFs()
	s, err := New(cfg, WithFs(fs), WithClock(func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	created, unsubscribe := events.Subscribe[events.PostCreated](s.Bus, 1)
	defer unsubscribe()

	doc, err := s.Manager.Create(context.Background(), &post.Metadata{Title: "Wired Up"}, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("source", "_posts", "Wired-Up.md"), doc.Path)

	select {
	case evt := <-created:
		assert.Equal(t, doc.Path, evt.Path)
	case <-time.After(time.Second):
		t.Fatal("no PostCreated on the bus")
	}

	stored, err := s.Store.GetByStream(context.Background(), doc.Path)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, events.NamePostCreated, stored[0].Type())

	families, err := s.Metrics.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "sitepress_operation_results_total")
}

func TestNew_RegistersFiltersFromConfig(t *testing.T) {
	cfg := config.Default()
	off := false
	cfg.SyntaxHighlighter = &off
	cfg.ExternalLink.Enable = &off

	s, err := New(cfg, WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Empty(t, s.Hooks.List(hooks.BeforePostRender))
	assert.Equal(t, []string{"excerpt"}, s.Hooks.List(hooks.AfterPostRender))
	assert.Nil(t, s.Store)
}

func TestNew_RenderUsesScaffoldDirAndLinks(t *testing.T) {
	cfg := config.Default()
	cfg.URL = "https://blog.example.com"
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("scaffolds", "post.md"), []byte("---\ntitle: {{ title }}\ncustom: value\n---\n"), 0o644))

	s, err := New(cfg, WithFs(fs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	doc, err := s.Manager.Create(context.Background(), &post.Metadata{Title: "Scaffolded"}, false)
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "custom: value")

	out, err := s.Manager.Render(context.Background(), post.RenderInput{
		Content: post.Text("[away](https://other.org) and [home](https://blog.example.com/x)"),
		Engine:  "md",
	})
	require.NoError(t, err)
	assert.Contains(t, out.Content, `<a href="https://other.org" target="_blank" rel="noopener">away</a>`)
	assert.Contains(t, out.Content, `<a href="https://blog.example.com/x">home</a>`)
}
