package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithOperation_AssignsRunID(t *testing.T) {
	ctx := WithOperation(context.Background(), "create")

	lc := GetContext(ctx)
	assert.Equal(t, "create", lc.Operation)
	require.NotEmpty(t, lc.RunID)

	other := GetContext(WithOperation(context.Background(), "create"))
	assert.NotEqual(t, lc.RunID, other.RunID)
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithOperation(context.Background(), "publish")
	ctx = WithSlug(ctx, "hello-world")
	ctx = WithPath(ctx, "source/_posts/hello-world.md")

	lc := GetContext(ctx)
	assert.Equal(t, "publish", lc.Operation)
	assert.Equal(t, "hello-world", lc.Slug)
	assert.Equal(t, "source/_posts/hello-world.md", lc.Path)
}

func TestInfoContext_IncludesContextAttrs(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithSlug(WithOperation(context.Background(), "render"), "doc")
	InfoContext(ctx, "Rendered document", slog.Int("bytes", 42))

	out := buf.String()
	assert.Contains(t, out, "Rendered document")
	assert.Contains(t, out, "operation=render")
	assert.Contains(t, out, "slug=doc")
	assert.Contains(t, out, "bytes=42")
	assert.Contains(t, out, "run.id=")
}

func TestDebugContext_WithoutScope(t *testing.T) {
	buf := captureLogs(t)

	DebugContext(context.Background(), "plain message")
	WarnContext(context.Background(), "warned")
	ErrorContext(context.Background(), "failed")

	out := buf.String()
	assert.Contains(t, out, "plain message")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.NotContains(t, out, "run.id=")
}
