package post

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/frontmatter"
	"git.home.luguber.info/inful/sitepress/internal/hooks"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/observability"
	"git.home.luguber.info/inful/sitepress/internal/slug"
)

// Create writes a new document for meta and returns it.
//
// The slug defaults to the slugified title and the layout to the configured
// default. Path resolution and scaffold composition run concurrently, then the
// file write and asset folder creation. With replace an existing file is
// overwritten; otherwise a free name is chosen.
func (m *Manager) Create(ctx context.Context, meta *Metadata, replace bool) (doc Document, err error) {
	start := time.Now()
	ctx = observability.WithOperation(ctx, "create")
	defer func() { m.record("create", start, err) }()

	return m.create(ctx, meta, replace)
}

func (m *Manager) create(ctx context.Context, meta *Metadata, replace bool) (Document, error) {
	if meta == nil {
		return Document{}, errors.InputError("metadata is required").Build()
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	if err := m.normalize(meta); err != nil {
		return Document{}, err
	}
	ctx = observability.WithSlug(ctx, meta.Slug)

	var path, content string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := m.resolvePath(gctx, meta, replace)
		path = p
		return err
	})
	g.Go(func() error {
		c, err := m.composer.Compose(gctx, meta.Vars(), meta.Layout)
		if err != nil {
			return errors.WrapError(err, errorCategory(err, errors.CategoryFrontMatter), "compose document").
				WithContext("slug", meta.Slug).
				WithContext("layout", meta.Layout).
				Build()
		}
		content = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return Document{}, err
	}
	ctx = observability.WithPath(ctx, path)

	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var w errgroup.Group
	w.Go(func() error { return m.writeFile(path, content) })
	if m.cfg.PostAssetFolder && !isIndex(path) {
		w.Go(func() error {
			dir := assetDir(path)
			if err := m.fs.MkdirAll(dir, 0o755); err != nil {
				return errors.WrapError(err, errors.CategoryFileSystem, "create asset folder").
					WithContext("path", dir).
					Build()
			}
			return nil
		})
	}
	if err := w.Wait(); err != nil {
		return Document{}, err
	}

	fp, err := frontmatter.FingerprintDocument(content)
	if err != nil {
		observability.WarnContext(ctx, "fingerprint failed", logfields.Error(err))
	}
	m.emitter.Emit(ctx, events.PostCreated{
		ID:          uuid.NewString(),
		Path:        path,
		Slug:        meta.Slug,
		Layout:      meta.Layout,
		Content:     content,
		Fingerprint: fp,
		Time:        m.now(),
	})
	observability.InfoContext(ctx, "document created", logfields.Layout(meta.Layout))

	return Document{Path: path, Content: content}, nil
}

// normalize fills slug, layout and date.
func (m *Manager) normalize(meta *Metadata) error {
	meta.Layout = m.layoutOrDefault(meta.Layout)

	s := meta.Slug
	if s == "" {
		s = meta.Title
	}
	if s == "" && meta.Path == "" {
		return errors.InputError("title, slug or path is required").Build()
	}
	if s != "" {
		meta.Slug = slug.Make(s, m.cfg.FilenameCase)
	}
	if meta.Date.IsZero() {
		meta.Date = m.now()
	}
	return nil
}

func (m *Manager) resolvePath(ctx context.Context, meta *Metadata, replace bool) (string, error) {
	req := &PathRequest{Meta: meta, Replace: replace}
	req, err := hooks.RunTyped(ctx, m.hooks, hooks.NewPostPath, req, hooks.Options{"replace": replace})
	if err != nil {
		return "", err
	}
	m.recorder.IncHookRun(hooks.NewPostPath)
	if req.Path != "" {
		return req.Path, nil
	}
	return NewPathResolver(m.fs, m.cfg).Resolve(meta, replace)
}

func (m *Manager) writeFile(path, content string) error {
	if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create parent directory").
			WithContext("path", path).
			Build()
	}
	if err := afero.WriteFile(m.fs, path, []byte(content), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write document").
			WithContext("path", path).
			Build()
	}
	slog.Debug("document written", logfields.Path(path))
	return nil
}

func isIndex(path string) bool {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) == "index"
}

// assetDir is the asset folder of a document: its path without extension.
func assetDir(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// errorCategory returns the category of err, or fallback when it is unclassified.
func errorCategory(err error, fallback errors.ErrorCategory) errors.ErrorCategory {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.Category()
	}
	return fallback
}

func resultLabel(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	case errors.HasCategory(err, errors.CategoryNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultFailed
	}
}
