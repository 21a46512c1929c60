package post

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/events"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/frontmatter"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/observability"
	"git.home.luguber.info/inful/sitepress/internal/slug"
)

// DraftDir returns the drafts directory of the source tree.
func (m *Manager) DraftDir() string {
	return filepath.Join(m.cfg.SourceDir, "_drafts")
}

// Publish promotes the draft matching meta.Slug to a regular document.
//
// The draft's front matter fills the fields the caller left unset, and its
// body becomes the content. A "draft" layout is published as "post". After
// the new document is written the draft is removed and, with asset folders
// enabled, its asset folder is moved next to the new document. A failure
// after the write leaves the new document in place.
func (m *Manager) Publish(ctx context.Context, meta *Metadata, replace bool) (doc Document, err error) {
	start := time.Now()
	ctx = observability.WithOperation(ctx, "publish")
	defer func() { m.record("publish", start, err) }()

	if meta == nil {
		return Document{}, errors.InputError("metadata is required").Build()
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	s := meta.Slug
	if s == "" {
		s = meta.Title
	}
	if s == "" {
		return Document{}, errors.InputError("slug is required").Build()
	}
	meta.Slug = slug.Make(s, m.cfg.FilenameCase)
	meta.Layout = m.layoutOrDefault(meta.Layout)
	if meta.Layout == "draft" {
		meta.Layout = "post"
	}
	ctx = observability.WithSlug(ctx, meta.Slug)

	src, err := m.findDraft(meta.Slug)
	if err != nil {
		return Document{}, err
	}
	raw, err := afero.ReadFile(m.fs, src)
	if err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryFileSystem, "read draft").
			WithContext("path", src).
			Build()
	}
	fields, body, err := frontmatter.ParseDocument(string(raw))
	if err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryFrontMatter, "parse draft").
			WithContext("path", src).
			Build()
	}
	if err := meta.mergeDraft(fields, body); err != nil {
		return Document{}, err
	}

	doc, err = m.create(ctx, meta, replace)
	if err != nil {
		return Document{}, err
	}

	if err := m.fs.Remove(src); err != nil {
		return doc, errors.WrapError(err, errors.CategoryFileSystem, "remove draft").
			WithContext("path", src).
			Build()
	}

	moved := false
	if m.cfg.PostAssetFolder {
		moved, err = m.moveAssets(assetDir(src), assetDir(doc.Path))
		if err != nil {
			return doc, err
		}
	}

	m.emitter.Emit(ctx, events.PostPublished{
		ID:        uuid.NewString(),
		Slug:      meta.Slug,
		DraftPath: src,
		Path:      doc.Path,
		Assets:    moved,
		Time:      m.now(),
	})
	observability.InfoContext(ctx, "draft published", logfields.Path(doc.Path))
	return doc, nil
}

// findDraft returns the draft file whose name starts with s followed by at
// least one more character. A name continuing with '.' after s wins over
// longer names sharing the prefix; ties resolve in name order.
func (m *Manager) findDraft(s string) (string, error) {
	notFound := errors.NotFoundError(fmt.Sprintf("Draft %q does not exist", s)).
		WithContext("slug", s).
		Build()

	entries, err := afero.ReadDir(m.fs, m.DraftDir())
	if err != nil {
		if os.IsNotExist(err) {
			return "", notFound
		}
		return "", errors.WrapError(err, errors.CategoryFileSystem, "list drafts").
			WithContext("path", m.DraftDir()).
			Build()
	}

	re := regexp.MustCompile(`^` + regexp.QuoteMeta(s) + `[^/\\]+`)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	match := ""
	for _, name := range names {
		if !re.MatchString(name) {
			continue
		}
		if name[len(s)] == '.' {
			return filepath.Join(m.DraftDir(), name), nil
		}
		if match == "" {
			match = name
		}
	}
	if match == "" {
		return "", notFound
	}
	return filepath.Join(m.DraftDir(), match), nil
}

func (m *Manager) moveAssets(src, dst string) (bool, error) {
	ok, err := afero.DirExists(m.fs, src)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "stat draft asset folder").
			WithContext("path", src).
			Build()
	}
	if !ok {
		return false, nil
	}
	if err := copyDir(m.fs, src, dst); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "copy asset folder").
			WithContext("path", src).
			Build()
	}
	if err := m.fs.RemoveAll(src); err != nil {
		return true, errors.WrapError(err, errors.CategoryFileSystem, "remove draft asset folder").
			WithContext("path", src).
			Build()
	}
	return true, nil
}

// copyDir copies the tree at src to dst, creating dst as needed.
func copyDir(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fs.MkdirAll(target, 0o755)
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		return afero.WriteFile(fs, target, data, info.Mode().Perm())
	})
}
