// Package scaffold stores document scaffolds and composes new documents from them.
package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/util/sets"
)

// Normal is the layout every store must be able to serve.
const Normal = "normal"

// Defaults are the built-in scaffolds used when the scaffold directory lacks a layout.
var Defaults = map[string]string{
	Normal: "---\nlayout: {{ layout }}\ntitle: {{ title }}\ndate: {{ date }}\ntags:\n---\n",
	"post":  "---\ntitle: {{ title }}\ndate: {{ date }}\ntags:\n---\n",
	"draft": "---\ntitle: {{ title }}\ntags:\n---\n",
	"page":  "---\ntitle: {{ title }}\ndate: {{ date }}\n---\n",
}

// Getter returns the scaffold text for a layout; ok is false when none exists.
type Getter interface {
	Get(ctx context.Context, layout string) (text string, ok bool, err error)
}

// Store reads "<dir>/<layout>.md" from fs and falls back to Defaults.
type Store struct {
	fs       afero.Fs
	dir      string
	defaults map[string]string
}

// NewStore returns a store rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, defaults: Defaults}
}

// WithoutDefaults returns a copy of s that only serves scaffolds found on disk.
func (s *Store) WithoutDefaults() *Store {
	cp := *s
	cp.defaults = nil
	return &cp
}

func (s *Store) path(layout string) string {
	return filepath.Join(s.dir, layout+".md")
}

func (s *Store) Get(ctx context.Context, layout string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if layout == "" || strings.ContainsAny(layout, `/\`) {
		return "", false, nil
	}

	p := s.path(layout)
	data, err := afero.ReadFile(s.fs, p)
	switch {
	case err == nil:
		return string(data), true, nil
	case !os.IsNotExist(err):
		return "", false, errors.WrapError(err, errors.CategoryFileSystem, "cannot read scaffold").
			WithContext("path", p).
			Build()
	}

	text, ok := s.defaults[layout]
	return text, ok, nil
}

// Set writes a scaffold for layout.
func (s *Store) Set(layout, text string) error {
	if err := s.fs.MkdirAll(s.dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot create scaffold directory").
			WithContext("path", s.dir).
			Build()
	}
	if err := afero.WriteFile(s.fs, s.path(layout), []byte(text), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot write scaffold").
			WithContext("path", s.path(layout)).
			Build()
	}
	return nil
}

// List returns the layouts available from disk and defaults.
func (s *Store) List() ([]string, error) {
	seen := sets.New[string]()
	for k := range s.defaults {
		seen.Add(k)
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot list scaffolds").
			WithContext("path", s.dir).
			Build()
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		seen.Add(strings.TrimSuffix(e.Name(), ".md"))
	}
	return sets.Sorted(seen), nil
}
