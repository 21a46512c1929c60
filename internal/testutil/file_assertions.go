// Package testutil holds shared test helpers.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

// FileAssertions asserts filesystem state in tests. Every method returns the
// receiver so checks can be chained.
type FileAssertions struct {
	t       *testing.T
	fs      afero.Fs
	baseDir string
}

// NewFileAssertions creates a helper resolving paths against baseDir on fs.
func NewFileAssertions(t *testing.T, fs afero.Fs, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, fs: fs, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, rel)
}

// FileExists validates that a regular file exists.
func (fa *FileAssertions) FileExists(rel string) *FileAssertions {
	fa.t.Helper()
	ok, err := afero.Exists(fa.fs, fa.path(rel))
	assert.NoError(fa.t, err)
	assert.True(fa.t, ok, "expected file to exist: %s", fa.path(rel))
	if isDir, _ := afero.IsDir(fa.fs, fa.path(rel)); isDir {
		fa.t.Errorf("expected %s to be a file, but it's a directory", fa.path(rel))
	}
	return fa
}

// NoFile validates that nothing exists at rel.
func (fa *FileAssertions) NoFile(rel string) *FileAssertions {
	fa.t.Helper()
	ok, err := afero.Exists(fa.fs, fa.path(rel))
	assert.NoError(fa.t, err)
	assert.False(fa.t, ok, "expected nothing at %s", fa.path(rel))
	return fa
}

// DirExists validates that a directory exists.
func (fa *FileAssertions) DirExists(rel string) *FileAssertions {
	fa.t.Helper()
	ok, err := afero.DirExists(fa.fs, fa.path(rel))
	assert.NoError(fa.t, err)
	assert.True(fa.t, ok, "expected directory to exist: %s", fa.path(rel))
	return fa
}

// NoDir validates that no directory exists at rel.
func (fa *FileAssertions) NoDir(rel string) *FileAssertions {
	fa.t.Helper()
	ok, err := afero.DirExists(fa.fs, fa.path(rel))
	assert.NoError(fa.t, err)
	assert.False(fa.t, ok, "expected no directory at %s", fa.path(rel))
	return fa
}

// FileContains validates that a file contains expected content.
func (fa *FileAssertions) FileContains(rel, expected string) *FileAssertions {
	fa.t.Helper()
	content, err := afero.ReadFile(fa.fs, fa.path(rel))
	if !assert.NoError(fa.t, err) {
		return fa
	}
	assert.Contains(fa.t, string(content), expected, "in %s", rel)
	return fa
}

// MinFileCount validates that a directory holds at least minCount files.
func (fa *FileAssertions) MinFileCount(rel string, minCount int) *FileAssertions {
	fa.t.Helper()
	entries, err := afero.ReadDir(fa.fs, fa.path(rel))
	if !assert.NoError(fa.t, err) {
		return fa
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() {
			count++
		}
	}
	assert.GreaterOrEqual(fa.t, count, minCount, "files in %s", rel)
	return fa
}
