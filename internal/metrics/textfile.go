package metrics

import (
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// WriteTextfile writes the metrics gathered from reg to path in the
// node-exporter textfile format. The file is replaced atomically.
func WriteTextfile(path string, reg *prom.Registry) error {
	if path == "" || reg == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot create metrics directory").
			WithContext("path", path).
			Build()
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}
