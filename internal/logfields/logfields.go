package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyOperation  = "operation"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyLayout     = "layout"
	KeyPhase      = "phase"
	KeyHook       = "hook"
	KeyEngine     = "engine"
	KeyEvent      = "event"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Layout(l string) slog.Attr       { return slog.String(KeyLayout, l) }
func Phase(name string) slog.Attr     { return slog.String(KeyPhase, name) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func Engine(ext string) slog.Attr     { return slog.String(KeyEngine, ext) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Since reports the elapsed time since start in milliseconds.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
