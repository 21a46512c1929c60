package commands

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/logfields"
	"git.home.luguber.info/inful/sitepress/internal/metrics"
	"git.home.luguber.info/inful/sitepress/internal/site"
)

const watchDebounce = 200 * time.Millisecond

// watch re-renders on changes to the source file until ctx is done.
// Render failures are logged and watching continues.
func (r *RenderCmd) watch(ctx context.Context, g *Global, s *site.Site) error {
	target, err := filepath.Abs(r.File)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInput, "resolve source path").WithContext("path", r.File).Build()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create file watcher").Build()
	}
	defer func() { _ = w.Close() }()

	// Watching the directory survives editors that replace the file.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "watch source directory").
			WithContext("path", filepath.Dir(target)).
			Build()
	}

	stopFlush := startMetricsFlush(s)
	defer stopFlush()
	stopServer := serveMetrics(s)
	defer stopServer()

	slog.Info("watching for changes", logfields.Path(target))

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case trigger <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		case <-trigger:
			start := time.Now()
			if err := r.renderOnce(ctx, g, s); err != nil {
				slog.Error("render failed", logfields.Path(target), logfields.Error(err))
				continue
			}
			slog.Info("rendered", logfields.Path(target), logfields.Since(start))
		}
	}
}

// startMetricsFlush rewrites the metrics textfile periodically while watching.
func startMetricsFlush(s *site.Site) func() {
	path := s.Config.Metrics.Textfile
	if path == "" {
		return func() {}
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		slog.Warn("metrics flush disabled", logfields.Error(err))
		return func() {}
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.Config.FlushInterval()),
		gocron.NewTask(func() {
			if err := metrics.WriteTextfile(path, s.Metrics); err != nil {
				slog.Warn("metrics textfile not written", logfields.Error(err))
			}
		}),
		gocron.WithName("metrics-textfile"),
	)
	if err != nil {
		slog.Warn("metrics flush disabled", logfields.Error(err))
		_ = sched.Shutdown()
		return func() {}
	}
	sched.Start()
	return func() { _ = sched.Shutdown() }
}

// serveMetrics exposes /metrics on metrics.listen while watching.
func serveMetrics(s *site.Site) func() {
	addr := s.Config.Metrics.Listen
	if addr == "" {
		return func() {}
	}
	srv := metrics.NewServer(addr, s.Metrics)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", logfields.Error(err))
		}
	}()
	slog.Info("serving metrics", slog.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
