// Package watch reloads a manifest file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yyt520/ahooks-code-analysis/internal/config"
	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/metrics"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// ReloadFunc receives the result of every reload. Exactly one of cfg and err
// is non-nil.
type ReloadFunc func(cfg *site.SiteConfig, err error)

// LoadFunc loads and validates a manifest.
type LoadFunc func(path string) (*site.SiteConfig, error)

// Watcher monitors a manifest file and reloads it after changes settle.
type Watcher struct {
	path     string
	onReload ReloadFunc
	load     LoadFunc
	recorder metrics.Recorder
	debounce time.Duration

	watcher  *fsnotify.Watcher
	reloadCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(w *Watcher) { w.recorder = r } }

// WithLoader replaces config.Load.
func WithLoader(l LoadFunc) Option { return func(w *Watcher) { w.load = l } }

// New creates a watcher for the manifest at path.
func New(path string, onReload ReloadFunc, opts ...Option) (*Watcher, error) {
	if onReload == nil {
		return nil, errors.New("watch: reload callback is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		path:     absPath,
		onReload: onReload,
		load:     config.Load,
		recorder: metrics.NoopRecorder{},
		debounce: 500 * time.Millisecond,
		watcher:  fw,
		reloadCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start watches the manifest's directory (editors often replace files, which
// a watch on the file itself would miss) and runs until ctx is done or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	slog.Info("Watching manifest", logfields.Path(w.path))

	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)
	return nil
}

// Stop ends both loops and closes the file watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// Reload loads the manifest now and reports the result to the callback.
func (w *Watcher) Reload() {
	start := time.Now()
	cfg, err := w.load(w.path)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		w.recorder.ObserveReload(elapsed, metrics.ResultSuccess)
		w.recorder.SetManifestPages(len(cfg.Pages()))
		slog.Info("Manifest reloaded", logfields.Path(w.path), logfields.Pages(len(cfg.Pages())),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	case serrors.IsCategory(err, serrors.CategoryValidation) || serrors.IsCategory(err, serrors.CategoryReference):
		w.recorder.ObserveReload(elapsed, metrics.ResultInvalid)
		slog.Warn("Manifest is invalid; keeping previous version", logfields.Path(w.path), logfields.Error(err))
	default:
		w.recorder.ObserveReload(elapsed, metrics.ResultFailed)
		slog.Error("Manifest reload failed", logfields.Path(w.path), logfields.Error(err))
	}
	w.onReload(cfg, err)
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	name := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				slog.Debug("Manifest change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.trigger()
			case event.Has(fsnotify.Remove):
				slog.Warn("Manifest removed", logfields.Path(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Manifest watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) trigger() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
		// A reload is already pending.
	}
}

// reloadLoop coalesces change notifications into one reload per quiet period.
func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-w.reloadCh:
			timer.Reset(w.debounce)
		case <-timer.C:
			w.Reload()
		}
	}
}
