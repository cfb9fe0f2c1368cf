// Package server exposes the current site manifest over HTTP so previews and
// CI jobs can read it without parsing the source file.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/eventstore"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/metrics"
	"github.com/yyt520/ahooks-code-analysis/internal/notify"
	"github.com/yyt520/ahooks-code-analysis/internal/pages"
	"github.com/yyt520/ahooks-code-analysis/internal/render"
	"github.com/yyt520/ahooks-code-analysis/internal/server/middleware"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
	"github.com/yyt520/ahooks-code-analysis/internal/version"
)

// Server serves the latest valid manifest. The manifest snapshot is swapped
// atomically; handlers never see a partially updated value.
type Server struct {
	logger         *slog.Logger
	errorAdapter   *serrors.HTTPErrorAdapter
	recorder       metrics.Recorder
	metricsHandler http.Handler
	events         eventstore.Store
	notifier       notify.Notifier
	source         string
	maxConns       int
	startTime      time.Time

	manifest  atomic.Pointer[site.SiteConfig]
	report    atomic.Pointer[pages.Report]
	lastError atomic.Pointer[string]
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(s *Server) { s.recorder = r } }

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option { return func(s *Server) { s.metricsHandler = h } }

// WithEventStore records manifest events and serves them on /events.
func WithEventStore(store eventstore.Store) Option { return func(s *Server) { s.events = store } }

// WithNotifier publishes manifest events.
func WithNotifier(n notify.Notifier) Option { return func(s *Server) { s.notifier = n } }

// WithSource names where the manifest is loaded from, for event payloads.
func WithSource(source string) Option { return func(s *Server) { s.source = source } }

// WithMaxConnections caps concurrent connections. Zero means unlimited.
func WithMaxConnections(n int) Option { return func(s *Server) { s.maxConns = n } }

// New creates a server with no manifest loaded; /readyz reports 503 until
// SetManifest is called.
func New(opts ...Option) *Server {
	s := &Server{
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		notifier:  notify.NoopNotifier{},
		source:    "built-in",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errorAdapter = serrors.NewHTTPErrorAdapter(s.logger)
	return s
}

// SetManifest publishes a validated manifest. The server keeps its own copy.
func (s *Server) SetManifest(cfg *site.SiteConfig) {
	s.manifest.Store(cfg.Clone())
	s.lastError.Store(nil)
	s.recorder.SetManifestPages(len(cfg.Pages()))
}

// SetReloadError records a failed reload. The previous manifest stays served.
func (s *Server) SetReloadError(err error) {
	msg := err.Error()
	s.lastError.Store(&msg)
}

// ApplyReload is a reload callback: a loaded manifest replaces the served
// one, a failure is recorded and the previous manifest stays. Both emit an event.
func (s *Server) ApplyReload(cfg *site.SiteConfig, err error) {
	if err != nil {
		s.SetReloadError(err)
		s.emit(eventstore.NewManifestRejected(s.source, err))
		return
	}
	s.SetManifest(cfg)
	s.emit(eventstore.NewManifestLoaded(s.source, cfg))
}

// emit stores and publishes an event. Failures are logged; they never fail a reload or check.
func (s *Server) emit(e eventstore.Event, err error) {
	if err != nil {
		s.logger.Error("Failed to build event", logfields.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.events != nil {
		stored, err := s.events.Append(ctx, e)
		if err != nil {
			s.logger.Error("Failed to record event", slog.String("type", e.Type), logfields.Error(err))
		} else {
			e = stored
		}
	}
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.logger.Warn("Failed to publish event", slog.String("type", e.Type), logfields.Error(err))
	}
}

// Manifest returns a copy of the served manifest, or nil before the first load.
func (s *Server) Manifest() *site.SiteConfig {
	return s.manifest.Load().Clone()
}

// SetCheckReport publishes the latest docs tree check.
func (s *Server) SetCheckReport(r *pages.Report) { s.report.Store(r) }

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /manifest.json", s.handleManifestFormat(render.FormatJSON))
	mux.HandleFunc("GET /manifest.yaml", s.handleManifestFormat(render.FormatYAML))
	mux.HandleFunc("GET /manifest/{format}", s.handleManifest)
	mux.HandleFunc("GET /menus/{section...}", s.handleMenu)
	mux.HandleFunc("GET /check", s.handleCheck)
	mux.HandleFunc("GET /events", s.handleEvents)
	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
	return middleware.Chain(s.logger, s.errorAdapter, s.recorder)(mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return serrors.Wrap(err, serrors.CategoryRuntime, serrors.SeverityFatal, "failed to listen").
			WithContext("addr", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Manifest server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("Manifest server stopped")
	return nil
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) (*site.SiteConfig, bool) {
	cfg := s.manifest.Load()
	if cfg == nil {
		s.errorAdapter.WriteErrorResponse(w, r,
			serrors.New(serrors.CategoryRuntime, serrors.SeverityWarning, "manifest not loaded"))
		return nil, false
	}
	return cfg, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"ready": s.manifest.Load() != nil}
	if msg := s.lastError.Load(); msg != nil {
		body["lastReloadError"] = *msg
	}
	status := http.StatusOK
	if s.manifest.Load() == nil {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	s.handleManifestFormat(format)(w, r)
}

func (s *Server) handleManifestFormat(format render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, ok := s.current(w, r)
		if !ok {
			return
		}
		data, err := render.Bytes(cfg, format)
		if err != nil {
			s.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.logger.Error("Failed writing manifest", logfields.Error(err))
		}
	}
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.current(w, r)
	if !ok {
		return
	}
	section := "/" + strings.Trim(r.PathValue("section"), "/")
	entries, found := cfg.Menu(section)
	if !found {
		s.errorAdapter.WriteErrorResponse(w, r,
			serrors.New(serrors.CategoryNotFound, serrors.SeverityInfo, "no menu for section").
				WithContext("section", section))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	report := s.report.Load()
	if report == nil {
		s.errorAdapter.WriteErrorResponse(w, r,
			serrors.New(serrors.CategoryNotFound, serrors.SeverityInfo, "no docs check has run"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		s.errorAdapter.WriteErrorResponse(w, r,
			serrors.New(serrors.CategoryNotFound, serrors.SeverityInfo, "event history is not enabled"))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorAdapter.WriteErrorResponse(w, r, serrors.ValidationFailed("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}
	events, err := s.events.Recent(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, serrors.InternalError("failed to read events", err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// writeJSON encodes into a buffer first so a failed encode never sends a partial body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed encoding JSON response", logfields.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
