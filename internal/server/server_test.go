package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/eventstore"
	"github.com/yyt520/ahooks-code-analysis/internal/metrics"
	"github.com/yyt520/ahooks-code-analysis/internal/server/middleware"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

func loadedServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts...)
	s.SetManifest(site.Default())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestReadyz_BeforeAndAfterLoad(t *testing.T) {
	s := New()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/manifest.json")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	s.SetManifest(site.Default())
	resp, body := get(t, ts.URL+"/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"ready":true}`, string(body))
}

func TestReadyz_ReportsReloadError(t *testing.T) {
	s, ts := loadedServer(t)
	s.SetReloadError(errors.New("bad yaml"))

	resp, body := get(t, ts.URL+"/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"ready":true,"lastReloadError":"bad yaml"}`, string(body))

	s.SetManifest(site.Default())
	_, body = get(t, ts.URL+"/readyz")
	require.JSONEq(t, `{"ready":true}`, string(body))
}

func TestHealthz(t *testing.T) {
	_, ts := loadedServer(t)
	resp, body := get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "ok", got["status"])
}

func TestManifestJSON(t *testing.T) {
	_, ts := loadedServer(t)
	resp, body := get(t, ts.URL+"/manifest.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var got site.SiteConfig
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, site.Default(), &got)
}

func TestManifestByFormat(t *testing.T) {
	_, ts := loadedServer(t)

	resp, body := get(t, ts.URL+"/manifest/umi")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "defineConfig")

	resp, body = get(t, ts.URL+"/manifest.yaml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "title: ahooks-code-analysis")

	resp, body = get(t, ts.URL+"/manifest/toml")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e serrors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	require.Equal(t, string(serrors.CategoryValidation), e.Code)
}

func TestMenus(t *testing.T) {
	_, ts := loadedServer(t)

	resp, body := get(t, ts.URL+"/menus/hooks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []site.MenuEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "Dom", entries[0].Title)
	require.Len(t, entries[0].Children, 25)

	resp, _ = get(t, ts.URL+"/menus/guide")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestManifest_ReturnsCopy(t *testing.T) {
	s := New()
	require.Nil(t, s.Manifest())

	cfg := site.Default()
	s.SetManifest(cfg)
	cfg.Title = "changed"
	require.Equal(t, "ahooks-code-analysis", s.Manifest().Title)

	got := s.Manifest()
	got.Navs[0].Title = "changed"
	require.Equal(t, site.Default().Navs, s.Manifest().Navs)
}

func TestCheck_NotRunYet(t *testing.T) {
	_, ts := loadedServer(t)
	resp, _ := get(t, ts.URL+"/check")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	_, ts := loadedServer(t)

	resp, _ := get(t, ts.URL+"/healthz")
	require.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	rec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
	_, ts := loadedServer(t, WithRecorder(rec), WithMetricsHandler(rec.Handler()))

	get(t, ts.URL+"/manifest.json")
	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "sitecfg_manifest_pages 25")
	require.Contains(t, string(body), `route="GET /manifest.json"`)
}

func TestCheckScheduler_RunOnce(t *testing.T) {
	docs := t.TempDir()
	for _, p := range site.Default().Pages() {
		file := filepath.Join(docs, filepath.FromSlash(p.Path)+".md")
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
		require.NoError(t, os.WriteFile(file, []byte("# "+filepath.Base(p.Path)+"\n"), 0o644))
	}

	s, ts := loadedServer(t)
	c, err := NewCheckScheduler(s, docs)
	require.NoError(t, err)
	c.RunOnce(context.Background())

	resp, body := get(t, ts.URL+"/check")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Pages []struct {
			Found bool `json:"found"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(body, &report))
	require.Len(t, report.Pages, 25)
	for _, p := range report.Pages {
		require.True(t, p.Found)
	}
}

func TestCheckScheduler_StartStop(t *testing.T) {
	s := New()
	s.SetManifest(site.Default())
	c, err := NewCheckScheduler(s, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background(), time.Hour))
	require.Eventually(t, func() bool { return s.report.Load() != nil }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Stop())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := New()
	s.SetManifest(site.Default())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPanicRecovery(t *testing.T) {
	adapter := serrors.NewHTTPErrorAdapter(nil)
	h := middleware.Chain(New().logger, adapter, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), "internal server error"))
}

type recordingNotifier struct {
	types []string
}

func (n *recordingNotifier) Notify(_ context.Context, e eventstore.Event) error {
	n.types = append(n.types, e.Type)
	return nil
}

func (n *recordingNotifier) Close() error { return nil }

func TestApplyReload_RecordsAndPublishesEvents(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	notifier := &recordingNotifier{}

	s := New(WithEventStore(store), WithNotifier(notifier), WithSource("site.yaml"))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	s.ApplyReload(site.Default(), nil)
	s.ApplyReload(nil, serrors.ValidationFailed("title", "must not be empty"))

	require.Equal(t, []string{eventstore.TypeManifestLoaded, eventstore.TypeManifestRejected}, notifier.types)
	require.NotNil(t, s.Manifest())

	resp, body := get(t, ts.URL+"/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []eventstore.Event
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 2)
	require.Equal(t, eventstore.TypeManifestRejected, events[0].Type)

	_, body = get(t, ts.URL+"/events?type=ManifestLoaded&limit=1")
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	require.Equal(t, eventstore.TypeManifestLoaded, events[0].Type)

	resp, _ = get(t, ts.URL+"/events?limit=-1")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = get(t, ts.URL+"/readyz")
	require.Contains(t, string(body), "lastReloadError")
}

func TestEvents_DisabledWithoutStore(t *testing.T) {
	_, ts := loadedServer(t)
	resp, _ := get(t, ts.URL+"/events")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckScheduler_EmitsDocsChecked(t *testing.T) {
	notifier := &recordingNotifier{}
	s := New(WithNotifier(notifier))
	s.SetManifest(site.Default())
	c, err := NewCheckScheduler(s, t.TempDir())
	require.NoError(t, err)

	c.RunOnce(context.Background())
	require.Equal(t, []string{eventstore.TypeDocsChecked}, notifier.types)
}

func TestServe_WithConnectionLimit(t *testing.T) {
	s := New(WithMaxConnections(2))
	s.SetManifest(site.Default())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/manifest.json")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
