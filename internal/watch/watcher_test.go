package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yyt520/ahooks-code-analysis/internal/config"
	"github.com/yyt520/ahooks-code-analysis/internal/metrics"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

type reload struct {
	cfg *site.SiteConfig
	err error
}

func startWatcher(t *testing.T, path string) (*Watcher, <-chan reload) {
	t.Helper()
	ch := make(chan reload, 8)
	w, err := New(path, func(cfg *site.SiteConfig, err error) {
		ch <- reload{cfg: cfg, err: err}
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		require.NoError(t, w.Stop())
	})
	require.NoError(t, w.Start(ctx))
	return w, ch
}

func next(t *testing.T, ch <-chan reload) reload {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return reload{}
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, config.Init(path, false))
	_, ch := startWatcher(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	updated := strings.Replace(string(data), "title: ahooks-code-analysis", "title: renamed", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	r := next(t, ch)
	require.NoError(t, r.err)
	require.Equal(t, "renamed", r.cfg.Title)
}

func TestWatcher_ReportsInvalidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, config.Init(path, false))
	_, ch := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("title: only a title\n"), 0o644))

	r := next(t, ch)
	require.Error(t, r.err)
	require.Nil(t, r.cfg)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, config.Init(path, false))
	_, ch := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case r := <-ch:
		t.Fatalf("unexpected reload: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ManualReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, config.Init(path, false))

	var got *site.SiteConfig
	w, err := New(path, func(cfg *site.SiteConfig, err error) {
		require.NoError(t, err)
		got = cfg
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.Reload()
	require.Equal(t, site.Default(), got)
}

type resultRecorder struct {
	metrics.NoopRecorder
	results []metrics.ResultLabel
}

func (r *resultRecorder) ObserveReload(_ time.Duration, result metrics.ResultLabel) {
	r.results = append(r.results, result)
}

func TestWatcher_MissingTitleIsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, config.Init(path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	stripped := strings.Replace(string(data), "title: ahooks-code-analysis\n", "", 1)
	require.NotEqual(t, string(data), stripped)
	require.NoError(t, os.WriteFile(path, []byte(stripped), 0o644))

	rec := &resultRecorder{}
	var got error
	w, err := New(path, func(_ *site.SiteConfig, err error) { got = err }, WithRecorder(rec))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.Reload()
	require.Error(t, got)
	require.Equal(t, []metrics.ResultLabel{metrics.ResultInvalid}, rec.results)
}

func TestNew_RequiresCallback(t *testing.T) {
	_, err := New("site.yaml", nil)
	require.Error(t, err)
}

func TestStop_Idempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "site.yaml"), func(*site.SiteConfig, error) {})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
