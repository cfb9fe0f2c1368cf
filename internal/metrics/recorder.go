// Package metrics defines the observability hooks used by the watcher and the
// manifest server. Components hold a Recorder and default to NoopRecorder, so
// callers never nil-check; PrometheusRecorder is injected by `sitecfg serve`.
package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultInvalid ResultLabel = "invalid"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for manifest reloads, docs checks and
// HTTP requests.
type Recorder interface {
	ObserveReload(d time.Duration, result ResultLabel)
	SetManifestPages(n int)
	ObservePageCheck(d time.Duration, missing, orphans int)
	ObserveHTTPRequest(route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveReload(time.Duration, ResultLabel)          {}
func (NoopRecorder) SetManifestPages(int)                              {}
func (NoopRecorder) ObservePageCheck(time.Duration, int, int)          {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration)     {}
