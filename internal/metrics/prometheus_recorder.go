package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	reloadDuration *prom.HistogramVec
	reloads        *prom.CounterVec
	pages          prom.Gauge
	checkDuration  prom.Histogram
	checkMissing   prom.Gauge
	checkOrphans   prom.Gauge
	httpDuration   *prom.HistogramVec
	httpRequests   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the sitecfg metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		reloadDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitecfg",
			Name:      "reload_duration_seconds",
			Help:      "Duration of manifest load and validation",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitecfg",
			Name:      "reloads_total",
			Help:      "Manifest reloads by result",
		}, []string{"result"}),
		pages: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitecfg",
			Name:      "manifest_pages",
			Help:      "Number of sidebar pages in the served manifest",
		}),
		checkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitecfg",
			Name:      "page_check_duration_seconds",
			Help:      "Duration of the docs tree check",
			Buckets:   prom.DefBuckets,
		}),
		checkMissing: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitecfg",
			Name:      "page_check_missing",
			Help:      "Listed pages without a docs file in the last check",
		}),
		checkOrphans: prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitecfg",
			Name:      "page_check_orphans",
			Help:      "Docs files not listed in any menu in the last check",
		}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitecfg",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitecfg",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(pr.reloadDuration, pr.reloads, pr.pages, pr.checkDuration,
		pr.checkMissing, pr.checkOrphans, pr.httpDuration, pr.httpRequests)
	return pr
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveReload(d time.Duration, result ResultLabel) {
	if p == nil {
		return
	}
	p.reloadDuration.WithLabelValues(string(result)).Observe(d.Seconds())
	p.reloads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetManifestPages(n int) {
	if p == nil {
		return
	}
	p.pages.Set(float64(n))
}

func (p *PrometheusRecorder) ObservePageCheck(d time.Duration, missing, orphans int) {
	if p == nil {
		return
	}
	p.checkDuration.Observe(d.Seconds())
	p.checkMissing.Set(float64(missing))
	p.checkOrphans.Set(float64(orphans))
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
