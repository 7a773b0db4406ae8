package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracker"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	refreshDuration prom.Histogram
	refreshes       *prom.CounterVec
	backoffIndex    prom.Gauge
	nextDelay       prom.Gauge
	marked          prom.Gauge
	total           prom.Gauge
	nudges          prom.Counter
}

// NewPrometheusRecorder constructs and registers the poll metrics on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.refreshDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of poll refresh cycles",
			Buckets:   prom.DefBuckets,
		})
		pr.refreshes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Poll refresh cycles by outcome",
		}, []string{"outcome"})
		pr.backoffIndex = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "backoff_index",
			Help:      "Current position in the backoff schedule",
		})
		pr.nextDelay = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "next_delay_seconds",
			Help:      "Delay until the next scheduled refresh",
		})
		pr.marked = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "marked_items",
			Help:      "Marked items across all checklists",
		})
		pr.total = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_items",
			Help:      "Tracked items across all checklists",
		})
		pr.nudges = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "nudges_total",
			Help:      "Refreshes triggered early by store file changes",
		})
		reg.MustRegister(pr.refreshDuration, pr.refreshes, pr.backoffIndex, pr.nextDelay, pr.marked, pr.total, pr.nudges)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRefreshDuration(d time.Duration) {
	if p == nil || p.refreshDuration == nil {
		return
	}
	p.refreshDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRefresh(outcome OutcomeLabel) {
	if p == nil || p.refreshes == nil {
		return
	}
	p.refreshes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetBackoffIndex(i int) {
	if p == nil || p.backoffIndex == nil {
		return
	}
	p.backoffIndex.Set(float64(i))
}

func (p *PrometheusRecorder) SetNextDelay(d time.Duration) {
	if p == nil || p.nextDelay == nil {
		return
	}
	p.nextDelay.Set(d.Seconds())
}

func (p *PrometheusRecorder) SetTotals(marked, total int) {
	if p == nil || p.marked == nil {
		return
	}
	p.marked.Set(float64(marked))
	p.total.Set(float64(total))
}

func (p *PrometheusRecorder) IncNudge() {
	if p == nil || p.nudges == nil {
		return
	}
	p.nudges.Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
