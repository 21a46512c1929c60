package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitepress"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	opDuration   *prom.HistogramVec
	opResults    *prom.CounterVec
	placeholders *prom.CounterVec
	hookRuns     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.opDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of create, publish and render operations",
			Buckets:   prom.DefBuckets,
		}, []string{"operation"})
		pr.opResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "operation_results_total",
			Help:      "Operation results by outcome",
		}, []string{"operation", "result"})
		pr.placeholders = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "escaped_regions_total",
			Help:      "Regions replaced by placeholders before rendering",
		}, []string{"kind"})
		pr.hookRuns = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hook_phase_runs_total",
			Help:      "Hook phase dispatches",
		}, []string{"phase"})
		reg.MustRegister(pr.opDuration, pr.opResults, pr.placeholders, pr.hookRuns)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveOperation(op string, d time.Duration) {
	if p == nil || p.opDuration == nil {
		return
	}
	p.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOperationResult(op string, result ResultLabel) {
	if p == nil || p.opResults == nil {
		return
	}
	p.opResults.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) AddPlaceholders(kind string, n int) {
	if p == nil || p.placeholders == nil || n <= 0 {
		return
	}
	p.placeholders.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncHookRun(phase string) {
	if p == nil || p.hookRuns == nil {
		return
	}
	p.hookRuns.WithLabelValues(phase).Inc()
}
