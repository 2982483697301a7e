package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusObserver records node outcomes and durations as Prometheus
// metrics. All metrics are namespaced "dagobert_":
//
//   - dagobert_node_duration_ms (histogram, labels: node, status): node
//     execution duration, bucketed.
//   - dagobert_node_total (counter, labels: node, status): outcome
//     counts per node.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	obs := observe.NewPrometheusObserver(registry)
//	_, _ = dagobert.Run(g, payload, dagobert.WithObserver(obs))
type PrometheusObserver struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusObserver registers its metrics against reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dagobert",
			Name:      "node_duration_ms",
			Help:      "Node execution duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"node", "status"}),
		total: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dagobert",
			Name:      "node_total",
			Help:      "Count of node executions by terminal status.",
		}, []string{"node", "status"}),
	}
}

func (p *PrometheusObserver) Observe(rec Record) {
	labels := prometheus.Labels{"node": rec.Node, "status": string(rec.Status)}
	p.total.With(labels).Inc()
	p.duration.With(labels).Observe(float64(rec.ElapsedExecutionMs))
}
