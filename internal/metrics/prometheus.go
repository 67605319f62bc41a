package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the bridge collectors with reg
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpnet",
			Name:      "events_total",
			Help:      "bridge event counters",
		},
		[]string{"type", "from_chain", "to_chain"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xpnet",
			Name:      "latency_seconds",
			Help:      "bridge operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "from_chain", "to_chain"},
	)

	for _, c := range []prometheus.Collector{counters, histogram} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}, nil
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type":       name,
		"from_chain": labels["from_chain"],
		"to_chain":   labels["to_chain"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation":  name,
		"from_chain": labels["from_chain"],
		"to_chain":   labels["to_chain"],
	}).Observe(d.Seconds())
}
