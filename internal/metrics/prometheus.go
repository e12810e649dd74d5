package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink forwards Sink calls to a prometheus.Registerer. It creates
// and registers one CounterVec family and one HistogramVec family at
// construction (metric identity comes from the Sink name, exposed as a
// "metric" label), and lazily one GaugeFunc per distinct gauge name. This mirrors a promauto-based
// per-subsystem Metrics struct, generalized to the cache's closed,
// dynamically-named metric set instead of a fixed struct of fields.
type PrometheusSink struct {
	namespace string

	mu      sync.Mutex
	gauges  map[string]prometheus.GaugeFunc
	counter *prometheus.CounterVec
	latency *prometheus.HistogramVec
	reg     prometheus.Registerer
}

// NewPrometheusSink constructs a sink registered against reg under the
// given namespace (conventionally "patterncache"). Pass
// prometheus.DefaultRegisterer to publish through the global registry.
func NewPrometheusSink(namespace string, reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		namespace: namespace,
		gauges:    make(map[string]prometheus.GaugeFunc),
		reg:       reg,
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "total",
			Help:      "Cumulative count of pattern cache lifecycle events, labeled by metric name.",
		}, []string{"metric"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "latency",
			Name:      "seconds",
			Help:      "Pattern cache operation latency, labeled by metric name.",
			Buckets:   prometheus.ExponentialBuckets(0.0000001, 4, 14), // 100ns .. ~6.7s
		}, []string{"metric"}),
	}
	reg.MustRegister(s.counter, s.latency)
	return s
}

func (s *PrometheusSink) IncrementCounter(name string) {
	s.counter.WithLabelValues(name).Inc()
}

func (s *PrometheusSink) RecordLatency(name string, durationNanos int64) {
	s.latency.WithLabelValues(name).Observe(float64(durationNanos) / 1e9)
}

func (s *PrometheusSink) RegisterGauge(name string, supplier func() float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.gauges[name]; ok {
		// Reconfigure (test-only) re-registers the same gauge name against a
		// fresh cache instance; unregister the stale collector first so the
		// new supplier wins instead of panicking on a duplicate name.
		s.reg.Unregister(existing)
	}

	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: s.namespace,
		Subsystem: "gauge",
		Name:      sanitizeGaugeName(name),
		Help:      "Pattern cache gauge: " + name,
	}, supplier)

	if err := s.reg.Register(gauge); err == nil {
		s.gauges[name] = gauge
	}
}

// sanitizeGaugeName turns a dotted metric name (e.g.
// "cache.native_memory.peak.bytes") into a valid Prometheus metric name
// fragment.
func sanitizeGaugeName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' {
			out[i] = '_'
		} else {
			out[i] = c
		}
	}
	return string(out)
}
