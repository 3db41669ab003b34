package trace

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TheMapleseed/LDPC-AVX512/ldpc"
)

// MetricsObserver exports codec activity as Prometheus collectors:
// section entry counts and durations, a per-decode iteration counter,
// and a histogram of per-iteration syndrome weights.
type MetricsObserver struct {
	sections   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	iterations prometheus.Counter
	syndrome   prometheus.Histogram

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetricsObserver registers the collectors with reg, or with the
// default registerer when reg is nil.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &MetricsObserver{
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ldpc",
			Subsystem: "codec",
			Name:      "sections_total",
			Help:      "Codec sections entered, by section name.",
		}, []string{"section"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ldpc",
			Subsystem: "codec",
			Name:      "section_duration_seconds",
			Help:      "Wall time spent inside codec sections.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"section"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ldpc",
			Subsystem: "codec",
			Name:      "decode_iterations_total",
			Help:      "Total message-passing iterations across all decodes.",
		}),
		syndrome: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ldpc",
			Subsystem: "codec",
			Name:      "iteration_syndrome_weight",
			Help:      "Unsatisfied parity checks observed per iteration.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		started: make(map[string]time.Time),
	}
	reg.MustRegister(m.sections, m.durations, m.iterations, m.syndrome)
	return m
}

func (m *MetricsObserver) OnSectionStart(name string) {
	m.sections.WithLabelValues(name).Inc()
	m.mu.Lock()
	m.started[name] = time.Now()
	m.mu.Unlock()
}

func (m *MetricsObserver) OnSectionEnd(name string) {
	m.mu.Lock()
	start, ok := m.started[name]
	if ok {
		delete(m.started, name)
	}
	m.mu.Unlock()
	if ok {
		m.durations.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

func (m *MetricsObserver) OnIterationRecorded(it ldpc.IterationMetrics) {
	m.iterations.Inc()
	m.syndrome.Observe(float64(it.SyndromeWeight))
}
