package superopt

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes one search run to prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	improvements prometheus.Counter
	bestLength   prometheus.Gauge
	rejections   [failReasonCount]prometheus.Counter

	search atomic.Pointer[SearchContext]
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{Registry: reg}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "superr_programs_evaluated_total",
		Help: "Candidate programs run through the VM.",
	}, func() float64 {
		if sc := m.search.Load(); sc != nil {
			return float64(sc.Evaluated())
		}
		return 0
	})
	m.improvements = factory.NewCounter(prometheus.CounterOpts{
		Name: "superr_improvements_total",
		Help: "Times the best program was replaced by a shorter one.",
	})
	m.bestLength = factory.NewGauge(prometheus.GaugeOpts{
		Name: "superr_best_length",
		Help: "Instruction count of the best known program.",
	})
	rejections := factory.NewCounterVec(prometheus.CounterOpts{
		Name: "superr_prefilter_rejections_total",
		Help: "Random candidates dropped before execution, by reason.",
	}, []string{"reason"})
	for reason := SelectFailReason(1); reason < failReasonCount; reason++ {
		m.rejections[reason] = rejections.WithLabelValues(reason.String())
	}

	return m
}

func (m *Metrics) attach(sc *SearchContext) {
	if m == nil {
		return
	}
	m.search.Store(sc)
	m.bestLength.Set(float64(sc.Best().Len()))
}

func (m *Metrics) improved(length int) {
	if m == nil {
		return
	}
	m.improvements.Inc()
	m.bestLength.Set(float64(length))
}

func (m *Metrics) rejected(reason SelectFailReason) {
	if m == nil || reason == 0 || reason >= failReasonCount {
		return
	}
	m.rejections[reason].Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
