package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/scancart-backend/pkg/enums"
)

// CartMetrics tracks cart mutations and persistence health.
type CartMetrics struct {
	mutations       *prometheus.CounterVec
	persistFailures prometheus.Counter
	lines           prometheus.Gauge
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by type.",
	}, []string{"type"})
	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart snapshots that could not be written to the blob store.",
	})
	lines := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_lines",
		Help: "Distinct lines currently in the cart.",
	})
	reg.MustRegister(mutations, persistFailures, lines)
	return &CartMetrics{mutations: mutations, persistFailures: persistFailures, lines: lines}
}

// ObserveMutation counts a mutation and updates the line gauge.
func (c *CartMetrics) ObserveMutation(kind enums.CartEventType, lineCount int) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(kind.String())).Inc()
	c.lines.Set(float64(lineCount))
}

// SetLines reports the line count without counting a mutation, e.g. after load.
func (c *CartMetrics) SetLines(lineCount int) {
	if c == nil || c.lines == nil {
		return
	}
	c.lines.Set(float64(lineCount))
}

func (c *CartMetrics) IncPersistFailure() {
	if c == nil || c.persistFailures == nil {
		return
	}
	c.persistFailures.Inc()
}
