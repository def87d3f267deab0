package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/scancart-backend/pkg/enums"
)

// CatalogMetrics records oracle lookups by outcome.
type CatalogMetrics struct {
	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCatalogMetrics registers the catalog metrics on the provided registerer.
func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_lookups_total",
		Help: "Catalog oracle lookups by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_lookup_duration_seconds",
		Help:    "Duration of catalog oracle lookups in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(lookups, duration)
	return &CatalogMetrics{lookups: lookups, duration: duration}
}

// ObserveLookup counts one lookup and records how long it took.
func (c *CatalogMetrics) ObserveLookup(outcome enums.LookupOutcome, took time.Duration) {
	if c == nil || c.lookups == nil {
		return
	}
	label := normalizeLabel(outcome.String())
	c.lookups.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(took.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
