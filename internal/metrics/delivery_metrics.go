package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type DeliveryMetricsCollector struct {
	Deliveries *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	EpubBytes  prometheus.Histogram
}

var (
	globalCollector *DeliveryMetricsCollector
	collectorOnce   sync.Once
)

func getCollector() *DeliveryMetricsCollector {
	collectorOnce.Do(func() {
		globalCollector = &DeliveryMetricsCollector{
			Deliveries: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "smtp_to_kindle_deliveries_total",
					Help: "The total number of delivery attempts by outcome and error category",
				},
				[]string{"outcome", "category"},
			),
			Duration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "smtp_to_kindle_delivery_duration_seconds",
					Help:    "Time spent building and mailing a book",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"outcome"},
			),
			EpubBytes: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "smtp_to_kindle_epub_bytes",
					Help:    "Size of generated EPUB files",
					Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
				},
			),
		}
	})
	return globalCollector
}

// DeliveryMetrics records what happens to each delivery
type DeliveryMetrics struct {
	collector *DeliveryMetricsCollector
}

func NewDeliveryMetrics() *DeliveryMetrics {
	return &DeliveryMetrics{collector: getCollector()}
}

func (m *DeliveryMetrics) RecordSuccess(elapsed time.Duration) {
	m.collector.Deliveries.WithLabelValues(OutcomeSuccess, "").Inc()
	m.collector.Duration.WithLabelValues(OutcomeSuccess).Observe(elapsed.Seconds())
}

// RecordFailure counts a failed delivery under its error category (Mail, Validation, ...)
func (m *DeliveryMetrics) RecordFailure(category string, elapsed time.Duration) {
	m.collector.Deliveries.WithLabelValues(OutcomeFailure, category).Inc()
	m.collector.Duration.WithLabelValues(OutcomeFailure).Observe(elapsed.Seconds())
}

func (m *DeliveryMetrics) RecordEpubSize(size int) {
	m.collector.EpubBytes.Observe(float64(size))
}
