package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProducerMetrics holds the publish collectors.
type ProducerMetrics struct {
	published *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewProducerMetrics registers the producer collectors with reg.
func NewProducerMetrics(reg prometheus.Registerer) *ProducerMetrics {
	factory := promauto.With(reg)
	return &ProducerMetrics{
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_producer_messages_published_total",
				Help: "Total number of Kafka messages published",
			},
			[]string{"topic"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_producer_publish_errors_total",
				Help: "Total number of Kafka publish errors",
			},
			[]string{"topic"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kafka_producer_publish_duration_seconds",
				Help:    "Duration of Kafka publish operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
	}
}
