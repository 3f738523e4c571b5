// Package metrics exposes parking activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/ports"
)

const namespace = "garage"

var _ ports.ParkingMetrics = (*Collector)(nil)

// Collector records parking activity.
type Collector struct {
	entries  *prometheus.CounterVec
	exits    *prometheus.CounterVec
	duration prometheus.Histogram
	rejected *prometheus.CounterVec
}

// ParkedCounter reports how many cars are currently parked.
type ParkedCounter func() int

// NewCollector creates a Collector and registers its metrics with reg.
// When parked is non-nil it backs the garage_cars_parked gauge.
func NewCollector(reg prometheus.Registerer, parked ParkedCounter) *Collector {
	c := &Collector{
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parking_entries_total",
			Help:      "Cars that entered a garage.",
		}, []string{"garage"}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parking_exits_total",
			Help:      "Cars that left a garage.",
		}, []string{"garage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parking_duration_seconds",
			Help:      "Length of finished stays.",
			// 1 minute up to roughly 11 days.
			Buckets: prometheus.ExponentialBuckets(60, 4, 8),
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parking_rejected_total",
			Help:      "Enter or leave requests rejected because of the car's state.",
		}, []string{"operation"}),
	}

	reg.MustRegister(c.entries, c.exits, c.duration, c.rejected)

	if parked != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cars_parked",
			Help:      "Cars currently in a garage.",
		}, func() float64 { return float64(parked()) }))
	}

	return c
}

// RecordEntry implements ports.ParkingMetrics.
func (c *Collector) RecordEntry(garage domain.Garage) {
	c.entries.WithLabelValues(garage.ID).Inc()
}

// RecordExit implements ports.ParkingMetrics.
func (c *Collector) RecordExit(garage domain.Garage, stay time.Duration) {
	c.exits.WithLabelValues(garage.ID).Inc()
	c.duration.Observe(stay.Seconds())
}

// RecordRejected implements ports.ParkingMetrics.
func (c *Collector) RecordRejected(operation string) {
	c.rejected.WithLabelValues(operation).Inc()
}
