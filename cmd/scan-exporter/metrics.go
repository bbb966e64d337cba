package main

import (
	"github.com/claytonsingh/scan-exporter/scanbuf"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterSensorMetrics registers Prometheus metrics for one sensor buffer using GaugeFunc
func RegisterSensorMetrics(reg prometheus.Registerer, name string, b *scanbuf.SafeScanBuffer) {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"sensor": name}

	// Buffer shape
	_ = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "scan_buffer_scans",
		Help:        "The number of scans currently held in the buffer",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Len())
	})

	_ = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "scan_buffer_capacity",
		Help:        "The maximum number of scans the buffer holds",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Cap())
	})

	_ = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "scan_buffer_scan_length",
		Help:        "The number of measurements in one scan",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.ScanLength())
	})

	_ = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "scan_buffer_resolution_degrees",
		Help:        "The angular resolution of the sensor",
		ConstLabels: labels,
	}, func() float64 {
		return b.Resolution()
	})

	// Operation counters
	_ = factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "scan_buffer_scans_pushed_total",
		Help:        "The total number of scans added to the buffer",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Stats().Pushed)
	})

	_ = factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "scan_buffer_scans_popped_total",
		Help:        "The total number of scans removed from the buffer",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Stats().Popped)
	})

	_ = factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "scan_buffer_scans_evicted_total",
		Help:        "The total number of scans overwritten while the buffer was full",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Stats().Evicted)
	})

	_ = factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "scan_buffer_clears_total",
		Help:        "The total number of times the buffer was cleared",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Stats().Cleared)
	})

	_ = factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "scan_buffer_distance_queries_total",
		Help:        "The total number of distance queries",
		ConstLabels: labels,
	}, func() float64 {
		return float64(b.Stats().Queries)
	})

	_ = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "scan_buffer_last_push_timestamp_seconds",
		Help:        "Unix time of the most recent scan, 0 if none",
		ConstLabels: labels,
	}, func() float64 {
		last := b.Stats().LastPush
		if last.IsZero() {
			return 0
		}
		return float64(last.UnixNano()) / 1e9
	})
}
