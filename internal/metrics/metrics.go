// Package metrics collects run counters for a trip generation batch.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the run metrics on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	Routes       prometheus.Counter
	PaddedRoutes prometheus.Counter
	InputPoints  prometheus.Counter
	OutputPoints prometheus.Counter

	FirstDeparture prometheus.Gauge // unix seconds
	LastDeparture  prometheus.Gauge // unix seconds
	RunDuration    prometheus.Gauge // seconds
	LastSuccess    prometheus.Gauge // unix seconds

	first, last time.Time
}

// NewCollector registers the run metrics on a fresh private registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Routes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_routes_total",
			Help: "Routes augmented with altitude and timestamps.",
		}),
		PaddedRoutes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_padded_routes_total",
			Help: "Routes padded by duplicating their last point.",
		}),
		InputPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_input_points_total",
			Help: "Coordinates read from input routes.",
		}),
		OutputPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripgen_output_points_total",
			Help: "Coordinates written, padding included.",
		}),
		FirstDeparture: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripgen_first_departure_seconds",
			Help: "Earliest drawn departure as unix time.",
		}),
		LastDeparture: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripgen_last_departure_seconds",
			Help: "Latest drawn departure as unix time.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripgen_run_duration_seconds",
			Help: "Wall time of the last run, load to write.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripgen_last_success_timestamp_seconds",
			Help: "Unix time the last run completed.",
		}),
	}

	reg.MustRegister(
		c.Routes, c.PaddedRoutes, c.InputPoints, c.OutputPoints,
		c.FirstDeparture, c.LastDeparture, c.RunDuration, c.LastSuccess,
	)

	return c
}

// RouteAugmented records one processed route.
func (c *Collector) RouteAugmented(inPoints, outPoints int, padded bool, departure time.Time) {
	if c == nil {
		return
	}

	c.Routes.Inc()
	c.InputPoints.Add(float64(inPoints))
	c.OutputPoints.Add(float64(outPoints))
	if padded {
		c.PaddedRoutes.Inc()
	}

	if c.first.IsZero() || departure.Before(c.first) {
		c.first = departure
		c.FirstDeparture.Set(float64(departure.Unix()))
	}
	if c.last.IsZero() || departure.After(c.last) {
		c.last = departure
		c.LastDeparture.Set(float64(departure.Unix()))
	}
}

// Finish stamps the run duration and completion time.
func (c *Collector) Finish(elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RunDuration.Set(elapsed.Seconds())
	c.LastSuccess.SetToCurrentTime()
}

// WriteTextfile dumps the registry in text exposition format,
// suitable for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}
