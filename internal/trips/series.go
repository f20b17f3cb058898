// Package trips synthesizes altitude and timestamp channels for route
// geometries so they can be animated by a trip layer.
package trips

import (
	"time"

	"github.com/woozymasta/tripgen/internal/config"
	"github.com/woozymasta/tripgen/internal/metrics"
)

// Generator draws departures and builds per-route series.
type Generator struct {
	cfg     *config.Config
	sampler Sampler
	metrics *metrics.Collector
}

// NewGenerator returns a generator for cfg drawing from s.
// The collector may be nil.
func NewGenerator(cfg *config.Config, s Sampler, m *metrics.Collector) *Generator {
	return &Generator{cfg: cfg, sampler: s, metrics: m}
}

// Departure draws the start instant of one route.
//
// The draw r ~ Normal(RandomMean, RandomStdDev) is mapped onto the window as
// Start + r*(End-Start). r is not clamped to [0, 1], so a departure can fall
// outside the window; downstream consumers rely on the unmodified distribution.
func (g *Generator) Departure() time.Time {
	r := g.cfg.RandomMean + g.cfg.RandomStdDev*g.sampler.NormFloat64()
	offset := time.Duration(r * float64(g.cfg.Span()))
	return g.cfg.Start.Add(offset)
}

// Timestamps draws a departure for one route and returns it together with
// n unix timestamps starting there and spaced by the configured step.
func (g *Generator) Timestamps(n int) (time.Time, []int64) {
	departure := g.Departure()
	return departure, Series(departure, g.cfg.Step(), n)
}

// Altitudes returns n altitude values, all equal to the configured altitude.
func (g *Generator) Altitudes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = g.cfg.Altitude
	}
	return out
}

// Series returns floor(unix(departure + i*step)) for i in [0, n).
func Series(departure time.Time, step time.Duration, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = departure.Add(time.Duration(i) * step).Unix()
	}
	return out
}
