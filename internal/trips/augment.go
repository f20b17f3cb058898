package trips

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/woozymasta/tripgen/internal/geo"

	"github.com/brunoga/deep"
	"github.com/rs/zerolog/log"
)

// Shape failures. Any of them aborts the run.
var (
	ErrMissingGeometry     = errors.New("feature has no geometry")
	ErrUnsupportedGeometry = errors.New("geometry is not a LineString")
	ErrEmptyRoute          = errors.New("route has no coordinates")
	ErrShortCoordinate     = errors.New("coordinate has fewer than 2 elements")
)

// Stats summarizes one Augment call.
type Stats struct {
	Routes       int
	PaddedRoutes int
	InputPoints  int
	OutputPoints int

	FirstDeparture time.Time
	LastDeparture  time.Time
}

// Augment builds the trip layer document for fc: every coordinate becomes
// [lon, lat, altitude, timestamp] and short routes are padded with copies of
// their last point. fc itself is not modified.
func (g *Generator) Augment(fc geo.GeoJSONFeatureCollection) (geo.GeoJSONFeatureCollection, Stats, error) {
	out := geo.GeoJSONFeatureCollection{
		Type:     fc.Type,
		BBox:     slices.Clone(fc.BBox),
		Features: make([]geo.GeoJSONFeature, 0, len(fc.Features)),
		Extra:    fc.Extra.Clone(),
	}

	var stats Stats
	for i, f := range fc.Features {
		route, departure, err := g.augmentFeature(i, f)
		if err != nil {
			return geo.GeoJSONFeatureCollection{}, stats, fmt.Errorf("feature %d: %w", i, err)
		}

		in, n := f.PointCount(), route.PointCount()
		padded := n > in

		stats.Routes++
		stats.InputPoints += in
		stats.OutputPoints += n
		if padded {
			stats.PaddedRoutes++
		}
		if stats.FirstDeparture.IsZero() || departure.Before(stats.FirstDeparture) {
			stats.FirstDeparture = departure
		}
		if stats.LastDeparture.IsZero() || departure.After(stats.LastDeparture) {
			stats.LastDeparture = departure
		}
		g.metrics.RouteAugmented(in, n, padded, departure)

		log.Trace().
			Int("feature", i).
			Int("points", in).
			Bool("padded", padded).
			Time("departure", departure).
			Msg("Route augmented")

		out.Features = append(out.Features, route)
	}

	return out, stats, nil
}

func (g *Generator) augmentFeature(idx int, f geo.GeoJSONFeature) (geo.GeoJSONFeature, time.Time, error) {
	if f.Geometry == nil {
		return geo.GeoJSONFeature{}, time.Time{}, ErrMissingGeometry
	}
	if t := f.Geometry.Type; t != "" && t != geo.TypeLineString {
		return geo.GeoJSONFeature{}, time.Time{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, t)
	}

	n := len(f.Geometry.Coordinates)
	if n == 0 {
		return geo.GeoJSONFeature{}, time.Time{}, ErrEmptyRoute
	}

	departure, timestamps := g.Timestamps(n)
	altitudes := g.Altitudes(n)

	coords := make([]geo.Coordinate, 0, n+g.cfg.PadCount)
	extra := false
	for j, c := range f.Geometry.Coordinates {
		if len(c) < 2 {
			return geo.GeoJSONFeature{}, time.Time{}, fmt.Errorf("coordinate %d: %w", j, ErrShortCoordinate)
		}
		extra = extra || len(c) > 2
		coords = append(coords, geo.Coordinate{c.Lon(), c.Lat(), altitudes[j], float64(timestamps[j])})
	}
	if extra {
		log.Warn().
			Int("feature", idx).
			Msg("Route has coordinates with more than 2 elements, keeping longitude and latitude only")
	}

	// Trip layers mis-render lines with fewer than 4 vertices.
	// The copies keep the last timestamp, leaving zero-length segments at the end.
	if n <= g.cfg.MinPoints {
		last := coords[len(coords)-1]
		for range g.cfg.PadCount {
			coords = append(coords, slices.Clone(last))
		}
	}

	route := geo.GeoJSONFeature{
		ID:    f.ID,
		Type:  f.Type,
		Extra: f.Extra.Clone(),
		Geometry: &geo.GeoJSONGeometry{
			Type:        f.Geometry.Type,
			Coordinates: coords,
			Extra:       f.Geometry.Extra.Clone(),
		},
	}

	if f.Properties != nil {
		props, err := deep.Copy(f.Properties)
		if err != nil {
			return geo.GeoJSONFeature{}, time.Time{}, fmt.Errorf("copy properties: %w", err)
		}
		route.Properties = props
	}

	return route, departure, nil
}
