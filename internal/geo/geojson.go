// Package geo handles GeoJSON route documents and their on-disk representation.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Geometry types understood by the trip pipeline.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypeLineString        = "LineString"
)

// GeoJSONFeatureCollection represents a collection of route features.
// It follows the standard GeoJSON structure. Foreign members such as
// "name" or "crs" are kept in Extra and written back after the known ones.
type GeoJSONFeatureCollection struct {
	Type     string
	BBox     []float64
	Features []GeoJSONFeature
	Extra    Members
}

// GeoJSONFeature represents a single route with geometry and properties.
// Properties keep their original key order and number literals so they
// survive a round-trip unchanged. ID numbers are kept as json.Number.
type GeoJSONFeature struct {
	ID         interface{}
	Type       string
	Properties *orderedmap.OrderedMap
	Geometry   *GeoJSONGeometry
	Extra      Members
}

// GeoJSONGeometry represents the geometry of a route feature.
type GeoJSONGeometry struct {
	Type        string
	Coordinates []Coordinate
	Extra       Members
}

// Coordinate is a single position: [Lon, Lat] on input,
// [Lon, Lat, Altitude, Timestamp] once augmented for a trip layer.
type Coordinate []float64

// Lon returns the longitude component.
func (c Coordinate) Lon() float64 { return c[0] }

// Lat returns the latitude component.
func (c Coordinate) Lat() float64 { return c[1] }

// PointCount returns the number of coordinates of the feature geometry,
// or zero when the feature carries no geometry.
func (f GeoJSONFeature) PointCount() int {
	if f.Geometry == nil {
		return 0
	}
	return len(f.Geometry.Coordinates)
}

// PointCountTotal returns the number of coordinates across all features.
func (fc GeoJSONFeatureCollection) PointCountTotal() int {
	total := 0
	for _, f := range fc.Features {
		total += f.PointCount()
	}
	return total
}

func (fc *GeoJSONFeatureCollection) UnmarshalJSON(data []byte) error {
	members, err := splitMembers(data)
	if err != nil {
		return err
	}

	for _, m := range members {
		switch m.Key {
		case "type":
			err = json.Unmarshal(m.Value, &fc.Type)
		case "bbox":
			err = json.Unmarshal(m.Value, &fc.BBox)
		case "features":
			err = json.Unmarshal(m.Value, &fc.Features)
		default:
			fc.Extra = append(fc.Extra, m)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", m.Key, err)
		}
	}
	return nil
}

func (fc GeoJSONFeatureCollection) MarshalJSON() ([]byte, error) {
	features := fc.Features
	if features == nil {
		features = []GeoJSONFeature{}
	}

	fields := []struct {
		key   string
		value interface{}
		skip  bool
	}{
		{"type", fc.Type, false},
		{"bbox", fc.BBox, len(fc.BBox) == 0},
		{"features", features, false},
	}

	var known Members
	for _, f := range fields {
		if f.skip {
			continue
		}
		m, err := member(f.key, f.value)
		if err != nil {
			return nil, err
		}
		known = append(known, m)
	}
	return joinMembers(known, fc.Extra)
}

func (f *GeoJSONFeature) UnmarshalJSON(data []byte) error {
	members, err := splitMembers(data)
	if err != nil {
		return err
	}

	for _, m := range members {
		switch m.Key {
		case "type":
			err = json.Unmarshal(m.Value, &f.Type)
		case "id":
			f.ID, err = decodeValue(m.Value)
		case "properties":
			f.Properties, err = decodeProperties(m.Value)
		case "geometry":
			err = json.Unmarshal(m.Value, &f.Geometry)
		default:
			f.Extra = append(f.Extra, m)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", m.Key, err)
		}
	}
	return nil
}

func (f GeoJSONFeature) MarshalJSON() ([]byte, error) {
	var known Members

	add := func(key string, v interface{}) error {
		m, err := member(key, v)
		if err != nil {
			return err
		}
		known = append(known, m)
		return nil
	}

	if err := add("type", f.Type); err != nil {
		return nil, err
	}
	if f.ID != nil {
		if err := add("id", f.ID); err != nil {
			return nil, err
		}
	}
	if err := add("properties", f.Properties); err != nil {
		return nil, err
	}
	if err := add("geometry", f.Geometry); err != nil {
		return nil, err
	}

	return joinMembers(known, f.Extra)
}

func (g *GeoJSONGeometry) UnmarshalJSON(data []byte) error {
	members, err := splitMembers(data)
	if err != nil {
		return err
	}

	for _, m := range members {
		switch m.Key {
		case "type":
			err = json.Unmarshal(m.Value, &g.Type)
		case "coordinates":
			err = json.Unmarshal(m.Value, &g.Coordinates)
		default:
			g.Extra = append(g.Extra, m)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", m.Key, err)
		}
	}
	return nil
}

func (g GeoJSONGeometry) MarshalJSON() ([]byte, error) {
	coords := g.Coordinates
	if coords == nil {
		coords = []Coordinate{}
	}

	typ, err := member("type", g.Type)
	if err != nil {
		return nil, err
	}
	cm, err := member("coordinates", coords)
	if err != nil {
		return nil, err
	}
	return joinMembers(Members{typ, cm}, g.Extra)
}

// decodeProperties decodes a properties object keeping key order and
// number literals. A JSON null yields nil.
func decodeProperties(data []byte) (*orderedmap.OrderedMap, error) {
	v, err := decodeValue(data)
	if err != nil {
		return nil, err
	}

	switch props := v.(type) {
	case nil:
		return nil, nil
	case *orderedmap.OrderedMap:
		return props, nil
	default:
		return nil, fmt.Errorf("expected object or null, got %T", v)
	}
}
