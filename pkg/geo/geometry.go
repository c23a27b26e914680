// Package geo provides the geometry model for choropleth layers: polygon
// features, bounding boxes and map projections.
package geo

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Coord is a single position in GeoJSON order: longitude, latitude.
type Coord [2]float64

// Lng returns the longitude (x axis).
func (c Coord) Lng() float64 { return c[0] }

// Lat returns the latitude (y axis).
func (c Coord) Lat() float64 { return c[1] }

// Polygon is a set of linear rings. The first ring is the outer boundary,
// any following rings are holes.
type Polygon [][]Coord

// MultiPolygon is an ordered set of polygons.
type MultiPolygon []Polygon

// GeometryType tags which variant of a Geometry is populated.
type GeometryType int

const (
	TypePolygon GeometryType = iota
	TypeMultiPolygon
)

// Geometry is a tagged polygon variant. The shape is resolved once at
// ingestion instead of sniffing nesting depth at every traversal.
type Geometry struct {
	Type         GeometryType
	Polygon      Polygon
	MultiPolygon MultiPolygon
}

// Polygons returns a unified view over both variants.
func (g Geometry) Polygons() MultiPolygon {
	if g.Type == TypeMultiPolygon {
		return g.MultiPolygon
	}
	if g.Polygon == nil {
		return nil
	}
	return MultiPolygon{g.Polygon}
}

// EachCoord visits every coordinate of every ring.
func (g Geometry) EachCoord(fn func(Coord)) {
	for _, poly := range g.Polygons() {
		for _, ring := range poly {
			for _, c := range ring {
				fn(c)
			}
		}
	}
}

// Empty reports whether the geometry has no coordinates at all.
func (g Geometry) Empty() bool {
	for _, poly := range g.Polygons() {
		for _, ring := range poly {
			if len(ring) > 0 {
				return false
			}
		}
	}
	return true
}

// Feature is one region: a polygonal geometry plus its properties.
type Feature struct {
	ID         string
	Properties map[string]interface{}
	Geometry   Geometry
}

// PropertyString returns a string property, or "" when absent or not a string.
func (f *Feature) PropertyString(name string) string {
	if f.Properties == nil {
		return ""
	}
	s, _ := f.Properties[name].(string)
	return s
}

func ringFromRaw(raw [][]float64) []Coord {
	ring := make([]Coord, 0, len(raw))
	for _, p := range raw {
		if len(p) < 2 {
			continue
		}
		ring = append(ring, Coord{p[0], p[1]})
	}
	return ring
}

func polygonFromRaw(raw [][][]float64) Polygon {
	poly := make(Polygon, 0, len(raw))
	for _, ring := range raw {
		poly = append(poly, ringFromRaw(ring))
	}
	return poly
}

// FromGeoJSON converts a decoded feature collection into polygon features.
// Non-polygonal geometries are skipped; they have no area to color.
func FromGeoJSON(fc *geojson.FeatureCollection) []*Feature {
	features := make([]*Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		var g Geometry
		switch {
		case f.Geometry.IsPolygon():
			g = Geometry{Type: TypePolygon, Polygon: polygonFromRaw(f.Geometry.Polygon)}
		case f.Geometry.IsMultiPolygon():
			mp := make(MultiPolygon, 0, len(f.Geometry.MultiPolygon))
			for _, poly := range f.Geometry.MultiPolygon {
				mp = append(mp, polygonFromRaw(poly))
			}
			g = Geometry{Type: TypeMultiPolygon, MultiPolygon: mp}
		default:
			continue
		}
		id := ""
		if f.ID != nil {
			id = fmt.Sprintf("%v", f.ID)
		}
		features = append(features, &Feature{
			ID:         id,
			Properties: f.Properties,
			Geometry:   g,
		})
	}
	return features
}

// UnmarshalFeatures decodes GeoJSON bytes into polygon features.
func UnmarshalFeatures(data []byte) ([]*Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding feature collection: %w", err)
	}
	return FromGeoJSON(fc), nil
}
