package geo

import "testing"

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Alpha", "code": "AA"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Beta", "code": "BB"},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[10,10],[12,10],[12,12],[10,10]]],
          [[[20,20],[22,20],[22,22],[20,20]]]
        ]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Gamma"},
      "geometry": {"type": "Point", "coordinates": [1,1]}
    }
  ]
}`

func TestUnmarshalFeatures(t *testing.T) {
	features, err := UnmarshalFeatures([]byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("UnmarshalFeatures: %v", err)
	}

	// Point geometry is skipped; only polygonal features survive.
	if len(features) != 2 {
		t.Fatalf("expected 2 polygon features, got %d", len(features))
	}

	if features[0].PropertyString("code") != "AA" {
		t.Errorf("expected code AA, got %q", features[0].PropertyString("code"))
	}
	if features[0].Geometry.Type != TypePolygon {
		t.Errorf("expected polygon variant, got %v", features[0].Geometry.Type)
	}
	if features[1].Geometry.Type != TypeMultiPolygon {
		t.Errorf("expected multipolygon variant, got %v", features[1].Geometry.Type)
	}
	if got := len(features[1].Geometry.Polygons()); got != 2 {
		t.Errorf("expected 2 polygons in multipolygon view, got %d", got)
	}

	count := 0
	features[0].Geometry.EachCoord(func(Coord) { count++ })
	if count != 5 {
		t.Errorf("expected 5 coordinates in ring, got %d", count)
	}
}

func TestUnmarshalFeaturesInvalid(t *testing.T) {
	if _, err := UnmarshalFeatures([]byte(`{"type":`)); err == nil {
		t.Error("expected error for malformed GeoJSON")
	}
}

func TestGeometryEmpty(t *testing.T) {
	var g Geometry
	if !g.Empty() {
		t.Error("zero geometry should be empty")
	}
	g = Geometry{Type: TypePolygon, Polygon: Polygon{{Coord{1, 2}}}}
	if g.Empty() {
		t.Error("geometry with a coordinate should not be empty")
	}
}
