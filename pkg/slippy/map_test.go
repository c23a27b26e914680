package slippy

import (
	"image/color"
	"math"
	"testing"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

func TestWorldCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lng, lat float64
		x, y     float64
	}{
		{"origin", 0, 0, 128, 128},
		{"date line west", -180, 0, 0, 128},
		{"date line east", 180, 0, 256, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := lngToWorldX(tt.lng, 0)
			y := latToWorldY(tt.lat, 0)
			if math.Abs(x-tt.x) > 1e-9 || math.Abs(y-tt.y) > 1e-9 {
				t.Errorf("world coords = (%f,%f), want (%f,%f)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestWorldCoordinatesRoundTrip(t *testing.T) {
	for _, zoom := range []float64{0, 3, 10} {
		lng := worldXToLng(lngToWorldX(12.5, zoom), zoom)
		lat := worldYToLat(latToWorldY(48.1, zoom), zoom)
		if math.Abs(lng-12.5) > 1e-9 {
			t.Errorf("zoom %f: lng round trip = %f", zoom, lng)
		}
		if math.Abs(lat-48.1) > 1e-9 {
			t.Errorf("zoom %f: lat round trip = %f", zoom, lat)
		}
	}
}

func TestProjectCenterHitsScreenCenter(t *testing.T) {
	m := NewMap(800, 600, nil)
	m.center = geo.Coord{10, 45}
	m.zoom = 5

	p := m.Project(geo.Coord{10, 45})
	if math.Abs(p.X-400) > 1e-9 || math.Abs(p.Y-300) > 1e-9 {
		t.Errorf("center projected to (%f,%f), want (400,300)", p.X, p.Y)
	}
}

func TestUnprojectInvertsProject(t *testing.T) {
	m := NewMap(800, 600, nil)
	m.center = geo.Coord{-30, 10}
	m.zoom = 4

	c := geo.Coord{-25.5, 12.25}
	p := m.Project(c)
	back := m.Unproject(p.X, p.Y)
	if math.Abs(back.Lng()-c.Lng()) > 1e-9 || math.Abs(back.Lat()-c.Lat()) > 1e-9 {
		t.Errorf("round trip = (%f,%f), want (%f,%f)", back.Lng(), back.Lat(), c.Lng(), c.Lat())
	}
}

func TestFitBoundsCentersView(t *testing.T) {
	m := NewMap(800, 600, nil)
	b := geo.Bounds{MinX: -10, MinY: 40, MaxX: 10, MaxY: 60}
	m.FitBounds(b, false)

	if math.Abs(m.center.Lng()-0) > 1e-9 || math.Abs(m.center.Lat()-50) > 1e-9 {
		t.Errorf("center = (%f,%f), want (0,50)", m.center.Lng(), m.center.Lat())
	}

	// The bounds corners must land inside the viewport.
	for _, c := range []geo.Coord{{-10, 40}, {10, 60}} {
		p := m.Project(c)
		if p.X < 0 || p.X > 800 || p.Y < 0 || p.Y > 600 {
			t.Errorf("corner (%f,%f) projected outside viewport: (%f,%f)",
				c.Lng(), c.Lat(), p.X, p.Y)
		}
	}
}

func TestFitBoundsClampsZoom(t *testing.T) {
	m := NewMap(800, 600, nil)
	// Degenerate bounds would otherwise ask for infinite zoom.
	m.FitBounds(geo.Bounds{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}, false)
	if m.zoom > maxZoom {
		t.Errorf("zoom = %f, want <= %f", m.zoom, maxZoom)
	}
}

func TestFitBoundsAnimateNotifiesOnCompletion(t *testing.T) {
	m := NewMap(800, 600, nil)
	changed := 0
	m.OnViewChange = func() { changed++ }

	m.FitBounds(geo.Bounds{MinX: -10, MinY: 40, MaxX: 10, MaxY: 60}, true)
	if changed != 0 {
		t.Fatal("animated fit must not jump immediately")
	}
	// Force the animation past its end.
	m.animStart = m.animStart.Add(-2 * fitAnimTime)
	m.Update()
	if changed == 0 {
		t.Error("view change not observed after animation")
	}
	if m.animating {
		t.Error("animation still running after completion")
	}
}

func TestPanShiftsCenter(t *testing.T) {
	m := NewMap(800, 600, nil)
	m.center = geo.Coord{0, 0}
	m.zoom = 3

	m.Pan(100, 0)
	if m.center.Lng() <= 0 {
		t.Errorf("pan east gave lng %f, want > 0", m.center.Lng())
	}
	if math.Abs(m.center.Lat()) > 1e-9 {
		t.Errorf("horizontal pan moved latitude to %f", m.center.Lat())
	}
}

func TestZoomByKeepsAnchorFixed(t *testing.T) {
	m := NewMap(800, 600, nil)
	m.center = geo.Coord{0, 20}
	m.zoom = 4

	anchor := m.Unproject(200, 150)
	m.ZoomBy(1, 200, 150)
	p := m.Project(anchor)
	if math.Abs(p.X-200) > 1e-6 || math.Abs(p.Y-150) > 1e-6 {
		t.Errorf("anchor moved to (%f,%f), want (200,150)", p.X, p.Y)
	}
	if m.zoom != 5 {
		t.Errorf("zoom = %f, want 5", m.zoom)
	}
}

func TestRemoveTearsDownLegend(t *testing.T) {
	m := NewMap(800, 600, nil)
	m.Legend().Add("low", color.RGBA{A: 255})
	m.Remove()

	if !m.Removed() {
		t.Error("map not marked removed")
	}
	if !m.Legend().Removed() {
		t.Error("legend not removed with the map")
	}
	if m.Legend().Entries() != nil {
		t.Error("legend entries survive removal")
	}
	// Remove is idempotent.
	m.Remove()
}

func TestTileURLTemplate(t *testing.T) {
	l := NewTileLoader("https://tiles.example/{z}/{x}/{y}.png", nil)
	got := l.url(tileKey{z: 4, x: 8, y: 5})
	want := "https://tiles.example/4/8/5.png"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}

func TestTileCacheRoundTrip(t *testing.T) {
	cache, err := OpenTileCache(t.TempDir())
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	defer cache.Close()

	if data, err := cache.Get(1, 2, 3); err != nil || data != nil {
		t.Fatalf("missing tile: data=%v err=%v", data, err)
	}
	if err := cache.Put(1, 2, 3, []byte("png bytes")); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := cache.Get(1, 2, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "png bytes" {
		t.Errorf("got %q back", data)
	}
}
