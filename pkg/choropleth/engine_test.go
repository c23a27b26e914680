package choropleth

import (
	"image/color"
	"testing"
	"time"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

func keyedFeature(code string, x float64) *geo.Feature {
	return &geo.Feature{
		Properties: map[string]interface{}{"code": code},
		Geometry: geo.Geometry{Type: geo.TypePolygon, Polygon: geo.Polygon{{
			geo.Coord{x, 0}, geo.Coord{x + 1, 0}, geo.Coord{x + 1, 1}, geo.Coord{x, 1}, geo.Coord{x, 0},
		}}},
	}
}

func codeAccessor(f *geo.Feature) string { return f.PropertyString("code") }

// rampScale encodes the input in the red channel so tests can read the
// value back out of the fill.
func rampScale(v float64) color.RGBA {
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return color.RGBA{R: uint8(v), A: 0xff}
}

func newStateChart() *Chart {
	c := New(800, 600)
	c.SetColorScale(rampScale)
	c.OverlayGeoJSON([]*geo.Feature{keyedFeature("CA", 0), keyedFeature("TX", 2)}, "state", codeAccessor)
	return c
}

func regionByKey(c *Chart, key string) *Region {
	var found *Region
	c.EachRegion(func(r *Region) {
		if r.Key == key {
			found = r
		}
	})
	return found
}

func TestRenderWithoutDataUsesNeutralFill(t *testing.T) {
	c := newStateChart()
	c.Render(nil)

	for _, key := range []string{"CA", "TX"} {
		r := regionByKey(c, key)
		if r == nil {
			t.Fatalf("region %s not rendered", key)
		}
		// colorAccessor maps missing to 0, so the scale still runs.
		if r.Fill != rampScale(0) {
			t.Errorf("%s fill = %v, want %v", key, r.Fill, rampScale(0))
		}
		if r.HasData {
			t.Errorf("%s should have no data", key)
		}
		if r.Title != key+": N/A" {
			t.Errorf("%s title = %q, want N/A", key, r.Title)
		}
	}
}

func TestRenderWithoutColorScaleFallsBackToNeutral(t *testing.T) {
	c := New(800, 600)
	c.OverlayGeoJSON([]*geo.Feature{keyedFeature("CA", 0)}, "state", codeAccessor)
	c.Render(nil)

	if r := regionByKey(c, "CA"); r.Fill != NeutralFill {
		t.Errorf("fill = %v, want neutral %v", r.Fill, NeutralFill)
	}
}

func TestStyledFillSurvivesUntilFirstDataColor(t *testing.T) {
	c := New(800, 600)
	feature := keyedFeature("CA", 0)
	c.OverlayGeoJSON([]*geo.Feature{feature}, "state", codeAccessor)

	styled := color.RGBA{0x11, 0x22, 0x33, 0xff}
	c.SetFeatureStyle(feature, styled)
	c.Render(nil)

	// No color scale, no data: the explicit style wins over neutral.
	if r := regionByKey(c, "CA"); r.Fill != styled {
		t.Errorf("fill = %v, want styled %v", r.Fill, styled)
	}

	// Once a data color can be computed, it overrides the style.
	c.SetColorScale(rampScale)
	c.Redraw([]Row{KV{Key: "CA", Value: 42}})
	if r := regionByKey(c, "CA"); r.Fill != rampScale(42) {
		t.Errorf("fill = %v, want data color %v", r.Fill, rampScale(42))
	}
}

func TestRedrawAppliesDataColors(t *testing.T) {
	c := newStateChart()
	c.Render(nil)
	c.Redraw([]Row{KV{Key: "CA", Value: 10}})

	ca := regionByKey(c, "CA")
	if ca.Fill != rampScale(10) {
		t.Errorf("CA fill = %v, want %v", ca.Fill, rampScale(10))
	}
	if !ca.HasData || ca.Title != "CA: 10" {
		t.Errorf("CA state = hasData:%v title:%q", ca.HasData, ca.Title)
	}

	// TX has no row: fill falls back to color(0), display to N/A.
	tx := regionByKey(c, "TX")
	if tx.Fill != rampScale(0) {
		t.Errorf("TX fill = %v, want %v", tx.Fill, rampScale(0))
	}
	if tx.HasData || tx.Title != "TX: N/A" {
		t.Errorf("TX state = hasData:%v title:%q", tx.HasData, tx.Title)
	}
}

func TestRedrawBeforeRenderDelegates(t *testing.T) {
	c := newStateChart()
	c.Redraw([]Row{KV{Key: "CA", Value: 5}})

	if !c.Rendered() {
		t.Fatal("redraw before render must trigger the full render")
	}
	if r := regionByKey(c, "CA"); r == nil || r.Fill != rampScale(5) {
		t.Error("initial coloring missing after delegated render")
	}
}

func TestUnknownRowKeysAreIgnored(t *testing.T) {
	c := newStateChart()
	c.Render(nil)
	c.Redraw([]Row{KV{Key: "ZZ", Value: 99}})

	c.EachRegion(func(r *Region) {
		if r.HasData {
			t.Errorf("region %s claims data from an unknown key", r.Key)
		}
	})
	if c.CurrentJoin()["ZZ"] != 99 {
		t.Error("join must still retain the unmatched row")
	}
}

func TestProjectionDirtyRecomputesPathsOnce(t *testing.T) {
	c := newStateChart()
	c.Render(nil)

	calls := 0
	c.SetProjection(func(coord geo.Coord) geo.Point {
		calls++
		return geo.Point{X: coord[0], Y: coord[1]}
	})
	if !c.ProjectionDirty() {
		t.Fatal("SetProjection must mark the projection dirty")
	}

	rows := []Row{KV{Key: "CA", Value: 1}}
	c.Redraw(rows)
	if calls == 0 {
		t.Fatal("first redraw after projection change must recompute paths")
	}
	if c.ProjectionDirty() {
		t.Error("redraw must clear the dirty flag")
	}

	calls = 0
	c.Redraw(rows)
	if calls != 0 {
		t.Errorf("second redraw recomputed paths %d times, want 0", calls)
	}
}

func TestSetProjectionIsNoOpInMapMode(t *testing.T) {
	c := newStateChart()
	backend := &fakeBackend{}
	c.SetMapBackend(backend)
	c.Render(nil)

	calls := 0
	c.SetProjection(func(coord geo.Coord) geo.Point {
		calls++
		return geo.Point{}
	})
	c.Redraw(nil)
	if calls != 0 {
		t.Error("projection setter must be inert in map mode")
	}
}

type fakeBackend struct {
	fitCalls    int
	lastBounds  geo.Bounds
	removed     bool
}

func (b *fakeBackend) Project(c geo.Coord) geo.Point { return geo.Point{X: c[0], Y: c[1]} }
func (b *fakeBackend) FitBounds(bounds geo.Bounds, animate bool) {
	b.fitCalls++
	b.lastBounds = bounds
}
func (b *fakeBackend) Remove() { b.removed = true }

func TestMapModeFitsBoundsOnRender(t *testing.T) {
	c := newStateChart()
	backend := &fakeBackend{}
	c.SetMapBackend(backend)
	c.Render(nil)

	if backend.fitCalls != 1 {
		t.Fatalf("FitBounds called %d times, want 1", backend.fitCalls)
	}
	if backend.lastBounds.MinX != 0 || backend.lastBounds.MaxX != 3 {
		t.Errorf("unexpected fitted bounds %+v", backend.lastBounds)
	}
}

func TestCloseTearsDownBackendAndLegend(t *testing.T) {
	c := newStateChart()
	backend := &fakeBackend{}
	legend := &fakeLegend{}
	c.SetMapBackend(backend)
	c.SetLegend(legend)
	c.Close()

	if !backend.removed {
		t.Error("map backend not removed")
	}
	if !legend.removed {
		t.Error("legend not removed")
	}
	if c.MapMode() {
		t.Error("chart still in map mode after close")
	}
}

type fakeLegend struct{ removed bool }

func (l *fakeLegend) RemoveLegend() { l.removed = true }

func TestRedrawObservesFilterState(t *testing.T) {
	c := newStateChart()
	fs := NewFilterSet()
	c.SetFilterModel(fs)
	c.Render(nil)

	fs.Toggle("CA")
	c.Redraw(nil)

	ca, tx := regionByKey(c, "CA"), regionByKey(c, "TX")
	if !ca.Selected || ca.Deselected {
		t.Errorf("CA = selected:%v deselected:%v", ca.Selected, ca.Deselected)
	}
	if tx.Selected || !tx.Deselected {
		t.Errorf("TX = selected:%v deselected:%v", tx.Selected, tx.Deselected)
	}

	fs.SetInverse(true)
	c.Redraw(nil)
	ca, tx = regionByKey(c, "CA"), regionByKey(c, "TX")
	if ca.Selected || !tx.Selected {
		t.Error("inverse filter must flip selection")
	}

	fs.Clear()
	c.Redraw(nil)
	c.EachRegion(func(r *Region) {
		if r.Selected || r.Deselected {
			t.Errorf("region %s keeps selection state without a filter", r.Key)
		}
	})
}

func TestFillTransitionInterpolates(t *testing.T) {
	r := &Region{Fill: color.RGBA{0, 0, 0, 0xff}}
	now := time.Now()
	r.setFill(color.RGBA{200, 0, 0, 0xff}, now)

	mid := r.FillAt(now.Add(125*time.Millisecond), 250*time.Millisecond)
	if mid.R < 90 || mid.R > 110 {
		t.Errorf("midpoint red = %d, want ~100", mid.R)
	}
	done := r.FillAt(now.Add(time.Second), 250*time.Millisecond)
	if done.R != 200 {
		t.Errorf("final red = %d, want 200", done.R)
	}
	instant := r.FillAt(now, 0)
	if instant.R != 200 {
		t.Errorf("zero duration must snap to target, got %d", instant.R)
	}
}

func TestRenderRebuildsScene(t *testing.T) {
	c := newStateChart()
	c.Render(nil)

	count := 0
	c.EachRegion(func(*Region) { count++ })
	if count != 2 {
		t.Fatalf("expected 2 regions, got %d", count)
	}

	// Upserting new geometry shows up after the next render only.
	c.OverlayGeoJSON([]*geo.Feature{keyedFeature("CA", 0), keyedFeature("TX", 2), keyedFeature("NY", 4)}, "state", codeAccessor)
	count = 0
	c.EachRegion(func(*Region) { count++ })
	if count != 2 {
		t.Fatalf("scene changed before render, got %d regions", count)
	}

	c.Render(nil)
	count = 0
	c.EachRegion(func(*Region) { count++ })
	if count != 3 {
		t.Fatalf("expected 3 regions after re-render, got %d", count)
	}
}
