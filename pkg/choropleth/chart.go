package choropleth

import (
	"image/color"
	"math"
	"time"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

// NeutralFill is the fallback fill for regions that have never received a
// data color.
var NeutralFill = color.RGBA{0xe2, 0xe2, 0xe2, 0xff}

// ColorScale maps a color input to a fill color. Scale construction is the
// caller's concern.
type ColorScale func(float64) color.RGBA

// ColorAccessor maps a joined value to the color scale's input. ok is
// false when no aggregation row matched the region's key.
type ColorAccessor func(value float64, ok bool) float64

// MapBackend is the slippy-map collaborator used when the chart is in map
// mode. The chart delegates projection to it and tears it down on Close.
type MapBackend interface {
	Project(geo.Coord) geo.Point
	FitBounds(b geo.Bounds, animate bool)
	Remove()
}

// Legend is an optional overlay torn down together with the chart.
type Legend interface {
	RemoveLegend()
}

// KeyFormatter maps a join key to its display label.
type KeyFormatter func(key string) string

// Chart is a choropleth map chart instance. All methods must be called
// from a single goroutine; the chart is driven synchronously by render,
// redraw and pointer events.
type Chart struct {
	Width, Height      int
	TransitionDuration time.Duration

	layers LayerRegistry
	filter FilterModel

	keyAccessor   KeyAccessor
	valueAccessor ValueAccessor
	colorAccessor ColorAccessor
	colorScale    ColorScale
	keyFormatter  KeyFormatter
	onFilterClick func(key string)

	pathFn     geo.PathFunc
	mapBackend MapBackend
	legend     Legend

	hasRendered bool
	projDirty   bool
	currentJoin map[string]float64

	scene      []*layerScene
	styled     map[*geo.Feature]color.RGBA
	popup      Popup
	popupWidth float64
}

type layerScene struct {
	layer   *Layer
	regions []*Region
}

// New returns a chart sized to the given viewport.
func New(width, height int) *Chart {
	return &Chart{
		Width:              width,
		Height:             height,
		TransitionDuration: 250 * time.Millisecond,
		keyAccessor:        DefaultKeyAccessor,
		valueAccessor:      DefaultValueAccessor,
		colorAccessor: func(v float64, ok bool) float64 {
			if !ok || math.IsNaN(v) {
				return 0
			}
			return v
		},
		popupWidth: 150,
	}
}

// OverlayGeoJSON registers a geometry layer. Re-registering a name
// replaces its features and accessor in place; the new geometry takes
// effect at the next Render.
func (c *Chart) OverlayGeoJSON(features []*geo.Feature, name string, key FeatureKeyFunc) *Chart {
	c.layers.Upsert(name, features, key)
	return c
}

// RemoveGeoJSON drops a layer by name. Unknown names are a no-op.
func (c *Chart) RemoveGeoJSON(name string) *Chart {
	c.layers.Remove(name)
	return c
}

// GeoJSONs returns a snapshot of the registered layers in render order.
func (c *Chart) GeoJSONs() []*Layer { return c.layers.All() }

// Layers exposes the registry for positional lookups.
func (c *Chart) Layers() *LayerRegistry { return &c.layers }

// SetFilterModel wires the external filter collaborator.
func (c *Chart) SetFilterModel(f FilterModel) *Chart {
	c.filter = f
	return c
}

// SetOnFilterClick overrides where click-to-filter writes go. Without an
// override, clicks toggle directly on a *FilterSet filter model.
func (c *Chart) SetOnFilterClick(fn func(key string)) *Chart {
	c.onFilterClick = fn
	return c
}

// SetKeyAccessor configures how the join key is read from a row.
func (c *Chart) SetKeyAccessor(fn KeyAccessor) *Chart {
	c.keyAccessor = fn
	return c
}

// SetValueAccessor configures how the value is read from a row.
func (c *Chart) SetValueAccessor(fn ValueAccessor) *Chart {
	c.valueAccessor = fn
	return c
}

// SetColorAccessor configures the value to color-input mapping.
func (c *Chart) SetColorAccessor(fn ColorAccessor) *Chart {
	c.colorAccessor = fn
	return c
}

// SetColorScale configures the externally built color scale.
func (c *Chart) SetColorScale(fn ColorScale) *Chart {
	c.colorScale = fn
	return c
}

// SetKeyFormatter configures how keys are labeled in titles and popups.
func (c *Chart) SetKeyFormatter(fn KeyFormatter) *Chart {
	c.keyFormatter = fn
	return c
}

// SetLegend attaches a legend torn down with the chart.
func (c *Chart) SetLegend(l Legend) *Chart {
	c.legend = l
	return c
}

// SetProjection replaces the projection used to turn coordinates into
// screen paths and marks every path dirty, so the next render or redraw
// recomputes them. In map mode projection belongs to the map backend and
// this is a no-op.
func (c *Chart) SetProjection(p geo.Projection) *Chart {
	if c.mapBackend != nil {
		return c
	}
	c.pathFn = geo.PathGenerator(p)
	c.projDirty = true
	return c
}

// GeoPath returns the path generator currently in use.
func (c *Chart) GeoPath() geo.PathFunc {
	c.ensurePathFunc()
	return c.pathFn
}

// InvalidateProjection forces path recomputation on the next render or
// redraw. In map mode this is how pan and zoom changes propagate.
func (c *Chart) InvalidateProjection() {
	c.projDirty = true
}

// SetMapBackend switches the chart into map mode: projection is delegated
// to the backend and the first layer's bounds drive its viewport.
func (c *Chart) SetMapBackend(b MapBackend) *Chart {
	c.mapBackend = b
	if b != nil {
		c.pathFn = geo.PathGenerator(b.Project)
		c.projDirty = true
	}
	return c
}

// MapMode reports whether a map backend is attached.
func (c *Chart) MapMode() bool { return c.mapBackend != nil }

// Close tears down the map backend and legend, if any.
func (c *Chart) Close() {
	if c.legend != nil {
		c.legend.RemoveLegend()
		c.legend = nil
	}
	if c.mapBackend != nil {
		c.mapBackend.Remove()
		c.mapBackend = nil
	}
}

// SetFeatureStyle assigns an explicit fill to a feature's region. The
// style takes precedence over the neutral fallback whenever the region is
// drawn with no data; a computed data color overrides both.
func (c *Chart) SetFeatureStyle(f *geo.Feature, fill color.RGBA) *Chart {
	if c.styled == nil {
		c.styled = make(map[*geo.Feature]color.RGBA)
	}
	c.styled[f] = fill
	return c
}

// ClearFeatureStyle removes an explicit fill.
func (c *Chart) ClearFeatureStyle(f *geo.Feature) {
	delete(c.styled, f)
}

// CurrentJoin returns the most recent key to value lookup. Popup lookups
// read from it after the render pass completes.
func (c *Chart) CurrentJoin() map[string]float64 { return c.currentJoin }

// ensurePathFunc installs a default projection when none was configured:
// the first layer's bounds fitted to the viewport, or a world Mercator
// when no layer has bounds.
func (c *Chart) ensurePathFunc() {
	if c.pathFn != nil {
		return
	}
	w, h := float64(c.Width), float64(c.Height)
	if l := c.layers.Get(0); l != nil && l.HasBounds {
		c.pathFn = geo.PathGenerator(geo.Equirectangular(l.Bounds, w, h))
		return
	}
	c.pathFn = geo.PathGenerator(geo.Mercator(w, h))
}

func (c *Chart) formatKey(key string) string {
	if c.keyFormatter != nil {
		return c.keyFormatter(key)
	}
	return key
}

func (c *Chart) fillFor(v float64, ok bool) color.RGBA {
	if c.colorScale == nil {
		return NeutralFill
	}
	return c.colorScale(c.colorAccessor(v, ok))
}
