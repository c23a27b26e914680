package choropleth

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

// Region is one rendered region element: a feature's projected outline
// plus its current visual state. The drawing surface reads regions; the
// chart writes them.
type Region struct {
	Layer      *Layer
	LayerIndex int
	Feature    *geo.Feature
	Key        string
	HasKey     bool

	Path geo.Path

	// PathVersion increments whenever Path is recomputed, so a drawing
	// surface can cache rasterized outlines per version.
	PathVersion int

	// Fill is the transition target; PrevFill the starting color. FillAt
	// interpolates between them.
	Fill      color.RGBA
	PrevFill  color.RGBA
	FillSetAt time.Time

	// StyledFill is an externally assigned fill. It takes precedence over
	// the neutral fallback until the first data color overrides both.
	StyledFill *color.RGBA

	HasData    bool
	Selected   bool
	Deselected bool
	Accented   bool
	Title      string
}

// FillAt returns the fill at the given instant, interpolating the
// transition from PrevFill to Fill over the chart's transition duration.
func (r *Region) FillAt(now time.Time, transition time.Duration) color.RGBA {
	if transition <= 0 || r.FillSetAt.IsZero() {
		return r.Fill
	}
	t := float64(now.Sub(r.FillSetAt)) / float64(transition)
	if t >= 1 {
		return r.Fill
	}
	if t < 0 {
		t = 0
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t)
	}
	return color.RGBA{
		R: lerp(r.PrevFill.R, r.Fill.R),
		G: lerp(r.PrevFill.G, r.Fill.G),
		B: lerp(r.PrevFill.B, r.Fill.B),
		A: lerp(r.PrevFill.A, r.Fill.A),
	}
}

func (r *Region) setFill(c color.RGBA, now time.Time) {
	if c == r.Fill {
		return
	}
	r.PrevFill = r.Fill
	r.Fill = c
	r.FillSetAt = now
}

// Render performs the full initial pass: the scene is rebuilt from
// scratch, every feature of every layer gets a region element with its
// projected path, and the data step runs immediately so initial coloring
// is correct. After the first Render the chart switches to incremental
// redraws.
func (c *Chart) Render(rows []Row) {
	c.ensurePathFunc()
	c.scene = c.scene[:0]

	// The view must be framed before paths are computed, otherwise the
	// initial scene is projected through the unfitted view.
	if c.mapBackend != nil {
		if l := c.layers.Get(0); l != nil && l.HasBounds {
			c.mapBackend.FitBounds(l.Bounds, false)
		}
	}

	layers := c.layers.All()
	for idx, layer := range layers {
		ls := &layerScene{layer: layer}
		for _, f := range layer.Features {
			if f == nil {
				continue
			}
			r := &Region{
				Layer:      layer,
				LayerIndex: idx,
				Feature:    f,
				Path:       c.pathFn(f.Geometry),
				Fill:       NeutralFill,
			}
			if layer.KeyAccessor != nil {
				r.Key = layer.KeyAccessor(f)
				r.HasKey = true
			}
			if s, ok := c.styled[f]; ok {
				styled := s
				r.StyledFill = &styled
				r.Fill = styled
			}
			ls.regions = append(ls.regions, r)
		}
		c.scene = append(c.scene, ls)
	}

	join := Join(rows, c.keyAccessor, c.valueAccessor)
	c.currentJoin = join
	now := time.Now()
	for _, ls := range c.scene {
		c.redrawLayer(ls, join, now, false)
	}

	c.projDirty = false
	c.hasRendered = true
}

// Redraw performs the incremental pass: data layers re-join the rows,
// every region's selection class and fill are recomputed, and paths are
// recomputed only when the projection changed since the last pass. A
// Redraw before any Render is redirected into a full Render.
func (c *Chart) Redraw(rows []Row) {
	if !c.hasRendered {
		c.Render(rows)
		return
	}

	join := Join(rows, c.keyAccessor, c.valueAccessor)
	c.currentJoin = join
	now := time.Now()
	recomputePaths := c.projDirty
	for _, ls := range c.scene {
		c.redrawLayer(ls, join, now, recomputePaths)
	}
	c.projDirty = false
}

// redrawLayer applies the data step to one layer's regions: selection
// classes, fill color with transition, title text, and optionally fresh
// paths.
func (c *Chart) redrawLayer(ls *layerScene, join map[string]float64, now time.Time, recomputePaths bool) {
	for _, r := range ls.regions {
		if recomputePaths {
			r.Path = c.pathFn(r.Feature.Geometry)
			r.PathVersion++
		}
		if !r.HasKey {
			continue
		}

		r.Selected = IsSelected(c.filter, r.Key)
		r.Deselected = IsDeselected(c.filter, r.Key)

		v, ok := join[r.Key]
		if ok && math.IsNaN(v) {
			ok = false
		}
		r.HasData = ok
		r.Title = c.regionTitle(r.Key, v, ok)
		// Without a color scale there is no computed data color; the
		// creation-time fill (styled or neutral) stands.
		if c.colorScale != nil {
			r.setFill(c.fillFor(v, ok), now)
		}
	}
}

// regionTitle formats the textual display for a region. Missing values
// render as N/A, never as 0.
func (c *Chart) regionTitle(key string, v float64, ok bool) string {
	if !ok {
		return fmt.Sprintf("%s: N/A", c.formatKey(key))
	}
	return fmt.Sprintf("%s: %g", c.formatKey(key), v)
}

// Rendered reports whether the initial render has run.
func (c *Chart) Rendered() bool { return c.hasRendered }

// ProjectionDirty reports whether paths will be recomputed on the next
// pass.
func (c *Chart) ProjectionDirty() bool { return c.projDirty }

// EachRegion visits every region of the rendered scene in layer order.
func (c *Chart) EachRegion(fn func(*Region)) {
	for _, ls := range c.scene {
		for _, r := range ls.regions {
			fn(r)
		}
	}
}

// LayerRegions returns the rendered regions of the layer at the given
// render position, or nil when the layer was not part of the last render.
func (c *Chart) LayerRegions(index int) []*Region {
	if index < 0 || index >= len(c.scene) {
		return nil
	}
	return c.scene[index].regions
}
