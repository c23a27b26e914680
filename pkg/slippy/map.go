package slippy

import (
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

const (
	minZoom     = 0.0
	maxZoom     = 19.0
	fitPadding  = 0.9
	fitAnimTime = 400 * time.Millisecond
)

// Map is a slippy-map backdrop: it projects geographic coordinates
// through the current Web Mercator view and draws raster tiles
// underneath the regions. It satisfies the chart's map backend.
type Map struct {
	width, height int

	center geo.Coord
	zoom   float64

	animating  bool
	animStart  time.Time
	fromCenter geo.Coord
	fromZoom   float64
	toCenter   geo.Coord
	toZoom     float64

	// OnViewChange fires whenever the view moves, so the owner can
	// invalidate the chart's projection and redraw.
	OnViewChange func()

	tiles   *TileLoader
	legend  *Legend
	removed bool
}

// NewMap builds a map view sized to the chart viewport.
func NewMap(width, height int, tiles *TileLoader) *Map {
	return &Map{
		width:  width,
		height: height,
		center: geo.Coord{0, 20},
		zoom:   2,
		tiles:  tiles,
		legend: &Legend{},
	}
}

// Legend returns the legend attached to this map.
func (m *Map) Legend() *Legend { return m.legend }

// Project converts a geographic coordinate to screen pixels under the
// current view.
func (m *Map) Project(c geo.Coord) geo.Point {
	left := lngToWorldX(m.center.Lng(), m.zoom) - float64(m.width)/2
	top := latToWorldY(m.center.Lat(), m.zoom) - float64(m.height)/2
	return geo.Point{
		X: lngToWorldX(c.Lng(), m.zoom) - left,
		Y: latToWorldY(c.Lat(), m.zoom) - top,
	}
}

// Unproject converts screen pixels back to a geographic coordinate.
func (m *Map) Unproject(x, y float64) geo.Coord {
	left := lngToWorldX(m.center.Lng(), m.zoom) - float64(m.width)/2
	top := latToWorldY(m.center.Lat(), m.zoom) - float64(m.height)/2
	return geo.Coord{
		worldXToLng(left+x, m.zoom),
		worldYToLat(top+y, m.zoom),
	}
}

// Zoom returns the current fractional zoom level.
func (m *Map) Zoom() float64 { return m.zoom }

// Center returns the current view center.
func (m *Map) Center() geo.Coord { return m.center }

// FitBounds reframes the view so the given geographic bounds fill the
// viewport, optionally animating there.
func (m *Map) FitBounds(b geo.Bounds, animate bool) {
	w0 := lngToWorldX(b.MaxX, 0) - lngToWorldX(b.MinX, 0)
	h0 := latToWorldY(b.MinY, 0) - latToWorldY(b.MaxY, 0)
	zoom := maxZoom
	if w0 > 0 && h0 > 0 {
		scale := math.Min(float64(m.width)/w0, float64(m.height)/h0) * fitPadding
		zoom = math.Log2(scale)
	}
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))

	target := b.Center()

	if animate {
		m.animating = true
		m.animStart = time.Now()
		m.fromCenter = m.center
		m.fromZoom = m.zoom
		m.toCenter = target
		m.toZoom = zoom
		return
	}
	m.setView(target, zoom)
}

// Pan shifts the view by the given screen-pixel delta.
func (m *Map) Pan(dx, dy float64) {
	m.animating = false
	cx := lngToWorldX(m.center.Lng(), m.zoom) + dx
	cy := latToWorldY(m.center.Lat(), m.zoom) + dy
	m.setView(geo.Coord{worldXToLng(cx, m.zoom), worldYToLat(cy, m.zoom)}, m.zoom)
}

// ZoomBy changes zoom by delta, keeping the geographic point under the
// given screen position fixed.
func (m *Map) ZoomBy(delta, x, y float64) {
	m.animating = false
	anchor := m.Unproject(x, y)
	zoom := math.Max(minZoom, math.Min(maxZoom, m.zoom+delta))

	// Recenter so the anchor stays under (x, y) at the new zoom.
	ax := lngToWorldX(anchor.Lng(), zoom)
	ay := latToWorldY(anchor.Lat(), zoom)
	cx := ax - (x - float64(m.width)/2)
	cy := ay - (y - float64(m.height)/2)
	m.setView(geo.Coord{worldXToLng(cx, zoom), worldYToLat(cy, zoom)}, zoom)
}

func (m *Map) setView(center geo.Coord, zoom float64) {
	m.center = center
	m.zoom = zoom
	if m.OnViewChange != nil {
		m.OnViewChange()
	}
}

// Update advances an in-flight fit animation. Call once per tick.
func (m *Map) Update() {
	if !m.animating {
		return
	}
	t := float64(time.Since(m.animStart)) / float64(fitAnimTime)
	if t >= 1 {
		m.animating = false
		m.setView(m.toCenter, m.toZoom)
		return
	}
	// Ease-out keeps the landing smooth.
	t = 1 - (1-t)*(1-t)
	m.setView(geo.Coord{
		m.fromCenter.Lng() + (m.toCenter.Lng()-m.fromCenter.Lng())*t,
		m.fromCenter.Lat() + (m.toCenter.Lat()-m.fromCenter.Lat())*t,
	}, m.fromZoom+(m.toZoom-m.fromZoom)*t)
}

// Remove tears down the map: the legend goes first, then the tile
// loader and its cache.
func (m *Map) Remove() {
	if m.removed {
		return
	}
	m.removed = true
	m.legend.RemoveLegend()
	if m.tiles != nil {
		if err := m.tiles.Close(); err != nil {
			log.Printf("closing tile loader: %v", err)
		}
	}
}

// Removed reports whether Remove has run.
func (m *Map) Removed() bool { return m.removed }

// Draw paints the visible tiles. Implements the render underlay.
func (m *Map) Draw(screen *ebiten.Image) {
	if m.removed || m.tiles == nil {
		return
	}

	z := int(math.Round(m.zoom))
	if z < int(minZoom) {
		z = int(minZoom)
	}
	if z > int(maxZoom) {
		z = int(maxZoom)
	}
	scale := math.Exp2(m.zoom - float64(z))
	drawn := tileSize * scale

	left := lngToWorldX(m.center.Lng(), m.zoom) - float64(m.width)/2
	top := latToWorldY(m.center.Lat(), m.zoom) - float64(m.height)/2

	n := 1 << uint(z)
	x0 := int(math.Floor(left / drawn))
	x1 := int(math.Ceil((left + float64(m.width)) / drawn))
	y0 := int(math.Floor(top / drawn))
	y1 := int(math.Ceil((top + float64(m.height)) / drawn))

	for ty := y0; ty < y1; ty++ {
		if ty < 0 || ty >= n {
			continue
		}
		for tx := x0; tx < x1; tx++ {
			// Wrap longitude so panning across the antimeridian works.
			wx := ((tx % n) + n) % n
			img := m.tiles.Tile(z, wx, ty)
			if img == nil {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(float64(tx)*drawn-left, float64(ty)*drawn-top)
			screen.DrawImage(img, op)
		}
	}
}
