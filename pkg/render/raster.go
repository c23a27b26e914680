// Package render draws a choropleth chart onto an ebiten screen and feeds
// pointer interaction back into it.
package render

import (
	"image"
	"image/color"
	"sort"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

// pathBounds returns the screen-space bounding box of a projected path.
func pathBounds(path geo.Path) (minX, minY, maxX, maxY float64, ok bool) {
	for _, ring := range path {
		for _, p := range ring {
			if !ok {
				minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
				ok = true
				continue
			}
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	return minX, minY, maxX, maxY, ok
}

// fillPath rasterizes the path into the image with an even-odd scanline
// fill, offset so the path's bounding box lands at the image origin.
func fillPath(img *image.RGBA, path geo.Path, offX, offY float64, c color.RGBA) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	for y := 0; y < h; y++ {
		fy := float64(y) + 0.5 + offY
		var nodes []float64
		for _, ring := range path {
			n := len(ring)
			if n < 3 {
				continue
			}
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				a, b := ring[i], ring[j]
				if (a.Y < fy && b.Y >= fy) || (b.Y < fy && a.Y >= fy) {
					nodes = append(nodes, a.X+(fy-a.Y)/(b.Y-a.Y)*(b.X-a.X))
				}
			}
		}
		sort.Float64s(nodes)
		for i := 0; i+1 < len(nodes); i += 2 {
			xs := int(nodes[i] - offX)
			xe := int(nodes[i+1] - offX)
			if xs < 0 {
				xs = 0
			}
			if xe > w {
				xe = w
			}
			for x := xs; x < xe; x++ {
				off := y*img.Stride + x*4
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, c.A
			}
		}
	}
}

// strokePath draws the path's rings into the image with Bresenham lines.
func strokePath(img *image.RGBA, path geo.Path, c color.RGBA) {
	for _, ring := range path {
		for i := 0; i+1 < len(ring); i++ {
			drawLine(img, int(ring[i].X), int(ring[i].Y), int(ring[i+1].X), int(ring[i+1].Y), c)
		}
		if len(ring) > 2 {
			last := ring[len(ring)-1]
			drawLine(img, int(last.X), int(last.Y), int(ring[0].X), int(ring[0].Y), c)
		}
	}
}

func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < w && y1 >= 0 && y1 < h {
			off := y1*img.Stride + x1*4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, c.A
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pointInPath reports whether the point lies inside the path under the
// even-odd rule.
func pointInPath(path geo.Path, x, y float64) bool {
	inside := false
	for _, ring := range path {
		n := len(ring)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			a, b := ring[i], ring[j]
			if (a.Y > y) != (b.Y > y) {
				cross := a.X + (y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
				if x < cross {
					inside = !inside
				}
			}
		}
	}
	return inside
}
