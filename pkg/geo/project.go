package geo

import "math"

// Point is a screen-space coordinate.
type Point struct {
	X, Y float64
}

// Projection maps a geographic coordinate to screen space.
type Projection func(Coord) Point

// Path is the projected outline of a geometry: one screen-space ring per
// geometry ring, across all polygons of a multi-polygon.
type Path [][]Point

// PathFunc turns a geometry into its projected screen outline.
type PathFunc func(Geometry) Path

// PathGenerator builds a PathFunc from a projection. The projection is
// invoked once per coordinate, so wrapping it with a counter observes
// exactly how often paths are recomputed.
func PathGenerator(p Projection) PathFunc {
	return func(g Geometry) Path {
		var path Path
		for _, poly := range g.Polygons() {
			for _, ring := range poly {
				pts := make([]Point, len(ring))
				for i, c := range ring {
					pts[i] = p(c)
				}
				path = append(path, pts)
			}
		}
		return path
	}
}

// Equirectangular maps the given geographic bounds onto a w x h viewport,
// preserving aspect ratio and centering the shorter axis.
func Equirectangular(b Bounds, w, h float64) Projection {
	bw, bh := b.Width(), b.Height()
	if bw <= 0 {
		bw = 1
	}
	if bh <= 0 {
		bh = 1
	}
	scale := w / bw
	if s := h / bh; s < scale {
		scale = s
	}
	offX := (w - bw*scale) / 2
	offY := (h - bh*scale) / 2
	return func(c Coord) Point {
		return Point{
			X: offX + (c[0]-b.MinX)*scale,
			Y: offY + (b.MaxY-c[1])*scale,
		}
	}
}

// Mercator is a world-spanning Web Mercator projection fitted to a w x h
// viewport. Latitudes are clamped near the poles where the projection
// diverges.
func Mercator(w, h float64) Projection {
	return func(c Coord) Point {
		lat := c[1]
		if lat > 85.0511 {
			lat = 85.0511
		}
		if lat < -85.0511 {
			lat = -85.0511
		}
		latRad := lat * math.Pi / 180
		x := (c[0] + 180) / 360 * w
		y := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * h
		return Point{X: x, Y: y}
	}
}

// Mollweide is an equal-area world projection fitted to a w x h viewport.
// Theta is solved iteratively with Newton's method.
func Mollweide(w, h float64) Projection {
	return func(c Coord) Point {
		latRad := c[1] * math.Pi / 180
		lngRad := c[0] * math.Pi / 180
		theta := latRad
		// The Newton denominator 2+2cos(2theta) vanishes at the poles;
		// theta is exactly +-pi/2 there, so skip the iteration.
		if math.Pi/2-math.Abs(latRad) < 1e-6 {
			theta = math.Copysign(math.Pi/2, latRad)
		} else {
			for i := 0; i < 10; i++ {
				delta := (2*theta + math.Sin(2*theta) - math.Pi*math.Sin(latRad)) / (2 + 2*math.Cos(2*theta))
				theta -= delta
				if math.Abs(delta) < 1e-7 {
					break
				}
			}
		}
		r := w / (2 * math.Sqrt(8)) * 1.2
		x := (w * 0.45) + r*(2*math.Sqrt(2)/math.Pi)*lngRad*math.Cos(theta)
		y := (h / 2) - r*math.Sqrt(2)*math.Sin(theta)
		return Point{X: x, Y: y}
	}
}
