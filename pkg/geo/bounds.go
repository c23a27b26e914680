package geo

// Bounds is an axis-aligned bounding box over feature coordinates.
// X is longitude, Y is latitude.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// ComputeBounds scans every coordinate of every ring of every feature and
// returns the enclosing box. The second return value is false when no
// coordinate contributed; callers must branch on it rather than inspect
// the zero Bounds.
func ComputeBounds(features []*Feature) (Bounds, bool) {
	var b Bounds
	seen := false
	for _, f := range features {
		if f == nil {
			continue
		}
		f.Geometry.EachCoord(func(c Coord) {
			if !seen {
				b = Bounds{MinX: c[0], MinY: c[1], MaxX: c[0], MaxY: c[1]}
				seen = true
				return
			}
			if c[0] < b.MinX {
				b.MinX = c[0]
			}
			if c[0] > b.MaxX {
				b.MaxX = c[0]
			}
			if c[1] < b.MinY {
				b.MinY = c[1]
			}
			if c[1] > b.MaxY {
				b.MaxY = c[1]
			}
		})
	}
	return b, seen
}

// Contains returns true if the point is within the bounds.
func (b Bounds) Contains(c Coord) bool {
	return c[0] >= b.MinX && c[0] <= b.MaxX && c[1] >= b.MinY && c[1] <= b.MaxY
}

// Intersects returns true if the two boxes overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX || other.MinX > b.MaxX ||
		other.MaxY < b.MinY || other.MinY > b.MaxY)
}

// Union returns the smallest box enclosing both.
func (b Bounds) Union(other Bounds) Bounds {
	out := b
	if other.MinX < out.MinX {
		out.MinX = other.MinX
	}
	if other.MinY < out.MinY {
		out.MinY = other.MinY
	}
	if other.MaxX > out.MaxX {
		out.MaxX = other.MaxX
	}
	if other.MaxY > out.MaxY {
		out.MaxY = other.MaxY
	}
	return out
}

// Expand returns a new Bounds grown by the given margin in all directions.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Coord {
	return Coord{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }
