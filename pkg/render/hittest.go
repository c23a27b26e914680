package render

import (
	"github.com/dhconnelly/rtreego"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

// indexedRegion wraps a region for R-tree storage over its screen bounds.
type indexedRegion struct {
	region *choropleth.Region
	rect   rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (ir *indexedRegion) Bounds() rtreego.Rect { return ir.rect }

// hitIndex answers "which region is under this pixel" with an R-tree over
// region bounding boxes, refined by an even-odd point-in-polygon test.
type hitIndex struct {
	tree *rtreego.Rtree
}

func newHitIndex() *hitIndex {
	return &hitIndex{tree: rtreego.NewTree(2, 25, 50)}
}

func (h *hitIndex) insert(r *choropleth.Region) {
	minX, minY, maxX, maxY, ok := pathBounds(r.Path)
	if !ok {
		return
	}
	// R-tree rectangles need non-zero extents.
	lenX := maxX - minX
	if lenX <= 0 {
		lenX = 0.001
	}
	lenY := maxY - minY
	if lenY <= 0 {
		lenY = 0.001
	}
	rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	if err != nil {
		return
	}
	h.tree.Insert(&indexedRegion{region: r, rect: rect})
}

// at returns the topmost region containing the point, or nil. Later
// layers render on top, so the match with the highest layer index wins.
func (h *hitIndex) at(x, y float64) *choropleth.Region {
	rect, err := rtreego.NewRect(rtreego.Point{x, y}, []float64{0.001, 0.001})
	if err != nil {
		return nil
	}
	var best *choropleth.Region
	for _, s := range h.tree.SearchIntersect(rect) {
		r := s.(*indexedRegion).region
		if !pointInPath(r.Path, x, y) {
			continue
		}
		if best == nil || r.LayerIndex >= best.LayerIndex {
			best = r
		}
	}
	return best
}
