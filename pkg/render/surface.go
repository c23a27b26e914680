package render

import (
	"bytes"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

// Underlay is drawn beneath the regions, e.g. slippy-map tiles.
type Underlay interface {
	Draw(screen *ebiten.Image)
}

// Surface renders a chart's region scene into an ebiten screen and turns
// pointer events into chart interactions.
type Surface struct {
	chart         *choropleth.Chart
	width, height int

	Background   color.RGBA
	OutlineColor color.RGBA
	Underlay     Underlay

	// OnRegionClick overrides the default click handling (forwarding into
	// the chart's filter model).
	OnRegionClick func(*choropleth.Region)

	masks   map[*choropleth.Region]*regionMask
	outline *ebiten.Image
	index   *hitIndex
	hovered *choropleth.Region

	fontSource *text.GoTextFaceSource
}

type regionMask struct {
	img     *ebiten.Image
	x, y    float64
	version int
}

// New returns a surface for the chart sized to its viewport.
func New(chart *choropleth.Chart) *Surface {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("loading font: %v", err)
	}
	return &Surface{
		chart:        chart,
		width:        chart.Width,
		height:       chart.Height,
		Background:   color.RGBA{8, 10, 15, 255},
		OutlineColor: color.RGBA{36, 42, 53, 255},
		masks:        make(map[*choropleth.Region]*regionMask),
		fontSource:   s,
	}
}

// refresh rebuilds cached region masks, the outline image and the hit
// index for regions whose paths changed since the last frame.
func (s *Surface) refresh() {
	live := make(map[*choropleth.Region]bool)
	changed := false
	s.chart.EachRegion(func(r *choropleth.Region) {
		live[r] = true
		m, ok := s.masks[r]
		if ok && m.version == r.PathVersion {
			return
		}
		s.masks[r] = buildMask(r)
		changed = true
	})
	for r := range s.masks {
		if !live[r] {
			delete(s.masks, r)
			changed = true
		}
	}
	if !changed && s.index != nil {
		return
	}

	s.index = newHitIndex()
	cpu := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	s.chart.EachRegion(func(r *choropleth.Region) {
		s.index.insert(r)
		strokePath(cpu, r.Path, s.OutlineColor)
	})
	s.outline = ebiten.NewImageFromImage(cpu)
}

func buildMask(r *choropleth.Region) *regionMask {
	minX, minY, maxX, maxY, ok := pathBounds(r.Path)
	if !ok {
		return &regionMask{version: r.PathVersion}
	}
	w := int(maxX-minX) + 2
	h := int(maxY-minY) + 2
	cpu := image.NewRGBA(image.Rect(0, 0, w, h))
	fillPath(cpu, r.Path, minX, minY, color.RGBA{255, 255, 255, 255})
	return &regionMask{
		img:     ebiten.NewImageFromImage(cpu),
		x:       minX,
		y:       minY,
		version: r.PathVersion,
	}
}

// Update processes pointer input: hover popups with accent, and
// click-to-filter. Call once per ebiten tick.
func (s *Surface) Update() {
	if !s.chart.Rendered() {
		return
	}
	s.refresh()

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)

	var hit *choropleth.Region
	if s.index != nil {
		hit = s.index.at(x, y)
	}
	if hit != nil && !hit.HasKey {
		hit = nil
	}

	switch {
	case hit != s.hovered:
		if s.hovered != nil {
			s.chart.UnAccent(s.hovered.Key)
			s.chart.HidePopup()
		}
		if hit != nil {
			s.chart.Accent(hit.Key)
			s.chart.ShowPopup(hit.Key, x, y)
		}
		s.hovered = hit
	case hit != nil:
		s.chart.MovePopup(x, y)
	}

	if hit != nil && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if s.OnRegionClick != nil {
			s.OnRegionClick(hit)
		} else {
			s.chart.HandleClick(hit.Feature, hit.LayerIndex)
		}
	}
}

// Draw renders the scene: optional underlay, tinted region fills with
// their transitions, outlines, then the popup.
func (s *Surface) Draw(screen *ebiten.Image) {
	screen.Fill(s.Background)
	if s.Underlay != nil {
		s.Underlay.Draw(screen)
	}
	if !s.chart.Rendered() {
		return
	}
	s.refresh()

	now := time.Now()
	s.chart.EachRegion(func(r *choropleth.Region) {
		m := s.masks[r]
		if m == nil || m.img == nil {
			return
		}
		fill := r.FillAt(now, s.chart.TransitionDuration)
		alpha := float64(fill.A) / 255
		if r.Deselected {
			alpha *= 0.45
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(m.x, m.y)
		op.ColorScale.Scale(
			float32(float64(fill.R)/255*alpha),
			float32(float64(fill.G)/255*alpha),
			float32(float64(fill.B)/255*alpha),
			float32(alpha),
		)
		screen.DrawImage(m.img, op)

		if r.Accented || r.Selected {
			hl := &ebiten.DrawImageOptions{}
			hl.GeoM.Translate(m.x, m.y)
			hl.Blend = ebiten.BlendLighter
			boost := 0.18
			if r.Accented {
				boost = 0.32
			}
			hl.ColorScale.Scale(float32(boost), float32(boost), float32(boost), float32(boost))
			screen.DrawImage(m.img, hl)
		}
	})

	if s.outline != nil {
		screen.DrawImage(s.outline, nil)
	}

	s.drawPopup(screen)
}

// Hovered returns the region currently under the pointer, if any.
func (s *Surface) Hovered() *choropleth.Region { return s.hovered }
