package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	popupWidth   = 150.0
	popupHeight  = 46.0
	popupOffset  = 14.0
	popupPadding = 10.0
	popupFont    = 13.0
)

// PopupWidth is the box width the chart should use for anchor flipping.
func PopupWidth() float64 { return popupWidth + popupOffset }

func (s *Surface) drawPopup(screen *ebiten.Image) {
	p := s.chart.Popup()
	if !p.Visible {
		return
	}

	x := p.X + popupOffset
	if p.AnchorRight {
		x = p.X - popupOffset - popupWidth
	}
	y := p.Y - popupHeight/2
	if y < 0 {
		y = 0
	}
	if y+popupHeight > float64(s.height) {
		y = float64(s.height) - popupHeight
	}

	vector.DrawFilledRect(screen, float32(x), float32(y), popupWidth, popupHeight, color.RGBA{0, 0, 0, 200}, false)
	vector.StrokeRect(screen, float32(x), float32(y), popupWidth, popupHeight, 1, s.OutlineColor, false)

	swatchSize := 10.0
	vector.DrawFilledRect(screen,
		float32(x+popupPadding), float32(y+popupPadding),
		float32(swatchSize), float32(swatchSize), p.Swatch, false)

	if s.fontSource == nil {
		return
	}
	face := &text.GoTextFace{Source: s.fontSource, Size: popupFont}

	top := &text.DrawOptions{}
	top.GeoM.Translate(x+popupPadding+swatchSize+6, y+popupPadding-2)
	top.ColorScale.Scale(1, 1, 1, 0.9)
	text.Draw(screen, p.Label, face, top)

	bottom := &text.DrawOptions{}
	bottom.GeoM.Translate(x+popupPadding, y+popupPadding+swatchSize+6)
	bottom.ColorScale.Scale(1, 1, 1, 0.7)
	text.Draw(screen, p.Value, face, bottom)
}
