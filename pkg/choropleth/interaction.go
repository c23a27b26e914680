package choropleth

import (
	"fmt"
	"image/color"
	"math"

	"github.com/biglyan/mapd-charting/pkg/geo"
)

// Popup is the hover popup state: an explicit value owned by the chart,
// rebuilt fresh on every show so no content leaks across regions.
type Popup struct {
	Visible bool
	Key     string
	Label   string
	Value   string
	Swatch  color.RGBA
	X, Y    float64

	// AnchorRight flips the popup to the left of the pointer when it
	// would otherwise overflow the chart's width.
	AnchorRight bool
}

// Accent marks every rendered region whose key equals the given key.
// Unlike the original chart, which only scanned its first layer, every
// data layer participates.
func (c *Chart) Accent(key string) {
	c.setAccent(key, true)
}

// UnAccent reverses Accent for the given key, leaving other regions
// untouched.
func (c *Chart) UnAccent(key string) {
	c.setAccent(key, false)
}

func (c *Chart) setAccent(key string, on bool) {
	for _, ls := range c.scene {
		if !ls.layer.DataLayer() {
			continue
		}
		for _, r := range ls.regions {
			if r.HasKey && r.Key == key {
				r.Accented = on
			}
		}
	}
}

// HandleClick forwards a region click into the filter model. The key is
// extracted with the clicked layer's accessor; clicks on backdrop layers
// are ignored.
func (c *Chart) HandleClick(feature *geo.Feature, layerIndex int) {
	layer := c.layers.Get(layerIndex)
	if layer == nil || layer.KeyAccessor == nil || feature == nil {
		return
	}
	key := layer.KeyAccessor(feature)
	if c.onFilterClick != nil {
		c.onFilterClick(key)
		return
	}
	if fs, ok := c.filter.(*FilterSet); ok {
		fs.Toggle(key)
	}
}

// ShowPopup builds and shows the popup for the given key at the given
// pointer position. Content comes from the current join: a swatch in the
// region's data color and a formatted key/value block, with N/A for
// missing values.
func (c *Chart) ShowPopup(key string, x, y float64) {
	v, ok := c.currentJoin[key]
	if ok && math.IsNaN(v) {
		ok = false
	}
	value := "N/A"
	if ok {
		value = fmt.Sprintf("%g", v)
	}
	c.popup = Popup{
		Visible: true,
		Key:     key,
		Label:   c.formatKey(key),
		Value:   value,
		Swatch:  c.fillFor(v, ok),
	}
	c.MovePopup(x, y)
}

// MovePopup repositions the visible popup near the pointer, flipping its
// horizontal anchor so it stays within the chart's width.
func (c *Chart) MovePopup(x, y float64) {
	if !c.popup.Visible {
		return
	}
	c.popup.X = x
	c.popup.Y = y
	c.popup.AnchorRight = x+c.popupWidth > float64(c.Width)
}

// HidePopup hides the popup.
func (c *Chart) HidePopup() {
	c.popup = Popup{}
}

// Popup returns the current popup state.
func (c *Chart) Popup() Popup { return c.popup }

// SetPopupWidth tells the chart how wide the rendered popup is, so anchor
// flipping matches the actual box drawn by the surface.
func (c *Chart) SetPopupWidth(w float64) *Chart {
	c.popupWidth = w
	return c
}
