package main

import (
	"context"
	"image/color"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
	"github.com/biglyan/mapd-charting/pkg/geo"
	"github.com/biglyan/mapd-charting/pkg/render"
	"github.com/biglyan/mapd-charting/pkg/slippy"
	"github.com/biglyan/mapd-charting/pkg/sources"
)

// Fill ramp endpoints for the lowest and highest measure values.
var (
	rampLow  = color.RGBA{26, 35, 126, 255}
	rampHigh = color.RGBA{255, 213, 79, 255}
)

type game struct {
	chart   *choropleth.Chart
	surface *render.Surface
	slippy  *slippy.Map
	filters *choropleth.FilterSet

	feed     *sources.LiveFeed
	rows     []choropleth.Row
	maxValue float64

	// matchKeys, when non-nil, holds the canonical region keys every
	// incoming row key is normalized against.
	matchKeys []string

	projection int
	cancel     context.CancelFunc
}

func newGame(flags *cli) (*game, error) {
	features, err := loadFeatures(flags)
	if err != nil {
		return nil, err
	}
	rows, err := loadRows(flags)
	if err != nil {
		return nil, err
	}

	g := &game{
		filters: choropleth.NewFilterSet(),
		rows:    rows,
	}

	keyProp := flags.KeyProperty
	if flags.MatchKeys {
		for _, f := range features {
			if k := f.PropertyString(keyProp); k != "" {
				g.matchKeys = append(g.matchKeys, k)
			}
		}
		g.rows = sources.NormalizeKeys(g.rows, g.matchKeys)
	}
	chart := choropleth.New(flags.Width, flags.Height).
		OverlayGeoJSON(features, "regions", func(f *geo.Feature) string {
			return f.PropertyString(keyProp)
		}).
		SetFilterModel(g.filters).
		SetColorScale(g.colorFor).
		SetPopupWidth(render.PopupWidth())
	if flags.CountryNames {
		chart.SetKeyFormatter(countryName)
	}
	g.chart = chart

	if flags.Map {
		cache, err := slippy.OpenTileCache(filepath.Join(flags.CacheDir, "tiles"))
		if err != nil {
			return nil, err
		}
		m := slippy.NewMap(flags.Width, flags.Height, slippy.NewTileLoader(flags.TileURL, cache))
		m.OnViewChange = chart.InvalidateProjection
		m.Legend().Title = flags.ValueColumn
		chart.SetMapBackend(m).SetLegend(m.Legend())
		g.slippy = m
	}

	if flags.Live != "" {
		feed := sources.NewLiveFeed(flags.Live)
		ctx, cancel := context.WithCancel(context.Background())
		g.cancel = cancel
		go feed.Run(ctx)
		g.feed = feed
	}

	g.updateMax()
	chart.Render(g.rows)
	g.surface = render.New(chart)
	if g.slippy != nil {
		g.surface.Underlay = g.slippy
	}
	return g, nil
}

func (g *game) updateMax() {
	g.maxValue = 0
	for _, r := range g.rows {
		if kv, ok := r.(choropleth.KV); ok && kv.Value > g.maxValue {
			g.maxValue = kv.Value
		}
	}
}

// colorFor maps a measure value onto the fill ramp.
func (g *game) colorFor(v float64) color.RGBA {
	t := 0.0
	if g.maxValue > 0 {
		t = v / g.maxValue
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t) }
	return color.RGBA{
		R: lerp(rampLow.R, rampHigh.R),
		G: lerp(rampLow.G, rampHigh.G),
		B: lerp(rampLow.B, rampHigh.B),
		A: 255,
	}
}

func (g *game) Update() error {
	if g.slippy != nil {
		g.slippy.Update()
		g.handleMapInput()
	}

	dirty := false
	if g.feed != nil {
		if rows, changed := g.feed.Snapshot(); changed {
			if g.matchKeys != nil {
				rows = sources.NormalizeKeys(rows, g.matchKeys)
			}
			g.rows = rows
			g.updateMax()
			dirty = true
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.filters.SetInverse(!g.filters.Inverse())
		dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.filters.Clear()
		dirty = true
	}
	if g.slippy == nil && inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.cycleProjection()
	}

	if dirty || g.chart.ProjectionDirty() {
		g.chart.Redraw(g.rows)
	}
	g.surface.Update()
	return nil
}

func (g *game) handleMapInput() {
	const panStep = 12.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.slippy.Pan(-panStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.slippy.Pan(panStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.slippy.Pan(0, -panStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.slippy.Pan(0, panStep)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		cx, cy := ebiten.CursorPosition()
		g.slippy.ZoomBy(wy*0.25, float64(cx), float64(cy))
	}
}

func (g *game) cycleProjection() {
	g.projection = (g.projection + 1) % 3
	w, h := g.chart.Width, g.chart.Height
	switch g.projection {
	case 0:
		layers := g.chart.GeoJSONs()
		if len(layers) > 0 {
			g.chart.SetProjection(geo.Equirectangular(layers[0].Bounds, float64(w), float64(h)))
			return
		}
		g.chart.SetProjection(geo.Mercator(float64(w), float64(h)))
	case 1:
		g.chart.SetProjection(geo.Mercator(float64(w), float64(h)))
	case 2:
		g.chart.SetProjection(geo.Mollweide(float64(w), float64(h)))
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.surface.Draw(screen)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.chart.Width, g.chart.Height
}

// Close stops the live feed and tears the chart down.
func (g *game) Close() {
	if g.cancel != nil {
		g.cancel()
	}
	g.chart.Close()
}
