package slippy

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const tileSize = 256

// DefaultTileURL renders the standard OSM raster tiles.
const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

type tileKey struct {
	z, x, y int
}

// TileLoader fetches raster tiles asynchronously, keeping decoded images
// in memory and raw bytes in an optional disk cache.
type TileLoader struct {
	urlTemplate string
	client      *http.Client
	cache       *TileCache

	mu       sync.Mutex
	images   map[tileKey]*ebiten.Image
	inflight map[tileKey]bool
}

// NewTileLoader builds a loader for the given URL template. The template
// uses {z}, {x} and {y} placeholders. cache may be nil.
func NewTileLoader(urlTemplate string, cache *TileCache) *TileLoader {
	return &TileLoader{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: 15 * time.Second},
		cache:       cache,
		images:      make(map[tileKey]*ebiten.Image),
		inflight:    make(map[tileKey]bool),
	}
}

func (l *TileLoader) url(k tileKey) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(k.z),
		"{x}", strconv.Itoa(k.x),
		"{y}", strconv.Itoa(k.y),
	)
	return r.Replace(l.urlTemplate)
}

// Tile returns the tile image if it is already decoded, kicking off a
// background fetch otherwise. Never blocks.
func (l *TileLoader) Tile(z, x, y int) *ebiten.Image {
	k := tileKey{z, x, y}
	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.images[k]; ok {
		return img
	}
	if !l.inflight[k] {
		l.inflight[k] = true
		go l.fetch(k)
	}
	return nil
}

func (l *TileLoader) fetch(k tileKey) {
	data, err := l.load(k)
	if err != nil {
		log.Printf("tile %d/%d/%d: %v", k.z, k.x, k.y, err)
		l.mu.Lock()
		delete(l.inflight, k)
		l.mu.Unlock()
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("decoding tile %d/%d/%d: %v", k.z, k.x, k.y, err)
		l.mu.Lock()
		delete(l.inflight, k)
		l.mu.Unlock()
		return
	}

	eimg := ebiten.NewImageFromImage(img)
	l.mu.Lock()
	l.images[k] = eimg
	delete(l.inflight, k)
	l.mu.Unlock()
}

func (l *TileLoader) load(k tileKey) ([]byte, error) {
	if l.cache != nil {
		if data, err := l.cache.Get(k.z, k.x, k.y); err != nil {
			log.Printf("tile cache read: %v", err)
		} else if data != nil {
			return data, nil
		}
	}

	req, err := http.NewRequest(http.MethodGet, l.url(k), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "choropleth-viewer/1.0")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Put(k.z, k.x, k.y, data); err != nil {
			log.Printf("tile cache write: %v", err)
		}
	}
	return data, nil
}

// Close releases the disk cache, if any.
func (l *TileLoader) Close() error {
	if l.cache != nil {
		return l.cache.Close()
	}
	return nil
}

// worldSize is the pixel extent of the whole map at the given zoom.
func worldSize(zoom float64) float64 {
	return tileSize * math.Exp2(zoom)
}

func lngToWorldX(lng, zoom float64) float64 {
	return (lng + 180) / 360 * worldSize(zoom)
}

func latToWorldY(lat, zoom float64) float64 {
	// Web Mercator is undefined at the poles.
	lat = math.Max(-85.0511, math.Min(85.0511, lat))
	rad := lat * math.Pi / 180
	return (1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2 * worldSize(zoom)
}

func worldXToLng(x, zoom float64) float64 {
	return x/worldSize(zoom)*360 - 180
}

func worldYToLat(y, zoom float64) float64 {
	n := math.Pi - 2*math.Pi*y/worldSize(zoom)
	return 180 / math.Pi * math.Atan(math.Sinh(n))
}
