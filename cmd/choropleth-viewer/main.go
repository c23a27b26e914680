// Command choropleth-viewer renders a GeoJSON choropleth with live or
// file-based measure rows in an interactive window.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/biter777/countries"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
	"github.com/biglyan/mapd-charting/pkg/geo"
	"github.com/biglyan/mapd-charting/pkg/sources"
)

type cli struct {
	GeoJSON string `arg:"" help:"GeoJSON file or URL with the regions to draw."`

	KeyProperty string `default:"NAME" help:"Feature property used as the join key."`

	Rows        string `help:"CSV file with measure rows." type:"existingfile"`
	KeyColumn   string `default:"key" help:"CSV column holding region keys."`
	ValueColumn string `default:"value" help:"CSV column holding measure values."`

	Live string `help:"Websocket URL streaming measure rows."`

	MatchKeys bool `help:"Resolve loosely spelled row keys against region names by substring match."`

	GeoIPDB string `help:"MaxMind database for aggregating --ips by country." type:"existingfile"`
	IPs     string `help:"File with one IP address per line." type:"existingfile"`

	Map      bool   `help:"Draw the regions over slippy-map tiles."`
	TileURL  string `default:"https://tile.openstreetmap.org/{z}/{x}/{y}.png" help:"Tile URL template."`
	CacheDir string `default:"data/cache" help:"Directory for downloaded files and tiles."`

	CountryNames bool `help:"Format region keys as country names in popups."`

	Width  int `default:"1280" help:"Window width."`
	Height int `default:"720" help:"Window height."`
	TPS    int `default:"60" help:"Ticks per second."`
}

func main() {
	var flags cli
	kong.Parse(&flags,
		kong.Name("choropleth-viewer"),
		kong.Description("Interactive choropleth map viewer."))

	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	game, err := newGame(&flags)
	if err != nil {
		log.Fatalf("Failed to initialize viewer: %v", err)
	}
	defer game.Close()

	ebiten.SetTPS(flags.TPS)
	ebiten.SetWindowSize(flags.Width, flags.Height)
	ebiten.SetWindowTitle("Choropleth Map Viewer")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

func loadFeatures(flags *cli) ([]*geo.Feature, error) {
	var r io.ReadCloser
	var err error
	if strings.HasPrefix(flags.GeoJSON, "http://") || strings.HasPrefix(flags.GeoJSON, "https://") {
		r, err = sources.CachedReader(flags.GeoJSON, flags.CacheDir)
	} else {
		r, err = os.Open(flags.GeoJSON)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	features, err := geo.UnmarshalFeatures(data)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no polygonal features in %s", flags.GeoJSON)
	}
	return features, nil
}

func loadRows(flags *cli) ([]choropleth.Row, error) {
	switch {
	case flags.Rows != "":
		f, err := os.Open(flags.Rows)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		kvs, err := sources.ReadCSV(f, flags.KeyColumn, flags.ValueColumn)
		if err != nil {
			return nil, err
		}
		return sources.Rows(kvs), nil

	case flags.GeoIPDB != "" && flags.IPs != "":
		geoip, err := sources.OpenGeoIP(flags.GeoIPDB)
		if err != nil {
			return nil, err
		}
		defer geoip.Close()
		f, err := os.Open(flags.IPs)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		var addrs []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				addrs = append(addrs, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return geoip.CountByCountry(addrs), nil
	}
	return nil, nil
}

func countryName(key string) string {
	if c := countries.ByName(key); c != countries.Unknown {
		return c.String()
	}
	return key
}
