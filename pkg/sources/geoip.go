package sources

import (
	"fmt"
	"net"
	"sort"

	"github.com/oschwald/maxminddb-golang"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

// CountryCounter aggregates per-country event counts into chart rows.
type CountryCounter struct {
	counts map[string]float64
}

// NewCountryCounter returns an empty counter.
func NewCountryCounter() *CountryCounter {
	return &CountryCounter{counts: make(map[string]float64)}
}

// Add increments the count for an ISO country code.
func (c *CountryCounter) Add(code string, n float64) {
	if code == "" {
		return
	}
	c.counts[code] += n
}

// Rows returns the counts as chart rows in stable key order.
func (c *CountryCounter) Rows() []choropleth.Row {
	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]choropleth.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, choropleth.KV{Key: k, Value: c.counts[k]})
	}
	return rows
}

// GeoIP resolves IP addresses to ISO country codes from a MaxMind
// database.
type GeoIP struct {
	reader *maxminddb.Reader
}

// OpenGeoIP opens a MaxMind database file.
func OpenGeoIP(path string) (*GeoIP, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening GeoIP database: %w", err)
	}
	return &GeoIP{reader: reader}, nil
}

// GeoIPFromBytes opens a MaxMind database held in memory.
func GeoIPFromBytes(data []byte) (*GeoIP, error) {
	reader, err := maxminddb.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("opening GeoIP database: %w", err)
	}
	return &GeoIP{reader: reader}, nil
}

// Close releases the database.
func (g *GeoIP) Close() error {
	return g.reader.Close()
}

// Country returns the ISO country code for an IP, or "" when unknown.
func (g *GeoIP) Country(ip net.IP) string {
	var record struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
	}
	if err := g.reader.Lookup(ip, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// CountByCountry resolves every address and tallies rows per country.
// Unresolvable addresses are skipped.
func (g *GeoIP) CountByCountry(addrs []string) []choropleth.Row {
	counter := NewCountryCounter()
	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip == nil {
			continue
		}
		counter.Add(g.Country(ip), 1)
	}
	return counter.Rows()
}
