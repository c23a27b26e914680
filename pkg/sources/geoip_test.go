package sources

import (
	"testing"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

func TestCountryCounter(t *testing.T) {
	c := NewCountryCounter()
	c.Add("US", 1)
	c.Add("DE", 1)
	c.Add("US", 2)
	c.Add("", 5) // unknown country must be dropped

	rows := c.Rows()
	want := []choropleth.KV{{Key: "DE", Value: 1}, {Key: "US", Value: 3}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, kv := range want {
		if rows[i].(choropleth.KV) != kv {
			t.Errorf("row %d = %v, want %v", i, rows[i], kv)
		}
	}
}
