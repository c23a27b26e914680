// Package sources loads measure rows for choropleth charts: CSV files,
// live websocket feeds and GeoIP aggregation.
package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

// ReadCSV parses key/value rows from CSV data. The key and value columns
// are located by header name; rows with unparseable values are skipped.
func ReadCSV(r io.Reader, keyColumn, valueColumn string) ([]choropleth.KV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	keyIdx, valIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case strings.ToLower(keyColumn):
			keyIdx = i
		case strings.ToLower(valueColumn):
			valIdx = i
		}
	}
	if keyIdx < 0 || valIdx < 0 {
		return nil, fmt.Errorf("columns %q and %q not found in header %v", keyColumn, valueColumn, header)
	}

	var rows []choropleth.KV
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if keyIdx >= len(record) || valIdx >= len(record) {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[valIdx]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, choropleth.KV{
			Key:   strings.TrimSpace(record[keyIdx]),
			Value: value,
		})
	}
	return rows, nil
}

// Rows converts a KV slice to the row slice the chart consumes.
func Rows(kvs []choropleth.KV) []choropleth.Row {
	rows := make([]choropleth.Row, len(kvs))
	for i, kv := range kvs {
		rows[i] = kv
	}
	return rows
}
