package choropleth

import "math"

// Row is one aggregation result produced by the external grouping engine.
// Its shape is opaque to the chart; accessors extract key and value.
type Row interface{}

// KV is the canonical row shape used when no custom accessors are set.
type KV struct {
	Key   string
	Value float64
}

// KeyAccessor extracts the join key from a row.
type KeyAccessor func(Row) string

// ValueAccessor extracts the numeric value from a row. NaN marks a missing
// value.
type ValueAccessor func(Row) float64

// DefaultKeyAccessor reads the Key of a KV row.
func DefaultKeyAccessor(r Row) string {
	kv, _ := r.(KV)
	return kv.Key
}

// DefaultValueAccessor reads the Value of a KV row.
func DefaultValueAccessor(r Row) float64 {
	kv, ok := r.(KV)
	if !ok {
		return math.NaN()
	}
	return kv.Value
}

// Join builds the key to value lookup for one render pass. Later rows with
// a duplicate key overwrite earlier ones.
func Join(rows []Row, key KeyAccessor, value ValueAccessor) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[key(r)] = value(r)
	}
	return out
}
