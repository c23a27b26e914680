// Package choropleth implements a region-colored map chart: named geometry
// layers joined against aggregated (key, value) rows, with selection,
// accenting and hover popups driven by an external filter model.
package choropleth

import "github.com/biglyan/mapd-charting/pkg/geo"

// FeatureKeyFunc extracts the join key from a feature. A layer registered
// with a nil accessor is a pure backdrop: it renders but never joins data.
type FeatureKeyFunc func(*geo.Feature) string

// Layer is one registered geometry overlay.
type Layer struct {
	Name        string
	Features    []*geo.Feature
	KeyAccessor FeatureKeyFunc

	// Bounds is computed once when the layer is first registered and kept
	// across upserts of the same name.
	Bounds    geo.Bounds
	HasBounds bool
}

// DataLayer reports whether the layer is eligible for value-based coloring.
func (l *Layer) DataLayer() bool { return l.KeyAccessor != nil }

// LayerRegistry is an ordered collection of named layers. Insertion order
// is render order; names are unique.
type LayerRegistry struct {
	layers []*Layer
}

// Upsert registers a layer. Re-registering an existing name replaces its
// features and accessor in place, preserving identity, position and the
// originally computed bounds. A new name is appended with bounds computed
// from its features.
func (r *LayerRegistry) Upsert(name string, features []*geo.Feature, key FeatureKeyFunc) *Layer {
	for _, l := range r.layers {
		if l.Name == name {
			l.Features = features
			l.KeyAccessor = key
			return l
		}
	}
	l := &Layer{Name: name, Features: features, KeyAccessor: key}
	l.Bounds, l.HasBounds = geo.ComputeBounds(features)
	r.layers = append(r.layers, l)
	return l
}

// Remove drops the layer with the given name. Absent names are a no-op.
func (r *LayerRegistry) Remove(name string) {
	for i, l := range r.layers {
		if l.Name == name {
			r.layers = append(r.layers[:i], r.layers[i+1:]...)
			return
		}
	}
}

// Get returns the layer at the given render position, or nil when out of
// range.
func (r *LayerRegistry) Get(index int) *Layer {
	if index < 0 || index >= len(r.layers) {
		return nil
	}
	return r.layers[index]
}

// Len returns the number of registered layers.
func (r *LayerRegistry) Len() int { return len(r.layers) }

// All returns a snapshot of the registry in render order. The slice is a
// copy; mutating it does not affect the registry. Layer pointers are
// shared, so in-place upserts remain visible through a snapshot.
func (r *LayerRegistry) All() []*Layer {
	out := make([]*Layer, len(r.layers))
	copy(out, r.layers)
	return out
}
