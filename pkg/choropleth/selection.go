package choropleth

// FilterModel is the external filter/selection collaborator. The active
// filter set normally denotes inclusion; when Inverse is true it denotes
// exclusion instead.
type FilterModel interface {
	// HasFilter reports whether any filter is active.
	HasFilter() bool
	// HasFilterKey reports whether the key is in the active filter set.
	HasFilterKey(key string) bool
	// Inverse reports whether filter semantics are inverted.
	Inverse() bool
}

// IsSelected reports whether a region with the given key renders as
// selected. With no active filter, no region is selected.
func IsSelected(f FilterModel, key string) bool {
	if f == nil || !f.HasFilter() {
		return false
	}
	return f.HasFilterKey(key) != f.Inverse()
}

// IsDeselected reports whether a region renders as filtered out. With no
// active filter, no region is deselected either.
func IsDeselected(f FilterModel, key string) bool {
	if f == nil || !f.HasFilter() {
		return false
	}
	return !IsSelected(f, key)
}

// FilterSet is a concrete FilterModel: a key set plus an inverse flag.
// It also receives click-to-filter writes from the chart.
type FilterSet struct {
	keys    map[string]bool
	inverse bool
}

// NewFilterSet returns an empty filter set.
func NewFilterSet() *FilterSet {
	return &FilterSet{keys: make(map[string]bool)}
}

// HasFilter reports whether any key is filtered.
func (s *FilterSet) HasFilter() bool { return len(s.keys) > 0 }

// HasFilterKey reports whether the key is in the filter set.
func (s *FilterSet) HasFilterKey(key string) bool { return s.keys[key] }

// Inverse reports whether the set denotes exclusion.
func (s *FilterSet) Inverse() bool { return s.inverse }

// SetInverse switches between inclusion and exclusion semantics.
func (s *FilterSet) SetInverse(v bool) { s.inverse = v }

// Toggle adds the key to the set, or removes it if already present.
func (s *FilterSet) Toggle(key string) {
	if s.keys[key] {
		delete(s.keys, key)
		return
	}
	s.keys[key] = true
}

// Clear removes every filter.
func (s *FilterSet) Clear() {
	s.keys = make(map[string]bool)
}
