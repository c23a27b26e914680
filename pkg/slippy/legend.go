package slippy

import "image/color"

// LegendEntry pairs a swatch color with its label.
type LegendEntry struct {
	Label string
	Color color.RGBA
}

// Legend is the color-ramp legend attached to a map view. Drawing is up
// to the embedding application; the legend only tracks its entries and
// whether it has been torn down.
type Legend struct {
	Title   string
	entries []LegendEntry
	removed bool
}

// Add appends an entry. No-op after removal.
func (l *Legend) Add(label string, c color.RGBA) {
	if l.removed {
		return
	}
	l.entries = append(l.entries, LegendEntry{Label: label, Color: c})
}

// Entries returns the current entries, nil once removed.
func (l *Legend) Entries() []LegendEntry {
	if l.removed {
		return nil
	}
	return l.entries
}

// RemoveLegend detaches the legend and drops its entries.
func (l *Legend) RemoveLegend() {
	l.removed = true
	l.entries = nil
}

// Removed reports whether RemoveLegend has run.
func (l *Legend) Removed() bool { return l.removed }
