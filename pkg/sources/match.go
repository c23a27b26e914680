package sources

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

// KeyMatcher maps free-form region names onto canonical chart keys by
// substring matching against a set of known aliases. Data files often
// spell regions loosely ("State of California", "Calif."), so exact
// joins miss rows a substring scan catches.
type KeyMatcher struct {
	matcher *ahocorasick.Matcher
	keys    []string
	aliases []string
}

// NewKeyMatcher builds a matcher from alias -> canonical key pairs.
// Matching is case-insensitive.
func NewKeyMatcher(aliases map[string]string) *KeyMatcher {
	patterns := make([]string, 0, len(aliases))
	keys := make([]string, 0, len(aliases))
	for alias, key := range aliases {
		patterns = append(patterns, strings.ToLower(alias))
		keys = append(keys, key)
	}
	return &KeyMatcher{
		matcher: ahocorasick.NewStringMatcher(patterns),
		keys:    keys,
		aliases: patterns,
	}
}

// Resolve returns the canonical key for a name. When several aliases
// match, the longest one wins; ok is false when nothing matches.
func (m *KeyMatcher) Resolve(name string) (string, bool) {
	hits := m.matcher.MatchThreadSafe([]byte(strings.ToLower(name)))
	if len(hits) == 0 {
		return "", false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if len(m.aliases[h]) > len(m.aliases[best]) {
			best = h
		}
	}
	return m.keys[best], true
}

// NormalizeKeys rewrites row keys onto the canonical geometry keys.
// Exact matches pass through untouched; any other key is resolved
// through a matcher that uses each canonical key as its own alias.
// Keys that resolve to nothing are kept as-is, so the join drops them
// the same way it drops any unknown key.
func NormalizeKeys(rows []choropleth.Row, keys []string) []choropleth.Row {
	canonical := make(map[string]bool, len(keys))
	aliases := make(map[string]string, len(keys))
	for _, k := range keys {
		canonical[k] = true
		aliases[k] = k
	}
	matcher := NewKeyMatcher(aliases)

	out := make([]choropleth.Row, len(rows))
	for i, row := range rows {
		kv, ok := row.(choropleth.KV)
		if !ok || canonical[kv.Key] {
			out[i] = row
			continue
		}
		if key, ok := matcher.Resolve(kv.Key); ok {
			kv.Key = key
		}
		out[i] = kv
	}
	return out
}
