// FILE: lixenwraith/mapconf/marker.go
package mapconf

import (
	"strings"

	"github.com/lixenwraith/mapconf/units"
)

// Typed markers let a plain string carry a value that must be parsed by a
// grammar before it is assigned: "@Duration:90s" becomes 90 (seconds) and
// "@DataSize:4MiB" becomes 4194304 (bytes).
const (
	DurationMarker = "@Duration:"
	DataSizeMarker = "@DataSize:"
)

// MarkerKind identifies which typed marker a value carried.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerDuration
	MarkerDataSize
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerDuration:
		return "duration"
	case MarkerDataSize:
		return "datasize"
	default:
		return "none"
	}
}

// ExpandMarker parses v when it is a string beginning with a typed marker.
// Durations expand to whole seconds and data sizes to bytes, both as int64.
// Other values are returned unchanged with MarkerNone. Malformed literals
// expand to 0.
func ExpandMarker(v any) (any, MarkerKind) {
	s, ok := v.(string)
	if !ok {
		return v, MarkerNone
	}

	switch {
	case strings.HasPrefix(s, DurationMarker):
		return units.Seconds(strings.TrimPrefix(s, DurationMarker)), MarkerDuration
	case strings.HasPrefix(s, DataSizeMarker):
		return units.ParseDataSize(strings.TrimPrefix(s, DataSizeMarker)), MarkerDataSize
	}
	return v, MarkerNone
}

// rekeyed is one entry of a map after the fromMap rewrite pass.
type rekeyed struct {
	key    string
	value  any
	marker MarkerKind
}

// rewriteKeys applies the map-to-entity rewrite: every key is turned into its
// camelCase field-name candidate and typed markers are expanded. When a
// rewritten key collides with a key that was already in camelCase, the
// rewritten entry wins. The input map is not modified.
func rewriteKeys(data map[string]any) []rekeyed {
	keys := sortedKeys(data)

	out := make(map[string]rekeyed, len(data))
	order := make([]string, 0, len(data))
	put := func(e rekeyed) {
		if _, seen := out[e.key]; !seen {
			order = append(order, e.key)
		}
		out[e.key] = e
	}

	// Keys already in field form go first so that converted keys overwrite them
	for _, pass := range []bool{false, true} {
		for _, k := range keys {
			if k == "" {
				continue
			}
			name := CamelKey(k)
			if (name != k) != pass {
				continue
			}
			value, marker := ExpandMarker(data[k])
			put(rekeyed{key: name, value: value, marker: marker})
		}
	}

	entries := make([]rekeyed, 0, len(order))
	for _, k := range order {
		entries = append(entries, out[k])
	}
	return entries
}
