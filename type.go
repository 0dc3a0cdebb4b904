// FILE: lixenwraith/mapconf/type.go
package mapconf

import (
	"time"

	"github.com/lixenwraith/mapconf/cast"
	"github.com/lixenwraith/mapconf/units"
)

// Typed accessors resolve the path with Get and convert the result through the
// cast package. Each takes an optional fallback returned when the path is
// missing or the value cannot be converted; without one the zero value is used.

func first[T any](fallback []T) T {
	var zero T
	if len(fallback) > 0 {
		return fallback[0]
	}
	return zero
}

// Int retrieves an int value. Strings are parsed, floats truncated.
func (s *Store) Int(path string, fallback ...int) int {
	return cast.ToInt(s.Get(path), first(fallback))
}

// Int64 retrieves an int64 value.
func (s *Store) Int64(path string, fallback ...int64) int64 {
	return cast.ToInt64(s.Get(path), first(fallback))
}

// Float64 retrieves a float64 value.
func (s *Store) Float64(path string, fallback ...float64) float64 {
	return cast.ToFloat(s.Get(path), first(fallback))
}

// String retrieves a string value. Numbers and booleans are formatted.
func (s *Store) String(path string, fallback ...string) string {
	return cast.ToString(s.Get(path), first(fallback))
}

// Bool retrieves a boolean value. "yes"/"on" and non-zero numbers are true.
func (s *Store) Bool(path string, fallback ...bool) bool {
	return cast.ToBool(s.Get(path), first(fallback))
}

// Duration retrieves a duration. Strings use the units grammar ("90s", "2d"),
// bare numbers are seconds and time.Duration values pass through.
func (s *Store) Duration(path string, fallback ...time.Duration) time.Duration {
	v := s.Get(path)
	switch d := v.(type) {
	case time.Duration:
		return d
	case nil:
		return first(fallback)
	}

	var parsed time.Duration
	switch cast.KindOf(v) {
	case cast.KindInt, cast.KindUint, cast.KindFloat:
		parsed = units.FromSeconds(cast.ToFloat(v, 0))
	default:
		parsed = units.ParseDuration(cast.ToString(v, ""))
	}
	if parsed == 0 && len(fallback) > 0 {
		return fallback[0]
	}
	return parsed
}

// DataSize retrieves a byte count. Strings use the units grammar ("64MiB"),
// numbers are bytes.
func (s *Store) DataSize(path string, fallback ...int64) int64 {
	v := s.Get(path)
	var n int64
	switch cast.KindOf(v) {
	case cast.KindNull:
		return first(fallback)
	case cast.KindInt, cast.KindUint, cast.KindFloat:
		n = cast.ToInt64(v, 0)
	default:
		n = units.ParseDataSize(cast.ToString(v, ""))
	}
	if n == 0 && len(fallback) > 0 {
		return fallback[0]
	}
	return n
}

// IntSlice retrieves a list of ints. Non-integer members are dropped; a missing
// path gives an empty slice.
func (s *Store) IntSlice(path string) []int {
	return cast.ToIntSlice(s.Get(path))
}

// StringSlice retrieves a list of strings.
func (s *Store) StringSlice(path string) []string {
	return cast.ToStringSlice(s.Get(path))
}

// MapSlice retrieves a list of tables, such as a TOML array of tables.
func (s *Store) MapSlice(path string) []map[string]any {
	return cast.ToMapSlice(s.Get(path))
}

// StringMap retrieves a table. The result is empty unless the value is a
// non-empty map whose keys are all strings.
func (s *Store) StringMap(path string) map[string]any {
	if m, ok := cast.IsStringMap(s.Get(path)); ok {
		return m
	}
	return map[string]any{}
}
