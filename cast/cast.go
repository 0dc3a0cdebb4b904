// FILE: lixenwraith/mapconf/cast/cast.go

// Package cast converts dynamically typed configuration values to Go
// primitives. Every conversion takes a fallback and never panics: when a value
// cannot be interpreted as the target type the fallback (or an empty
// collection) is returned.
package cast

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Kind is the closed set of value shapes that flow through a configuration tree.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindList
	KindMap
	KindOther
)

var kindNames = [...]string{"null", "bool", "int", "uint", "float", "string", "list", "map", "other"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf classifies v. Nil interfaces and nil pointers are KindNull.
func KindOf(v any) Kind {
	if v == nil {
		return KindNull
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindNull
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindString // []byte reads as text
		}
		return KindList
	case reflect.Map:
		return KindMap
	default:
		return KindOther
	}
}

// indirect dereferences pointers and interfaces, reporting false on nil.
func indirect(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, true
}

// ToInt64 converts v to int64. Floats are truncated, strings are parsed with
// base auto-detection ("0x1F") and a float fallback, booleans map to 1/0.
func ToInt64(v any, fallback int64) int64 {
	if i, ok := toInt64(v); ok {
		return i
	}
	return fallback
}

// ToInt is ToInt64 narrowed to int.
func ToInt(v any, fallback int) int {
	i, ok := toInt64(v)
	if !ok || i < math.MinInt || i > math.MaxInt {
		return fallback
	}
	return int(i)
}

func toInt64(v any) (int64, bool) {
	rv, ok := indirect(v)
	if !ok {
		return 0, false
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f), true
		}
		return 0, false
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	}

	return 0, false
}

// ToFloat converts v to float64.
func ToFloat(v any, fallback float64) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	return fallback
}

func toFloat(v any) (float64, bool) {
	rv, ok := indirect(v)
	if !ok {
		return 0, false
	}

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	}

	return 0, false
}

// ToString renders scalars as text. Lists, maps and structs without a
// String method are not scalars and yield the fallback.
func ToString(v any, fallback string) string {
	rv, ok := indirect(v)
	if !ok {
		return fallback
	}

	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}

	return fallback
}

// ToBool converts v to bool. Besides strconv.ParseBool spellings, "yes"/"on"
// and "no"/"off" are accepted. Numbers are true when non-zero.
func ToBool(v any, fallback bool) bool {
	rv, ok := indirect(v)
	if !ok {
		return fallback
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		s := strings.ToLower(strings.TrimSpace(rv.String()))
		switch s {
		case "yes", "y", "on":
			return true
		case "no", "n", "off":
			return false
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return fallback
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}

	return fallback
}

// elements returns the members of a list value. A string is split on commas,
// which matches how list values arrive from environment variables and flags.
func elements(v any) []any {
	rv, ok := indirect(v)
	if !ok {
		return nil
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return splitList(string(rv.Bytes()))
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.String:
		return splitList(rv.String())
	}
	return nil
}

func splitList(s string) []any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToIntSlice converts a list to []int, dropping members that are not integers.
func ToIntSlice(v any) []int {
	items := elements(v)
	out := make([]int, 0, len(items))
	for _, item := range items {
		i, ok := toInt64(item)
		if !ok || i < math.MinInt || i > math.MaxInt {
			continue
		}
		out = append(out, int(i))
	}
	return out
}

// ToStringSlice converts a list to []string, dropping non-scalar members.
func ToStringSlice(v any) []string {
	items := elements(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch KindOf(item) {
		case KindNull, KindList, KindMap, KindOther:
			continue
		}
		out = append(out, ToString(item, ""))
	}
	return out
}

// ToMapSlice converts a list of tables to []map[string]any. Struct members are
// decoded into maps; members that are neither are dropped.
func ToMapSlice(v any) []map[string]any {
	rv, ok := indirect(v)
	if !ok || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return []map[string]any{}
	}

	out := make([]map[string]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if m, ok := IsStringMap(item); ok {
			out = append(out, m)
			continue
		}
		if iv, ok := indirect(item); ok && iv.Kind() == reflect.Struct {
			m := make(map[string]any)
			if err := mapstructure.Decode(item, &m); err == nil && len(m) > 0 {
				out = append(out, m)
			}
		}
	}
	return out
}

// IsStringMap reports whether v is a non-empty map whose keys are all strings,
// returning it as map[string]any.
func IsStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, len(m) > 0
	}

	rv, ok := indirect(v)
	if !ok || rv.Kind() != reflect.Map || rv.Len() == 0 {
		return nil, false
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		for k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return nil, false
		}
		out[k.String()] = iter.Value().Interface()
	}
	return out, true
}
