// FILE: lixenwraith/mapconf/cast/cast_test.go
package cast

import (
	"encoding/json"
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	var nilPtr *int
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"Nil", nil, KindNull},
		{"NilPointer", nilPtr, KindNull},
		{"Bool", true, KindBool},
		{"Int", 5, KindInt},
		{"Int64", int64(5), KindInt},
		{"Uint", uint8(5), KindUint},
		{"Float", 1.5, KindFloat},
		{"String", "x", KindString},
		{"Bytes", []byte("x"), KindString},
		{"List", []any{1}, KindList},
		{"Map", map[string]any{"a": 1}, KindMap},
		{"Struct", struct{}{}, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.in))
		})
	}
	assert.Equal(t, "map", KindMap.String())
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Int", 42, 42},
		{"Int64", int64(42), 42},
		{"Float", 42.9, 42},
		{"String", "42", 42},
		{"HexString", "0x1F", 31},
		{"FloatString", "3.7", 3},
		{"PaddedString", " 7 ", 7},
		{"True", true, 1},
		{"False", false, 0},
		{"JSONNumber", json.Number("12"), 12},
		{"Garbage", "abc", -1},
		{"Empty", "", -1},
		{"Nil", nil, -1},
		{"List", []any{1}, -1},
		{"NaN", math.NaN(), -1},
		{"Overflow", uint64(math.MaxUint64), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in, -1))
		})
	}

	ptr := 9
	assert.Equal(t, int64(9), ToInt64(&ptr, 0))
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 1.5, ToFloat("1.5", 0))
	assert.Equal(t, 3.0, ToFloat(3, 0))
	assert.Equal(t, 1.0, ToFloat(true, 0))
	assert.Equal(t, -1.0, ToFloat("x", -1))
	assert.Equal(t, -1.0, ToFloat(nil, -1))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", ToString("abc", "d"))
	assert.Equal(t, "12", ToString(12, "d"))
	assert.Equal(t, "1.25", ToString(1.25, "d"))
	assert.Equal(t, "true", ToString(true, "d"))
	assert.Equal(t, "raw", ToString([]byte("raw"), "d"))
	assert.Equal(t, "30s", ToString(30*time.Second, "d"))
	assert.Equal(t, "d", ToString(nil, "d"))
	assert.Equal(t, "d", ToString([]any{"a"}, "d"))
	assert.Equal(t, "d", ToString(map[string]any{"a": 1}, "d"))

	// Stringers and errors held by nil pointers are null, not callable
	assert.Equal(t, "d", ToString((*url.URL)(nil), "d"))
	assert.Equal(t, "d", ToString((*url.Error)(nil), "d"))
	assert.Equal(t, "https://x.io", ToString(&url.URL{Scheme: "https", Host: "x.io"}, "d"))
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"off", false},
		{"no", false},
		{"0", false},
		{1, true},
		{0, false},
		{0.5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToBool(tt.in, !tt.want), "input %v", tt.in)
	}

	assert.True(t, ToBool("maybe", true))
	assert.False(t, ToBool(nil, false))
}

func TestSlices(t *testing.T) {
	t.Run("IntSlice", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, ToIntSlice([]any{int64(1), "2", 3.0}))
		assert.Equal(t, []int{1, 3}, ToIntSlice([]any{1, "x", 3}))
		assert.Equal(t, []int{4, 5}, ToIntSlice("4, 5"))
		assert.Equal(t, []int{}, ToIntSlice(nil))
		assert.Equal(t, []int{}, ToIntSlice(7))
	})

	t.Run("StringSlice", func(t *testing.T) {
		assert.Equal(t, []string{"a", "1", "true"}, ToStringSlice([]any{"a", 1, true}))
		assert.Equal(t, []string{"a", "b"}, ToStringSlice([]any{"a", nil, []any{}, "b"}))
		assert.Equal(t, []string{"x", "y"}, ToStringSlice("x,y"))
		assert.Equal(t, []string{}, ToStringSlice(nil))
	})

	t.Run("MapSlice", func(t *testing.T) {
		type host struct {
			Name string
			Port int
		}
		in := []any{
			map[string]any{"name": "a"},
			map[any]any{"name": "b"},
			"skip",
			host{Name: "c", Port: 1},
		}
		out := ToMapSlice(in)
		assert.Len(t, out, 3)
		assert.Equal(t, "a", out[0]["name"])
		assert.Equal(t, "b", out[1]["name"])
		assert.Equal(t, "c", out[2]["Name"])
		assert.Equal(t, []map[string]any{}, ToMapSlice("x"))
	})
}

func TestIsStringMap(t *testing.T) {
	m, ok := IsStringMap(map[string]any{"a": 1})
	assert.True(t, ok)
	assert.Equal(t, 1, m["a"])

	m, ok = IsStringMap(map[string]int{"b": 2})
	assert.True(t, ok)
	assert.Equal(t, 2, m["b"])

	_, ok = IsStringMap(map[any]any{"a": 1, 2: "b"})
	assert.False(t, ok)

	_, ok = IsStringMap(map[string]any{})
	assert.False(t, ok)

	_, ok = IsStringMap([]any{"a"})
	assert.False(t, ok)
}
