// FILE: lixenwraith/mapconf/marker_test.go
package mapconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandMarker(t *testing.T) {
	tests := []struct {
		name       string
		in         any
		want       any
		wantMarker MarkerKind
	}{
		{"Duration", "@Duration:30s", int64(30), MarkerDuration},
		{"DurationCompound", "@Duration:1h30m", int64(5400), MarkerDuration},
		{"DurationDays", "@Duration:2d", int64(172800), MarkerDuration},
		{"DurationBareNumber", "@Duration:45", int64(45), MarkerDuration},
		{"DurationSubSecondTruncated", "@Duration:1500ms", int64(1), MarkerDuration},
		{"DurationMalformed", "@Duration:soon", int64(0), MarkerDuration},
		{"DurationEmpty", "@Duration:", int64(0), MarkerDuration},
		{"DurationNaN", "@Duration:NaN", int64(0), MarkerDuration},
		{"DurationInf", "@Duration:Inf", int64(0), MarkerDuration},
		{"DataSizeIEC", "@DataSize:4MiB", int64(4 << 20), MarkerDataSize},
		{"DataSizeSI", "@DataSize:10kB", int64(10000), MarkerDataSize},
		{"DataSizeBytes", "@DataSize:512", int64(512), MarkerDataSize},
		{"DataSizeMalformed", "@DataSize:huge", int64(0), MarkerDataSize},
		{"PlainString", "30s", "30s", MarkerNone},
		{"MarkerNotAtStart", "x@Duration:30s", "x@Duration:30s", MarkerNone},
		{"Number", 42, 42, MarkerNone},
		{"Nil", nil, nil, MarkerNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind := ExpandMarker(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMarker, kind)
		})
	}
}

func TestMarkerKindString(t *testing.T) {
	assert.Equal(t, "duration", MarkerDuration.String())
	assert.Equal(t, "datasize", MarkerDataSize.String())
	assert.Equal(t, "none", MarkerNone.String())
}

func TestRewriteKeys(t *testing.T) {
	t.Run("CamelCasesAndExpands", func(t *testing.T) {
		entries := rewriteKeys(map[string]any{
			"max_retries": 3,
			"ttl":         "@Duration:1m",
			"userName":    "bob",
			"":            "dropped",
		})

		got := make(map[string]rekeyed, len(entries))
		for _, e := range entries {
			got[e.key] = e
		}
		assert.Len(t, got, 3)
		assert.Equal(t, 3, got["maxRetries"].value)
		assert.Equal(t, int64(60), got["ttl"].value)
		assert.Equal(t, MarkerDuration, got["ttl"].marker)
		assert.Equal(t, "bob", got["userName"].value)
		assert.Equal(t, MarkerNone, got["userName"].marker)
	})

	t.Run("RewrittenKeyWins", func(t *testing.T) {
		entries := rewriteKeys(map[string]any{
			"userName":  "camel",
			"user-name": "kebab",
		})
		assert.Equal(t, []rekeyed{{key: "userName", value: "kebab", marker: MarkerNone}}, entries)
	})

	t.Run("InputUntouched", func(t *testing.T) {
		in := map[string]any{"a_b": "@DataSize:1KiB"}
		rewriteKeys(in)
		assert.Equal(t, map[string]any{"a_b": "@DataSize:1KiB"}, in)
	})
}
