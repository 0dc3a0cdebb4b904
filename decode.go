// FILE: lixenwraith/mapconf/decode.go
package mapconf

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/lixenwraith/mapconf/cast"
	"github.com/lixenwraith/mapconf/units"
)

// Scan decodes the table at path into target, which must be a non-nil pointer
// to a struct or map. An empty path scans the whole tree and a path that does
// not resolve scans an empty table. Field names are matched with NormalizeKey
// semantics and `mapkey` tags rename fields, so a field MaxRetries reads
// "max-retries", "max_retries" or "maxRetries".
//
// Strings carrying typed markers are expanded, duration strings use the units
// grammar and plain numbers assigned to durations count seconds.
func (s *Store) Scan(path string, target any) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: scan target must be non-nil pointer, got %T", ErrInvalidTarget, target)
	}

	var section any = s.Data()
	if path = strings.TrimSuffix(path, "."); path != "" {
		v, ok := s.Lookup(path)
		if !ok || v == nil {
			v = map[string]any{}
		}
		section = v
	}

	sectionMap := asTable(section)
	if sectionMap == nil {
		if m, ok := section.(map[string]any); ok {
			sectionMap = m // empty table
		} else {
			return fmt.Errorf("path %q refers to non-map value (type %T)", path, section)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapkey",
		WeaklyTypedInput: true,
		DecodeHook:       valueDecodeHook(),
		MatchName:        KeysEqual,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", path, err)
	}
	return nil
}

// valueDecodeHook returns the composite decode hook shared by Scan and the
// mapper's weak assignment path.
func valueDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		markerHookFunc(),

		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		stringToBoolHookFunc(),

		// Durations before the generic string/slice hooks
		stringToDurationHookFunc(),
		numberToDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// markerHookFunc expands typed markers. A duration marker decoded into a
// time.Duration keeps sub-second precision.
func markerHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		str, ok := data.(string)
		if !ok {
			return data, nil
		}
		if t == durationType && strings.HasPrefix(str, DurationMarker) {
			return units.ParseDuration(strings.TrimPrefix(str, DurationMarker)), nil
		}
		expanded, _ := ExpandMarker(str)
		return expanded, nil
	}
}

// stringToDurationHookFunc parses duration strings with the units grammar,
// which accepts days and weeks on top of time.ParseDuration.
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != durationType {
			return data, nil
		}
		str := strings.TrimSpace(data.(string))
		if str == "" {
			return time.Duration(0), nil
		}
		if d := units.ParseDuration(str); d != 0 {
			return d, nil
		}
		if d, err := time.ParseDuration(str); err == nil {
			return d, nil
		}
		if cast.ToFloat(str, -1) == 0 {
			return time.Duration(0), nil
		}
		return nil, fmt.Errorf("invalid duration: %q", str)
	}
}

// numberToDurationHookFunc reads plain numbers as seconds.
func numberToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != durationType || f == durationType {
			return data, nil
		}
		switch cast.KindOf(data) {
		case cast.KindInt, cast.KindUint, cast.KindFloat:
			n := cast.ToFloat(data, 0)
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("invalid duration: %v seconds", data)
			}
			return units.FromSeconds(n), nil
		}
		return data, nil
	}
}

// stringToBoolHookFunc accepts the same spellings as Store.Bool, including
// yes/no and on/off. An empty string is false.
func stringToBoolHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Bool {
			return data, nil
		}
		str := strings.TrimSpace(reflect.ValueOf(data).String())
		if str == "" {
			return false, nil
		}
		if b := cast.ToBool(str, true); b == cast.ToBool(str, false) {
			return b, nil
		}
		return nil, fmt.Errorf("invalid boolean: %q", str)
	}
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}

		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}
