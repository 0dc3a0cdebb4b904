// FILE: lixenwraith/mapconf/key.go
package mapconf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var keyStripper = strings.NewReplacer("-", "", "_", "")

// NormalizeKey reduces a key to its comparison form: lowercase with every '-'
// and '_' removed. "max-retries", "MAX_RETRIES" and "maxRetries" all normalize
// to "maxretries".
func NormalizeKey(key string) string {
	return strings.ToLower(keyStripper.Replace(key))
}

// KeysEqual reports whether two keys normalize to the same form.
func KeysEqual(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}

// LookupKey scans m for the first entry whose key is equivalent to key.
// Entries with an empty key are never matched. Map iteration order is
// unspecified, so a map holding several equivalent keys yields any one of them.
func LookupKey(m map[string]any, key string) (any, bool) {
	if len(m) == 0 {
		return nil, false
	}

	// Exact hit first, which is also the common case
	if v, ok := m[key]; ok && key != "" {
		return v, true
	}

	want := NormalizeKey(key)
	for k, v := range m {
		if k == "" {
			continue
		}
		if NormalizeKey(k) == want {
			return v, true
		}
	}
	return nil, false
}

// ensureIs prefixes s with "is" unless it already starts with it.
func ensureIs(s string) string {
	if strings.HasPrefix(s, "is") {
		return s
	}
	return "is" + s
}

// equalIgnoringIs compares two normalized keys treating a leading "is" as
// optional, so "active" matches "isactive".
func equalIgnoringIs(a, b string) bool {
	return a == b || ensureIs(a) == ensureIs(b)
}

// CamelKey rewrites a kebab-case or snake_case key into lower camelCase:
// "max-retries" and "max_retries" become "maxRetries". When the key contains
// '-' it is split on '-' only, otherwise on '_'. Keys with neither only get
// their first letter lowercased.
func CamelKey(key string) string {
	sep := ""
	switch {
	case strings.Contains(key, "-"):
		sep = "-"
	case strings.Contains(key, "_"):
		sep = "_"
	}

	out := key
	if sep != "" {
		words := strings.Split(key, sep)
		var b strings.Builder
		b.Grow(len(key))
		for _, w := range words {
			b.WriteString(upperFirst(w))
		}
		out = b.String()
	}
	return lowerFirst(out)
}

// CamelCaseKeys returns a copy of m with every key rewritten by CamelKey.
// Empty keys are dropped. When a rewritten key collides with a key that was
// already in camelCase, the rewritten entry wins, as it does in FromMap.
func CamelCaseKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != "" && CamelKey(k) == k {
			out[k] = v
		}
	}
	for _, k := range sortedKeys(m) {
		if ck := CamelKey(k); k != "" && ck != k {
			out[ck] = m[k]
		}
	}
	return out
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
