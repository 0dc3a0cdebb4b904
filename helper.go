// FILE: lixenwraith/mapconf/helper.go
package mapconf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// flattenMap converts a nested map[string]any to a flat map[string]any with dot-notation paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		// Non-empty tables are flattened further, everything else is a leaf
		if table := asTable(value); len(table) > 0 {
			for subPath, subValue := range flattenMap(table, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// Existing segments are matched with NormalizeKey semantics and keep their
// original spelling. Missing intermediate tables are created; a segment that
// holds a non-table value is replaced by a new table.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		key := existingKey(current, segment)
		if next := asTable(current[key]); next != nil {
			// asTable copies map[any]any, so store the converted table back
			current[key] = next
			current = next
			continue
		}
		newMap := make(map[string]any)
		current[key] = newMap
		current = newMap
	}

	last := segments[len(segments)-1]
	current[existingKey(current, last)] = value
}

// existingKey returns the key in m equivalent to key, or key itself.
func existingKey(m map[string]any, key string) string {
	if _, ok := m[key]; ok {
		return key
	}
	want := NormalizeKey(key)
	for k := range m {
		if k != "" && NormalizeKey(k) == want {
			return k
		}
	}
	return key
}

// cloneTree deep-copies the tables of a tree. Lists are copied shallowly
// except for tables they contain.
func cloneTree(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneTree(t)
	case map[any]any:
		if table := asTable(t); table != nil {
			return cloneTree(table)
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseArgs processes command-line arguments of the form "--key.path=value",
// "--key.path value" or "--flag" into a nested map. Values are parsed as bool,
// integer or float when they look like one, otherwise kept as strings.
// Arguments not starting with "--" are ignored.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// "--" separator
			i++
			continue
		}

		var keyPath, valueStr string
		if k, v, found := strings.Cut(argContent, "="); found {
			keyPath, valueStr = k, v
			i++
		} else {
			keyPath = argContent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			continue
		}

		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		setNestedValue(result, keyPath, parseValue(valueStr))
	}

	return result, nil
}

// parseValue gives command-line values the scalar type they spell.
func parseValue(s string) any {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// isValidKeySegment checks if a single path segment is a valid bare key:
// ASCII letters, digits, underscores and dashes.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
