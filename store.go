// FILE: lixenwraith/mapconf/store.go
package mapconf

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// DefaultEnvironment is the environment a Store starts in.
const DefaultEnvironment = "dev"

// Store holds a nested configuration tree that is written once at startup and
// read many times afterwards. Every key comparison is normalized, so
// "cache.ttl-seconds", "Cache.TTL_SECONDS" and "cache.ttlSeconds" address the
// same value.
type Store struct {
	environment string
	data        map[string]any
	mutex       sync.RWMutex
}

// New creates an empty Store in the DefaultEnvironment.
func New() *Store {
	return &Store{
		environment: DefaultEnvironment,
		data:        make(map[string]any),
	}
}

// NewWithData creates a Store holding tree in the given environment.
// An empty env keeps the DefaultEnvironment.
func NewWithData(env string, tree map[string]any) *Store {
	s := New()
	if env != "" {
		s.environment = env
	}
	s.SetData(tree)
	return s
}

// SetEnvironment replaces the active environment name. Already loaded data is
// not reloaded.
func (s *Store) SetEnvironment(env string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.environment = env
}

// Environment returns the active environment name.
func (s *Store) Environment() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.environment
}

// SetData replaces the whole tree. The store keeps the map it is given, which
// must not be modified afterwards. A nil tree clears the store.
func (s *Store) SetData(tree map[string]any) {
	if tree == nil {
		tree = make(map[string]any)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = tree
}

// Data returns the tree currently held by the store. It is shared, not copied.
func (s *Store) Data() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data
}

// Get resolves a dot-separated path against the tree and returns the value
// found, or nil. Every segment is matched with NormalizeKey semantics.
//
// The intermediate segments are walked one at a time. When a segment yields
// anything other than a non-empty table the walk stops and the path does not
// resolve; a scalar in the middle of a path is a miss, not an error.
func (s *Store) Get(path string) any {
	v, _ := s.Lookup(path)
	return v
}

// Lookup is Get with a flag reporting whether the path resolved.
func (s *Store) Lookup(path string) (any, bool) {
	s.mutex.RLock()
	root := s.data
	s.mutex.RUnlock()

	return lookupPath(root, path)
}

func lookupPath(root map[string]any, path string) (any, bool) {
	if path == "" || len(root) == 0 {
		return nil, false
	}

	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return LookupKey(root, path)
	}

	leaf := path[idx+1:]
	current := root
	for _, segment := range strings.Split(path[:idx], ".") {
		v, _ := LookupKey(current, segment)
		if current = asTable(v); len(current) == 0 {
			return nil, false
		}
	}
	return LookupKey(current, leaf)
}

// asTable returns v as a string-keyed table, or nil when it is not one.
// Any map whose keys are strings qualifies; maps of other types are copied.
func asTable(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil
			}
			out[ks] = val
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

// Has reports whether path resolves to a value, including an explicit nil.
func (s *Store) Has(path string) bool {
	_, ok := s.Lookup(path)
	return ok
}

// Sub returns the table at path, or an empty map when path does not resolve
// to a table.
func (s *Store) Sub(path string) map[string]any {
	if t := asTable(s.Get(path)); t != nil {
		return t
	}
	return map[string]any{}
}

// Paths returns every leaf path of the tree in dot notation, sorted.
func (s *Store) Paths() []string {
	flat := flattenMap(s.Data(), "")
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
