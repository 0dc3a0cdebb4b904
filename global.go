// FILE: lixenwraith/mapconf/global.go
package mapconf

import "sync/atomic"

// std is the process-wide store behind the package-level functions. It is
// populated once during startup, then only read.
var std atomic.Pointer[Store]

func init() {
	std.Store(New())
}

// Default returns the process-wide store.
func Default() *Store {
	return std.Load()
}

// SetDefault installs s as the process-wide store. A nil s is ignored.
func SetDefault(s *Store) {
	if s != nil {
		std.Store(s)
	}
}

// SetEnvironment sets the environment of the process-wide store.
func SetEnvironment(env string) { Default().SetEnvironment(env) }

// Environment returns the environment of the process-wide store.
func Environment() string { return Default().Environment() }

// SetData replaces the tree of the process-wide store.
func SetData(tree map[string]any) { Default().SetData(tree) }

// Get resolves path against the process-wide store.
func Get(path string) any { return Default().Get(path) }
