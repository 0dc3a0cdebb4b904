// File: lixenwraith/mapconf/convenience.go
package mapconf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Quick builds a store from a configuration file, its overlay for env and
// the process arguments. A missing file is returned as ErrConfigNotFound
// together with a usable store.
func Quick(env, configFile string) (*Store, error) {
	return NewBuilder().
		WithEnvironment(env).
		WithFile(configFile).
		Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(env, configFile string) *Store {
	s, err := Quick(env, configFile)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return s
}

// Validate checks that every required path resolves to a non-nil value
func (s *Store) Validate(required ...string) error {
	var missing []string
	for _, path := range required {
		if v, ok := s.Lookup(path); !ok || v == nil {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns a formatted string showing the environment and every leaf path
func (s *Store) Debug() string {
	data := s.Data()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Environment: %s\n", s.Environment()))
	b.WriteString("Current values:\n")

	flat := flattenMap(data, "")
	for _, path := range sortedKeys(flat) {
		b.WriteString(fmt.Sprintf("  %s: %v\n", path, flat[path]))
	}

	return b.String()
}

// Dump writes the current tree to w in TOML format
func (s *Store) Dump(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	if err := encoder.Encode(s.Data()); err != nil {
		return fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}
	return nil
}

// Save writes the current tree to a TOML file atomically.
func (s *Store) Save(path string) error {
	var buf bytes.Buffer
	if err := s.Dump(&buf); err != nil {
		return err
	}
	return atomicWriteFile(path, buf.Bytes())
}

// Clone creates a store with the same environment and a deep copy of the tree
func (s *Store) Clone() *Store {
	return NewWithData(s.Environment(), cloneTree(s.Data()))
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
