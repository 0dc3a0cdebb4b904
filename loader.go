// FILE: lixenwraith/mapconf/loader.go
package mapconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Supported file formats
const (
	FormatAuto  = "auto"
	FormatTOML  = "toml"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatJSONC = "jsonc"
)

// MaxFileSize caps the size of a configuration file read by LoadFile.
const MaxFileSize = 10 << 20

// LoadFile reads and parses a configuration file into a tree. The format is
// taken from format when set, otherwise from the file extension and finally
// from the content. A missing file returns ErrConfigNotFound.
func LoadFile(path, format string) (map[string]any, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("config path '%s' is a directory", path)
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file '%s' exceeds maximum size %d bytes", path, MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if format == "" || format == FormatAuto {
		// Try extension first
		format = detectFileFormat(path)
		if format == "" {
			format = detectFormatFromContent(fileData)
		}
	}

	tree, err := ParseData(fileData, format)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return tree, nil
}

// ParseData parses raw configuration data of the given format into a tree.
// JSON integers are kept as int64 and other JSON numbers as float64.
func ParseData(data []byte, format string) (map[string]any, error) {
	tree := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatJSON, FormatJSONC:
		// jsonc.ToJSON strips comments and trailing commas; plain JSON passes through
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.UseNumber()
		if err := decoder.Decode(&tree); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		tree = normalizeNumbers(tree).(map[string]any)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if tree == nil {
		// "null" documents and empty YAML
		tree = make(map[string]any)
	}
	return tree, nil
}

// normalizeNumbers replaces json.Number values with int64 or float64.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	}
	return v
}

// OverlayPath returns the environment-specific companion of a config file:
// "conf/app.toml" with environment "prod" becomes "conf/app.prod.toml".
func OverlayPath(path, env string) string {
	if path == "" || env == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + env + ext
}

// LoadWithOverlay loads path and merges its environment overlay over it when
// the overlay exists. The returned list names the files that were read.
func LoadWithOverlay(path, env, format string) (map[string]any, []string, error) {
	base, err := LoadFile(path, format)
	if err != nil {
		return nil, nil, err
	}
	loaded := []string{path}

	overlayPath := OverlayPath(path, env)
	if overlayPath == "" {
		return base, loaded, nil
	}
	overlay, err := LoadFile(overlayPath, format)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return base, loaded, nil
		}
		return nil, nil, err
	}

	merged, err := MergeTrees(base, overlay)
	if err != nil {
		return nil, nil, err
	}
	return merged, append(loaded, overlayPath), nil
}

// MergeTrees deep-merges overlays over base, later trees winning. Tables are
// merged recursively and any other value is replaced. Overlay keys take the
// spelling of an equivalent base key ("max_retries" over "max-retries"), so
// the result never holds two keys that normalize alike. Inputs are not
// modified.
func MergeTrees(base map[string]any, overlays ...map[string]any) (map[string]any, error) {
	merged := cloneTree(base)
	if merged == nil {
		merged = make(map[string]any)
	}
	for _, overlay := range overlays {
		if len(overlay) == 0 {
			continue
		}
		aligned := alignKeys(merged, cloneTree(overlay))
		if err := mergo.Merge(&merged, aligned, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge configuration trees: %w", err)
		}
	}
	return merged, nil
}

// alignKeys renames keys of overlay to the spelling used by base wherever
// both spell the same normalized key, descending into shared tables. A base
// scalar shadowed by an overlay table is removed from base so the merge
// replaces it.
func alignKeys(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(overlay))
	for _, k := range sortedKeys(overlay) {
		v := overlay[k]
		key := existingKey(base, k)
		if sub := asTable(v); sub != nil {
			if baseSub := asTable(base[key]); baseSub != nil {
				v = alignKeys(baseSub, sub)
			} else {
				delete(base, key)
				v = sub
			}
		}
		out[key] = v
	}
	return out
}

// LoadFile replaces the store's tree with the content of path merged with
// its overlay for the store's environment.
func (s *Store) LoadFile(path, format string) error {
	tree, _, err := LoadWithOverlay(path, s.Environment(), format)
	if err != nil {
		return err
	}
	s.SetData(tree)
	return nil
}

// LoadCLI merges "--key.path=value" arguments over the store's tree.
func (s *Store) LoadCLI(args []string) error {
	parsedCLI, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}
	if len(parsedCLI) == 0 {
		return nil
	}

	merged, err := MergeTrees(s.Data(), parsedCLI)
	if err != nil {
		return err
	}
	s.SetData(merged)
	return nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".jsonc":
		return FormatJSONC
	case ".yaml", ".yml":
		return FormatYAML
	default:
		// .conf, .config and unknown extensions are detected from content
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: most TOML documents are not valid YAML, while YAML
	// accepts almost any scalar text
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return ""
}
