// FILE: lixenwraith/mapconf/errors.go
package mapconf

import "errors"

var (
	// ErrConfigNotFound is returned when a configuration file does not exist.
	// Builders treat it as non-fatal.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrUnsupportedFormat is returned when a file's format cannot be determined.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	// ErrCLIParse wraps failures to parse --key=value overrides.
	ErrCLIParse = errors.New("failed to parse command-line overrides")
	// ErrInvalidTarget is returned when a mapping or scan target is not a
	// non-nil pointer to a struct (or map, for Scan).
	ErrInvalidTarget = errors.New("invalid target")
	// ErrFieldNotSettable marks a field that is unexported and has no setter.
	ErrFieldNotSettable = errors.New("field not settable")
	// ErrFieldNotReadable marks a field that is unexported and has no getter.
	ErrFieldNotReadable = errors.New("field not readable")
	// ErrTypeMismatch marks a value that cannot be converted to the field type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrSnapshot wraps snapshot encoding and decoding failures.
	ErrSnapshot = errors.New("snapshot error")
)
