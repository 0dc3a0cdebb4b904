// File: lixenwraith/mapconf/builder.go
package mapconf

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// ValidatorFunc defines the signature for a function that can validate a Store.
// It receives the fully loaded *Store and should return an error if validation fails.
type ValidatorFunc func(s *Store) error

// BootstrapOptions are read from the process environment by WithBootstrapEnv.
type BootstrapOptions struct {
	// Environment becomes the store's environment name
	Environment string `env:"MAPCONF_ENV" envDefault:"dev"`
	// File is an explicit configuration file path
	File string `env:"MAPCONF_FILE"`
	// Name is the base name used for file discovery when File is empty
	Name string `env:"MAPCONF_NAME"`
	// Format forces a file format instead of detection
	Format string `env:"MAPCONF_FORMAT"`
}

// ParseBootstrapOptions reads BootstrapOptions from environ, or from the
// process environment when environ is nil.
func ParseBootstrapOptions(environ map[string]string) (BootstrapOptions, error) {
	var opts BootstrapOptions
	var err error
	if environ == nil {
		err = env.Parse(&opts)
	} else {
		err = env.ParseWithOptions(&opts, env.Options{Environment: environ})
	}
	if err != nil {
		return BootstrapOptions{}, fmt.Errorf("error getting bootstrap env configs: %w", err)
	}
	return opts, nil
}

// Builder provides a fluent interface for building stores
type Builder struct {
	environment string
	prefix      string
	file        string
	format      string
	args        []string
	logger      zerolog.Logger
	install     bool
	err         error
	validators  []ValidatorFunc
}

// NewBuilder creates a new store builder
func NewBuilder() *Builder {
	return &Builder{
		environment: DefaultEnvironment,
		format:      FormatAuto,
		args:        os.Args[1:],
		logger:      zerolog.Nop(),
		validators:  make([]ValidatorFunc, 0),
	}
}

// WithEnvironment sets the environment name, which also selects the file overlay
func (b *Builder) WithEnvironment(name string) *Builder {
	if name != "" {
		b.environment = name
	}
	return b
}

// WithPrefix sets the base path BuildAndScan decodes from
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithFile sets the configuration file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat forces the configuration file format ("toml", "yaml", "json", "jsonc" or "auto")
func (b *Builder) WithFormat(format string) *Builder {
	switch format {
	case "", FormatAuto:
		b.format = FormatAuto
	case FormatTOML, FormatYAML, FormatJSON, FormatJSONC:
		b.format = format
	default:
		b.err = errors.Join(b.err, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithLogger sets the logger used while building
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// AsDefault installs the built store as the process-wide default store
func (b *Builder) AsDefault() *Builder {
	b.install = true
	return b
}

// WithBootstrapEnv applies MAPCONF_* variables from the process environment.
// An explicit file wins over discovery by name.
func (b *Builder) WithBootstrapEnv() *Builder {
	return b.withBootstrap(nil)
}

func (b *Builder) withBootstrap(environ map[string]string) *Builder {
	opts, err := ParseBootstrapOptions(environ)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.WithEnvironment(opts.Environment)
	if opts.Format != "" {
		b.WithFormat(opts.Format)
	}
	switch {
	case opts.File != "":
		b.file = opts.File
	case opts.Name != "":
		b.WithFileDiscovery(DefaultDiscoveryOptions(opts.Name))
	}
	return b
}

// Build creates the Store with all specified options. A missing configuration
// file is reported as ErrConfigNotFound together with a usable store.
func (b *Builder) Build() (*Store, error) {
	if b.err != nil {
		return nil, b.err
	}

	store := New()
	store.SetEnvironment(b.environment)

	var loadErr error
	if b.file != "" {
		tree, loaded, err := LoadWithOverlay(b.file, b.environment, b.format)
		switch {
		case errors.Is(err, ErrConfigNotFound):
			b.logger.Warn().Str("file", b.file).Msg("configuration file not found")
			loadErr = err
		case err != nil:
			// Fatal load error
			return nil, err
		default:
			store.SetData(tree)
			b.logger.Info().Strs("files", loaded).Str("environment", b.environment).Msg("configuration loaded")
		}
	}

	if len(b.args) > 0 {
		if err := store.LoadCLI(b.args); err != nil {
			return nil, err
		}
		b.logger.Debug().Int("args", len(b.args)).Msg("command-line overrides applied")
	}

	for _, validator := range b.validators {
		if err := validator(store); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	if b.install {
		SetDefault(store)
		b.logger.Debug().Str("environment", b.environment).Msg("default store replaced")
	}

	// ErrConfigNotFound or nil
	return store, loadErr
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Store {
	store, err := b.Build()
	if err != nil {
		// ErrConfigNotFound is not fatal: the store still carries CLI overrides.
		if !errors.Is(err, ErrConfigNotFound) {
			panic(fmt.Sprintf("config build failed: %v", err))
		}
	}
	return store
}

// BuildAndScan builds the store and decodes the table at the builder's prefix into target
func (b *Builder) BuildAndScan(target any) (*Store, error) {
	store, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	if err := store.Scan(b.prefix, target); err != nil {
		return nil, fmt.Errorf("failed to scan final config into target: %w", err)
	}

	// ErrConfigNotFound or nil
	return store, err
}
