// FILE: lixenwraith/mapconf/builder_test.go
package mapconf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const builderBase = `
[server]
host = "localhost"
port = 8080
read-timeout = "5s"

[cache]
ttl-seconds = 30
`

const builderProd = `
[server]
host = "prod.example.com"

[cache]
ttl_seconds = 300
`

func builderFiles(t *testing.T) (dir, base string) {
	t.Helper()
	dir = t.TempDir()
	base = writeFile(t, dir, "app.toml", builderBase)
	writeFile(t, dir, "app.prod.toml", builderProd)
	return dir, base
}

// TestBuilder tests the builder pattern with files, overlays and overrides
func TestBuilder(t *testing.T) {
	_, base := builderFiles(t)

	t.Run("FileOnly", func(t *testing.T) {
		s, err := NewBuilder().WithFile(base).WithArgs(nil).Build()
		require.NoError(t, err)
		assert.Equal(t, "dev", s.Environment())
		assert.Equal(t, "localhost", s.String("server.host"))
		assert.Equal(t, 30, s.Int("cache.ttlSeconds"))
	})

	t.Run("EnvironmentOverlay", func(t *testing.T) {
		s, err := NewBuilder().
			WithEnvironment("prod").
			WithFile(base).
			WithArgs(nil).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "prod", s.Environment())
		assert.Equal(t, "prod.example.com", s.String("server.host"))
		assert.Equal(t, 8080, s.Int("server.port"))
		assert.Equal(t, 300, s.Int("cache.ttl-seconds"))
	})

	t.Run("CLIOverridesFile", func(t *testing.T) {
		s, err := NewBuilder().
			WithEnvironment("prod").
			WithFile(base).
			WithArgs([]string{"--server.port=9090", "--cache.TTL_SECONDS", "60"}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 9090, s.Int("server.port"))
		assert.Equal(t, 60, s.Int("cache.ttlSeconds"))
		assert.Equal(t, "prod.example.com", s.String("server.host"))
	})

	t.Run("MissingFile", func(t *testing.T) {
		s, err := NewBuilder().
			WithFile(filepath.Join(t.TempDir(), "absent.toml")).
			WithArgs([]string{"--server.port=7070"}).
			Build()
		assert.ErrorIs(t, err, ErrConfigNotFound)
		require.NotNil(t, s)
		assert.Equal(t, 7070, s.Int("server.port"))
	})

	t.Run("NoFile", func(t *testing.T) {
		s, err := NewBuilder().WithArgs(nil).Build()
		require.NoError(t, err)
		assert.Empty(t, s.Data())
	})

	t.Run("MalformedFile", func(t *testing.T) {
		broken := writeFile(t, t.TempDir(), "broken.toml", "[server\n")
		s, err := NewBuilder().WithFile(broken).WithArgs(nil).Build()
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrConfigNotFound)
		assert.Nil(t, s)
	})

	t.Run("BadCLI", func(t *testing.T) {
		_, err := NewBuilder().WithArgs([]string{"--bad!key=1"}).Build()
		assert.ErrorIs(t, err, ErrCLIParse)
	})

	t.Run("InvalidFormat", func(t *testing.T) {
		_, err := NewBuilder().WithFormat("ini").WithFile(base).WithArgs(nil).Build()
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("ForcedFormat", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "settings.conf", `{"server": {"port": 1234}}`)
		s, err := NewBuilder().WithFormat(FormatJSON).WithFile(path).WithArgs(nil).Build()
		require.NoError(t, err)
		assert.Equal(t, int64(1234), s.Get("server.port"))
	})
}

func TestBuilderValidators(t *testing.T) {
	_, base := builderFiles(t)

	t.Run("Pass", func(t *testing.T) {
		var order []string
		s, err := NewBuilder().
			WithFile(base).
			WithArgs(nil).
			WithValidator(func(s *Store) error {
				order = append(order, "first")
				return s.Validate("server.host")
			}).
			WithValidator(nil).
			WithValidator(func(*Store) error {
				order = append(order, "second")
				return nil
			}).
			Build()
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("Fail", func(t *testing.T) {
		errPort := errors.New("port out of range")
		s, err := NewBuilder().
			WithFile(base).
			WithArgs([]string{"--server.port=70000"}).
			WithValidator(func(s *Store) error {
				if s.Int("server.port") > 65535 {
					return errPort
				}
				return nil
			}).
			Build()
		assert.ErrorIs(t, err, errPort)
		assert.Contains(t, err.Error(), "configuration validation failed")
		assert.Nil(t, s)
	})
}

func TestBuilderLogging(t *testing.T) {
	_, base := builderFiles(t)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	_, err := NewBuilder().
		WithEnvironment("prod").
		WithFile(base).
		WithArgs(nil).
		WithLogger(logger).
		Build()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"configuration loaded"`)
	assert.Contains(t, buf.String(), `"environment":"prod"`)
	assert.Contains(t, buf.String(), "app.prod.toml")

	buf.Reset()
	_, err = NewBuilder().
		WithFile(filepath.Join(t.TempDir(), "absent.toml")).
		WithArgs(nil).
		WithLogger(logger).
		Build()
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "configuration file not found")
}

func TestBuilderAsDefault(t *testing.T) {
	previous := Default()
	t.Cleanup(func() { SetDefault(previous) })

	s, err := NewBuilder().
		WithEnvironment("staging").
		WithArgs([]string{"--feature.enabled"}).
		AsDefault().
		Build()
	require.NoError(t, err)
	assert.Same(t, s, Default())
	assert.Equal(t, "staging", Environment())
	assert.Equal(t, true, Get("feature.enabled"))
}

func TestBuildAndScan(t *testing.T) {
	_, base := builderFiles(t)

	type server struct {
		Host        string
		Port        int
		ReadTimeout time.Duration
	}

	t.Run("Prefix", func(t *testing.T) {
		var cfg server
		s, err := NewBuilder().
			WithEnvironment("prod").
			WithFile(base).
			WithPrefix("server").
			WithArgs(nil).
			BuildAndScan(&cfg)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, server{Host: "prod.example.com", Port: 8080, ReadTimeout: 5 * time.Second}, cfg)
	})

	t.Run("MissingFileStillScans", func(t *testing.T) {
		var cfg server
		s, err := NewBuilder().
			WithFile(filepath.Join(t.TempDir(), "absent.toml")).
			WithPrefix("server").
			WithArgs([]string{"--server.port=81"}).
			BuildAndScan(&cfg)
		assert.ErrorIs(t, err, ErrConfigNotFound)
		require.NotNil(t, s)
		assert.Equal(t, 81, cfg.Port)
	})

	t.Run("InvalidTarget", func(t *testing.T) {
		_, err := NewBuilder().WithFile(base).WithArgs(nil).BuildAndScan(server{})
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})
}

func TestMustBuild(t *testing.T) {
	assert.NotPanics(t, func() {
		s := NewBuilder().
			WithFile(filepath.Join(t.TempDir(), "absent.toml")).
			WithArgs(nil).
			MustBuild()
		assert.NotNil(t, s)
	})

	assert.Panics(t, func() {
		NewBuilder().WithFormat("xml").WithArgs(nil).MustBuild()
	})
}

func TestBootstrapOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		opts, err := ParseBootstrapOptions(map[string]string{})
		require.NoError(t, err)
		assert.Equal(t, BootstrapOptions{Environment: "dev"}, opts)
	})

	t.Run("Values", func(t *testing.T) {
		opts, err := ParseBootstrapOptions(map[string]string{
			"MAPCONF_ENV":    "prod",
			"MAPCONF_FILE":   "/etc/app.toml",
			"MAPCONF_FORMAT": "toml",
		})
		require.NoError(t, err)
		assert.Equal(t, "prod", opts.Environment)
		assert.Equal(t, "/etc/app.toml", opts.File)
		assert.Equal(t, "toml", opts.Format)
	})

	t.Run("ProcessEnvironment", func(t *testing.T) {
		t.Setenv("MAPCONF_ENV", "qa")
		opts, err := ParseBootstrapOptions(nil)
		require.NoError(t, err)
		assert.Equal(t, "qa", opts.Environment)
	})

	t.Run("BuilderFile", func(t *testing.T) {
		_, base := builderFiles(t)
		s, err := NewBuilder().
			WithArgs(nil).
			withBootstrap(map[string]string{"MAPCONF_ENV": "prod", "MAPCONF_FILE": base}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "prod", s.Environment())
		assert.Equal(t, 300, s.Int("cache.ttlSeconds"))
	})

	t.Run("BuilderName", func(t *testing.T) {
		dir, _ := builderFiles(t)
		t.Chdir(dir)
		s, err := NewBuilder().
			WithArgs(nil).
			withBootstrap(map[string]string{"MAPCONF_NAME": "app"}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "localhost", s.String("server.host"))
	})

	t.Run("BuilderBadFormat", func(t *testing.T) {
		_, err := NewBuilder().
			WithArgs(nil).
			withBootstrap(map[string]string{"MAPCONF_FORMAT": "xml"}).
			Build()
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestDiscoverFile(t *testing.T) {
	dir := t.TempDir()
	found := writeFile(t, dir, "svc.yaml", "a: 1\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "svc.toml"), 0755))

	opts := DefaultDiscoveryOptions("svc")
	opts.UseXDG = false
	opts.UseCurrentDir = false
	opts.Paths = []string{dir}

	t.Run("SearchPaths", func(t *testing.T) {
		// svc.toml is a directory and is skipped
		assert.Equal(t, found, DiscoverFile(opts, nil))
	})

	t.Run("CLIFlag", func(t *testing.T) {
		assert.Equal(t, "/x/explicit.toml", DiscoverFile(opts, []string{"--config", "/x/explicit.toml"}))
		assert.Equal(t, "/x/eq.toml", DiscoverFile(opts, []string{"-v", "--config=/x/eq.toml"}))
	})

	t.Run("EnvVar", func(t *testing.T) {
		assert.Equal(t, "SVC_CONFIG", opts.EnvVar)
		t.Setenv("SVC_CONFIG", "/x/from-env.toml")
		assert.Equal(t, "/x/from-env.toml", DiscoverFile(opts, nil))
		// CLI still wins
		assert.Equal(t, "/x/cli.toml", DiscoverFile(opts, []string{"--config=/x/cli.toml"}))
	})

	t.Run("NothingFound", func(t *testing.T) {
		empty := opts
		empty.Paths = []string{t.TempDir()}
		assert.Empty(t, DiscoverFile(empty, nil))
	})

	t.Run("XDGPaths", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/home/u/.cfg")
		t.Setenv("XDG_CONFIG_DIRS", "/etc/a:/etc/b")
		assert.Equal(t, []string{"/home/u/.cfg/svc", "/etc/a/svc", "/etc/b/svc"}, xdgSearchDirs("svc"))

		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_CONFIG_DIRS", "")
		t.Setenv("HOME", "/home/u")
		assert.Equal(t, []string{"/home/u/.config/svc", "/etc/xdg/svc", "/etc/svc"}, xdgSearchDirs("svc"))
	})

	t.Run("FlagWithoutValue", func(t *testing.T) {
		// A trailing flag has no value and falls through to the search paths
		assert.Equal(t, found, DiscoverFile(opts, []string{"--config"}))
	})

	t.Run("BuilderDiscovery", func(t *testing.T) {
		s, err := NewBuilder().WithArgs(nil).WithFileDiscovery(opts).Build()
		require.NoError(t, err)
		assert.Equal(t, 1, s.Int("a"))
	})
}
