// FILE: lixenwraith/mapconf/example/main.go
package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/mapconf"
)

// CacheConfig is filled from the [cache] table. TTL is read from
// "ttl-seconds" through its tag, the other fields by normalized name.
type CacheConfig struct {
	TTL        time.Duration `mapkey:"ttl-seconds"`
	MaxSize    int64
	Servers    []string
	Compressed bool

	backend string
}

func (c *CacheConfig) SetBackend(v string) { c.backend = v }
func (c *CacheConfig) Backend() string     { return c.backend }

const baseConfig = `
[cache]
ttl-seconds = 300
max_size = "@DataSize:64MiB"
servers = ["10.0.0.1:11211", "10.0.0.2:11211"]
compressed = false
backend = "memcached"

[server]
host = "localhost"
port = 8080
read-timeout = "15s"
`

const prodOverlay = `
[cache]
ttl-seconds = 900
compressed = true

[server]
host = "0.0.0.0"
`

func main() {
	dir, err := os.MkdirTemp("", "mapconf-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// app.prod.toml is picked up automatically for the "prod" environment
	configPath := filepath.Join(dir, "app.toml")
	must(os.WriteFile(configPath, []byte(baseConfig), 0644))
	must(os.WriteFile(filepath.Join(dir, "app.prod.toml"), []byte(prodOverlay), 0644))

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store, err := mapconf.NewBuilder().
		WithLogger(logger).
		WithEnvironment("prod").
		WithFile(configPath).
		WithArgs([]string{"--server.port=9090"}).
		WithValidator(func(s *mapconf.Store) error {
			return s.Validate("server.host", "cache.ttl-seconds")
		}).
		AsDefault().
		Build()
	if err != nil && !errors.Is(err, mapconf.ErrConfigNotFound) {
		log.Fatal(err)
	}

	// Any spelling of a key resolves
	log.Printf("server.host          = %s", store.String("server.host"))
	log.Printf("SERVER.PORT          = %d", store.Int("SERVER.PORT"))
	log.Printf("server.readTimeout   = %s", store.Duration("server.readTimeout"))
	log.Printf("cache.TTL_SECONDS    = %s", store.Duration("cache.TTL_SECONDS"))
	log.Printf("cache.missing        = %d", store.Int("cache.missing", 42))
	log.Printf("package-level lookup = %v", mapconf.Get("server.host"))

	var cache CacheConfig
	res := mapconf.NewMapper(mapconf.WithLogger(logger)).FromMap(&cache, store.Sub("cache"))
	if !res.OK() {
		log.Printf("skipped fields: %+v", res.Skipped)
	}
	log.Printf("cache = %+v (backend %s)", cache, cache.Backend())

	// Round trip back into a map keyed by external names
	for k, v := range mapconf.ToMap(&cache, map[string]string{"MaxSize": "max-size"}, true) {
		log.Printf("  %s: %v", k, v)
	}

	var server struct {
		Host        string
		Port        int
		ReadTimeout time.Duration
	}
	must(store.Scan("server", &server))
	log.Printf("server = %+v", server)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
