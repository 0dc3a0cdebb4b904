// File: lixenwraith/mapconf/doc.go

// Package mapconf provides normalized-key configuration lookup and
// bidirectional mapping between string-keyed maps and Go structs.
//
// Keys are compared after removing "-" and "_" and lower-casing, so
// "max-retries", "max_retries", "maxRetries" and "MAX_RETRIES" are the same
// key everywhere: in Store lookups, in Scan, and in FromMap field matching.
//
// Features:
//   - Dot-path lookup over a nested tree with normalized segment matching
//   - Typed accessors with optional fallbacks (Int, Duration, DataSize, ...)
//   - Duration and data-size grammar in package units, coercion in package cast
//   - Struct tags (`mapkey:"name"`) and per-call overrides for external keys
//   - Getter/setter resolution for unexported fields
//   - Typed string markers ("@Duration:90s", "@DataSize:4MiB")
//   - TOML, YAML, JSON and JSONC files with per-environment overlays
//   - CBOR snapshots for handing a loaded store to worker processes
//
// Quick Start:
//
//	store, err := mapconf.NewBuilder().
//	    WithEnvironment("prod").
//	    WithFile("app.toml"). // app.prod.toml is merged over it when present
//	    AsDefault().
//	    Build()
//	if err != nil && !errors.Is(err, mapconf.ErrConfigNotFound) {
//	    log.Fatal(err)
//	}
//
//	ttl := store.Duration("cache.ttl-seconds", 5*time.Minute)
//	size := store.DataSize("cache.max_size")
//
// Mapping:
//
//	type Cache struct {
//	    TTL     time.Duration `mapkey:"ttl-seconds"`
//	    MaxSize int64
//	    backend string
//	}
//
//	func (c *Cache) SetBackend(v string) { c.backend = v }
//
//	var c Cache
//	res := mapconf.FromMap(&c, store.Sub("cache"))
//	m := mapconf.ToMap(&c, nil, true)
//
// Lookups and mapping never fail loudly: a missing path yields nil (or the
// fallback) and a field that cannot be assigned is reported in the Result
// and left unchanged.
//
// Thread Safety:
// A Store is meant to be filled once during startup and then read. Reads are
// safe for concurrent use; the package uses read-write mutexes to protect
// replacement of the tree.
package mapconf
