// FILE: lixenwraith/mapconf/cmd/mapconf/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/lixenwraith/mapconf"
	"github.com/lixenwraith/mapconf/units"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	var (
		filePath  string
		env       string
		format    string
		name      string
		as        string
		logLevel  string
		overrides []string
	)

	flagSet := pflag.NewFlagSet("mapconf", pflag.ContinueOnError)
	flagSet.StringVarP(&filePath, "file", "f", "", "configuration file (overlay <name>.<env>.<ext> is merged when present)")
	flagSet.StringVarP(&env, "env", "e", "", "environment name (default from MAPCONF_ENV, then \"dev\")")
	flagSet.StringVar(&format, "format", "", "force file format: toml, yaml, json, jsonc")
	flagSet.StringVar(&name, "name", "", "discover <name>.{toml,yaml,yml,json,jsonc} in the usual locations")
	flagSet.StringVar(&as, "as", "", "convert get results: int, float, bool, string, duration, datasize")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flagSet.StringArrayVar(&overrides, "set", nil, "override a value, e.g. --set cache.ttl=30 (repeatable)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Str("role", "mapconf").
		Logger()

	args := flagSet.Args()
	if len(args) == 0 {
		printHelp(flagSet)
		return errors.New("missing command")
	}

	cliArgs := make([]string, 0, len(overrides))
	for _, o := range overrides {
		cliArgs = append(cliArgs, "--"+o)
	}

	builder := mapconf.NewBuilder().
		WithLogger(logger).
		WithBootstrapEnv().
		WithArgs(cliArgs)
	if env != "" {
		builder.WithEnvironment(env)
	}
	if format != "" {
		builder.WithFormat(format)
	}
	if name != "" {
		builder.WithFileDiscovery(mapconf.DefaultDiscoveryOptions(name))
	}
	if filePath != "" {
		builder.WithFile(filePath)
	}

	store, err := builder.Build()
	if err != nil {
		if !errors.Is(err, mapconf.ErrConfigNotFound) {
			return err
		}
		logger.Warn().Msg("running without a configuration file")
	}

	switch cmd := args[0]; cmd {
	case "get":
		if len(args) != 2 {
			return errors.New("usage: mapconf get <path>")
		}
		return get(store, args[1], as)
	case "paths":
		for _, p := range store.Paths() {
			fmt.Println(p)
		}
		return nil
	case "dump":
		return store.Dump(os.Stdout)
	case "debug":
		fmt.Print(store.Debug())
		return nil
	case "map":
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		table := store.Data()
		if path != "" {
			table = store.Sub(path)
		}
		spew.Fdump(os.Stdout, mapconf.CamelCaseKeys(table))
		return nil
	case "snapshot":
		if len(args) != 2 {
			return errors.New("usage: mapconf snapshot <output-file>")
		}
		data, err := store.Snapshot()
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		logger.Info().Str("file", args[1]).Int("bytes", len(data)).Msg("snapshot written")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func get(store *mapconf.Store, path, as string) error {
	if !store.Has(path) {
		return fmt.Errorf("path %q not found", path)
	}

	switch strings.ToLower(as) {
	case "":
		fmt.Printf("%v\n", store.Get(path))
	case "int":
		fmt.Println(store.Int64(path))
	case "float":
		fmt.Println(store.Float64(path))
	case "bool":
		fmt.Println(store.Bool(path))
	case "string":
		fmt.Println(store.String(path))
	case "duration":
		fmt.Println(store.Duration(path))
	case "datasize":
		size := store.DataSize(path)
		fmt.Printf("%d (%s)\n", size, units.FormatDataSize(size))
	default:
		return fmt.Errorf("unknown --as %q", as)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `mapconf - inspect configuration the way applications see it.

Usage:
  mapconf [flags] <command> [args]

Commands:
  get <path>          print the value at a dot path (segments match normalized)
  paths               list every leaf path
  dump                print the merged tree as TOML
  debug               print environment and leaf values
  map [path]          show the table at path with camelCase keys
  snapshot <file>     write a CBOR snapshot of the store

Examples:
  mapconf -f app.toml -e prod get cache.ttl-seconds --as duration
  mapconf -f app.yaml --set server.port=9090 dump

Flags:
`)
	flagSet.PrintDefaults()
}
