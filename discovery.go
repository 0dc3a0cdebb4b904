// FILE: lixenwraith/mapconf/discovery.go
package mapconf

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions describes where a configuration file for an
// application may live. DiscoverFile consults an explicit flag first, then an
// environment variable, then the directory list.
type FileDiscoveryOptions struct {
	// Name is the file stem, e.g. "svc" for svc.toml.
	Name string

	// Extensions are appended to Name, first match wins.
	Extensions []string

	// Paths are searched before the working and XDG directories.
	Paths []string

	// EnvVar names a variable holding a file path, e.g. SVC_CONFIG.
	EnvVar string

	// CLIFlag names an argument holding a file path. Both "--config x" and
	// "--config=x" forms are read.
	CLIFlag string

	UseXDG        bool
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns discovery options for appName: every
// supported extension, a NAME_CONFIG variable, a --config flag and both the
// working and XDG directories.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json", ".jsonc"},
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// DiscoverFile returns the first configuration file found for opts: the CLI
// flag in args, then the environment variable, then the search paths. An
// empty string means nothing was found, which is not an error.
func DiscoverFile(opts FileDiscoveryOptions, args []string) string {
	if path, ok := flagValue(args, opts.CLIFlag); ok {
		return path
	}
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			return path
		}
	}

	dirs := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if opts.UseXDG {
		dirs = append(dirs, xdgSearchDirs(opts.Name)...)
	}
	return firstRegularFile(dirs, opts.Name, opts.Extensions)
}

// flagValue finds the value of flag in args. Explicit paths are taken as
// given and are not checked for existence.
func flagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			return v, true
		}
	}
	return "", false
}

func firstRegularFile(dirs []string, stem string, exts []string) string {
	for _, dir := range dirs {
		for _, ext := range exts {
			candidate := filepath.Join(dir, stem+ext)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate
			}
		}
	}
	return ""
}

// WithFileDiscovery points the builder at the discovered file, if any. Set
// the builder's arguments first so the CLI flag is visible. When nothing is
// found the builder keeps its current file.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path := DiscoverFile(opts, b.args); path != "" {
		b.file = path
	}
	return b
}

// xdgSearchDirs lists the per-user directory followed by the system ones.
// HOME/.config stands in for an unset XDG_CONFIG_HOME, and /etc/xdg plus
// /etc for an unset XDG_CONFIG_DIRS.
func xdgSearchDirs(appName string) []string {
	var dirs []string

	switch {
	case os.Getenv("XDG_CONFIG_HOME") != "":
		dirs = append(dirs, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), appName))
	case os.Getenv("HOME") != "":
		dirs = append(dirs, filepath.Join(os.Getenv("HOME"), ".config", appName))
	}

	system := []string{"/etc/xdg", "/etc"}
	if list := os.Getenv("XDG_CONFIG_DIRS"); list != "" {
		system = filepath.SplitList(list)
	}
	for _, dir := range system {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	return dirs
}
