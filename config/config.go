// Package config loads flag defaults from TOML files.
//
// Keys are flag names, written with dashes or underscores:
//
//	threads = 4
//	ffmpeg_options = "-c:v libx265 -crf 26"
//
//	[process]
//	output = "/srv/out/{{parent}}/{{name}}.mkv"
//
// Keys inside a table named after a command only apply to that command's flags.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
)

const (
	// FileName is the config file looked up in the user config directory
	FileName = "config.toml"
	// LocalFileName is the config file looked up in the working directory
	LocalFileName = "ffpool.toml"
)

// TOML is a kong.ConfigurationLoader for TOML documents
func TOML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode TOML configuration: %w", err)
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		if node := parent.Node(); node != nil && node.Type == kong.CommandNode {
			if section, ok := values[node.Name].(map[string]any); ok {
				if v, ok := lookup(section, flag.Name); ok {
					return v, nil
				}
			}
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}
	return f, nil
}

func lookup(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		v, ok := values[key]
		if !ok {
			continue
		}
		// tables are sections, never flag values
		if _, isTable := v.(map[string]any); isTable {
			continue
		}
		return v, true
	}
	return nil, false
}

// DefaultPaths lists the config files consulted in order, lowest priority first
func DefaultPaths(app string) []string {
	var paths []string
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, app, FileName))
	}
	return append(paths, LocalFileName)
}

// FindFiles returns the entries of paths that exist as regular files
func FindFiles(paths []string) []string {
	var found []string
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			found = append(found, p)
		}
	}
	return found
}
