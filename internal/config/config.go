// Package config handles the interpreter's startup configuration: where
// configuration files are searched for, how fragments are decoded and
// merged, and the minimal configuration written for a restart.
package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the primary config file looked up inside a directory
// named by -c or the primary config variable.
const DefaultFileName = "inirun.toml"

// File is one configuration file, or the merge of all of them.
type File struct {
	// Extensions maps an extension name to whether it is loaded at startup.
	Extensions map[string]bool `toml:"extensions,omitempty" yaml:"extensions,omitempty" json:"extensions,omitempty"`
	// Settings holds free-form interpreter settings.
	Settings map[string]string `toml:"settings,omitempty" yaml:"settings,omitempty" json:"settings,omitempty"`
	// Env is exported to commands started by "inirun exec".
	Env map[string]string `toml:"env,omitempty" yaml:"env,omitempty" json:"env,omitempty"`
	// Restart controls how the interpreter restarts without a loaded extension.
	Restart Restart `toml:"restart,omitempty" yaml:"restart,omitempty" json:"restart,omitempty"`
}

// Restart holds the [restart] table.
type Restart struct {
	// Mode is "minimal" (default), "persistent" or "original".
	Mode string `toml:"mode,omitempty" yaml:"mode,omitempty" json:"mode,omitempty" jsonschema:"enum=minimal,enum=persistent,enum=original"`
	// TempDir is where the temporary config file is created. Defaults to the OS temp dir.
	TempDir string `toml:"temp_dir,omitempty" yaml:"temp_dir,omitempty" json:"temp_dir,omitempty"`
	// Disabled turns restarts off; the extension then stays loaded.
	Disabled bool `toml:"disabled,omitempty" yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// ExtensionEnabled reports whether the named extension is switched on.
func (f *File) ExtensionEnabled(name string) bool {
	return f.Extensions[name]
}

// Merge overlays src onto f. Map entries merge key-wise with src winning;
// non-zero scalars in src replace those in f.
func (f *File) Merge(src *File) {
	f.Extensions = mergeMap(f.Extensions, src.Extensions)
	f.Settings = mergeMap(f.Settings, src.Settings)
	f.Env = mergeMap(f.Env, src.Env)
	if src.Restart.Mode != "" {
		f.Restart.Mode = src.Restart.Mode
	}
	if src.Restart.TempDir != "" {
		f.Restart.TempDir = src.Restart.TempDir
	}
	if src.Restart.Disabled {
		f.Restart.Disabled = true
	}
}

func mergeMap[V any](dst, src map[string]V) map[string]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Clone returns a deep copy of f.
func (f *File) Clone() File {
	var c File
	c.Merge(f)
	c.Restart = f.Restart
	return c
}

// Marshal encodes a File to TOML bytes.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}
