package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/fsys"
)

// StartupOptions are the command-line switches that change the search.
type StartupOptions struct {
	NoConfig   bool   // -n: ignore the primary variable and the scan directory
	ConfigPath string // -c: explicit primary file or directory
}

// Loaded is the result of a configuration search.
type Loaded struct {
	Search      SearchState
	PrimaryFile string   // "" when no primary file was loaded
	Scanned     []string // fragments from the scan directory, in load order
	Merged      File
	Provenance  *Provenance
}

// Files lists every loaded file in load order.
func (l *Loaded) Files() []string {
	var files []string
	if l.PrimaryFile != "" {
		files = append(files, l.PrimaryFile)
	}
	return append(files, l.Scanned...)
}

func (l *Loaded) merge(f *File, path string) {
	l.Provenance.track(&l.Merged, f, path)
	l.Merged.Merge(f)
}

// fragmentExts are the file extensions picked up from a scan directory.
var fragmentExts = map[string]bool{
	".toml":  true,
	".yaml":  true,
	".yml":   true,
	".json":  true,
	".jsonc": true,
}

// Load performs the configuration search the way the interpreter does at
// startup and returns the merged result. All file I/O goes through fs and
// all variable reads through view.
func Load(fs fsys.FS, view envview.View, names EnvNames, opts StartupOptions) (*Loaded, error) {
	l := &Loaded{Provenance: newProvenance()}
	scanDir := envview.Get(view, names.ScanDir)
	primary := envview.Get(view, names.Primary)

	var err error
	switch {
	case opts.ConfigPath != "":
		l.PrimaryFile, err = resolvePrimary(fs, opts.ConfigPath, true)
	case !opts.NoConfig && primary.Value != "":
		l.PrimaryFile, err = resolvePrimary(fs, primary.Value, false)
	}
	if err != nil {
		return nil, err
	}
	if l.PrimaryFile != "" {
		f, err := loadFile(fs, l.PrimaryFile)
		if err != nil {
			return nil, err
		}
		l.merge(f, l.PrimaryFile)
	}

	if !opts.NoConfig && scanDir.Value != "" {
		for _, dir := range filepath.SplitList(scanDir.Value) {
			if dir == "" {
				continue
			}
			files, err := scanFragments(fs, dir)
			if err != nil {
				return nil, err
			}
			for _, path := range files {
				f, err := loadFile(fs, path)
				if err != nil {
					return nil, err
				}
				l.merge(f, path)
				l.Scanned = append(l.Scanned, path)
			}
		}
	}

	l.Search = SearchState{
		ScanDir:      scanDir,
		Primary:      primary,
		ScannedFiles: len(l.Scanned) > 0,
	}
	return l, nil
}

// resolvePrimary maps a file or directory to the primary config file.
// A missing path is an error only when required.
func resolvePrimary(fs fsys.FS, path string, required bool) (string, error) {
	fi, err := fs.Stat(path)
	if err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
		_, err = fs.Stat(path)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return "", nil
		}
		return "", fmt.Errorf("primary config %q: %w", path, err)
	}
	return path, nil
}

// scanFragments returns the fragment files of one scan directory in
// lexical order. A missing directory holds no fragments.
func scanFragments(fs fsys.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !fragmentExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func loadFile(fs fsys.FS, path string) (*File, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %q: %w", path, err)
	}
	f, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data according to the extension of name: YAML for
// .yaml/.yml, JSON with comments for .json/.jsonc, TOML otherwise.
func Parse(name string, data []byte) (*File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing yaml config: %w", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
			return nil, fmt.Errorf("parsing json config: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	return &f, nil
}

// MinimalConfig renders the merged configuration with ext switched off.
// It is what a restarted interpreter loads in place of the whole search.
func MinimalConfig(l *Loaded, ext string) ([]byte, error) {
	f := l.Merged.Clone()
	if f.Extensions == nil {
		f.Extensions = make(map[string]bool)
	}
	f.Extensions[ext] = false
	data, err := f.Marshal()
	if err != nil {
		return nil, err
	}
	header := fmt.Sprintf("# Generated by inirun to restart without the %q extension.\n", ext)
	return append([]byte(header), data...), nil
}
