// Package docgen generates JSON Schema and markdown documentation from
// inirun's Go config structs.
package docgen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/restart"
)

// ModuleRoot finds the repo root by walking up from the current directory
// looking for go.mod. Returns the absolute path.
func ModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent of %s", dir)
		}
		dir = parent
	}
}

// newReflector creates a jsonschema.Reflector that names fields by tag
// ("" means the json tag) with Go doc comments extracted from the source
// tree.
//
// AddGoComments requires the path parameter to be "." with the working
// directory set to the module root, so that filepath.Walk produces paths
// like "internal/config" which gopath.Join maps to the correct import path.
func newReflector(tag string) (*jsonschema.Reflector, error) {
	root, err := ModuleRoot()
	if err != nil {
		return nil, err
	}

	orig, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	if err := os.Chdir(root); err != nil {
		return nil, fmt.Errorf("chdir to module root: %w", err)
	}
	defer func() { _ = os.Chdir(orig) }()

	r := &jsonschema.Reflector{
		FieldNameTag: tag,
	}
	if err := r.AddGoComments("github.com/steveyegge/inirun", "."); err != nil {
		return nil, fmt.Errorf("extracting Go comments: %w", err)
	}
	return r, nil
}

// GenerateConfigSchema produces a JSON Schema for inirun.toml and its
// fragments. It reflects the config.File struct using TOML field names
// and extracts doc comments as descriptions.
func GenerateConfigSchema() (*jsonschema.Schema, error) {
	r, err := newReflector("toml")
	if err != nil {
		return nil, err
	}
	s := r.Reflect(&config.File{})
	s.Title = "inirun Configuration"
	s.Description = "Schema for inirun.toml and the fragments in the scan directory."
	return s, nil
}

// GenerateSettingsSchema produces a JSON Schema for the restart settings
// a parent hands to its restarted child in INIRUN_RESTART_SETTINGS.
func GenerateSettingsSchema() (*jsonschema.Schema, error) {
	r, err := newReflector("")
	if err != nil {
		return nil, err
	}
	s := r.Reflect(&restart.Settings{})
	s.Title = "inirun Restart Settings"
	s.Description = "Schema for the JSON value of INIRUN_RESTART_SETTINGS."
	return s, nil
}
