// Command genschema generates JSON Schema and markdown reference docs
// from inirun's Go config structs. Run from the repository root:
//
//	go run ./cmd/genschema
//
// Output:
//
//	docs/schema/inirun-schema.json
//	docs/schema/restart-settings-schema.json
//	docs/reference/config.md
//	docs/reference/cli.md
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/docgen"
	"github.com/steveyegge/inirun/internal/restart"
	"github.com/steveyegge/inirun/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "genschema: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if _, err := os.Stat("go.mod"); err != nil {
		return fmt.Errorf("must run from repository root (go.mod not found)")
	}
	for _, dir := range []string{"docs/schema", "docs/reference"} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	configSchema, err := docgen.GenerateConfigSchema()
	if err != nil {
		return fmt.Errorf("generating config schema: %w", err)
	}
	settingsSchema, err := docgen.GenerateSettingsSchema()
	if err != nil {
		return fmt.Errorf("generating settings schema: %w", err)
	}

	if err := writeSchema("docs/schema/inirun-schema.json", configSchema); err != nil {
		return err
	}
	if err := writeSchema("docs/schema/restart-settings-schema.json", settingsSchema); err != nil {
		return err
	}
	if err := docgen.WriteMarkdown("docs/reference/config.md", configSchema, envVars()); err != nil {
		return fmt.Errorf("writing config.md: %w", err)
	}

	// The CLI reference needs the real command tree, which lives in main.
	genDoc := exec.Command("go", "run", "./cmd/inirun", "gen-doc")
	genDoc.Stdout = os.Stdout
	genDoc.Stderr = os.Stderr
	genDoc.Env = append(os.Environ(), "INIRUN_NO_RESTART=1")
	if err := genDoc.Run(); err != nil {
		return fmt.Errorf("generating CLI docs: %w", err)
	}

	fmt.Println("Generated:")
	for _, f := range []string{
		"docs/schema/inirun-schema.json",
		"docs/schema/restart-settings-schema.json",
		"docs/reference/config.md",
		"docs/reference/cli.md",
	} {
		fmt.Printf("  %s\n", f)
	}
	return nil
}

// envVars documents the variables inirun reads and sets.
func envVars() []docgen.EnvVar {
	names := restart.NewNames("INIRUN", "debugger", config.InirunEnvNames)
	return []docgen.EnvVar{
		{Name: names.Config.Primary, Description: "Primary config file, or a directory holding inirun.toml."},
		{Name: names.Config.ScanDir, Description: "Directories scanned for config fragments, separated like PATH."},
		{Name: names.NoRestart, Description: "Set to a true value to keep the debugger loaded instead of restarting."},
		{Name: names.Marker, Description: "Set by inirun on its restarted child: internal|version|scanned|scan dir|primary."},
		{Name: names.Settings, Description: "Set by inirun on its restarted child: JSON restart settings for nested interpreters."},
		{Name: "INIRUN_EVENTS", Description: "Append restart events to this JSON lines file."},
		{Name: telemetry.EnvMetricsURL, Description: "OTLP/HTTP endpoint for restart metrics."},
		{Name: telemetry.EnvLogsURL, Description: "OTLP/HTTP endpoint for restart log records."},
	}
}

// writeSchema writes a JSON Schema to a file using atomic write (temp + rename).
func writeSchema(path string, s *jsonschema.Schema) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".genschema-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}
