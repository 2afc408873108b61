package restart

import (
	"encoding/json"
	"fmt"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
)

// Settings travel from the parent to the restarted process in the
// settings variable. The marker says "already restarted"; Settings say
// how, so the restarted process can start its own sub-interpreters with
// or without the extension.
type Settings struct {
	Mode       string   `json:"mode"`
	TempConfig string   `json:"temp_config,omitempty"`
	Files      []string `json:"files,omitempty"`   // original loaded config files
	Scanned    bool     `json:"scanned"`           // fragments came from the scan directory
	Skipped    string   `json:"skipped,omitempty"` // version of the extension left out
}

// EncodeSettings renders s for the settings variable.
func EncodeSettings(s Settings) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding restart settings: %w", err)
	}
	return string(data), nil
}

// DecodeSettings parses the settings variable. Like the marker, a value
// that does not parse is "no settings", not an error.
func DecodeSettings(s string) (Settings, bool) {
	var out Settings
	if s == "" || json.Unmarshal([]byte(s), &out) != nil {
		return Settings{}, false
	}
	return out, true
}

// ChildConfig builds interpreter options for sub-processes started by a
// restarted process. Outside a restarted process, or without settings,
// every method returns no options and leaves the environment alone.
type ChildConfig struct {
	view     envview.View
	names    config.EnvNames
	marker   Marker
	settings Settings
	active   bool
}

// UseOriginal restores the original search environment and returns no
// options: the sub-process loads the full configuration, extension
// included.
func (c *ChildConfig) UseOriginal() ([]string, error) {
	if !c.active {
		return []string{}, nil
	}
	if err := RestoreAfterRestart(c.view, c.names, c.marker); err != nil {
		return nil, err
	}
	return []string{}, nil
}

// UseStandard restores the original search environment and returns the
// options that load only the temporary config, so the sub-process runs
// without the extension.
func (c *ChildConfig) UseStandard() ([]string, error) {
	if !c.active || c.settings.TempConfig == "" {
		return []string{}, nil
	}
	if err := RestoreAfterRestart(c.view, c.names, c.marker); err != nil {
		return nil, err
	}
	return NewStrategy(ModeMinimal).Bind(c.settings.TempConfig).Options(), nil
}

// UsePersistent points the live search variables at the temporary config
// and returns no options. Every later sub-process, including ones that
// replace themselves with exec, runs without the extension.
func (c *ChildConfig) UsePersistent() ([]string, error) {
	if !c.active || c.settings.TempConfig == "" {
		return []string{}, nil
	}
	if err := envview.Apply(c.view, c.names.ScanDir, envview.Value("")); err != nil {
		return nil, fmt.Errorf("setting %s: %w", c.names.ScanDir, err)
	}
	if err := envview.Apply(c.view, c.names.Primary, envview.Value(c.settings.TempConfig)); err != nil {
		return nil, fmt.Errorf("setting %s: %w", c.names.Primary, err)
	}
	return []string{}, nil
}
