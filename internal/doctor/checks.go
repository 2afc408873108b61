package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/restart"
)

// --- Configuration ---

// SearchCheck reports the files the configuration search loaded and
// warns about scan directories that do not exist.
type SearchCheck struct {
	loaded  *config.Loaded
	names   config.EnvNames
	scanDir string
}

// NewSearchCheck creates a check over a finished search.
func NewSearchCheck(loaded *config.Loaded, names config.EnvNames) *SearchCheck {
	return &SearchCheck{loaded: loaded, names: names, scanDir: loaded.Search.ScanDir.Value}
}

// Restarted makes the check judge the scan directory the original process
// was started with. A restarted child boots from the temporary config, so
// its own search state says nothing about the user's setup.
func (c *SearchCheck) Restarted(m restart.Marker) *SearchCheck {
	c.scanDir = m.State.ScanDir.Value
	return c
}

// Name returns the check identifier.
func (c *SearchCheck) Name() string { return "config-search" }

// Run stats every scan directory.
func (c *SearchCheck) Run(ctx *CheckContext) *CheckResult {
	r := &CheckResult{Name: c.Name(), Details: c.loaded.Files()}
	var missing []string
	for _, dir := range filepath.SplitList(c.scanDir) {
		if dir == "" {
			continue
		}
		if fi, err := ctx.FS.Stat(dir); err != nil || !fi.IsDir() {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		r.Status = StatusWarning
		r.Message = fmt.Sprintf("%s names missing directories: %s", c.names.ScanDir, strings.Join(missing, ", "))
		r.FixHint = "create them or remove them from " + c.names.ScanDir
		return r
	}
	r.Status = StatusOK
	r.Message = fmt.Sprintf("%d configuration files loaded", len(r.Details))
	return r
}

// CanFix returns false.
func (c *SearchCheck) CanFix() bool { return false }

// Fix is a no-op.
func (c *SearchCheck) Fix(_ *CheckContext) error { return nil }

// --- Restart ---

// TempDirCheck verifies the temporary config file can be created. When
// it cannot, every restart is abandoned and the extension stays loaded.
type TempDirCheck struct {
	dir string // "" is the OS temp dir
}

// NewTempDirCheck creates a check for the [restart] temp_dir setting.
func NewTempDirCheck(dir string) *TempDirCheck {
	return &TempDirCheck{dir: dir}
}

// Name returns the check identifier.
func (c *TempDirCheck) Name() string { return "temp-dir" }

func (c *TempDirCheck) path() string {
	if c.dir == "" {
		return os.TempDir()
	}
	return c.dir
}

// Run writes and removes a probe file.
func (c *TempDirCheck) Run(ctx *CheckContext) *CheckResult {
	r := &CheckResult{Name: c.Name()}
	dir := c.path()
	if fi, err := ctx.FS.Stat(dir); err != nil || !fi.IsDir() {
		r.Status = StatusError
		r.Message = fmt.Sprintf("%s does not exist; restarts will be abandoned", dir)
		r.FixHint = "run with --fix or change [restart] temp_dir"
		return r
	}
	probe, err := ctx.FS.WriteTemp(dir, ".doctor-*", nil)
	if err != nil {
		r.Status = StatusError
		r.Message = fmt.Sprintf("cannot write to %s: %v", dir, err)
		r.FixHint = "change [restart] temp_dir to a writable directory"
		return r
	}
	_ = ctx.FS.Remove(probe)
	r.Status = StatusOK
	r.Message = dir + " is writable"
	return r
}

// CanFix returns true: a missing directory can be created.
func (c *TempDirCheck) CanFix() bool { return true }

// Fix creates the directory.
func (c *TempDirCheck) Fix(ctx *CheckContext) error {
	return ctx.FS.MkdirAll(c.path(), 0o755)
}

// MarkerCheck decodes the restart marker, if one is set.
type MarkerCheck struct {
	name string
}

// NewMarkerCheck creates a check for the marker variable name.
func NewMarkerCheck(name string) *MarkerCheck {
	return &MarkerCheck{name: name}
}

// Name returns the check identifier.
func (c *MarkerCheck) Name() string { return "restart-marker" }

// Run decodes the marker.
func (c *MarkerCheck) Run(ctx *CheckContext) *CheckResult {
	r := &CheckResult{Name: c.Name(), Status: StatusOK}
	v := envview.Get(ctx.Env, c.name)
	if !v.Set {
		r.Message = c.name + " not set"
		return r
	}
	m, ok := restart.DecodeMarker(v.Value)
	if !ok {
		r.Status = StatusWarning
		r.Message = c.name + " is malformed and will be ignored"
		r.Details = []string{v.Value}
		r.FixHint = "unset " + c.name
		return r
	}
	r.Message = "set by inirun " + m.Version
	r.Details = []string{
		"scan_dir: " + m.State.ScanDir.String(),
		"primary: " + m.State.Primary.String(),
	}
	return r
}

// CanFix returns false; the variable belongs to the calling environment.
func (c *MarkerCheck) CanFix() bool { return false }

// Fix is a no-op.
func (c *MarkerCheck) Fix(_ *CheckContext) error { return nil }

// SettingsCheck decodes the restart settings handed to a restarted
// process and checks that their temporary config still exists.
type SettingsCheck struct {
	name string
}

// NewSettingsCheck creates a check for the settings variable name.
func NewSettingsCheck(name string) *SettingsCheck {
	return &SettingsCheck{name: name}
}

// Name returns the check identifier.
func (c *SettingsCheck) Name() string { return "restart-settings" }

// Run decodes the settings.
func (c *SettingsCheck) Run(ctx *CheckContext) *CheckResult {
	r := &CheckResult{Name: c.Name(), Status: StatusOK}
	v := envview.Get(ctx.Env, c.name)
	if !v.Set {
		r.Message = c.name + " not set"
		return r
	}
	s, ok := restart.DecodeSettings(v.Value)
	if !ok {
		r.Status = StatusWarning
		r.Message = c.name + " is not valid JSON; nested interpreters get no options"
		r.Details = []string{v.Value}
		return r
	}
	r.Details = s.Files
	if s.TempConfig == "" {
		r.Message = s.Mode + " mode"
		return r
	}
	if _, err := ctx.FS.Stat(s.TempConfig); err != nil {
		r.Status = StatusWarning
		r.Message = fmt.Sprintf("%s mode, but %s is gone", s.Mode, s.TempConfig)
		return r
	}
	r.Message = fmt.Sprintf("%s mode, temporary config %s", s.Mode, s.TempConfig)
	return r
}

// CanFix returns false.
func (c *SettingsCheck) CanFix() bool { return false }

// Fix is a no-op.
func (c *SettingsCheck) Fix(_ *CheckContext) error { return nil }

// RestartCheck reports whether this process runs without the extension.
type RestartCheck struct {
	ext     string
	loaded  bool
	out     restart.Outcome
	skipped string
	names   restart.Names
}

// NewRestartCheck creates a check from the outcome of the restart check.
// loaded reports whether ext is loaded in this process; skipped is the
// version a parent left out.
func NewRestartCheck(ext string, loaded bool, out restart.Outcome, skipped string, names restart.Names) *RestartCheck {
	return &RestartCheck{ext: ext, loaded: loaded, out: out, skipped: skipped, names: names}
}

// Name returns the check identifier.
func (c *RestartCheck) Name() string { return "restart" }

// Run classifies the outcome.
func (c *RestartCheck) Run(_ *CheckContext) *CheckResult {
	r := &CheckResult{Name: c.Name(), Status: StatusOK}
	switch {
	case c.out.State == restart.StateRestarted && c.skipped != "":
		r.Message = fmt.Sprintf("restarted without %s %s", c.ext, c.skipped)
	case c.out.State == restart.StateRestarted:
		r.Message = fmt.Sprintf("restarted with the original configuration (%s loaded: %t)", c.ext, c.loaded)
	case !c.loaded:
		r.Message = c.ext + " not loaded"
	case c.out.Err != nil:
		r.Status = StatusError
		r.Message = fmt.Sprintf("restart abandoned, %s stays loaded: %v", c.ext, c.out.Err)
		r.FixHint = "see the temp-dir check"
	default:
		r.Status = StatusWarning
		r.Message = c.ext + " loaded and restarts are switched off"
		r.FixHint = fmt.Sprintf("unset %s and [restart] disabled", c.names.NoRestart)
	}
	return r
}

// CanFix returns false.
func (c *RestartCheck) CanFix() bool { return false }

// Fix is a no-op.
func (c *RestartCheck) Fix(_ *CheckContext) error { return nil }
