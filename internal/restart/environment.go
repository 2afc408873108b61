package restart

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
)

// Names holds the variable names one host uses for the restart protocol.
type Names struct {
	Marker    string // <PREFIX>_ALLOW_<EXTENSION>
	Settings  string // <PREFIX>_RESTART_SETTINGS
	NoRestart string // <PREFIX>_NO_RESTART
	Config    config.EnvNames
}

// NewNames derives the protocol variable names from a host prefix and an
// extension name. Both are upper-cased and anything outside [A-Z0-9_]
// becomes an underscore: NewNames("inirun", "debugger", ...) yields
// INIRUN_ALLOW_DEBUGGER.
func NewNames(prefix, extension string, cfg config.EnvNames) Names {
	p := envName(prefix)
	return Names{
		Marker:    p + "_ALLOW_" + envName(extension),
		Settings:  p + "_RESTART_SETTINGS",
		NoRestart: p + "_NO_RESTART",
		Config:    cfg,
	}
}

func envName(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}

// ApplyForRestart prepares view for spawning the child. It sets the
// marker to the encoded state; for [ModePersistent] it also sets the scan
// directory to "" and the primary file to the bound temporary path. The
// other modes leave the search variables alone.
//
// On error, every variable already written is put back and the returned
// error describes the first failure.
func ApplyForRestart(view envview.View, names Names, s Strategy, state config.SearchState, version string) error {
	if err := checkEncodable(state, version); err != nil {
		return err
	}
	undo := captureVars(view, names.Marker, names.Config.ScanDir, names.Config.Primary)

	writes := []assignment{{names.Marker, envview.Value(EncodeMarker(state, version))}}
	if s.Mode() == ModePersistent {
		writes = append(writes,
			assignment{names.Config.ScanDir, envview.Value("")},
			assignment{names.Config.Primary, envview.Value(s.TempConfig())},
		)
	}
	for _, w := range writes {
		if err := envview.Apply(view, w.key, w.v); err != nil {
			undo.restore(view)
			return fmt.Errorf("setting %s: %w", w.key, err)
		}
	}
	return nil
}

// RestoreAfterRestart puts the scan directory and primary file variables
// back to the values recorded in m. "*" fields come back unset. Running it
// twice leaves the same environment as running it once. The marker itself
// stays set so descendants never restart.
func RestoreAfterRestart(view envview.View, names config.EnvNames, m Marker) error {
	if err := envview.Apply(view, names.ScanDir, m.State.ScanDir); err != nil {
		return fmt.Errorf("restoring %s: %w", names.ScanDir, err)
	}
	if err := envview.Apply(view, names.Primary, m.State.Primary); err != nil {
		return fmt.Errorf("restoring %s: %w", names.Primary, err)
	}
	return nil
}

type assignment struct {
	key string
	v   envview.Var
}

// savedVars remembers variable values so a partial write can be undone.
type savedVars map[string]envview.Var

func captureVars(view envview.View, keys ...string) savedVars {
	saved := make(savedVars, len(keys))
	for _, k := range keys {
		saved[k] = envview.Get(view, k)
	}
	return saved
}

// restore writes the saved values back, best-effort.
func (s savedVars) restore(view envview.View) {
	for k, v := range s {
		_ = envview.Apply(view, k, v)
	}
}
