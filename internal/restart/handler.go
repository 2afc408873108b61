// Package restart re-executes a host interpreter without an extension it
// cannot unload in-process.
//
// A [Handler] checks once, early at startup, whether the extension is
// loaded. If it is and the process has not been restarted yet, it writes a
// configuration that leaves the extension out, marks the environment,
// runs the same program again as a child and reports the child's exit code
// for the host to exit with. In the restarted child the same check finds
// the marker, puts the configuration search variables back the way the
// original process saw them and lets the host carry on.
package restart

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/events"
	"github.com/steveyegge/inirun/internal/fsys"
	"github.com/steveyegge/inirun/internal/process"
	"github.com/steveyegge/inirun/internal/telemetry"
)

// ExitSpawnFailed is the exit code reported when the child could not be
// started at all.
const ExitSpawnFailed = 126

// State is the position of a [Handler] in its restart state machine.
type State int

const (
	// StateFresh is the initial state, and the state a Handler stays in
	// when no restart is needed or a restart was abandoned.
	StateFresh State = iota
	// StateRestarting covers temp file creation and environment setup.
	StateRestarting
	// StateChildRunning lasts while the parent waits for the child.
	StateChildRunning
	// StateDone means the child has exited; the host must exit too.
	StateDone
	// StateRestarted is entered instead of StateFresh by the restarted
	// child. It never spawns.
	StateRestarted
)

var stateNames = [...]string{"fresh", "restarting", "child-running", "done", "restarted"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Host is what the handler needs to know about the interpreter it runs in.
type Host interface {
	// ExtensionLoaded reports whether the extension is active. Hosts that
	// cannot tell must report false.
	ExtensionLoaded() bool
	// Version is the interpreter version recorded in the marker.
	Version() string
	// Search is the configuration search state captured at startup.
	Search() config.SearchState
	// TempConfig renders the configuration the child boots with.
	TempConfig() ([]byte, error)
	// Files lists the configuration files loaded at startup.
	Files() []string
	// ExtensionVersion is the version of the extension being left out.
	ExtensionVersion() string
}

// Options configure a [Handler]. Zero collaborators get production
// defaults.
type Options struct {
	Prefix    string // variable prefix and log prefix, e.g. "inirun"
	Extension string // extension to restart without
	ConfigEnv config.EnvNames
	Mode      Mode
	Disabled  bool   // restart switched off by configuration
	TempDir   string // "" means the system temp dir

	// TempPattern is the temporary file name pattern. Default
	// "<prefix>-*.toml".
	TempPattern string

	// Argv0 and Args rebuild the child command line:
	// [Argv0, mode options..., Args...].
	Argv0 string
	Args  []string

	Env      envview.View
	FS       fsys.FS
	Runner   process.Runner
	Recorder events.Recorder
	Stderr   io.Writer
}

// Outcome is the result of [Handler.Check].
type Outcome struct {
	State    State
	ExitCode int   // meaningful when State is StateDone
	Err      error // spawn error, or the reason a restart was abandoned
}

// Handler runs the restart check. It is used once per process and is not
// safe for concurrent use.
type Handler struct {
	host  Host
	opts  Options
	names Names

	checked  bool
	last     Outcome
	state    State
	marker   Marker
	settings Settings
	hasSet   bool
}

// New returns a Handler for host.
func New(host Host, opts Options) *Handler {
	if opts.Env == nil {
		opts.Env = envview.NewOS(nil)
	}
	if opts.FS == nil {
		opts.FS = fsys.OSFS{}
	}
	if opts.Runner == nil {
		opts.Runner = &process.Exec{}
	}
	if opts.Recorder == nil {
		opts.Recorder = events.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.TempPattern == "" {
		opts.TempPattern = strings.ToLower(opts.Prefix) + "-*.toml"
	}
	return &Handler{
		host:  host,
		opts:  opts,
		names: NewNames(opts.Prefix, opts.Extension, opts.ConfigEnv),
	}
}

// Names returns the protocol variable names in use.
func (h *Handler) Names() Names { return h.names }

// State returns the current state.
func (h *Handler) State() State { return h.state }

// Restarted reports whether this process is a restarted child.
func (h *Handler) Restarted() bool { return h.state == StateRestarted }

// Marker returns the decoded marker of a restarted child.
func (h *Handler) Marker() (Marker, bool) {
	return h.marker, h.state == StateRestarted
}

// Settings returns the settings handed down by the parent, if any.
func (h *Handler) Settings() (Settings, bool) {
	return h.settings, h.hasSet
}

// SkippedVersion is the version of the extension the parent left out, or
// "" when this process was not restarted.
func (h *Handler) SkippedVersion() string {
	return h.settings.Skipped
}

// ChildConfig returns the sub-process helper for this process.
func (h *Handler) ChildConfig() *ChildConfig {
	return &ChildConfig{
		view:     h.opts.Env,
		names:    h.names.Config,
		marker:   h.marker,
		settings: h.settings,
		active:   h.state == StateRestarted && h.hasSet,
	}
}

// Check runs the restart state machine. When the returned State is
// [StateDone] the caller must exit with Outcome.ExitCode; in every other
// state it carries on in-process. Check must run before anything reads the
// configuration search variables. Later calls return the first Outcome
// without doing anything.
func (h *Handler) Check(ctx context.Context) Outcome {
	if !h.checked {
		h.checked = true
		h.last = h.check(ctx)
	}
	return h.last
}

func (h *Handler) check(ctx context.Context) Outcome {
	if raw, ok := h.opts.Env.Lookup(h.names.Marker); ok && raw != "" {
		if m, valid := DecodeMarker(raw); valid {
			return h.restored(ctx, m)
		}
		h.logf("ignoring malformed %s", h.names.Marker)
	}
	if !h.host.ExtensionLoaded() {
		return Outcome{State: StateFresh}
	}
	if reason := h.optOut(); reason != "" {
		h.record(events.RestartSkipped, reason)
		return Outcome{State: StateFresh}
	}
	return h.restart(ctx)
}

// optOut returns why the restart is switched off, or "".
func (h *Handler) optOut() string {
	if h.opts.Disabled {
		return "disabled by configuration"
	}
	if truthy(envview.Get(h.opts.Env, h.names.NoRestart).Value) {
		return "disabled by " + h.names.NoRestart
	}
	if h.opts.Argv0 == "" {
		return "no program path"
	}
	return ""
}

func (h *Handler) restored(ctx context.Context, m Marker) Outcome {
	if err := RestoreAfterRestart(h.opts.Env, h.names.Config, m); err != nil {
		h.logf("restoring environment: %v", err)
	}
	h.marker = m
	h.settings, h.hasSet = DecodeSettings(envview.Get(h.opts.Env, h.names.Settings).Value)
	h.state = StateRestarted
	h.record(events.RestartRestored, "version="+m.Version)
	telemetry.RecordRestore(ctx, h.opts.Extension)
	return Outcome{State: StateRestarted}
}

func (h *Handler) restart(ctx context.Context) Outcome {
	h.state = StateRestarting
	strategy := NewStrategy(h.opts.Mode)
	search := h.host.Search()
	version := h.host.Version()

	if strategy.NeedsTempConfig() {
		path, err := h.writeTemp()
		telemetry.RecordTempConfig(ctx, h.opts.Extension, err)
		if err != nil {
			return h.abandon(err)
		}
		strategy = strategy.Bind(path)
		defer h.removeTemp(path)
	}

	undo := captureVars(h.opts.Env, h.names.Marker, h.names.Settings,
		h.names.Config.ScanDir, h.names.Config.Primary)
	if err := ApplyForRestart(h.opts.Env, h.names, strategy, search, version); err != nil {
		return h.abandon(err)
	}
	if err := h.applySettings(strategy, search); err != nil {
		undo.restore(h.opts.Env)
		return h.abandon(err)
	}

	argv := append([]string{h.opts.Argv0}, strategy.Options()...)
	argv = append(argv, h.opts.Args...)

	h.state = StateChildRunning
	h.record(events.RestartStarted, "mode="+strategy.Mode().String())
	start := time.Now()
	code, err := h.opts.Runner.Run(ctx, argv, h.opts.Env.Environ())
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	h.state = StateDone

	if err != nil {
		h.logf("restart failed: %v", err)
		h.record(events.RestartFailed, err.Error())
		code = ExitSpawnFailed
	} else {
		h.record(events.RestartCompleted, fmt.Sprintf("exit=%d", code))
	}
	telemetry.RecordRestart(ctx, h.opts.Extension, strategy.Mode().String(), code, elapsed, err)
	return Outcome{State: StateDone, ExitCode: code, Err: err}
}

// abandon gives up on the restart and keeps running with the extension.
func (h *Handler) abandon(err error) Outcome {
	h.logf("restart abandoned, continuing with %s loaded: %v", h.opts.Extension, err)
	h.record(events.RestartFailed, err.Error())
	h.state = StateFresh
	return Outcome{State: StateFresh, Err: err}
}

func (h *Handler) writeTemp() (string, error) {
	data, err := h.host.TempConfig()
	if err != nil {
		return "", fmt.Errorf("rendering temporary config: %w", err)
	}
	// The path ends up in the environment of every descendant, which may
	// run from another working directory.
	dir := h.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return "", fmt.Errorf("resolving temp dir: %w", err)
	}
	path, err := h.opts.FS.WriteTemp(dir, h.opts.TempPattern, data)
	if err != nil {
		return "", fmt.Errorf("writing temporary config: %w", err)
	}
	return path, nil
}

func (h *Handler) removeTemp(path string) {
	if err := h.opts.FS.Remove(path); err != nil {
		h.logf("removing %s: %v", path, err)
	}
}

func (h *Handler) applySettings(s Strategy, search config.SearchState) error {
	encoded, err := EncodeSettings(Settings{
		Mode:       s.Mode().String(),
		TempConfig: s.TempConfig(),
		Files:      h.host.Files(),
		Scanned:    search.ScannedFiles,
		Skipped:    h.host.ExtensionVersion(),
	})
	if err != nil {
		return err
	}
	if err := h.opts.Env.Set(h.names.Settings, encoded); err != nil {
		return fmt.Errorf("setting %s: %w", h.names.Settings, err)
	}
	return nil
}

func (h *Handler) record(typ, msg string) {
	h.opts.Recorder.Record(events.Event{
		Type:    typ,
		Subject: h.opts.Extension,
		Message: msg,
	})
}

func (h *Handler) logf(format string, args ...any) {
	fmt.Fprintf(h.opts.Stderr, "%s: %s\n", strings.ToLower(h.opts.Prefix), fmt.Sprintf(format, args...)) //nolint:errcheck // best-effort stderr
}

// truthy treats an empty value and the usual spellings of "no" as false.
func truthy(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
