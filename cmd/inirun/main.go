// inirun is a configuration-driven command runner. Its configuration can
// load a debugger extension that cannot be unloaded once running, so at
// startup inirun restarts itself without it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/events"
	"github.com/steveyegge/inirun/internal/fsys"
	"github.com/steveyegge/inirun/internal/process"
	"github.com/steveyegge/inirun/internal/restart"
	"github.com/steveyegge/inirun/internal/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// errExit is a sentinel error returned by cobra RunE functions to signal
// non-zero exit. The command has already written its own error to stderr.
var errExit = errors.New("exit")

// exitCode is returned by RunE functions that pass a child's exit status
// through unchanged.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// run boots inirun with the given args and returns the exit code: startup
// options, configuration search, restart check, then the command tree.
func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseStartup(args)
	if err != nil {
		fmt.Fprintf(stderr, "inirun: %v\n", err) //nolint:errcheck // best-effort stderr
		return 2
	}

	ctx := context.Background()
	snapshot := envview.Snapshot()
	view := envview.NewOS(snapshot)
	in, err := boot(fsys.OSFS{}, view, snapshot, opts)
	if err != nil {
		fmt.Fprintf(stderr, "inirun: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}

	prov, err := telemetry.Init(ctx, "inirun", version)
	if err != nil {
		fmt.Fprintf(stderr, "inirun: telemetry: %v\n", err) //nolint:errcheck // best-effort stderr
	}
	defer prov.Shutdown(ctx) //nolint:errcheck // best-effort flush

	rec, closeRec := openRecorder(view, stderr)
	defer closeRec()

	mode, err := in.restartMode()
	if err != nil {
		fmt.Fprintf(stderr, "inirun: %v\n", err) //nolint:errcheck // best-effort stderr
		return 1
	}
	in.handler = restart.New(in, restart.Options{
		Prefix:    envPrefix,
		Extension: extensionName,
		ConfigEnv: envNames,
		Mode:      mode,
		Disabled:  in.loaded.Merged.Restart.Disabled,
		TempDir:   in.loaded.Merged.Restart.TempDir,
		Argv0:     os.Args[0],
		Args:      childArgs(mode, args, rest),
		Env:       view,
		FS:        fsys.OSFS{},
		Runner:    &process.Exec{Path: selfPath(), Stdout: stdout, Stderr: stderr},
		Recorder:  rec,
		Stderr:    stderr,
	})
	if out := in.handler.Check(ctx); out.State == restart.StateDone {
		return out.ExitCode
	}

	root := newRootCmd(in, stdout, stderr)
	if rest == nil {
		rest = []string{}
	}
	root.SetArgs(rest)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			return int(code)
		}
		return 1
	}
	return 0
}

// childArgs is the command line handed to the restarted child after its
// mode options. Only the original mode keeps the startup options: the
// other modes supply their own configuration.
func childArgs(mode restart.Mode, all, rest []string) []string {
	if mode == restart.ModeOriginal {
		return all
	}
	return rest
}

// selfPath is the running binary. The child keeps os.Args[0] as its name.
func selfPath() string {
	if p, err := os.Executable(); err == nil {
		return p
	}
	return ""
}

// openRecorder returns a Recorder appending to the file named by
// INIRUN_EVENTS, or events.Discard when it is unset or cannot be opened.
func openRecorder(view envview.View, stderr io.Writer) (events.Recorder, func()) {
	path, ok := view.Lookup(eventsEnv)
	if !ok || path == "" {
		return events.Discard, func() {}
	}
	rec, err := events.NewFileRecorder(path, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "inirun: %v\n", err) //nolint:errcheck // best-effort stderr
		return events.Discard, func() {}
	}
	return rec, func() { rec.Close() } //nolint:errcheck // best-effort close
}

// newRootCmd creates the root cobra command with all subcommands.
func newRootCmd(in *interpreter, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "inirun [-n] [-c path] [--restart-mode mode] <command>",
		Short: "Configuration-driven command runner that restarts without its debugger",
		Long: `inirun loads inirun.toml from $INIRUNRC (or -c) and every fragment in
$INIRUN_SCAN_DIR. When the configuration loads the debugger extension,
inirun restarts itself without it before running the command.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			fmt.Fprintf(stderr, "inirun: unknown command %q\n", args[0]) //nolint:errcheck // best-effort stderr
			return errExit
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newEnvCmd(in, stdout),
		newConfigCmd(in, stdout, stderr),
		newDoctorCmd(in, stdout),
		newExecCmd(in, stdout, stderr),
		newMarkerCmd(stdout, stderr),
		newEventsCmd(in, stdout, stderr),
		newVersionCmd(in, stdout),
	)
	root.AddCommand(newGenDocCmd(stdout, stderr, root))
	return root
}
