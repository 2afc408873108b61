package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/doctor"
)

func newDoctorCmd(in *interpreter, stdout io.Writer) *cobra.Command {
	var fix, verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration search and restart setup",
		Long: `Run diagnostic checks on this process: the scan directories, the
directory the temporary config is written to, the restart marker and
settings, and whether the debugger was left out.

Run inside a restarted process, the checks describe the child. Use --fix
to create a missing temp directory.`,
		Example: `  inirun doctor
  inirun doctor --fix
  INIRUN_NO_RESTART=1 inirun doctor --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if doDoctor(cmd.Context(), in, fix, verbose, stdout) != 0 {
				return errExit
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "attempt to fix issues automatically")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show extra diagnostic details")
	return cmd
}

// doDoctor runs all checks and prints results. Returns 1 when any check
// failed.
func doDoctor(ctx context.Context, in *interpreter, fix, verbose bool, stdout io.Writer) int {
	names := in.handler.Names()
	outcome := in.handler.Check(ctx)
	d := &doctor.Doctor{}
	search := doctor.NewSearchCheck(in.loaded, names.Config)
	if m, ok := in.handler.Marker(); ok {
		search.Restarted(m)
	}
	d.Register(search)
	d.Register(doctor.NewTempDirCheck(in.loaded.Merged.Restart.TempDir))
	d.Register(doctor.NewMarkerCheck(names.Marker))
	d.Register(doctor.NewSettingsCheck(names.Settings))
	d.Register(doctor.NewRestartCheck(extensionName, in.ExtensionLoaded(),
		outcome, in.handler.SkippedVersion(), names))

	r := d.Run(&doctor.CheckContext{FS: in.fs, Env: in.view, Verbose: verbose}, stdout, fix)
	doctor.PrintSummary(stdout, r)
	if !r.Healthy() {
		return 1
	}
	return 0
}
