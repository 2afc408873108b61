package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/envview"
)

func newEnvCmd(in *interpreter, stdout io.Writer) *cobra.Command {
	var fromSnapshot bool
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the configuration search variables and restart state",
		Long: `Show the configuration search variables as this process sees them,
the restart marker, and whether this process is a restarted child.

A restarted child puts the search variables back before any command
runs, so the values match what the original process started with.
Use --snapshot to read the startup copy of the environment instead of
the live one; both must agree.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doEnv(in, fromSnapshot, stdout)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromSnapshot, "snapshot", false, "read the startup environment snapshot")
	return cmd
}

func doEnv(in *interpreter, fromSnapshot bool, stdout io.Writer) {
	get := func(key string) envview.Var { return envview.Get(in.view, key) }
	if fromSnapshot {
		get = func(key string) envview.Var {
			if v, ok := in.snapshot[key]; ok {
				return envview.Value(v)
			}
			return envview.Unset
		}
	}
	names := in.handler.Names()
	for _, key := range []string{names.Config.ScanDir, names.Config.Primary, names.Marker} {
		fmt.Fprintf(stdout, "%s=%s\n", key, get(key)) //nolint:errcheck // best-effort stdout
	}
	fmt.Fprintf(stdout, "restart: %s\n", in.handler.State()) //nolint:errcheck // best-effort stdout
}
