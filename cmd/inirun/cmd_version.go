package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=...". version also goes into the
// restart marker, so a child built from a different binary is detectable.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newVersionCmd(in *interpreter, stdout io.Writer) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print inirun version and debugger status",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(stdout, version) //nolint:errcheck // best-effort stdout
				return
			}
			fmt.Fprintf(stdout, "inirun %s (commit: %s, built: %s)\n", version, commit, date) //nolint:errcheck // best-effort stdout
			fmt.Fprintln(stdout, in.debuggerStatus())                                         //nolint:errcheck // best-effort stdout
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	return cmd
}
