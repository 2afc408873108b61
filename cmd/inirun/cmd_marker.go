package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/restart"
)

func newMarkerCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Encode and decode restart markers",
		Long: `Encode and decode the value of the restart marker variable:

  internal|<version>|<1 or 0>|<scan dir or *>|<primary or *>

"*" stands for a variable that was unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newMarkerEncodeCmd(stdout))
	cmd.AddCommand(newMarkerDecodeCmd(stdout, stderr))
	return cmd
}

func newMarkerEncodeCmd(stdout io.Writer) *cobra.Command {
	var ver, scanDir, primary string
	var scanned bool
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the marker for a search state",
		Long: `Print the marker for a search state. A variable whose flag is not
given is encoded as unset; pass an empty value for "set but empty".`,
		Example: `  inirun marker encode --version 8.1.0 --scanned --scan-dir /etc/php/conf.d`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := config.SearchState{ScannedFiles: scanned}
			if cmd.Flags().Changed("scan-dir") {
				state.ScanDir = envview.Value(scanDir)
			}
			if cmd.Flags().Changed("primary") {
				state.Primary = envview.Value(primary)
			}
			fmt.Fprintln(stdout, restart.EncodeMarker(state, ver)) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
	cmd.Flags().StringVar(&ver, "version", version, "interpreter version")
	cmd.Flags().StringVar(&scanDir, "scan-dir", "", "original scan directory value")
	cmd.Flags().StringVar(&primary, "primary", "", "original primary config value")
	cmd.Flags().BoolVar(&scanned, "scanned", false, "fragments were loaded from the scan directory")
	return cmd
}

func newMarkerDecodeCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <marker>",
		Short: "Print the search state recorded in a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			m, ok := restart.DecodeMarker(args[0])
			if !ok {
				fmt.Fprintf(stderr, "inirun marker decode: invalid marker %q\n", args[0]) //nolint:errcheck // best-effort stderr
				return errExit
			}
			fmt.Fprintf(stdout, "version: %s\n", m.Version)            //nolint:errcheck // best-effort stdout
			fmt.Fprintf(stdout, "scanned: %t\n", m.State.ScannedFiles) //nolint:errcheck // best-effort stdout
			fmt.Fprintf(stdout, "scan_dir: %s\n", m.State.ScanDir)     //nolint:errcheck // best-effort stdout
			fmt.Fprintf(stdout, "primary: %s\n", m.State.Primary)      //nolint:errcheck // best-effort stdout
			return nil
		},
	}
}
