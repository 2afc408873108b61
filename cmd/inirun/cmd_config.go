package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/config"
)

func newConfigCmd(in *interpreter, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the loaded configuration",
		Long: `Inspect the configuration inirun loaded at startup.

Use "files" to list the files in load order with the bundle revision,
"show" to dump the merged result as TOML and "origins" to see which
file set each key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigFilesCmd(in, stdout))
	cmd.AddCommand(newConfigShowCmd(in, stdout, stderr))
	cmd.AddCommand(newConfigOriginsCmd(in, stdout))
	return cmd
}

func newConfigFilesCmd(in *interpreter, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List loaded configuration files",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doConfigFiles(in, stdout)
			return nil
		},
	}
}

func doConfigFiles(in *interpreter, stdout io.Writer) {
	files := in.loaded.Files()
	if len(files) == 0 {
		fmt.Fprintln(stdout, "No configuration files.") //nolint:errcheck // best-effort stdout
		return
	}
	for _, f := range files {
		fmt.Fprintln(stdout, f) //nolint:errcheck // best-effort stdout
	}
	fmt.Fprintf(stdout, "revision: %s\n", config.Revision(in.fs, files)) //nolint:errcheck // best-effort stdout
}

func newConfigShowCmd(in *interpreter, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Dump the merged configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := in.loaded.Merged.Marshal()
			if err != nil {
				fmt.Fprintf(stderr, "inirun config show: %v\n", err) //nolint:errcheck // best-effort stderr
				return errExit
			}
			stdout.Write(data) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
}

func newConfigOriginsCmd(in *interpreter, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "origins",
		Short: "Show which file set each configuration key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			doConfigOrigins(in, stdout)
			return nil
		},
	}
}

func doConfigOrigins(in *interpreter, stdout io.Writer) {
	values := in.loaded.Merged.Flatten()
	if len(values) == 0 {
		fmt.Fprintln(stdout, "No configuration keys.") //nolint:errcheck // best-effort stdout
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tFILE") //nolint:errcheck // best-effort stdout
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, values[k], in.loaded.Provenance.Keys[k]) //nolint:errcheck // best-effort stdout
	}
	tw.Flush() //nolint:errcheck // best-effort stdout

	if o := in.loaded.Provenance.Overrides; len(o) > 0 {
		fmt.Fprintln(stdout, "\nOverridden:") //nolint:errcheck // best-effort stdout
		for _, line := range o {
			fmt.Fprintf(stdout, "  %s\n", line) //nolint:errcheck // best-effort stdout
		}
	}
}
