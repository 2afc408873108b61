package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/docgen"
)

// newGenDocCmd writes the CLI reference from the live command tree and the
// startup option set. cmd/genschema runs it from the repository root.
func newGenDocCmd(stdout, stderr io.Writer, root *cobra.Command) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:    "gen-doc",
		Short:  "Generate the CLI reference",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				fmt.Fprintf(stderr, "inirun gen-doc: %v\n", err) //nolint:errcheck // best-effort stderr
				return errExit
			}
			if err := docgen.WriteCLIMarkdown(out, root, startupFlags(&startup{})); err != nil {
				fmt.Fprintf(stderr, "inirun gen-doc: %v\n", err) //nolint:errcheck // best-effort stderr
				return errExit
			}
			fmt.Fprintf(stdout, "Generated: %s\n", out) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", filepath.Join("docs", "reference", "cli.md"), "output file")
	return cmd
}
