package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/process"
)

func newExecCmd(in *interpreter, stdout, stderr io.Writer) *cobra.Command {
	var childConfig string
	cmd := &cobra.Command{
		Use:   "exec [--child-config mode] -- <command> [args...]",
		Short: "Run a command with the configured environment",
		Long: `Run a command with the current environment plus the [env] table,
and exit with its exit code.

In a restarted process, --child-config decides how a nested inirun
finds its configuration:

  original     restore the original search and load the debugger again
  standard     pass -n -c <temp config> after the command name
  persistent   point the search variables at the temp config`,
		Example: `  inirun exec -- make test
  inirun exec --child-config standard -- inirun version`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := doExec(cmd.Context(), in, childConfig, args, &process.Exec{Stdout: stdout, Stderr: stderr})
			if err != nil {
				fmt.Fprintf(stderr, "inirun exec: %v\n", err) //nolint:errcheck // best-effort stderr
				return errExit
			}
			if code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&childConfig, "child-config", "", "original, standard or persistent")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// doExec applies [env], picks the nested interpreter options and runs
// argv. Options go right after argv[0].
func doExec(ctx context.Context, in *interpreter, childConfig string, argv []string, runner process.Runner) (int, error) {
	opts, err := childOptions(in, childConfig)
	if err != nil {
		return 1, err
	}
	keys := make([]string, 0, len(in.loaded.Merged.Env))
	for k := range in.loaded.Merged.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := envview.Apply(in.view, k, envview.Value(in.loaded.Merged.Env[k])); err != nil {
			return 1, fmt.Errorf("setting %s: %w", k, err)
		}
	}

	cmdline := append([]string{argv[0]}, opts...)
	cmdline = append(cmdline, argv[1:]...)
	return runner.Run(ctx, cmdline, in.view.Environ())
}

func childOptions(in *interpreter, mode string) ([]string, error) {
	cc := in.handler.ChildConfig()
	switch mode {
	case "":
		return nil, nil
	case "original":
		return cc.UseOriginal()
	case "standard":
		return cc.UseStandard()
	case "persistent":
		return cc.UsePersistent()
	default:
		return nil, fmt.Errorf("unknown --child-config %q (want original, standard or persistent)", mode)
	}
}
