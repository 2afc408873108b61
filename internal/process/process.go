// Package process runs the restarted child: it starts argv with env,
// relays stdio, waits and reports the exit code.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
)

// Runner starts a child process and blocks until it exits.
type Runner interface {
	// Run starts argv[0] with argv as its argument vector (argv[0] is
	// passed through unchanged) and env as its whole environment. It
	// returns the child's exit code. A non-nil error means the child
	// could not be started or waited for.
	Run(ctx context.Context, argv, env []string) (int, error)
}

// Exec implements [Runner] with os/exec. Stdio defaults to the parent's.
type Exec struct {
	// Path overrides the binary that is executed; argv[0] is still what
	// the child sees as its name. Empty means argv[0] is resolved via PATH.
	Path string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts the child and waits for it. Termination signals sent to the
// parent are forwarded; terminal signals already reach the child through
// its process group and are only swallowed, so the child decides how to
// shut down.
func (e *Exec) Run(ctx context.Context, argv, env []string) (int, error) {
	if len(argv) == 0 {
		return 1, errors.New("empty argv")
	}
	path := e.Path
	if path == "" {
		resolved, err := exec.LookPath(argv[0])
		if err != nil {
			return 1, err
		}
		path = resolved
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args = append([]string{argv[0]}, argv[1:]...)
	cmd.Env = env
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if e.Stdin != nil {
		cmd.Stdin = e.Stdin
	}
	if e.Stdout != nil {
		cmd.Stdout = e.Stdout
	}
	if e.Stderr != nil {
		cmd.Stderr = e.Stderr
	}

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, append(forwardSignals(), groupSignals()...)...)
	defer signal.Stop(sigCh)

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("starting %s: %w", path, err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	for {
		select {
		case sig := <-sigCh:
			if shouldForward(sig) {
				_ = cmd.Process.Signal(sig)
			}
		case err := <-waitCh:
			return ExitCode(err)
		}
	}
}

// shouldForward reports whether sig is relayed to the child.
func shouldForward(sig os.Signal) bool {
	for _, s := range forwardSignals() {
		if s == sig {
			return true
		}
	}
	return false
}

// ExitCode maps the error from [exec.Cmd.Wait] to an exit code. An
// *exec.ExitError is data, not a failure: its code is returned with a nil
// error. A child killed by a signal reports -1 from ExitCode; that is
// mapped to 128+signal on unix (see signalExitCode).
func ExitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		return signalExitCode(exitErr), nil
	}
	return 1, err
}

var _ Runner = (*Exec)(nil)
