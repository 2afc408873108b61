//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// forwardSignals are relayed to the child. They are usually sent to the
// parent alone, by kill or a service manager.
func forwardSignals() []os.Signal {
	return []os.Signal{syscall.SIGTERM, syscall.SIGHUP}
}

// groupSignals come from the terminal, which delivers them to the whole
// foreground process group, child included. The parent only catches them
// so it outlives the child; relaying would deliver them twice.
func groupSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGQUIT}
}

// signalExitCode follows the shell convention of 128+signal.
func signalExitCode(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}
