//go:build windows

package process

import (
	"os"
	"os/exec"
)

func forwardSignals() []os.Signal {
	return nil
}

// Console control events reach every process attached to the console, so
// os.Interrupt is only caught to keep the parent alive until the child exits.
func groupSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

func signalExitCode(*exec.ExitError) int {
	return 1
}
