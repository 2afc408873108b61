// Package doctor diagnoses the configuration search and restart setup of
// an inirun process. Checks run in order, stream one line each, and may
// offer a fix.
package doctor

import (
	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/fsys"
)

// CheckStatus is the outcome of a check.
type CheckStatus int

// Check outcomes, from best to worst.
const (
	StatusOK CheckStatus = iota
	StatusWarning
	StatusError
)

// Check is one diagnostic.
type Check interface {
	// Name is the short label printed before the message, e.g. "temp-dir".
	Name() string
	Run(ctx *CheckContext) *CheckResult
	CanFix() bool
	// Fix is called only under --fix, when CanFix is true and Run did not
	// return StatusOK. Run is called again afterwards.
	Fix(ctx *CheckContext) error
}

// CheckContext is what every check sees.
type CheckContext struct {
	FS      fsys.FS
	Env     envview.View
	Verbose bool
}

// CheckResult is one line of doctor output plus its extras.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	// Details are printed under the line in verbose mode.
	Details []string
	// FixHint is printed when the status is not OK.
	FixHint string
	Fixed   bool
}
