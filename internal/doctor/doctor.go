package doctor

import (
	"fmt"
	"io"
	"strings"
)

// Report summarizes a doctor run.
type Report struct {
	Passed int
	Warned int
	Failed int
	// Fixed counts checks that --fix turned green. They also count as passed.
	Fixed int
	// Results holds every check result in registration order.
	Results []*CheckResult
}

// Healthy reports whether no check ended in StatusError. Warnings do not
// make a run unhealthy.
func (r *Report) Healthy() bool {
	return r.Failed == 0
}

// Doctor runs registered checks in order.
type Doctor struct {
	checks []Check
}

// Register appends c to the run list.
func (d *Doctor) Register(c Check) {
	d.checks = append(d.checks, c)
}

// Run executes every check and streams each result to w as it finishes.
// With fix set, a failing check that supports it is fixed and run again;
// a fix that errors leaves the first result in place with the error as
// its hint.
func (d *Doctor) Run(ctx *CheckContext, w io.Writer, fix bool) *Report {
	r := &Report{}
	for _, c := range d.checks {
		result := runOne(ctx, c, fix)
		printResult(w, result, ctx.Verbose)
		r.Results = append(r.Results, result)

		switch {
		case result.Fixed:
			r.Fixed++
			r.Passed++
		case result.Status == StatusOK:
			r.Passed++
		case result.Status == StatusWarning:
			r.Warned++
		default:
			r.Failed++
		}
	}
	return r
}

func runOne(ctx *CheckContext, c Check, fix bool) *CheckResult {
	result := c.Run(ctx)
	if !fix || result.Status == StatusOK || !c.CanFix() {
		return result
	}
	if err := c.Fix(ctx); err != nil {
		result.FixHint = fmt.Sprintf("fix failed: %v", err)
		return result
	}
	again := c.Run(ctx)
	again.Fixed = again.Status == StatusOK
	return again
}

var icons = map[CheckStatus]string{
	StatusOK:      "✓",
	StatusWarning: "⚠",
	StatusError:   "✗",
}

func printResult(w io.Writer, r *CheckResult, verbose bool) {
	var suffix string
	if r.Fixed {
		suffix = " (fixed)"
	}
	fmt.Fprintf(w, "  %s %s: %s%s\n", icons[r.Status], r.Name, r.Message, suffix) //nolint:errcheck // best-effort output
	if verbose {
		for _, d := range r.Details {
			fmt.Fprintf(w, "      %s\n", d) //nolint:errcheck // best-effort output
		}
	}
	if r.FixHint != "" && r.Status != StatusOK {
		fmt.Fprintf(w, "      hint: %s\n", r.FixHint) //nolint:errcheck // best-effort output
	}
}

// PrintSummary writes the closing count line, e.g. "3 passed, 1 warnings".
func PrintSummary(w io.Writer, r *Report) {
	counts := []struct {
		n     int
		label string
	}{
		{r.Passed, "passed"},
		{r.Warned, "warnings"},
		{r.Failed, "failed"},
		{r.Fixed, "fixed"},
	}
	var parts []string
	for _, c := range counts {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.label))
		}
	}
	if len(parts) == 0 {
		fmt.Fprintln(w, "\nNo checks ran.") //nolint:errcheck // best-effort output
		return
	}
	fmt.Fprintf(w, "\n%s\n", strings.Join(parts, ", ")) //nolint:errcheck // best-effort output
}
