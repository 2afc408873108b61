package restart

import "fmt"

// Mode selects how the restarted interpreter finds its configuration.
type Mode int

const (
	// ModeMinimal disables the configuration search (-n) and loads only
	// the generated temporary file (-c). This is the default.
	ModeMinimal Mode = iota
	// ModePersistent points the live search variables at the temporary
	// file instead of passing flags, so the override survives an
	// exec-style replacement that drops argv.
	ModePersistent
	// ModeOriginal restarts with the configuration untouched.
	ModeOriginal
)

// String returns the mode's config spelling.
func (m Mode) String() string {
	switch m {
	case ModeMinimal:
		return "minimal"
	case ModePersistent:
		return "persistent"
	case ModeOriginal:
		return "original"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. The empty string is [ModeMinimal];
// "standard" is accepted as an alias for it.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "minimal", "standard":
		return ModeMinimal, nil
	case "persistent":
		return ModePersistent, nil
	case "original":
		return ModeOriginal, nil
	default:
		return ModeMinimal, fmt.Errorf("unknown restart mode %q (want minimal, persistent or original)", s)
	}
}

// Strategy computes the command-line options for a restart. It is built
// in two phases: NewStrategy fixes the shape, Bind supplies the temporary
// file path once the file exists. Strategies are values; Bind returns a
// copy.
type Strategy struct {
	mode       Mode
	tempConfig string
}

// NewStrategy selects the variant for mode.
func NewStrategy(mode Mode) Strategy {
	return Strategy{mode: mode}
}

// Mode returns the selected mode.
func (s Strategy) Mode() Mode { return s.mode }

// TempConfig returns the bound temporary file path, if any.
func (s Strategy) TempConfig() string { return s.tempConfig }

// NeedsTempConfig reports whether a temporary config file must be
// created before the child is spawned.
func (s Strategy) NeedsTempConfig() bool {
	return s.mode == ModeMinimal || s.mode == ModePersistent
}

// Bind returns s with the temporary file path bound.
func (s Strategy) Bind(path string) Strategy {
	s.tempConfig = path
	return s
}

// Options returns the interpreter options placed between argv[0] and the
// original arguments: exactly ["-n", "-c", path] for the minimal mode and
// nothing for the others.
func (s Strategy) Options() []string {
	if s.mode == ModeMinimal {
		return []string{"-n", "-c", s.tempConfig}
	}
	return []string{}
}
