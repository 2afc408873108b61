// Package envview gives the restart machinery an explicit handle on
// environment variables instead of reaching for the process environment.
//
// Production code uses [OS], which delegates to the os package and keeps
// an optional snapshot map in sync (the copy of the environment a host
// captured at startup and serves to its own code). Tests use [Fake].
package envview

import "os"

// View reads and writes environment variables.
type View interface {
	// Lookup returns the value of key and whether it is set.
	Lookup(key string) (string, bool)

	// Set sets key to value. An empty value is still "set".
	Set(key, value string) error

	// Unset removes key.
	Unset(key string) error

	// Environ returns the environment as "key=value" pairs.
	Environ() []string
}

// Var is a variable's value with "unset" kept distinct from the empty
// string.
type Var struct {
	Value string
	Set   bool
}

// Unset is the Var of a variable that is not present.
var Unset = Var{}

// Value returns a set Var holding s.
func Value(s string) Var {
	return Var{Value: s, Set: true}
}

// String renders the Var for humans: the value, or "(unset)".
func (v Var) String() string {
	if !v.Set {
		return "(unset)"
	}
	return v.Value
}

// Get reads key from view as a Var.
func Get(view View, key string) Var {
	s, ok := view.Lookup(key)
	if !ok {
		return Unset
	}
	return Value(s)
}

// Apply writes v to key: Set when v is set, Unset otherwise.
func Apply(view View, key string, v Var) error {
	if v.Set {
		return view.Set(key, v.Value)
	}
	return view.Unset(key)
}

// OS implements [View] on the process environment.
type OS struct {
	// Mirror, when non-nil, receives every Set and loses every Unset key,
	// so a startup snapshot the host hands out stays consistent.
	Mirror map[string]string
}

// NewOS returns an [OS] view. mirror may be nil.
func NewOS(mirror map[string]string) *OS {
	return &OS{Mirror: mirror}
}

// Lookup delegates to [os.LookupEnv].
func (o *OS) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Set delegates to [os.Setenv] and updates the mirror.
func (o *OS) Set(key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return err
	}
	if o.Mirror != nil {
		o.Mirror[key] = value
	}
	return nil
}

// Unset delegates to [os.Unsetenv] and updates the mirror.
func (o *OS) Unset(key string) error {
	if err := os.Unsetenv(key); err != nil {
		return err
	}
	if o.Mirror != nil {
		delete(o.Mirror, key)
	}
	return nil
}

// Environ delegates to [os.Environ].
func (o *OS) Environ() []string {
	return os.Environ()
}

// Snapshot returns the current process environment as a map.
func Snapshot() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := cutEnv(kv)
		if ok {
			m[k] = v
		}
	}
	return m
}

// cutEnv splits "key=value". Windows keeps per-drive entries like
// "=C:=C:\", so a leading '=' belongs to the key.
func cutEnv(kv string) (string, string, bool) {
	for i := 1; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}

var (
	_ View = (*OS)(nil)
	_ View = (*Fake)(nil)
)
