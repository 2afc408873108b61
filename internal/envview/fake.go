package envview

import "sort"

// Fake is an in-memory [View] for testing. It records mutating calls and
// can mirror them into a snapshot map the way [OS] does.
type Fake struct {
	Vars   map[string]string
	Mirror map[string]string // optional
	Errors map[string]error  // key → injected error for Set/Unset
	Calls  []Call
}

// Call records one Set or Unset.
type Call struct {
	Method string // "Set" or "Unset"
	Key    string
	Value  string
}

// NewFake returns a [Fake] seeded with vars (copied).
func NewFake(vars map[string]string) *Fake {
	f := &Fake{Vars: make(map[string]string), Errors: make(map[string]error)}
	for k, v := range vars {
		f.Vars[k] = v
	}
	return f
}

// Lookup returns the stored value.
func (f *Fake) Lookup(key string) (string, bool) {
	v, ok := f.Vars[key]
	return v, ok
}

// Set stores the value.
func (f *Fake) Set(key, value string) error {
	f.Calls = append(f.Calls, Call{Method: "Set", Key: key, Value: value})
	if err, ok := f.Errors[key]; ok {
		return err
	}
	f.Vars[key] = value
	if f.Mirror != nil {
		f.Mirror[key] = value
	}
	return nil
}

// Unset deletes the value.
func (f *Fake) Unset(key string) error {
	f.Calls = append(f.Calls, Call{Method: "Unset", Key: key})
	if err, ok := f.Errors[key]; ok {
		return err
	}
	delete(f.Vars, key)
	if f.Mirror != nil {
		delete(f.Mirror, key)
	}
	return nil
}

// Environ returns the stored variables sorted by key.
func (f *Fake) Environ() []string {
	keys := make([]string, 0, len(f.Vars))
	for k := range f.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+f.Vars[k])
	}
	return env
}
