package process

import "context"

// Fake is a [Runner] for testing. It records every invocation and returns
// ExitCode and Err. OnRun, if set, runs during the call so a test can
// inspect the world as the child would see it.
type Fake struct {
	ExitCode int
	Err      error
	OnRun    func(argv, env []string)
	Calls    []Invocation
}

// Invocation is one recorded [Fake.Run] call.
type Invocation struct {
	Argv []string
	Env  []string
}

// Run records the call.
func (f *Fake) Run(_ context.Context, argv, env []string) (int, error) {
	f.Calls = append(f.Calls, Invocation{
		Argv: append([]string(nil), argv...),
		Env:  append([]string(nil), env...),
	})
	if f.OnRun != nil {
		f.OnRun(argv, env)
	}
	if f.Err != nil {
		return 1, f.Err
	}
	return f.ExitCode, nil
}

// EnvValue returns the value of key in the environment of call i.
func (f *Fake) EnvValue(i int, key string) (string, bool) {
	env := f.Calls[i].Env
	for j := len(env) - 1; j >= 0; j-- {
		kv := env[j]
		if len(kv) > len(key) && kv[len(key)] == '=' && kv[:len(key)] == key {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

var _ Runner = (*Fake)(nil)
