package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Provenance tracks which file set each configuration key during the
// search. Keys are dotted: "extensions.debugger", "settings.memory_limit",
// "restart.mode".
type Provenance struct {
	// Keys maps a dotted key to the last file that set it.
	Keys map[string]string
	// Overrides records, in load order, each key a later file changed.
	Overrides []string
}

func newProvenance() *Provenance {
	return &Provenance{Keys: make(map[string]string)}
}

// track records the keys f sets. before is the merged state f is about
// to be merged into.
func (p *Provenance) track(before *File, f *File, path string) {
	old := before.Flatten()
	set := f.Flatten()
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if prev, ok := p.Keys[k]; ok && old[k] != set[k] {
			p.Overrides = append(p.Overrides, fmt.Sprintf("%s: %s overrides %s", k, path, prev))
		}
		p.Keys[k] = path
	}
}

// Flatten returns every key f sets as a dotted key with its value
// rendered as a string. Zero [restart] fields are not set.
func (f *File) Flatten() map[string]string {
	out := make(map[string]string)
	for k, v := range f.Extensions {
		out["extensions."+k] = strconv.FormatBool(v)
	}
	for k, v := range f.Settings {
		out["settings."+k] = v
	}
	for k, v := range f.Env {
		out["env."+k] = v
	}
	if f.Restart.Mode != "" {
		out["restart.mode"] = f.Restart.Mode
	}
	if f.Restart.TempDir != "" {
		out["restart.temp_dir"] = f.Restart.TempDir
	}
	if f.Restart.Disabled {
		out["restart.disabled"] = "true"
	}
	return out
}
