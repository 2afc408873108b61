package main

import (
	"reflect"
	"testing"
)

func TestParseStartup(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		noConfig bool
		config   string
		mode     string
		rest     []string
	}{
		{"none", []string{"env"}, false, "", "", []string{"env"}},
		{"short n", []string{"-n", "env"}, true, "", "", []string{"env"}},
		{"long n", []string{"--no-config", "env"}, true, "", "", []string{"env"}},
		{"short c", []string{"-c", "/etc/inirun.toml", "config", "show"}, false, "/etc/inirun.toml", "", []string{"config", "show"}},
		{"c equals", []string{"--config=/etc", "env"}, false, "/etc", "", []string{"env"}},
		{"both", []string{"-n", "-c", "/tmp/x.toml", "env"}, true, "/tmp/x.toml", "", []string{"env"}},
		{"mode", []string{"--restart-mode", "persistent", "env"}, false, "", "persistent", []string{"env"}},
		{"stops at command", []string{"exec", "-n", "--", "ls"}, false, "", "", []string{"exec", "-n", "--", "ls"}},
		{"double dash", []string{"-n", "--", "env"}, true, "", "", []string{"env"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rest, err := parseStartup(tt.args)
			if err != nil {
				t.Fatalf("parseStartup(%q): %v", tt.args, err)
			}
			if s.NoConfig != tt.noConfig || s.ConfigPath != tt.config || s.restartMode != tt.mode {
				t.Errorf("startup = %+v", s)
			}
			if !reflect.DeepEqual(rest, tt.rest) {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestParseStartupHelpPassesThrough(t *testing.T) {
	args := []string{"--help"}
	_, rest, err := parseStartup(args)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rest, args) {
		t.Errorf("rest = %q, want %q", rest, args)
	}
}

func TestParseStartupErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--restart-mode", "sideways", "env"},
		{"-c"},
		{"--bogus", "env"},
	} {
		if _, _, err := parseStartup(args); err == nil {
			t.Errorf("parseStartup(%q) succeeded, want error", args)
		}
	}
}
