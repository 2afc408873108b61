package main

import (
	"errors"
	"io"

	"github.com/spf13/pflag"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/restart"
)

// startup holds the interpreter options that precede the command name.
// They change how configuration is found, so they are parsed before the
// restart check and never reach the command tree.
type startup struct {
	config.StartupOptions
	restartMode string // "" means the [restart] mode from config
}

// parseStartup splits args into startup options and the remaining command
// line. Parsing stops at the first non-flag argument or "--". A help flag
// is handed to the command tree untouched.
func parseStartup(args []string) (startup, []string, error) {
	var s startup
	fs := startupFlags(&s)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return startup{}, args, nil
		}
		return startup{}, nil, err
	}
	if s.restartMode != "" {
		if _, err := restart.ParseMode(s.restartMode); err != nil {
			return startup{}, nil, err
		}
	}
	return s, fs.Args(), nil
}

// startupFlags binds the startup options to s. gen-doc documents the same
// set.
func startupFlags(s *startup) *pflag.FlagSet {
	fs := pflag.NewFlagSet("inirun", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.BoolVarP(&s.NoConfig, "no-config", "n", false, "do not search for configuration files")
	fs.StringVarP(&s.ConfigPath, "config", "c", "", "load this configuration file or directory")
	fs.StringVar(&s.restartMode, "restart-mode", "", "restart mode: minimal, persistent or original")
	return fs
}
