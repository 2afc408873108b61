package main

import (
	"fmt"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/fsys"
	"github.com/steveyegge/inirun/internal/restart"
)

const (
	envPrefix = "INIRUN"
	eventsEnv = "INIRUN_EVENTS"

	// extensionName is the extension inirun restarts without.
	extensionName   = "debugger"
	debuggerVersion = "1.4.0"
)

var envNames = config.InirunEnvNames

// interpreter is a booted inirun: the configuration it found at startup
// and the environment it serves to commands. It implements restart.Host.
type interpreter struct {
	fs       fsys.FS
	view     envview.View
	snapshot map[string]string // startup copy of the environment, kept in sync by view
	opts     startup
	loaded   *config.Loaded
	handler  *restart.Handler
}

// boot runs the configuration search.
func boot(fs fsys.FS, view envview.View, snapshot map[string]string, opts startup) (*interpreter, error) {
	loaded, err := config.Load(fs, view, envNames, opts.StartupOptions)
	if err != nil {
		return nil, err
	}
	return &interpreter{
		fs:       fs,
		view:     view,
		snapshot: snapshot,
		opts:     opts,
		loaded:   loaded,
	}, nil
}

// ExtensionLoaded reports whether the configuration switched the debugger on.
func (in *interpreter) ExtensionLoaded() bool {
	return in.loaded.Merged.ExtensionEnabled(extensionName)
}

// Version is the inirun version.
func (in *interpreter) Version() string { return version }

// Search returns the search state captured by boot.
func (in *interpreter) Search() config.SearchState { return in.loaded.Search }

// TempConfig is the merged configuration with the debugger off.
func (in *interpreter) TempConfig() ([]byte, error) {
	return config.MinimalConfig(in.loaded, extensionName)
}

// Files lists the loaded configuration files.
func (in *interpreter) Files() []string { return in.loaded.Files() }

// ExtensionVersion is the debugger version.
func (in *interpreter) ExtensionVersion() string { return debuggerVersion }

// restartMode resolves the mode: --restart-mode, then [restart] mode.
func (in *interpreter) restartMode() (restart.Mode, error) {
	name := in.opts.restartMode
	if name == "" {
		name = in.loaded.Merged.Restart.Mode
	}
	mode, err := restart.ParseMode(name)
	if err != nil {
		return restart.ModeMinimal, fmt.Errorf("[restart] mode: %w", err)
	}
	return mode, nil
}

// debuggerStatus describes the extension for humans.
func (in *interpreter) debuggerStatus() string {
	switch {
	case in.ExtensionLoaded():
		return fmt.Sprintf("%s %s loaded", extensionName, debuggerVersion)
	case in.handler != nil && in.handler.SkippedVersion() != "":
		return fmt.Sprintf("%s %s skipped by restart", extensionName, in.handler.SkippedVersion())
	default:
		return extensionName + " not loaded"
	}
}

var _ restart.Host = (*interpreter)(nil)
