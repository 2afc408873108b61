package config

import (
	"github.com/steveyegge/inirun/internal/envview"
)

// EnvNames names the two variables that steer the configuration search.
type EnvNames struct {
	ScanDir string // directory list scanned for additional fragments
	Primary string // primary config file, or a directory holding it
}

// PHPEnvNames are the variable names PHP itself uses. They are the
// default so a marker can cross into tools that speak the original
// protocol.
var PHPEnvNames = EnvNames{ScanDir: "PHP_INI_SCAN_DIR", Primary: "PHPRC"}

// InirunEnvNames are the variables inirun itself reads.
var InirunEnvNames = EnvNames{ScanDir: "INIRUN_SCAN_DIR", Primary: "INIRUNRC"}

// SearchState is the configuration search environment as it was when the
// process started. It is captured once and never modified.
type SearchState struct {
	ScanDir      envview.Var
	Primary      envview.Var
	ScannedFiles bool // at least one fragment was loaded from the scan directory
}

// CaptureSearchState reads both search variables from view.
func CaptureSearchState(view envview.View, names EnvNames, scannedFiles bool) SearchState {
	return SearchState{
		ScanDir:      envview.Get(view, names.ScanDir),
		Primary:      envview.Get(view, names.Primary),
		ScannedFiles: scannedFiles,
	}
}
