package doctor

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
	"github.com/steveyegge/inirun/internal/fsys"
	"github.com/steveyegge/inirun/internal/restart"
)

var names = restart.NewNames("INIRUN", "debugger", config.InirunEnvNames)

func newContext(vars map[string]string) (*CheckContext, *fsys.Fake) {
	fs := fsys.NewFake()
	return &CheckContext{FS: fs, Env: envview.NewFake(vars)}, fs
}

// --- SearchCheck ---

func TestSearchCheck_AllDirsPresent(t *testing.T) {
	ctx, fs := newContext(nil)
	fs.Dirs["/etc/inirun.d"] = true
	loaded := &config.Loaded{
		Search:      config.SearchState{ScanDir: envview.Value("/etc/inirun.d")},
		PrimaryFile: "/etc/inirun.toml",
		Scanned:     []string{"/etc/inirun.d/10-a.toml"},
	}

	r := NewSearchCheck(loaded, config.InirunEnvNames).Run(ctx)
	if r.Status != StatusOK {
		t.Fatalf("Status = %v, want OK: %s", r.Status, r.Message)
	}
	if r.Message != "2 configuration files loaded" {
		t.Errorf("Message = %q", r.Message)
	}
	if len(r.Details) != 2 || r.Details[0] != "/etc/inirun.toml" {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestSearchCheck_MissingDir(t *testing.T) {
	ctx, fs := newContext(nil)
	fs.Dirs["/etc/inirun.d"] = true
	loaded := &config.Loaded{
		Search: config.SearchState{ScanDir: envview.Value("/etc/inirun.d" + string(os.PathListSeparator) + "/opt/gone")},
	}

	r := NewSearchCheck(loaded, config.InirunEnvNames).Run(ctx)
	if r.Status != StatusWarning {
		t.Fatalf("Status = %v, want Warning", r.Status)
	}
	if !strings.Contains(r.Message, "INIRUN_SCAN_DIR") || !strings.Contains(r.Message, "/opt/gone") {
		t.Errorf("Message = %q", r.Message)
	}
	if strings.Contains(r.Message, "/etc/inirun.d") {
		t.Errorf("existing dir reported missing: %q", r.Message)
	}
}

func TestSearchCheck_RestartedUsesMarker(t *testing.T) {
	ctx, _ := newContext(nil)
	loaded := &config.Loaded{
		Search:      config.SearchState{ScanDir: envview.Value(""), Primary: envview.Value("/tmp/inirun-1.toml")},
		PrimaryFile: "/tmp/inirun-1.toml",
	}
	m := restart.Marker{Version: "dev", State: config.SearchState{ScanDir: envview.Value("/opt/gone")}}

	r := NewSearchCheck(loaded, config.InirunEnvNames).Restarted(m).Run(ctx)
	if r.Status != StatusWarning || !strings.Contains(r.Message, "/opt/gone") {
		t.Errorf("result = %+v, want warning about /opt/gone", r)
	}
}

func TestSearchCheck_UnsetScanDir(t *testing.T) {
	ctx, _ := newContext(nil)
	r := NewSearchCheck(&config.Loaded{}, config.InirunEnvNames).Run(ctx)
	if r.Status != StatusOK || r.Message != "0 configuration files loaded" {
		t.Errorf("result = %+v", r)
	}
}

// --- TempDirCheck ---

func TestTempDirCheck_Writable(t *testing.T) {
	ctx, fs := newContext(nil)
	fs.Dirs["/var/tmp/inirun"] = true

	r := NewTempDirCheck("/var/tmp/inirun").Run(ctx)
	if r.Status != StatusOK {
		t.Fatalf("Status = %v: %s", r.Status, r.Message)
	}
	if len(fs.Files) != 0 {
		t.Errorf("probe file left behind: %v", fs.Files)
	}
}

func TestTempDirCheck_MissingThenFixed(t *testing.T) {
	ctx, fs := newContext(nil)
	c := NewTempDirCheck("/var/tmp/inirun")

	if r := c.Run(ctx); r.Status != StatusError || !strings.Contains(r.Message, "restarts will be abandoned") {
		t.Fatalf("result = %+v", r)
	}
	if !c.CanFix() {
		t.Fatal("CanFix() = false")
	}
	if err := c.Fix(ctx); err != nil {
		t.Fatal(err)
	}
	if !fs.Dirs["/var/tmp/inirun"] {
		t.Error("Fix did not create the directory")
	}
	if r := c.Run(ctx); r.Status != StatusOK {
		t.Errorf("after fix: %+v", r)
	}
}

func TestTempDirCheck_Unusable(t *testing.T) {
	ctx, fs := newContext(nil)
	fs.Dirs["/ro"] = true
	fs.Errors["/ro"] = errors.New("permission denied")

	r := NewTempDirCheck("/ro").Run(ctx)
	if r.Status != StatusError {
		t.Fatalf("Status = %v, want Error", r.Status)
	}
}

func TestTempDirCheck_DefaultsToOSTempDir(t *testing.T) {
	ctx, fs := newContext(nil)
	fs.Dirs[os.TempDir()] = true
	r := NewTempDirCheck("").Run(ctx)
	if r.Status != StatusOK || !strings.HasPrefix(r.Message, os.TempDir()) {
		t.Errorf("result = %+v", r)
	}
}

// --- MarkerCheck ---

func TestMarkerCheck(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		status CheckStatus
		msg    string
	}{
		{"unset", nil, StatusOK, "INIRUN_ALLOW_DEBUGGER not set"},
		{"valid", map[string]string{"INIRUN_ALLOW_DEBUGGER": "internal|1.2.3|1|/etc/inirun.d|*"}, StatusOK, "set by inirun 1.2.3"},
		{"malformed", map[string]string{"INIRUN_ALLOW_DEBUGGER": "spoofed|1|1|*|*"}, StatusWarning, "INIRUN_ALLOW_DEBUGGER is malformed and will be ignored"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newContext(tt.vars)
			r := NewMarkerCheck(names.Marker).Run(ctx)
			if r.Status != tt.status || r.Message != tt.msg {
				t.Errorf("result = %v %q, want %v %q", r.Status, r.Message, tt.status, tt.msg)
			}
		})
	}
}

func TestMarkerCheck_Details(t *testing.T) {
	ctx, _ := newContext(map[string]string{"INIRUN_ALLOW_DEBUGGER": "internal|1.2.3|1|/etc/inirun.d|*"})
	r := NewMarkerCheck(names.Marker).Run(ctx)
	want := []string{"scan_dir: /etc/inirun.d", "primary: (unset)"}
	if len(r.Details) != 2 || r.Details[0] != want[0] || r.Details[1] != want[1] {
		t.Errorf("Details = %q, want %q", r.Details, want)
	}
}

// --- SettingsCheck ---

func TestSettingsCheck(t *testing.T) {
	valid, err := restart.EncodeSettings(restart.Settings{Mode: "minimal", TempConfig: "/tmp/inirun-1.toml"})
	if err != nil {
		t.Fatal(err)
	}
	original, err := restart.EncodeSettings(restart.Settings{Mode: "original"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		value   string
		present bool // temp config exists
		status  CheckStatus
		msg     string
	}{
		{"valid", valid, true, StatusOK, "minimal mode, temporary config /tmp/inirun-1.toml"},
		{"temp gone", valid, false, StatusWarning, "minimal mode, but /tmp/inirun-1.toml is gone"},
		{"original", original, false, StatusOK, "original mode"},
		{"garbage", "{not json", false, StatusWarning, "INIRUN_RESTART_SETTINGS is not valid JSON; nested interpreters get no options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, fs := newContext(map[string]string{names.Settings: tt.value})
			if tt.present {
				fs.Files["/tmp/inirun-1.toml"] = []byte("")
			}
			r := NewSettingsCheck(names.Settings).Run(ctx)
			if r.Status != tt.status || r.Message != tt.msg {
				t.Errorf("result = %v %q, want %v %q", r.Status, r.Message, tt.status, tt.msg)
			}
		})
	}
}

func TestSettingsCheck_Unset(t *testing.T) {
	ctx, _ := newContext(nil)
	if r := NewSettingsCheck(names.Settings).Run(ctx); r.Status != StatusOK {
		t.Errorf("result = %+v", r)
	}
}

// --- RestartCheck ---

func TestRestartCheck(t *testing.T) {
	tests := []struct {
		name    string
		loaded  bool
		out     restart.Outcome
		skipped string
		status  CheckStatus
		msg     string
	}{
		{"restarted", false, restart.Outcome{State: restart.StateRestarted}, "1.4.0", StatusOK, "restarted without debugger 1.4.0"},
		{"restarted original", true, restart.Outcome{State: restart.StateRestarted}, "", StatusOK, "restarted with the original configuration (debugger loaded: true)"},
		{"not loaded", false, restart.Outcome{State: restart.StateFresh}, "", StatusOK, "debugger not loaded"},
		{"abandoned", true, restart.Outcome{State: restart.StateFresh, Err: errors.New("disk full")}, "", StatusError, "restart abandoned, debugger stays loaded: disk full"},
		{"switched off", true, restart.Outcome{State: restart.StateFresh}, "", StatusWarning, "debugger loaded and restarts are switched off"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRestartCheck("debugger", tt.loaded, tt.out, tt.skipped, names).Run(&CheckContext{})
			if r.Status != tt.status || r.Message != tt.msg {
				t.Errorf("result = %v %q, want %v %q", r.Status, r.Message, tt.status, tt.msg)
			}
		})
	}
}

func TestRestartCheck_Hint(t *testing.T) {
	r := NewRestartCheck("debugger", true, restart.Outcome{}, "", names).Run(&CheckContext{})
	if !strings.Contains(r.FixHint, "INIRUN_NO_RESTART") {
		t.Errorf("FixHint = %q", r.FixHint)
	}
}
