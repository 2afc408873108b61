package restart

import (
	"reflect"
	"testing"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
)

func TestSettingsEncodeDecode(t *testing.T) {
	in := Settings{
		Mode:       "minimal",
		TempConfig: "/tmp/inirun-1.toml",
		Files:      []string{"/etc/inirun.toml", "/etc/inirun.d/10-debugger.toml"},
		Scanned:    true,
		Skipped:    "3.2.1",
	}
	s, err := EncodeSettings(in)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := DecodeSettings(s)
	if !ok {
		t.Fatalf("DecodeSettings(%q) failed", s)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestDecodeSettingsInvalid(t *testing.T) {
	for _, s := range []string{"", "{", "[1,2]", "not json"} {
		if _, ok := DecodeSettings(s); ok {
			t.Errorf("DecodeSettings(%q) ok, want invalid", s)
		}
	}
}

func restartedChildConfig(view envview.View, temp string) *ChildConfig {
	m, _ := DecodeMarker("internal|8.1.0|1|/etc/php/conf.d|*")
	return &ChildConfig{
		view:     view,
		names:    config.PHPEnvNames,
		marker:   m,
		settings: Settings{Mode: "minimal", TempConfig: temp},
		active:   true,
	}
}

func TestChildConfigUseOriginal(t *testing.T) {
	view := envview.NewFake(map[string]string{"PHP_INI_SCAN_DIR": "", "PHPRC": "/tmp/x.toml"})
	c := restartedChildConfig(view, "/tmp/x.toml")

	opts, err := c.UseOriginal()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 0 {
		t.Errorf("opts = %q, want none", opts)
	}
	if view.Vars["PHP_INI_SCAN_DIR"] != "/etc/php/conf.d" {
		t.Errorf("scan dir = %q", view.Vars["PHP_INI_SCAN_DIR"])
	}
	if _, ok := view.Vars["PHPRC"]; ok {
		t.Error("PHPRC should be unset")
	}
}

func TestChildConfigUseStandard(t *testing.T) {
	view := envview.NewFake(map[string]string{"PHP_INI_SCAN_DIR": "/etc/php/conf.d"})
	c := restartedChildConfig(view, "/tmp/x.toml")

	opts, err := c.UseStandard()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-n", "-c", "/tmp/x.toml"}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("opts = %q, want %q", opts, want)
	}
}

func TestChildConfigUsePersistent(t *testing.T) {
	view := envview.NewFake(map[string]string{"PHP_INI_SCAN_DIR": "/etc/php/conf.d"})
	c := restartedChildConfig(view, "/tmp/x.toml")

	opts, err := c.UsePersistent()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 0 {
		t.Errorf("opts = %q, want none", opts)
	}
	if got, ok := view.Vars["PHP_INI_SCAN_DIR"]; !ok || got != "" {
		t.Errorf("scan dir = %q (set=%v), want empty", got, ok)
	}
	if view.Vars["PHPRC"] != "/tmp/x.toml" {
		t.Errorf("PHPRC = %q", view.Vars["PHPRC"])
	}
}

func TestChildConfigInactive(t *testing.T) {
	view := envview.NewFake(map[string]string{"PHP_INI_SCAN_DIR": "/etc/php/conf.d"})
	c := &ChildConfig{view: view, names: config.PHPEnvNames}

	for name, fn := range map[string]func() ([]string, error){
		"UseOriginal":   c.UseOriginal,
		"UseStandard":   c.UseStandard,
		"UsePersistent": c.UsePersistent,
	} {
		opts, err := fn()
		if err != nil || len(opts) != 0 {
			t.Errorf("%s() = %q, %v; want no options", name, opts, err)
		}
	}
	if len(view.Calls) != 0 {
		t.Errorf("inactive ChildConfig touched the environment: %+v", view.Calls)
	}
}
