package restart

import (
	"errors"
	"testing"

	"github.com/steveyegge/inirun/internal/config"
	"github.com/steveyegge/inirun/internal/envview"
)

func TestMarkerRoundTrip(t *testing.T) {
	vars := []envview.Var{
		envview.Unset,
		envview.Value(""),
		envview.Value("/etc/php/conf.d"),
		envview.Value("/opt/a:/opt/b"),
		envview.Value("C:\\php\\php.ini"),
	}
	for _, scan := range vars {
		for _, primary := range vars {
			for _, scanned := range []bool{true, false} {
				state := config.SearchState{ScanDir: scan, Primary: primary, ScannedFiles: scanned}
				encoded := EncodeMarker(state, "8.1.0")
				m, ok := DecodeMarker(encoded)
				if !ok {
					t.Errorf("DecodeMarker(%q) invalid", encoded)
					continue
				}
				if m.State != state || m.Version != "8.1.0" {
					t.Errorf("round trip of %+v = %+v (%q)", state, m, encoded)
				}
			}
		}
	}
}

func TestEncodeMarkerScenario(t *testing.T) {
	state := config.SearchState{
		ScanDir:      envview.Value("/etc/php/conf.d"),
		Primary:      envview.Unset,
		ScannedFiles: true,
	}
	got := EncodeMarker(state, "8.1.0")
	want := "internal|8.1.0|1|/etc/php/conf.d|*"
	if got != want {
		t.Errorf("EncodeMarker = %q, want %q", got, want)
	}
}

func TestEncodeMarkerKeepsEmptyDistinct(t *testing.T) {
	state := config.SearchState{ScanDir: envview.Value(""), Primary: envview.Unset}
	if got, want := EncodeMarker(state, "1.0"), "internal|1.0|0||*"; got != want {
		t.Errorf("EncodeMarker = %q, want %q", got, want)
	}
}

func TestDecodeMarkerInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"internal",
		"internal|8.1.0|1|/etc",
		"internal|8.1.0|1|/etc|*|extra",
		"external|8.1.0|1|/etc/php/conf.d|*",
		"Internal|8.1.0|1|/etc/php/conf.d|*",
		"internal|8.1.0|yes|/etc/php/conf.d|*",
		"internal|8.1.0||/etc/php/conf.d|*",
	} {
		if m, ok := DecodeMarker(s); ok {
			t.Errorf("DecodeMarker(%q) = %+v, want invalid", s, m)
		}
	}
}

// A real value of "*" is indistinguishable from unset and comes back unset.
func TestDecodeMarkerStarIsUnset(t *testing.T) {
	state := config.SearchState{ScanDir: envview.Value("*"), Primary: envview.Value("*")}
	m, ok := DecodeMarker(EncodeMarker(state, "1.0"))
	if !ok {
		t.Fatal("marker invalid")
	}
	if m.State.ScanDir.Set || m.State.Primary.Set {
		t.Errorf("decoded %+v, want both unset", m.State)
	}
}

func TestCheckEncodable(t *testing.T) {
	ok := config.SearchState{ScanDir: envview.Value("/etc"), Primary: envview.Unset}
	if err := checkEncodable(ok, "8.1.0"); err != nil {
		t.Errorf("checkEncodable(ok) = %v", err)
	}

	pipeDir := config.SearchState{ScanDir: envview.Value("/odd|dir")}
	if err := checkEncodable(pipeDir, "8.1.0"); !errors.Is(err, errUnencodable) {
		t.Errorf("checkEncodable(pipe in scan dir) = %v, want errUnencodable", err)
	}
	if err := checkEncodable(ok, "8.1|dev"); !errors.Is(err, errUnencodable) {
		t.Errorf("checkEncodable(pipe in version) = %v, want errUnencodable", err)
	}
}
