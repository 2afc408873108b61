package restart

import (
	"reflect"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeMinimal, false},
		{"minimal", ModeMinimal, false},
		{"standard", ModeMinimal, false},
		{"persistent", ModePersistent, false},
		{"original", ModeOriginal, false},
		{"Persistent", ModeMinimal, true},
		{"bogus", ModeMinimal, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModeStringRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeMinimal, ModePersistent, ModeOriginal} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", m.String(), got, err, m)
		}
	}
}

func TestStrategyOptions(t *testing.T) {
	tests := []struct {
		mode     Mode
		needsTmp bool
		want     []string
	}{
		{ModeMinimal, true, []string{"-n", "-c", "/tmp/inirun-1.toml"}},
		{ModePersistent, true, []string{}},
		{ModeOriginal, false, []string{}},
	}
	for _, tt := range tests {
		s := NewStrategy(tt.mode)
		if s.NeedsTempConfig() != tt.needsTmp {
			t.Errorf("%v: NeedsTempConfig() = %v, want %v", tt.mode, s.NeedsTempConfig(), tt.needsTmp)
		}
		got := s.Bind("/tmp/inirun-1.toml").Options()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%v: Options() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestStrategyBindReturnsCopy(t *testing.T) {
	shape := NewStrategy(ModeMinimal)
	bound := shape.Bind("/tmp/a.toml")

	if shape.TempConfig() != "" {
		t.Errorf("Bind mutated the receiver: TempConfig() = %q", shape.TempConfig())
	}
	if bound.TempConfig() != "/tmp/a.toml" {
		t.Errorf("TempConfig() = %q, want /tmp/a.toml", bound.TempConfig())
	}
	if bound.Mode() != ModeMinimal {
		t.Errorf("Mode() = %v, want minimal", bound.Mode())
	}
}
