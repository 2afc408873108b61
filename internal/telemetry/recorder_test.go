package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
)

// resetInstruments resets the sync.Once so initInstruments re-runs against
// the current (noop) global MeterProvider during tests.
func resetInstruments(t *testing.T) {
	t.Helper()
	instOnce = sync.Once{}
	t.Cleanup(func() { instOnce = sync.Once{} })
}

// --- helper functions ---

func TestStatusStr(t *testing.T) {
	if got := statusStr(nil); got != "ok" {
		t.Errorf("statusStr(nil) = %q, want \"ok\"", got)
	}
	if got := statusStr(errors.New("boom")); got != "error" {
		t.Errorf("statusStr(err) = %q, want \"error\"", got)
	}
}

func TestTruncate_Short(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("short string should not be truncated, got %q", got)
	}
}

func TestTruncate_Long(t *testing.T) {
	if got := truncate("abcdefghij", 5); got != "abcde…" {
		t.Errorf("truncate = %q, want %q", got, "abcde…")
	}
}

func TestTruncate_MultiByteBoundary(t *testing.T) {
	// "é" is two bytes; cutting after 2 bytes would split it.
	got := truncate("aéb", 2)
	if got != "a…" {
		t.Errorf("truncate = %q, want %q", got, "a…")
	}
}

func TestSeverity(t *testing.T) {
	if got := severity(nil); got != otellog.SeverityInfo {
		t.Errorf("severity(nil) = %v, want SeverityInfo", got)
	}
	if got := severity(errors.New("err")); got != otellog.SeverityError {
		t.Errorf("severity(err) = %v, want SeverityError", got)
	}
}

func TestErrKV(t *testing.T) {
	if kv := errKV(nil); kv.Value.AsString() != "" {
		t.Errorf("errKV(nil) value = %q, want empty", kv.Value.AsString())
	}
	long := errors.New(strings.Repeat("x", maxErrorLog+10))
	if kv := errKV(long); len(kv.Value.AsString()) > maxErrorLog+len("…") {
		t.Errorf("errKV did not truncate: %d bytes", len(kv.Value.AsString()))
	}
}

// --- Record* functions (noop providers, must not panic) ---

func TestRecordRestart(t *testing.T) {
	resetInstruments(t)
	ctx := context.Background()

	RecordRestart(ctx, "debugger", "minimal", 0, 12.5, nil)
	RecordRestart(ctx, "debugger", "persistent", 126, 0, errors.New("spawn failed"))
}

func TestRecordRestore(t *testing.T) {
	resetInstruments(t)
	RecordRestore(context.Background(), "debugger")
}

func TestRecordTempConfig(t *testing.T) {
	resetInstruments(t)
	ctx := context.Background()

	RecordTempConfig(ctx, "debugger", nil)
	RecordTempConfig(ctx, "debugger", errors.New("disk full"))
}

// --- Init ---

func TestInitInactiveWithoutURLs(t *testing.T) {
	t.Setenv(EnvMetricsURL, "")
	t.Setenv(EnvLogsURL, "")

	p, err := Init(context.Background(), "inirun", "dev")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.Active() {
		t.Error("provider should be inactive without exporter URLs")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNilProviderShutdown(t *testing.T) {
	var p *Provider
	if p.Active() {
		t.Error("nil provider reports active")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown(nil) = %v", err)
	}
}

func TestResourceAttrs(t *testing.T) {
	attrs := resourceAttrs("inirun", "1.2.3")
	found := map[string]string{}
	for _, kv := range attrs {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	if found["service.name"] != "inirun" || found["service.version"] != "1.2.3" {
		t.Errorf("resource attrs = %v", found)
	}
	if _, ok := found["process.pid"]; !ok {
		t.Error("missing process.pid")
	}
	if len(resourceAttrs("inirun", "")) != 2 {
		t.Error("empty version should be omitted")
	}
}
