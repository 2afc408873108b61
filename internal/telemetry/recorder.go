// Package telemetry — recorder.go
// Recording helpers for restart telemetry. Each function emits both an
// OTel log event and increments a metric counter. Without [Init] the
// global providers are no-ops and every call is free.
package telemetry

import (
	"context"
	"sync"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterRecorderName = "github.com/steveyegge/inirun"
	loggerName        = "inirun"
)

// recorderInstruments holds all lazy-initialized OTel metric instruments.
type recorderInstruments struct {
	restartTotal    metric.Int64Counter
	restoreTotal    metric.Int64Counter
	tempConfigTotal metric.Int64Counter

	childDurationHist metric.Float64Histogram
}

var (
	instOnce sync.Once
	inst     recorderInstruments
)

// initInstruments registers all recorder metric instruments against the current
// global MeterProvider. Must be called after telemetry.Init so the real
// provider is set. Also called lazily on first use as a safety net.
func initInstruments() {
	instOnce.Do(func() {
		m := otel.GetMeterProvider().Meter(meterRecorderName)

		inst.restartTotal, _ = m.Int64Counter("inirun.restart.total",
			metric.WithDescription("Total restarts without a loaded extension"),
		)
		inst.restoreTotal, _ = m.Int64Counter("inirun.restore.total",
			metric.WithDescription("Total environment restores in restarted processes"),
		)
		inst.tempConfigTotal, _ = m.Int64Counter("inirun.temp_config.total",
			metric.WithDescription("Total temporary config file creations"),
		)

		inst.childDurationHist, _ = m.Float64Histogram("inirun.child.duration_ms",
			metric.WithDescription("Wall-clock time of the restarted child in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
}

// statusStr returns "ok" or "error" depending on whether err is nil.
func statusStr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// emit sends an OTel log event with the given body and key-value attributes.
func emit(ctx context.Context, body string, sev otellog.Severity, attrs ...otellog.KeyValue) {
	logger := global.GetLoggerProvider().Logger(loggerName)
	var r otellog.Record
	r.SetBody(otellog.StringValue(body))
	r.SetSeverity(sev)
	r.AddAttributes(attrs...)
	logger.Emit(ctx, r)
}

// errKV returns a log KeyValue with the error message, or empty string if nil.
func errKV(err error) otellog.KeyValue {
	if err != nil {
		return otellog.String("error", truncate(err.Error(), maxErrorLog))
	}
	return otellog.String("error", "")
}

// severity returns SeverityInfo on success, SeverityError on failure.
func severity(err error) otellog.Severity {
	if err != nil {
		return otellog.SeverityError
	}
	return otellog.SeverityInfo
}

// maxErrorLog is the maximum number of bytes of an error message logged.
const maxErrorLog = 1024

// truncate trims s to limit bytes and appends "…" when truncated.
// Avoids splitting multi-byte UTF-8 characters at the boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	truncated := s[:limit]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "…"
}

// RecordRestart records a finished restart attempt (metrics + log event).
// exitCode is the child's exit code; durationMs its wall-clock time.
func RecordRestart(ctx context.Context, extension, mode string, exitCode int, durationMs float64, err error) {
	initInstruments()
	status := statusStr(err)
	attrs := metric.WithAttributes(
		attribute.String("extension", extension),
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	inst.restartTotal.Add(ctx, 1, attrs)
	inst.childDurationHist.Record(ctx, durationMs, attrs)
	emit(ctx, "restart", severity(err),
		otellog.String("extension", extension),
		otellog.String("mode", mode),
		otellog.Int("exit_code", exitCode),
		otellog.Float64("duration_ms", durationMs),
		otellog.String("status", status),
		errKV(err),
	)
}

// RecordRestore records the environment restore in a restarted process.
func RecordRestore(ctx context.Context, extension string) {
	initInstruments()
	inst.restoreTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("extension", extension)),
	)
	emit(ctx, "restart.restore", otellog.SeverityInfo,
		otellog.String("extension", extension),
	)
}

// RecordTempConfig records a temporary config file creation attempt.
// A failure means the restart was abandoned and the process kept running
// with the extension loaded.
func RecordTempConfig(ctx context.Context, extension string, err error) {
	initInstruments()
	status := statusStr(err)
	inst.tempConfigTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("extension", extension),
			attribute.String("status", status),
		),
	)
	sev := otellog.SeverityInfo
	if err != nil {
		sev = otellog.SeverityWarn
	}
	emit(ctx, "restart.temp_config", sev,
		otellog.String("extension", extension),
		otellog.String("status", status),
		errKV(err),
	)
}
