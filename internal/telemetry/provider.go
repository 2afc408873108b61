package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Environment variables that switch exporters on.
const (
	EnvMetricsURL = "INIRUN_OTEL_METRICS_URL"
	EnvLogsURL    = "INIRUN_OTEL_LOGS_URL"
)

// metricInterval is short because an interpreter run may last well under
// the SDK's default minute; Shutdown flushes whatever is left.
const metricInterval = 10 * time.Second

// Provider owns the SDK providers installed by [Init].
type Provider struct {
	meters  *sdkmetric.MeterProvider
	loggers *sdklog.LoggerProvider
}

// Active reports whether any exporter is installed.
func (p *Provider) Active() bool {
	return p != nil && (p.meters != nil || p.loggers != nil)
}

// Init installs OTLP/HTTP metric and log exporters as the global
// providers when INIRUN_OTEL_METRICS_URL / INIRUN_OTEL_LOGS_URL are set.
// With neither set it returns an inactive Provider and the no-op globals
// stay in place.
func Init(ctx context.Context, serviceName, version string) (*Provider, error) {
	metricsURL := os.Getenv(EnvMetricsURL)
	logsURL := os.Getenv(EnvLogsURL)
	p := &Provider{}
	if metricsURL == "" && logsURL == "" {
		return p, nil
	}

	res := resource.NewSchemaless(resourceAttrs(serviceName, version)...)

	if metricsURL != "" {
		exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(metricsURL))
		if err != nil {
			return nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		p.meters = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp,
				sdkmetric.WithInterval(metricInterval))),
		)
		otel.SetMeterProvider(p.meters)
	}
	if logsURL != "" {
		exp, err := otlploghttp.New(ctx, otlploghttp.WithEndpointURL(logsURL))
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("creating log exporter: %w", err)
		}
		p.loggers = sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		)
		global.SetLoggerProvider(p.loggers)
	}

	// Instruments bind to the provider current at first use.
	instOnce = sync.Once{}
	return p, nil
}

// Shutdown flushes and stops the installed providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.meters != nil {
		errs = append(errs, p.meters.Shutdown(ctx))
	}
	if p.loggers != nil {
		errs = append(errs, p.loggers.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// resourceAttrs labels every signal with the service and the process.
func resourceAttrs(serviceName, version string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.Int("process.pid", os.Getpid()),
	}
	if version != "" {
		attrs = append(attrs, attribute.String("service.version", version))
	}
	return attrs
}
