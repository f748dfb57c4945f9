package observability

import (
	"context"
	"errors"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Observability owns the OpenTelemetry meter and tracer providers. Hunt
// counters are exported through the Prometheus registry served on /metrics.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	huntCounter    otelmetric.Int64Counter
	huntDuration   otelmetric.Float64Histogram
	leadCounter    otelmetric.Int64Counter
}

// New registers with the default Prometheus registerer.
func New(serviceName string) (*Observability, error) {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	mp := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)

	meter := mp.Meter(serviceName)

	huntCounter, err := meter.Int64Counter(
		"hunts.processed",
		otelmetric.WithDescription("Number of hunts processed"),
	)
	if err != nil {
		return nil, err
	}
	huntDuration, err := meter.Float64Histogram(
		"hunts.duration",
		otelmetric.WithDescription("Hunt processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	leadCounter, err := meter.Int64Counter(
		"leads.created",
		otelmetric.WithDescription("Leads persisted by hunts"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:  mp,
		tracerProvider: tp,
		huntCounter:    huntCounter,
		huntDuration:   huntDuration,
		leadCounter:    leadCounter,
	}, nil
}

// RecordHunt records one finished hunt. status is "ok" or the error code.
func (o *Observability) RecordHunt(ctx context.Context, status string, duration time.Duration, leads int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	o.huntCounter.Add(ctx, 1, attrs)
	o.huntDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if leads > 0 {
		o.leadCounter.Add(ctx, int64(leads))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return errors.Join(o.tracerProvider.Shutdown(ctx), o.meterProvider.Shutdown(ctx))
}
