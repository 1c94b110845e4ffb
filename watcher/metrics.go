package watcher

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds watch-mode metrics using OTEL semantic conventions
type Metrics struct {
	cycles        metric.Int64Counter
	cycleDuration metric.Float64Histogram
	instances     metric.Int64Gauge
	alarms        metric.Int64Gauge
	transitions   metric.Int64Counter
	checkErrors   metric.Int64Counter
}

// NewMetrics creates watch-mode metrics on the given meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	cycles, err := meter.Int64Counter(
		"awshealth.watch.cycles",
		metric.WithDescription("Number of watch cycles run"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"awshealth.watch.cycle.duration",
		metric.WithDescription("Duration of watch cycles"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	instances, err := meter.Int64Gauge(
		"awshealth.instances",
		metric.WithDescription("Number of EC2 instances observed"),
		metric.WithUnit("{instance}"),
	)
	if err != nil {
		return nil, err
	}

	alarms, err := meter.Int64Gauge(
		"awshealth.alarms",
		metric.WithDescription("Number of CloudWatch alarms observed"),
		metric.WithUnit("{alarm}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"awshealth.transitions",
		metric.WithDescription("Number of state transitions detected"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	checkErrors, err := meter.Int64Counter(
		"awshealth.check.errors",
		metric.WithDescription("Number of failed checks"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		cycles:        cycles,
		cycleDuration: cycleDuration,
		instances:     instances,
		alarms:        alarms,
		transitions:   transitions,
		checkErrors:   checkErrors,
	}, nil
}

// RecordCycle records a completed watch cycle
func (m *Metrics) RecordCycle(ctx context.Context, status string, durationSeconds float64) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.cycles.Add(ctx, 1, attrs)
	m.cycleDuration.Record(ctx, durationSeconds, attrs)
}

// RecordObserved records instance and alarm counts by state
func (m *Metrics) RecordObserved(ctx context.Context, instanceCount, alarmCount int64, verdict string) {
	attrs := metric.WithAttributes(attribute.String("verdict", verdict))
	m.instances.Record(ctx, instanceCount, attrs)
	m.alarms.Record(ctx, alarmCount, attrs)
}

// RecordTransition records one detected state transition
func (m *Metrics) RecordTransition(ctx context.Context, changeType, kind, region string) {
	m.transitions.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("change.type", changeType),
			attribute.String("resource.kind", kind),
			attribute.String("cloud.region", region),
		),
	)
}

// RecordError records a failed check
func (m *Metrics) RecordError(ctx context.Context) {
	m.checkErrors.Add(ctx, 1)
}
