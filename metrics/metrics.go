// Package metrics records auth outcome counters through OpenTelemetry.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	MetricLogins        = "marketplace.auth.logins"
	MetricRegistrations = "marketplace.auth.registrations"
	MetricDenials       = "marketplace.auth.denials"

	// ScopeName is the instrumentation scope of every instrument
	ScopeName = "github.com/goliatone/go-marketplace"
)

// Recorder counts login attempts, registrations and access denials
type Recorder struct {
	logins        metric.Int64Counter
	registrations metric.Int64Counter
	denials       metric.Int64Counter
}

// New creates the counters on meter. A nil meter records nothing.
func New(meter metric.Meter) (*Recorder, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(ScopeName)
	}

	logins, err := meter.Int64Counter(MetricLogins,
		metric.WithDescription("Login attempts by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricLogins, err)
	}

	registrations, err := meter.Int64Counter(MetricRegistrations,
		metric.WithDescription("Registration attempts by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricRegistrations, err)
	}

	denials, err := meter.Int64Counter(MetricDenials,
		metric.WithDescription("Requests rejected by the access gate by required capability."))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", MetricDenials, err)
	}

	return &Recorder{
		logins:        logins,
		registrations: registrations,
		denials:       denials,
	}, nil
}

// FromProvider creates a Recorder on the provider's marketplace meter
func FromProvider(provider metric.MeterProvider) (*Recorder, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	return New(provider.Meter(ScopeName))
}

func (r *Recorder) LoginAttempt(ctx context.Context, outcome string) {
	r.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *Recorder) Registration(ctx context.Context, outcome string) {
	r.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *Recorder) AccessDenied(ctx context.Context, capability string) {
	r.denials.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", capability)))
}
