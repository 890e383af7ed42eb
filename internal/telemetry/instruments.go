package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the service's domain metrics.
type Instruments struct {
	mediaResolutions metric.Int64Counter
	providerCalls    metric.Int64Counter
	alertsSubmitted  metric.Int64Counter
}

// NewInstruments registers the service instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	mediaResolutions, err := meter.Int64Counter(
		"weathervibe.media.resolutions",
		metric.WithDescription("Media sets resolved, by category and time bucket"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating media resolution counter: %w", err)
	}

	providerCalls, err := meter.Int64Counter(
		"weathervibe.provider.calls",
		metric.WithDescription("Upstream provider calls, by provider and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider call counter: %w", err)
	}

	alertsSubmitted, err := meter.Int64Counter(
		"weathervibe.alerts.submitted",
		metric.WithDescription("Alerts submitted, by channel and status"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating alert counter: %w", err)
	}

	return &Instruments{
		mediaResolutions: mediaResolutions,
		providerCalls:    providerCalls,
		alertsSubmitted:  alertsSubmitted,
	}, nil
}

// RecordResolution counts one resolved media set.
func (i *Instruments) RecordResolution(ctx context.Context, category, bucket string) {
	if i == nil {
		return
	}
	i.mediaResolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("bucket", bucket),
	))
}

// RecordSuccess counts a successful provider call.
func (i *Instruments) RecordSuccess(name string) {
	i.recordCall(name, "success")
}

// RecordFailure counts a failed provider call.
func (i *Instruments) RecordFailure(name string, _ error) {
	i.recordCall(name, "failure")
}

func (i *Instruments) recordCall(name, outcome string) {
	if i == nil {
		return
	}
	i.providerCalls.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("provider", name),
		attribute.String("outcome", outcome),
	))
}

// RecordAlert counts a submitted alert.
func (i *Instruments) RecordAlert(ctx context.Context, channel, status string) {
	if i == nil {
		return
	}
	i.alertsSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
}
