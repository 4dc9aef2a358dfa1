package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/smartcontractkit/chainlink-common/pkg/beholder"
	"github.com/smartcontractkit/chainlink-common/pkg/metrics"

	"github.com/vialabs/message-gateway/pkg/common"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// GatewayMetrics provides all metrics emitted by the gateway.
type GatewayMetrics struct {
	admittedTickets        metric.Int64Counter
	duplicateAdmissions    metric.Int64Counter
	finalizedMessages      metric.Int64Counter
	rejectedFinalizations  metric.Int64Counter
	sendRequests           metric.Int64Counter
	apiRequestDuration     metric.Float64Histogram
	apiRequestError        metric.Int64Counter
	signatureVerifications metric.Int64Histogram

	// Storage metrics
	storageLatency metric.Float64Histogram
	storageError   metric.Int64Counter

	// State gauges
	highWaterMark metric.Int64Gauge
	systemEnabled metric.Int64Gauge
}

func MetricViews() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "gateway_api_request_duration_seconds"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{0, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			}},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "gateway_storage_duration_seconds"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{0, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			}},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "gateway_signature_verifications"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32},
			}},
		),
	}
}

func InitMetrics() (gm *GatewayMetrics, err error) {
	gm = &GatewayMetrics{}

	gm.admittedTickets, err = beholder.GetMeter().Int64Counter(
		"gateway_admitted_tickets",
		metric.WithDescription("Total number of admitted message tickets"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register admitted tickets counter: %w", err)
	}

	gm.duplicateAdmissions, err = beholder.GetMeter().Int64Counter(
		"gateway_duplicate_admissions",
		metric.WithDescription("Total number of admissions rejected by the replay guard"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register duplicate admissions counter: %w", err)
	}

	gm.finalizedMessages, err = beholder.GetMeter().Int64Counter(
		"gateway_finalized_messages",
		metric.WithDescription("Total number of finalized messages"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register finalized messages counter: %w", err)
	}

	gm.rejectedFinalizations, err = beholder.GetMeter().Int64Counter(
		"gateway_rejected_finalizations",
		metric.WithDescription("Total number of rejected finalization attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register rejected finalizations counter: %w", err)
	}

	gm.sendRequests, err = beholder.GetMeter().Int64Counter(
		"gateway_send_requests",
		metric.WithDescription("Total number of accepted outbound send requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register send requests counter: %w", err)
	}

	gm.apiRequestDuration, err = beholder.GetMeter().Float64Histogram(
		"gateway_api_request_duration_seconds",
		metric.WithDescription("Duration of API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register API request duration histogram: %w", err)
	}

	gm.apiRequestError, err = beholder.GetMeter().Int64Counter(
		"gateway_api_request_errors",
		metric.WithDescription("Total number of API request errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register API request errors counter: %w", err)
	}

	gm.signatureVerifications, err = beholder.GetMeter().Int64Histogram(
		"gateway_signature_verifications",
		metric.WithDescription("Number of signatures verified per finalization"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register signature verifications histogram: %w", err)
	}

	gm.storageLatency, err = beholder.GetMeter().Float64Histogram(
		"gateway_storage_duration_seconds",
		metric.WithDescription("Latency of storage operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register storage latency histogram: %w", err)
	}

	gm.storageError, err = beholder.GetMeter().Int64Counter(
		"gateway_storage_errors",
		metric.WithDescription("Total number of storage errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register storage errors counter: %w", err)
	}

	gm.highWaterMark, err = beholder.GetMeter().Int64Gauge(
		"gateway_high_water_mark",
		metric.WithDescription("Highest message id admitted per source chain"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register high water mark gauge: %w", err)
	}

	gm.systemEnabled, err = beholder.GetMeter().Int64Gauge(
		"gateway_system_enabled",
		metric.WithDescription("Circuit breaker state (1 enabled, 0 disabled)"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register system enabled gauge: %w", err)
	}

	return gm, nil
}

type GatewayMetricLabeler struct {
	metrics.Labeler
	gm *GatewayMetrics
}

func NewGatewayMetricLabeler(labeler metrics.Labeler, gm *GatewayMetrics) common.GatewayMetricLabeler {
	return &GatewayMetricLabeler{
		Labeler: labeler,
		gm:      gm,
	}
}

func (c *GatewayMetricLabeler) With(keyValues ...string) common.GatewayMetricLabeler {
	return &GatewayMetricLabeler{c.Labeler.With(keyValues...), c.gm}
}

func (c *GatewayMetricLabeler) IncrementAdmittedTickets(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.admittedTickets.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) IncrementDuplicateAdmissions(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.duplicateAdmissions.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) IncrementFinalizedMessages(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.finalizedMessages.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) IncrementRejectedFinalizations(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.rejectedFinalizations.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) IncrementSendRequests(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.sendRequests.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) RecordAPIRequestDuration(ctx context.Context, duration time.Duration) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) IncrementAPIRequestErrors(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.apiRequestError.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) RecordStorageLatency(ctx context.Context, duration time.Duration) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.storageLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) IncrementStorageError(ctx context.Context) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.storageError.Add(ctx, 1, metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) RecordSignatureVerifications(ctx context.Context, count int) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.signatureVerifications.Record(ctx, int64(count), metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) SetHighWaterMark(ctx context.Context, value uint64) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	c.gm.highWaterMark.Record(ctx, int64(value), metric.WithAttributes(otelLabels...))
}

func (c *GatewayMetricLabeler) SetSystemEnabled(ctx context.Context, enabled bool) {
	otelLabels := beholder.OtelAttributes(c.Labels).AsStringAttributes()
	var v int64
	if enabled {
		v = 1
	}
	c.gm.systemEnabled.Record(ctx, v, metric.WithAttributes(otelLabels...))
}
