package monitoring

import (
	"context"
	"time"

	"github.com/vialabs/message-gateway/pkg/common"
)

type NoopGatewayMonitoring struct{}

func NewNoopGatewayMonitoring() *NoopGatewayMonitoring {
	return &NoopGatewayMonitoring{}
}

func (m *NoopGatewayMonitoring) Metrics() common.GatewayMetricLabeler {
	return NewNoopGatewayMetricLabeler()
}

type NoopGatewayMetricLabeler struct{}

func NewNoopGatewayMetricLabeler() *NoopGatewayMetricLabeler {
	return &NoopGatewayMetricLabeler{}
}

func (c *NoopGatewayMetricLabeler) With(...string) common.GatewayMetricLabeler {
	return c
}

func (c *NoopGatewayMetricLabeler) IncrementAdmittedTickets(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) IncrementDuplicateAdmissions(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) IncrementFinalizedMessages(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) IncrementRejectedFinalizations(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) IncrementSendRequests(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) RecordAPIRequestDuration(ctx context.Context, duration time.Duration) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) IncrementAPIRequestErrors(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) RecordStorageLatency(ctx context.Context, duration time.Duration) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) IncrementStorageError(ctx context.Context) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) RecordSignatureVerifications(ctx context.Context, count int) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) SetHighWaterMark(ctx context.Context, value uint64) {
	// No-op
}

func (c *NoopGatewayMetricLabeler) SetSystemEnabled(ctx context.Context, enabled bool) {
	// No-op
}
