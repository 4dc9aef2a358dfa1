package common

import (
	"context"
	"time"
)

// GatewayMonitoring provides access to gateway monitoring capabilities.
type GatewayMonitoring interface {
	// Metrics returns a GatewayMetricLabeler for recording metrics.
	Metrics() GatewayMetricLabeler
}

// GatewayMetricLabeler provides methods for recording gateway metrics.
type GatewayMetricLabeler interface {
	// With returns a new GatewayMetricLabeler with additional key-value labels.
	With(keyValues ...string) GatewayMetricLabeler
	// IncrementAdmittedTickets increments the admitted tickets counter.
	IncrementAdmittedTickets(ctx context.Context)
	// IncrementDuplicateAdmissions increments the counter for admissions
	// rejected by the replay guard.
	IncrementDuplicateAdmissions(ctx context.Context)
	// IncrementFinalizedMessages increments the finalized messages counter.
	IncrementFinalizedMessages(ctx context.Context)
	// IncrementRejectedFinalizations increments the counter for failed
	// finalizations.
	IncrementRejectedFinalizations(ctx context.Context)
	// IncrementSendRequests increments the outbound send counter.
	IncrementSendRequests(ctx context.Context)
	// RecordAPIRequestDuration records the duration of an API request.
	RecordAPIRequestDuration(ctx context.Context, duration time.Duration)
	// IncrementAPIRequestErrors increments the API request errors counter.
	IncrementAPIRequestErrors(ctx context.Context)
	// RecordStorageLatency records storage operation latency.
	RecordStorageLatency(ctx context.Context, duration time.Duration)
	// IncrementStorageError increments the storage error counter.
	IncrementStorageError(ctx context.Context)
	// RecordSignatureVerifications records how many signatures one
	// finalization verified.
	RecordSignatureVerifications(ctx context.Context, count int)
	// SetHighWaterMark sets the high-water-mark gauge for a source chain.
	SetHighWaterMark(ctx context.Context, value uint64)
	// SetSystemEnabled sets the circuit-breaker state gauge.
	SetSystemEnabled(ctx context.Context, enabled bool)
}
