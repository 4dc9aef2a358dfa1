package storage

import (
	"context"
	"time"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

const (
	operationLabel     = "operation"
	createGatewayOp    = "CreateGateway"
	getGatewayOp       = "GetGateway"
	updateGatewayOp    = "UpdateGateway"
	createRegistryOp   = "CreateRegistry"
	getRegistryOp      = "GetRegistry"
	updateRegistryOp   = "UpdateRegistry"
	createTicketOp     = "CreateTicket"
	getTicketOp        = "GetTicket"
	consumeTicketOp    = "ConsumeTicket"
	recordAdmissionOp  = "RecordAdmission"
	getHighWaterMarkOp = "GetHighWaterMark"
)

// MetricsAwareStorage records latency and error metrics around every storage
// operation.
type MetricsAwareStorage struct {
	inner common.GatewayStorage
	m     common.GatewayMonitoring
}

func NewMetricsAwareStorage(inner common.GatewayStorage, m common.GatewayMonitoring) *MetricsAwareStorage {
	return &MetricsAwareStorage{
		inner: inner,
		m:     m,
	}
}

func (s *MetricsAwareStorage) metrics(ctx context.Context, operation string) common.GatewayMetricLabeler {
	metrics := scope.AugmentMetrics(ctx, s.m.Metrics())
	return metrics.With(operationLabel, operation)
}

func WrapWithMetrics(inner common.GatewayStorage, m common.GatewayMonitoring) common.GatewayStorage {
	return NewMetricsAwareStorage(inner, m)
}

func (s *MetricsAwareStorage) CreateGateway(ctx context.Context, gw *model.GatewayContext) error {
	return captureMetricsNoReturn(ctx, s.metrics(ctx, createGatewayOp), func() error {
		return s.inner.CreateGateway(ctx, gw)
	})
}

func (s *MetricsAwareStorage) GetGateway(ctx context.Context, chainID model.ChainID) (*model.GatewayContext, error) {
	return captureMetrics(ctx, s.metrics(ctx, getGatewayOp), func() (*model.GatewayContext, error) {
		return s.inner.GetGateway(ctx, chainID)
	})
}

func (s *MetricsAwareStorage) UpdateGateway(ctx context.Context, gw *model.GatewayContext) error {
	return captureMetricsNoReturn(ctx, s.metrics(ctx, updateGatewayOp), func() error {
		return s.inner.UpdateGateway(ctx, gw)
	})
}

func (s *MetricsAwareStorage) CreateRegistry(ctx context.Context, reg *model.SignerRegistry) error {
	return captureMetricsNoReturn(ctx, s.metrics(ctx, createRegistryOp), func() error {
		return s.inner.CreateRegistry(ctx, reg)
	})
}

func (s *MetricsAwareStorage) GetRegistry(ctx context.Context, key model.RegistryKey) (*model.SignerRegistry, error) {
	return captureMetrics(ctx, s.metrics(ctx, getRegistryOp), func() (*model.SignerRegistry, error) {
		return s.inner.GetRegistry(ctx, key)
	})
}

func (s *MetricsAwareStorage) UpdateRegistry(ctx context.Context, reg *model.SignerRegistry) error {
	return captureMetricsNoReturn(ctx, s.metrics(ctx, updateRegistryOp), func() error {
		return s.inner.UpdateRegistry(ctx, reg)
	})
}

func (s *MetricsAwareStorage) CreateTicket(ctx context.Context, ticket *model.PendingTicket) error {
	return captureMetricsNoReturn(ctx, s.metrics(ctx, createTicketOp), func() error {
		return s.inner.CreateTicket(ctx, ticket)
	})
}

func (s *MetricsAwareStorage) GetTicket(ctx context.Context, key model.TicketKey) (*model.PendingTicket, error) {
	return captureMetrics(ctx, s.metrics(ctx, getTicketOp), func() (*model.PendingTicket, error) {
		return s.inner.GetTicket(ctx, key)
	})
}

func (s *MetricsAwareStorage) ConsumeTicket(ctx context.Context, key model.TicketKey) (*model.PendingTicket, error) {
	return captureMetrics(ctx, s.metrics(ctx, consumeTicketOp), func() (*model.PendingTicket, error) {
		return s.inner.ConsumeTicket(ctx, key)
	})
}

func (s *MetricsAwareStorage) RecordAdmission(ctx context.Context, sourceChainID model.ChainID, messageID model.MessageID) error {
	return captureMetricsNoReturn(ctx, s.metrics(ctx, recordAdmissionOp), func() error {
		return s.inner.RecordAdmission(ctx, sourceChainID, messageID)
	})
}

func (s *MetricsAwareStorage) GetHighWaterMark(ctx context.Context, sourceChainID model.ChainID) (*model.HighWaterMark, error) {
	return captureMetrics(ctx, s.metrics(ctx, getHighWaterMarkOp), func() (*model.HighWaterMark, error) {
		return s.inner.GetHighWaterMark(ctx, sourceChainID)
	})
}

// HealthCheck delegates to the wrapped backend when it can report health.
func (s *MetricsAwareStorage) HealthCheck(ctx context.Context) *common.ComponentHealth {
	if checker, ok := s.inner.(common.HealthChecker); ok {
		return checker.HealthCheck(ctx)
	}
	return &common.ComponentHealth{
		Name:      "storage",
		Status:    common.HealthStatusHealthy,
		Timestamp: time.Now(),
	}
}

func captureMetrics[T any](ctx context.Context, metrics common.GatewayMetricLabeler, fn func() (T, error)) (T, error) {
	now := time.Now()
	defer func() {
		metrics.RecordStorageLatency(ctx, time.Since(now))
	}()

	res, err := fn()
	if err != nil {
		metrics.IncrementStorageError(ctx)
	}
	return res, err
}

func captureMetricsNoReturn(ctx context.Context, metrics common.GatewayMetricLabeler, fn func() error) error {
	_, err := captureMetrics(ctx, metrics, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
