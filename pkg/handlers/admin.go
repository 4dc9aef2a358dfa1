package handlers

import (
	"context"
	"fmt"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// InitializeGatewayHandler creates the administrative record for a chain.
// First write wins; the submitted authority owns every later mutation.
type InitializeGatewayHandler struct {
	storage common.GatewayStore
	l       logger.SugaredLogger
}

func NewInitializeGatewayHandler(storage common.GatewayStore, l logger.SugaredLogger) *InitializeGatewayHandler {
	return &InitializeGatewayHandler{storage: storage, l: l}
}

func (h *InitializeGatewayHandler) Handle(ctx context.Context, req *InitializeGatewayRequest) (*InitializeGatewayResponse, error) {
	if err := validateInitializeGatewayRequest(req); err != nil {
		scope.AugmentLogger(ctx, h.l).Errorw("Initialize gateway validation failed", "error", err)
		return nil, err
	}

	gw := &model.GatewayContext{
		ChainID:       req.ChainID,
		Authority:     req.Authority,
		SystemEnabled: req.Enabled,
	}
	if err := h.storage.CreateGateway(ctx, gw); err != nil {
		return nil, err
	}

	scope.AugmentLogger(ctx, h.l).Infow("Gateway initialized",
		"chainID", uint64(req.ChainID), "authority", req.Authority, "enabled", req.Enabled)
	return &InitializeGatewayResponse{Gateway: gw}, nil
}

// SetSystemEnabledHandler flips the circuit breaker. Authority gated.
type SetSystemEnabledHandler struct {
	storage    common.GatewayStore
	monitoring common.GatewayMonitoring
	sink       common.Sink
	l          logger.SugaredLogger
}

func NewSetSystemEnabledHandler(storage common.GatewayStore, monitoring common.GatewayMonitoring, sink common.Sink, l logger.SugaredLogger) *SetSystemEnabledHandler {
	return &SetSystemEnabledHandler{storage: storage, monitoring: monitoring, sink: sink, l: l}
}

func (h *SetSystemEnabledHandler) Handle(ctx context.Context, req *SetSystemEnabledRequest) (*SetSystemEnabledResponse, error) {
	reqLogger := scope.AugmentLogger(ctx, h.l)
	if err := validateSetSystemEnabledRequest(req); err != nil {
		reqLogger.Errorw("Set system enabled validation failed", "error", err)
		return nil, err
	}

	gw, err := h.storage.GetGateway(ctx, req.ChainID)
	if err != nil {
		return nil, fmt.Errorf("gateway context lookup failed: %w", err)
	}
	if !gw.IsAuthority(req.Caller) {
		reqLogger.Errorw("Caller is not the gateway authority", "caller", req.Caller)
		return nil, model.ErrUnauthorizedAuthority
	}

	gw.SystemEnabled = req.Enabled
	if err := h.storage.UpdateGateway(ctx, gw); err != nil {
		return nil, err
	}

	h.monitoring.Metrics().SetSystemEnabled(ctx, req.Enabled)
	if h.sink != nil {
		if err := h.sink.Emit(ctx, common.SystemStatusChanged{Enabled: req.Enabled}); err != nil {
			reqLogger.Errorw("Failed to emit system status event", "error", err)
		}
	}

	reqLogger.Infow("Circuit breaker updated", "enabled", req.Enabled)
	return &SetSystemEnabledResponse{Gateway: gw}, nil
}
