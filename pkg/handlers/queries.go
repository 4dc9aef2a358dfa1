package handlers

import (
	"context"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
)

// QueryHandler serves the read-only lookups: gateway context, registries,
// pending tickets and high-water marks.
type QueryHandler struct {
	storage common.GatewayStorage
	l       logger.SugaredLogger
}

func NewQueryHandler(storage common.GatewayStorage, l logger.SugaredLogger) *QueryHandler {
	return &QueryHandler{storage: storage, l: l}
}

func (h *QueryHandler) GetGateway(ctx context.Context, chainID model.ChainID) (*GetGatewayResponse, error) {
	gw, err := h.storage.GetGateway(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return &GetGatewayResponse{Gateway: gw}, nil
}

func (h *QueryHandler) GetRegistry(ctx context.Context, key model.RegistryKey) (*RegistryResponse, error) {
	reg, err := h.storage.GetRegistry(ctx, key)
	if err != nil {
		return nil, err
	}
	return &RegistryResponse{Registry: reg}, nil
}

func (h *QueryHandler) GetTicket(ctx context.Context, key model.TicketKey) (*GetTicketResponse, error) {
	ticket, err := h.storage.GetTicket(ctx, key)
	if err != nil {
		return nil, err
	}
	return &GetTicketResponse{Ticket: ticket}, nil
}

func (h *QueryHandler) GetHighWaterMark(ctx context.Context, sourceChainID model.ChainID) (*GetHighWaterMarkResponse, error) {
	mark, err := h.storage.GetHighWaterMark(ctx, sourceChainID)
	if err != nil {
		return nil, err
	}
	return &GetHighWaterMarkResponse{HighWaterMark: mark}, nil
}
