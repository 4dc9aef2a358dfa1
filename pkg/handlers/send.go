package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// SendMessageHandler accepts an outbound message, assigns it an id, and
// emits it to the sink for relayers to pick up. Nothing is persisted; the
// destination gateway's replay guard is what makes delivery exactly-once.
type SendMessageHandler struct {
	storage      common.GatewayStorage
	monitoring   common.GatewayMonitoring
	sink         common.Sink
	localChainID model.ChainID
	l            logger.SugaredLogger
}

func NewSendMessageHandler(
	storage common.GatewayStorage,
	monitoring common.GatewayMonitoring,
	sink common.Sink,
	localChainID model.ChainID,
	l logger.SugaredLogger,
) *SendMessageHandler {
	return &SendMessageHandler{
		storage:      storage,
		monitoring:   monitoring,
		sink:         sink,
		localChainID: localChainID,
		l:            l,
	}
}

func (h *SendMessageHandler) logger(ctx context.Context) logger.SugaredLogger {
	return scope.AugmentLogger(ctx, h.l)
}

func (h *SendMessageHandler) Handle(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	if err := validateSendRequest(req); err != nil {
		h.logger(ctx).Errorw("Send request validation failed", "error", err)
		return nil, err
	}

	gw, err := h.storage.GetGateway(ctx, h.localChainID)
	if err != nil {
		return nil, fmt.Errorf("gateway context lookup failed: %w", err)
	}
	if !gw.SystemEnabled {
		h.logger(ctx).Warnw("Send rejected, system disabled")
		return nil, model.ErrSystemDisabled
	}

	// Message ids are 128-bit and random; collision-free in practice and
	// free of cross-request coordination.
	messageID := model.MessageID(uuid.New())

	ctx = scope.WithMessageID(ctx, messageID[:])
	reqLogger := h.logger(ctx)

	h.monitoring.Metrics().IncrementSendRequests(ctx)
	if h.sink != nil {
		if err := h.sink.Emit(ctx, common.SendRequested{
			MessageID:     messageID,
			Sender:        req.Sender,
			Recipient:     req.Recipient,
			DestChainID:   req.DestChainID,
			ChainData:     req.ChainData,
			Confirmations: req.Confirmations,
		}); err != nil {
			reqLogger.Errorw("Failed to emit send event", "error", err)
			return nil, fmt.Errorf("failed to emit send event: %w", err)
		}
	}

	reqLogger.Infow("Outbound message accepted", "destChainID", uint64(req.DestChainID))
	return &SendMessageResponse{
		Receipt: &model.SendReceipt{
			MessageID:   messageID,
			DestChainID: req.DestChainID,
		},
	}, nil
}
