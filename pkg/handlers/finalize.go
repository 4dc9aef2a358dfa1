package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/claims"
	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/quorum"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// FinalizeMessageHandler verifies an admitted message against the
// three-layer signer policy and consumes its ticket. The check order is
// fixed: circuit breaker, destination, bounds, ticket existence, signature
// policy, then the atomic ticket consume that makes finalization
// exactly-once.
type FinalizeMessageHandler struct {
	storage      common.GatewayStorage
	validator    *quorum.ThreeLayerValidator
	monitoring   common.GatewayMonitoring
	sink         common.Sink
	localChainID model.ChainID
	l            logger.SugaredLogger
}

func NewFinalizeMessageHandler(
	storage common.GatewayStorage,
	validator *quorum.ThreeLayerValidator,
	monitoring common.GatewayMonitoring,
	sink common.Sink,
	localChainID model.ChainID,
	l logger.SugaredLogger,
) *FinalizeMessageHandler {
	return &FinalizeMessageHandler{
		storage:      storage,
		validator:    validator,
		monitoring:   monitoring,
		sink:         sink,
		localChainID: localChainID,
		l:            l,
	}
}

func (h *FinalizeMessageHandler) logger(ctx context.Context) logger.SugaredLogger {
	return scope.AugmentLogger(ctx, h.l)
}

func (h *FinalizeMessageHandler) Handle(ctx context.Context, req *FinalizeMessageRequest) (*FinalizeMessageResponse, error) {
	resp, err := h.handle(ctx, req)
	if err != nil {
		h.monitoring.Metrics().IncrementRejectedFinalizations(ctx)
	}
	return resp, err
}

func (h *FinalizeMessageHandler) handle(ctx context.Context, req *FinalizeMessageRequest) (*FinalizeMessageResponse, error) {
	if err := validateFinalizeRequest(req); err != nil {
		h.logger(ctx).Errorw("Finalize request validation failed", "error", err)
		return nil, err
	}

	ctx = scope.WithMessageID(ctx, req.Envelope.MessageID[:])
	ctx = scope.WithSourceChain(ctx, uint64(req.Envelope.SourceChainID))
	reqLogger := h.logger(ctx)

	gw, err := h.storage.GetGateway(ctx, h.localChainID)
	if err != nil {
		return nil, fmt.Errorf("gateway context lookup failed: %w", err)
	}
	if !gw.SystemEnabled {
		reqLogger.Warnw("Finalization rejected, system disabled")
		return nil, model.ErrSystemDisabled
	}

	if req.Envelope.DestChainID != gw.ChainID {
		reqLogger.Errorw("Message not destined for this chain",
			"destChainID", uint64(req.Envelope.DestChainID), "localChainID", uint64(gw.ChainID))
		return nil, model.ErrInvalidDestChain
	}

	if err := req.Envelope.Validate(); err != nil {
		return nil, err
	}

	ticketKey := req.Envelope.TicketKey()
	if _, err := h.storage.GetTicket(ctx, ticketKey); err != nil {
		reqLogger.Errorw("No pending ticket for message", "error", err)
		return nil, err
	}

	messageHash, err := req.Envelope.Hash()
	if err != nil {
		return nil, err
	}

	verified := claims.NewVerifiedClaims()
	signatures, err := attachAllSignatures(verified, req.Signatures, messageHash)
	if err != nil {
		reqLogger.Errorw("Signature attach failed", "error", err)
		return nil, err
	}

	viaRegistry, chainRegistry, projectRegistry, err := h.loadRegistries(ctx, req.Envelope.SourceChainID)
	if err != nil {
		return nil, err
	}

	result, err := h.validator.Validate(ctx, signatures, messageHash, viaRegistry, chainRegistry, projectRegistry, verified)
	if err != nil {
		return nil, err
	}
	h.monitoring.Metrics().RecordSignatureVerifications(ctx, int(result.TotalValid))

	// Exactly one finalization per ticket: concurrent winners are decided
	// here, everything above is read-only.
	ticket, err := h.storage.ConsumeTicket(ctx, ticketKey)
	if err != nil {
		reqLogger.Errorw("Ticket already consumed", "error", err)
		return nil, err
	}

	h.monitoring.Metrics().IncrementFinalizedMessages(ctx)
	if h.sink != nil {
		if err := h.sink.Emit(ctx, common.MessageFinalized{
			MessageID:     req.Envelope.MessageID,
			SourceChainID: req.Envelope.SourceChainID,
			Relayer:       ticket.Relayer,
		}); err != nil {
			reqLogger.Errorw("Failed to emit finalization event", "error", err)
		}
	}

	reqLogger.Infow("Message finalized",
		"ticketID", ticket.TicketID,
		"via", result.VIASignatures, "chain", result.ChainSignatures, "project", result.ProjectSignatures)

	return &FinalizeMessageResponse{
		Result: &model.FinalizeResult{
			TicketID:          ticket.TicketID,
			SourceChainID:     ticket.SourceChainID,
			MessageID:         ticket.MessageID,
			DepositReturnedTo: ticket.Relayer,
			VIASignatures:     result.VIASignatures,
			ChainSignatures:   result.ChainSignatures,
			ProjectSignatures: result.ProjectSignatures,
		},
	}, nil
}

// loadRegistries resolves the three signer registries for a message. The
// via registry belongs to the destination (local) chain, the chain and
// project registries to the source chain. Via and chain registries must
// exist; the project registry is optional.
func (h *FinalizeMessageHandler) loadRegistries(ctx context.Context, sourceChainID model.ChainID) (via, chain, project *model.SignerRegistry, err error) {
	via, err = h.storage.GetRegistry(ctx, model.RegistryKey{Layer: model.LayerVIA, ChainID: h.localChainID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("via registry for chain %d: %w", uint64(h.localChainID), err)
	}
	chain, err = h.storage.GetRegistry(ctx, model.RegistryKey{Layer: model.LayerChain, ChainID: sourceChainID})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("chain registry for chain %d: %w", uint64(sourceChainID), err)
	}
	project, err = h.storage.GetRegistry(ctx, model.RegistryKey{Layer: model.LayerProject, ChainID: sourceChainID})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return via, chain, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("project registry for chain %d: %w", uint64(sourceChainID), err)
	}
	return via, chain, project, nil
}
