package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/claims"
	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/quorum"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// AdmitMessageHandler opens a pending ticket for an inbound message. The
// full quorum check is deferred to finalization; admission only sanity
// checks the first signature and registers the replay-guard entry.
type AdmitMessageHandler struct {
	storage                  common.GatewayStorage
	validator                *quorum.ThreeLayerValidator
	monitoring               common.GatewayMonitoring
	sink                     common.Sink
	localChainID             model.ChainID
	admissionRequiresEnabled bool
	l                        logger.SugaredLogger
}

func NewAdmitMessageHandler(
	storage common.GatewayStorage,
	validator *quorum.ThreeLayerValidator,
	monitoring common.GatewayMonitoring,
	sink common.Sink,
	localChainID model.ChainID,
	admissionRequiresEnabled bool,
	l logger.SugaredLogger,
) *AdmitMessageHandler {
	return &AdmitMessageHandler{
		storage:                  storage,
		validator:                validator,
		monitoring:               monitoring,
		sink:                     sink,
		localChainID:             localChainID,
		admissionRequiresEnabled: admissionRequiresEnabled,
		l:                        l,
	}
}

func (h *AdmitMessageHandler) logger(ctx context.Context) logger.SugaredLogger {
	return scope.AugmentLogger(ctx, h.l)
}

func (h *AdmitMessageHandler) Handle(ctx context.Context, req *AdmitMessageRequest) (*AdmitMessageResponse, error) {
	if err := validateAdmitRequest(req); err != nil {
		h.logger(ctx).Errorw("Admission request validation failed", "error", err)
		return nil, err
	}

	ctx = scope.WithMessageID(ctx, req.Envelope.MessageID[:])
	ctx = scope.WithSourceChain(ctx, uint64(req.Envelope.SourceChainID))
	reqLogger := h.logger(ctx)

	if h.admissionRequiresEnabled {
		gw, err := h.storage.GetGateway(ctx, h.localChainID)
		if err != nil {
			return nil, fmt.Errorf("gateway context lookup failed: %w", err)
		}
		if !gw.SystemEnabled {
			reqLogger.Warnw("Admission rejected, system disabled")
			return nil, model.ErrSystemDisabled
		}
	}

	messageHash, err := req.Envelope.Hash()
	if err != nil {
		reqLogger.Errorw("Failed to hash envelope", "error", err)
		return nil, err
	}

	verified := claims.NewVerifiedClaims()
	signatures, err := attachFirstSignature(verified, req.Signatures, messageHash)
	if err != nil {
		reqLogger.Errorw("Admission signature attach failed", "error", err)
		return nil, err
	}
	if err := h.validator.ValidateAdmission(ctx, signatures, messageHash, verified); err != nil {
		return nil, err
	}

	ticket := &model.PendingTicket{
		TicketID:      uuid.New(),
		SourceChainID: req.Envelope.SourceChainID,
		MessageID:     req.Envelope.MessageID,
		Relayer:       req.Relayer,
	}
	if err := h.storage.CreateTicket(ctx, ticket); err != nil {
		if errors.Is(err, model.ErrDuplicateTicket) {
			h.monitoring.Metrics().IncrementDuplicateAdmissions(ctx)
			reqLogger.Infow("Admission rejected by replay guard")
		}
		return nil, err
	}

	if err := h.storage.RecordAdmission(ctx, req.Envelope.SourceChainID, req.Envelope.MessageID); err != nil {
		// The ticket stands; the high-water mark is observability only.
		reqLogger.Errorw("Failed to record high-water mark", "error", err)
	} else if mark, err := h.storage.GetHighWaterMark(ctx, req.Envelope.SourceChainID); err == nil {
		h.monitoring.Metrics().With("source_chain", fmt.Sprint(uint64(mark.SourceChainID))).
			SetHighWaterMark(ctx, mark.HighestSeen.Low64())
	}

	h.monitoring.Metrics().IncrementAdmittedTickets(ctx)
	if h.sink != nil {
		if err := h.sink.Emit(ctx, common.TicketAdmitted{
			MessageID:     req.Envelope.MessageID,
			SourceChainID: req.Envelope.SourceChainID,
		}); err != nil {
			reqLogger.Errorw("Failed to emit admission event", "error", err)
		}
	}

	stored, err := h.storage.GetTicket(ctx, ticket.Key())
	if err != nil {
		// Raced with a finalization between create and read; the admission
		// itself succeeded.
		stored = ticket
	}

	reqLogger.Infow("Ticket admitted", "ticketID", ticket.TicketID)
	return &AdmitMessageResponse{
		TicketID:      stored.TicketID,
		SourceChainID: stored.SourceChainID,
		MessageID:     stored.MessageID,
		CreatedAt:     stored.CreatedAt,
	}, nil
}
