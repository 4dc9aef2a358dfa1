package handlers

import (
	"context"
	"fmt"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// RegistryAdminHandler owns every mutation of the signer registries.
// Initialization is gated on the local gateway context's authority; every
// later mutation is gated on the registry's own authority.
type RegistryAdminHandler struct {
	storage      common.GatewayStorage
	localChainID model.ChainID
	l            logger.SugaredLogger
}

func NewRegistryAdminHandler(storage common.GatewayStorage, localChainID model.ChainID, l logger.SugaredLogger) *RegistryAdminHandler {
	return &RegistryAdminHandler{storage: storage, localChainID: localChainID, l: l}
}

func (h *RegistryAdminHandler) logger(ctx context.Context) logger.SugaredLogger {
	return scope.AugmentLogger(ctx, h.l)
}

func (h *RegistryAdminHandler) Initialize(ctx context.Context, req *InitializeRegistryRequest) (*RegistryResponse, error) {
	if err := validateInitializeRegistryRequest(req); err != nil {
		h.logger(ctx).Errorw("Initialize registry validation failed", "error", err)
		return nil, err
	}

	gw, err := h.storage.GetGateway(ctx, h.localChainID)
	if err != nil {
		return nil, fmt.Errorf("gateway context lookup failed: %w", err)
	}
	if !gw.IsAuthority(req.Authority) {
		h.logger(ctx).Errorw("Caller is not the gateway authority",
			"layer", req.Layer, "chainID", uint64(req.ChainID), "caller", req.Authority)
		return nil, model.ErrUnauthorizedAuthority
	}

	reg := &model.SignerRegistry{
		Layer:              req.Layer,
		ChainID:            req.ChainID,
		Authority:          req.Authority,
		Signers:            req.Signers,
		RequiredSignatures: req.RequiredSignatures,
		Enabled:            req.Enabled,
	}
	if err := h.storage.CreateRegistry(ctx, reg); err != nil {
		return nil, err
	}

	h.logger(ctx).Infow("Registry initialized",
		"key", reg.Key(), "signers", len(reg.Signers), "threshold", reg.RequiredSignatures)
	return &RegistryResponse{Registry: reg}, nil
}

// authorized loads the registry and checks the caller against its authority.
func (h *RegistryAdminHandler) authorized(ctx context.Context, key model.RegistryKey, caller model.SignerKey) (*model.SignerRegistry, error) {
	reg, err := h.storage.GetRegistry(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("registry %s lookup failed: %w", key, err)
	}
	if !reg.Authority.Equal(caller) {
		h.logger(ctx).Errorw("Caller is not the registry authority", "key", key, "caller", caller)
		return nil, model.ErrUnauthorizedAuthority
	}
	return reg, nil
}

func (h *RegistryAdminHandler) UpdateSigners(ctx context.Context, req *UpdateSignersRequest) (*RegistryResponse, error) {
	if err := validateUpdateSignersRequest(req); err != nil {
		h.logger(ctx).Errorw("Update signers validation failed", "error", err)
		return nil, err
	}

	reg, err := h.authorized(ctx, model.RegistryKey{Layer: req.Layer, ChainID: req.ChainID}, req.Caller)
	if err != nil {
		return nil, err
	}

	reg.Signers = req.Signers
	if err := reg.ValidateThreshold(); err != nil {
		return nil, err
	}
	if err := h.storage.UpdateRegistry(ctx, reg); err != nil {
		return nil, err
	}

	h.logger(ctx).Infow("Registry signer set replaced", "key", reg.Key(), "signers", len(reg.Signers))
	return &RegistryResponse{Registry: reg}, nil
}

func (h *RegistryAdminHandler) AddSigner(ctx context.Context, req *AddSignerRequest) (*RegistryResponse, error) {
	if err := validateSignerMutationRequest(req.ChainID, req.Caller, req.Signer); err != nil {
		return nil, err
	}

	reg, err := h.authorized(ctx, model.RegistryKey{Layer: req.Layer, ChainID: req.ChainID}, req.Caller)
	if err != nil {
		return nil, err
	}

	if reg.IsMember(req.Signer) {
		return nil, model.ErrDuplicateSigner
	}
	if len(reg.Signers) >= model.MaxSignersPerRegistry {
		return nil, model.ErrTooManySignatures
	}

	reg.Signers = append(reg.Signers, req.Signer)
	if err := h.storage.UpdateRegistry(ctx, reg); err != nil {
		return nil, err
	}

	h.logger(ctx).Infow("Signer added", "key", reg.Key(), "signer", req.Signer)
	return &RegistryResponse{Registry: reg}, nil
}

func (h *RegistryAdminHandler) RemoveSigner(ctx context.Context, req *RemoveSignerRequest) (*RegistryResponse, error) {
	if err := validateSignerMutationRequest(req.ChainID, req.Caller, req.Signer); err != nil {
		return nil, err
	}

	reg, err := h.authorized(ctx, model.RegistryKey{Layer: req.Layer, ChainID: req.ChainID}, req.Caller)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, s := range reg.Signers {
		if s.Equal(req.Signer) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, model.ErrNotFound
	}
	if len(reg.Signers)-1 < int(reg.RequiredSignatures) {
		return nil, model.ErrThresholdTooHigh
	}

	reg.Signers = append(reg.Signers[:index], reg.Signers[index+1:]...)
	if err := h.storage.UpdateRegistry(ctx, reg); err != nil {
		return nil, err
	}

	h.logger(ctx).Infow("Signer removed", "key", reg.Key(), "signer", req.Signer)
	return &RegistryResponse{Registry: reg}, nil
}

func (h *RegistryAdminHandler) UpdateThreshold(ctx context.Context, req *UpdateThresholdRequest) (*RegistryResponse, error) {
	if err := validateUpdateThresholdRequest(req); err != nil {
		return nil, err
	}

	reg, err := h.authorized(ctx, model.RegistryKey{Layer: req.Layer, ChainID: req.ChainID}, req.Caller)
	if err != nil {
		return nil, err
	}

	reg.RequiredSignatures = req.RequiredSignatures
	if err := reg.ValidateThreshold(); err != nil {
		return nil, err
	}
	if err := h.storage.UpdateRegistry(ctx, reg); err != nil {
		return nil, err
	}

	h.logger(ctx).Infow("Registry threshold updated", "key", reg.Key(), "threshold", req.RequiredSignatures)
	return &RegistryResponse{Registry: reg}, nil
}

func (h *RegistryAdminHandler) SetEnabled(ctx context.Context, req *SetRegistryEnabledRequest) (*RegistryResponse, error) {
	if err := validateSetRegistryEnabledRequest(req); err != nil {
		return nil, err
	}

	reg, err := h.authorized(ctx, model.RegistryKey{Layer: req.Layer, ChainID: req.ChainID}, req.Caller)
	if err != nil {
		return nil, err
	}

	reg.Enabled = req.Enabled
	if err := h.storage.UpdateRegistry(ctx, reg); err != nil {
		return nil, err
	}

	h.logger(ctx).Infow("Registry enabled flag updated", "key", reg.Key(), "enabled", req.Enabled)
	return &RegistryResponse{Registry: reg}, nil
}
