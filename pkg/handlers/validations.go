package handlers

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vialabs/message-gateway/pkg/model"
)

func validateAdmitRequest(req *AdmitMessageRequest) error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.Relayer, validation.Required),
		validation.Field(&req.Signatures, validation.Required, validation.Length(model.MinSignaturesRequired, model.MaxSignaturesPerMessage)),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(
		&req.Envelope,
		validation.Field(&req.Envelope.SourceChainID, validation.Required),
		validation.Field(&req.Envelope.DestChainID, validation.Required),
	); err != nil {
		return err
	}
	return req.Envelope.Validate()
}

func validateFinalizeRequest(req *FinalizeMessageRequest) error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.Signatures, validation.Required, validation.Length(model.MinSignaturesRequired, model.MaxSignaturesPerMessage)),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(
		&req.Envelope,
		validation.Field(&req.Envelope.SourceChainID, validation.Required),
		validation.Field(&req.Envelope.DestChainID, validation.Required),
	)
}

func validateSendRequest(req *SendMessageRequest) error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.Sender, validation.Required),
		validation.Field(&req.DestChainID, validation.Required),
	); err != nil {
		return err
	}
	if len(req.Recipient) == 0 {
		return model.ErrEmptyRecipient
	}
	if len(req.Recipient) > model.MaxRecipientSize {
		return model.ErrRecipientTooLong
	}
	if len(req.ChainData) == 0 {
		return model.ErrEmptyChainData
	}
	if len(req.ChainData) > model.MaxOnChainDataSize {
		return model.ErrOnChainDataTooLarge
	}
	return nil
}

func validateInitializeGatewayRequest(req *InitializeGatewayRequest) error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ChainID, validation.Required),
		validation.Field(&req.Authority, validation.Required),
	)
}

func validateSetSystemEnabledRequest(req *SetSystemEnabledRequest) error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ChainID, validation.Required),
		validation.Field(&req.Caller, validation.Required),
	)
}

func validateInitializeRegistryRequest(req *InitializeRegistryRequest) error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.ChainID, validation.Required),
		validation.Field(&req.Authority, validation.Required),
		validation.Field(&req.Signers, validation.Required),
	); err != nil {
		return err
	}
	if err := model.ValidateSignerSet(req.Signers); err != nil {
		return err
	}
	reg := model.SignerRegistry{Signers: req.Signers, RequiredSignatures: req.RequiredSignatures}
	return reg.ValidateThreshold()
}

func validateUpdateSignersRequest(req *UpdateSignersRequest) error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.ChainID, validation.Required),
		validation.Field(&req.Caller, validation.Required),
		validation.Field(&req.Signers, validation.Required),
	); err != nil {
		return err
	}
	return model.ValidateSignerSet(req.Signers)
}

func validateSignerMutationRequest(chainID model.ChainID, caller, signer model.SignerKey) error {
	if chainID == 0 {
		return validation.NewError("validation_required", "chain_id is required")
	}
	if len(caller) == 0 {
		return validation.NewError("validation_required", "caller is required")
	}
	if len(signer) == 0 {
		return validation.NewError("validation_required", "signer is required")
	}
	return nil
}

func validateUpdateThresholdRequest(req *UpdateThresholdRequest) error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.ChainID, validation.Required),
		validation.Field(&req.Caller, validation.Required),
	); err != nil {
		return err
	}
	if req.RequiredSignatures == 0 {
		return model.ErrInvalidThreshold
	}
	return nil
}

func validateSetRegistryEnabledRequest(req *SetRegistryEnabledRequest) error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ChainID, validation.Required),
		validation.Field(&req.Caller, validation.Required),
	)
}
