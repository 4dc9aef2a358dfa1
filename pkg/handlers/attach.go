package handlers

import (
	"fmt"

	"github.com/vialabs/message-gateway/pkg/claims"
	"github.com/vialabs/message-gateway/pkg/model"
)

// attachSignature verifies one submitted signature against the message hash
// and records the claim. It returns the signer the signature resolves to:
// the submitted key for ed25519, the recovered address for ECDSA.
func attachSignature(verified *claims.VerifiedClaims, input SignatureInput, messageHash model.Bytes32) (model.SignerKey, error) {
	switch input.Scheme {
	case SchemeEd25519:
		if err := verified.AttachEd25519(input.Signer, input.Signature, messageHash); err != nil {
			return nil, err
		}
		return input.Signer, nil
	case SchemeECDSA:
		return verified.AttachECDSA(input.Signature, messageHash)
	default:
		return nil, fmt.Errorf("unsupported signature scheme %q: %w", input.Scheme, model.ErrInvalidSignature)
	}
}

// attachAllSignatures verifies every submitted signature and returns the
// resolved (signer, signature) pairs in submission order.
func attachAllSignatures(verified *claims.VerifiedClaims, inputs []SignatureInput, messageHash model.Bytes32) ([]model.MessageSignature, error) {
	signatures := make([]model.MessageSignature, 0, len(inputs))
	for i, input := range inputs {
		signer, err := attachSignature(verified, input, messageHash)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		signatures = append(signatures, model.MessageSignature{
			Signer:    signer,
			Signature: input.Signature,
		})
	}
	return signatures, nil
}

// attachFirstSignature verifies only the first entry. Admission uses it: the
// remaining signatures are re-submitted and fully verified at finalization.
func attachFirstSignature(verified *claims.VerifiedClaims, inputs []SignatureInput, messageHash model.Bytes32) ([]model.MessageSignature, error) {
	if len(inputs) == 0 {
		return nil, model.ErrTooFewSignatures
	}
	signer, err := attachSignature(verified, inputs[0], messageHash)
	if err != nil {
		return nil, fmt.Errorf("signature 0: %w", err)
	}

	signatures := make([]model.MessageSignature, 0, len(inputs))
	signatures = append(signatures, model.MessageSignature{Signer: signer, Signature: inputs[0].Signature})
	for _, input := range inputs[1:] {
		signatures = append(signatures, model.MessageSignature{Signer: input.Signer, Signature: input.Signature})
	}
	return signatures, nil
}
