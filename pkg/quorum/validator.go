// Package quorum enforces the three-layer signature policy that gates
// message finalization: a message is only final once the Via, chain, and
// (when configured) project signer sets have each met their own
// signature threshold over the same message hash.
package quorum

import (
	"context"
	"fmt"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/claims"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// ValidationResult reports how many valid signatures each layer collected.
// A single signer that belongs to more than one layer counts toward every
// layer it belongs to.
type ValidationResult struct {
	VIASignatures     uint8
	ChainSignatures   uint8
	ProjectSignatures uint8
	TotalValid        uint8
}

// ThreeLayerValidator checks submitted signatures against the Via, chain,
// and project signer registries.
type ThreeLayerValidator struct {
	l logger.SugaredLogger
}

func NewThreeLayerValidator(l logger.SugaredLogger) *ThreeLayerValidator {
	return &ThreeLayerValidator{l: l}
}

func (v *ThreeLayerValidator) logger(ctx context.Context) logger.SugaredLogger {
	return scope.AugmentLogger(ctx, v.l)
}

// ValidateAdmission runs the cheap sanity check applied when a ticket is
// created: the submission must carry at least one signature, stay under the
// batch cap, and the first entry must be a platform-verified signature over
// the message hash. Full quorum evaluation is deferred to finalization.
func (v *ThreeLayerValidator) ValidateAdmission(ctx context.Context, signatures []model.MessageSignature, messageHash model.Bytes32, verified *claims.VerifiedClaims) error {
	if len(signatures) < model.MinSignaturesRequired {
		return model.ErrTooFewSignatures
	}
	if len(signatures) > model.MaxSignaturesPerMessage {
		return model.ErrTooManySignatures
	}
	if err := claims.VerifySignature(verified, signatures[0], messageHash); err != nil {
		v.logger(ctx).Errorw("Admission signature check failed", "signer", signatures[0].Signer, "error", err)
		return err
	}
	return nil
}

// Validate evaluates the full three-layer policy over the submitted
// signatures. viaRegistry and chainRegistry are mandatory; projectRegistry
// may be nil, in which case no project threshold is enforced. Every
// submitted signature must be platform-verified, come from a distinct
// signer, and match at least one registry.
func (v *ThreeLayerValidator) Validate(
	ctx context.Context,
	signatures []model.MessageSignature,
	messageHash model.Bytes32,
	viaRegistry, chainRegistry, projectRegistry *model.SignerRegistry,
	verified *claims.VerifiedClaims,
) (*ValidationResult, error) {
	if len(signatures) < model.MinSignaturesRequired {
		return nil, model.ErrTooFewSignatures
	}
	if len(signatures) > model.MaxSignaturesPerMessage {
		return nil, model.ErrTooManySignatures
	}
	if viaRegistry == nil || !viaRegistry.Enabled {
		return nil, fmt.Errorf("via registry: %w", model.ErrSignerRegistryDisabled)
	}
	if chainRegistry == nil || !chainRegistry.Enabled {
		return nil, fmt.Errorf("chain registry: %w", model.ErrSignerRegistryDisabled)
	}
	// A disabled project registry suspends the project layer rather than
	// blocking the message.
	if projectRegistry != nil && !projectRegistry.Enabled {
		projectRegistry = nil
	}

	result := &ValidationResult{}
	seen := make(map[string]struct{}, len(signatures))
	for i, sig := range signatures {
		if _, dup := seen[string(sig.Signer)]; dup {
			v.logger(ctx).Errorw("Duplicate signer in submission", "index", i, "signer", sig.Signer)
			return nil, fmt.Errorf("signer %s: %w", sig.Signer, model.ErrDuplicateSigner)
		}
		seen[string(sig.Signer)] = struct{}{}

		if err := claims.VerifySignature(verified, sig, messageHash); err != nil {
			v.logger(ctx).Errorw("Signature not platform-verified for this hash", "index", i, "signer", sig.Signer)
			return nil, err
		}

		matched := false
		if viaRegistry.IsSigner(sig.Signer) {
			result.VIASignatures++
			matched = true
		}
		if chainRegistry.IsSigner(sig.Signer) {
			result.ChainSignatures++
			matched = true
		}
		if projectRegistry.IsSigner(sig.Signer) {
			result.ProjectSignatures++
			matched = true
		}
		if !matched {
			v.logger(ctx).Errorw("Signer not present in any registry", "index", i, "signer", sig.Signer)
			return nil, fmt.Errorf("signer %s: %w", sig.Signer, model.ErrUnauthorizedSigner)
		}
		result.TotalValid++
	}

	if result.VIASignatures < viaRegistry.RequiredSignatures {
		v.logger(ctx).Errorw("Via threshold not met", "have", result.VIASignatures, "need", viaRegistry.RequiredSignatures)
		return nil, model.ErrInsufficientVIASignatures
	}
	if result.ChainSignatures < chainRegistry.RequiredSignatures {
		v.logger(ctx).Errorw("Chain threshold not met", "have", result.ChainSignatures, "need", chainRegistry.RequiredSignatures)
		return nil, model.ErrInsufficientChainSignatures
	}
	if projectRegistry != nil && result.ProjectSignatures < projectRegistry.RequiredSignatures {
		v.logger(ctx).Errorw("Project threshold not met", "have", result.ProjectSignatures, "need", projectRegistry.RequiredSignatures)
		return nil, model.ErrInsufficientProjectSignatures
	}

	v.logger(ctx).Debugw("Three-layer validation passed",
		"via", result.VIASignatures, "chain", result.ChainSignatures, "project", result.ProjectSignatures)
	return result, nil
}
