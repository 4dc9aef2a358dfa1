package claims

import (
	"crypto/ed25519"
	"fmt"

	"github.com/vialabs/message-gateway/pkg/model"
)

// Ed25519SignatureSize is the raw signature size for the ed25519 scheme.
const Ed25519SignatureSize = ed25519.SignatureSize

// AttachEd25519 verifies an ed25519 signature over the message hash and, on
// success, records the (signer, hash) claim. The signer key must be a
// 32-byte ed25519 public key.
func (c *VerifiedClaims) AttachEd25519(signer model.SignerKey, signature []byte, messageHash model.Bytes32) error {
	if len(signer) != ed25519.PublicKeySize {
		return fmt.Errorf("ed25519 signer must be %d bytes, got %d: %w", ed25519.PublicKeySize, len(signer), model.ErrInvalidSignature)
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("ed25519 signature must be %d bytes, got %d: %w", ed25519.SignatureSize, len(signature), model.ErrInvalidSignature)
	}
	if err := model.ValidateMessageHash(messageHash); err != nil {
		return err
	}
	if !ed25519.Verify(ed25519.PublicKey(signer), messageHash[:], signature) {
		return fmt.Errorf("ed25519 verification failed for signer %s: %w", signer, model.ErrInvalidSignature)
	}
	c.add(signer, messageHash)
	return nil
}
