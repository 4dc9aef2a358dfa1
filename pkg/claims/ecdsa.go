package claims

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vialabs/message-gateway/pkg/model"
)

// ECDSASignatureSize is the raw signature size for the secp256k1 scheme:
// R||S||V with a 0/1 recovery id.
const ECDSASignatureSize = 65

// AttachECDSA recovers the secp256k1 signer of a 65-byte R||S||V signature
// over the message hash, records the claim, and returns the recovered
// 20-byte address as the signer key. EVM-side Via signers use this scheme.
func (c *VerifiedClaims) AttachECDSA(signature []byte, messageHash model.Bytes32) (model.SignerKey, error) {
	if len(signature) != ECDSASignatureSize {
		return nil, fmt.Errorf("ecdsa signature must be %d bytes, got %d: %w", ECDSASignatureSize, len(signature), model.ErrInvalidSignature)
	}
	if err := model.ValidateMessageHash(messageHash); err != nil {
		return nil, err
	}

	sig := make([]byte, ECDSASignatureSize)
	copy(sig, signature)
	// Accept both conventions: 27/28 or 0/1.
	if sig[64] == 27 || sig[64] == 28 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return nil, fmt.Errorf("invalid recovery id %d: %w", sig[64], model.ErrInvalidSignature)
	}

	pubKey, err := crypto.Ecrecover(messageHash[:], sig)
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: %w", model.ErrInvalidSignature)
	}
	unmarshalledPub, err := crypto.UnmarshalPubkey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal public key: %w", model.ErrInvalidSignature)
	}

	signer := model.SignerKey(crypto.PubkeyToAddress(*unmarshalledPub).Bytes())
	c.add(signer, messageHash)
	return signer, nil
}
