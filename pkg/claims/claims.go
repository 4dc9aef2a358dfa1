// Package claims binds platform-verified signatures to gateway calls.
//
// The gateway core never runs signature math inline with admission or
// finalization. The execution context verifies signatures up front and
// records (signer, message hash) claims in a VerifiedClaims capability;
// the engines then only accept a submitted signature if a matching claim
// exists for the exact hash of the current call. This blocks substitution
// attacks where a validly-verified signature for a different message is
// replayed against this one.
package claims

import (
	"encoding/hex"

	"github.com/vialabs/message-gateway/pkg/model"
)

// Claim asserts that a signature by Signer over Hash was verified.
type Claim struct {
	Signer model.SignerKey
	Hash   model.Bytes32
}

func claimKey(signer model.SignerKey, hash model.Bytes32) string {
	return hex.EncodeToString(signer) + ":" + hex.EncodeToString(hash[:])
}

// VerifiedClaims is the capability object carrying every claim attached for
// one operation. A zero-value VerifiedClaims holds no claims; the engines
// treat a nil capability the same way.
type VerifiedClaims struct {
	claims map[string]struct{}
}

// NewVerifiedClaims returns an empty capability.
func NewVerifiedClaims() *VerifiedClaims {
	return &VerifiedClaims{claims: make(map[string]struct{})}
}

func (c *VerifiedClaims) add(signer model.SignerKey, hash model.Bytes32) {
	if c.claims == nil {
		c.claims = make(map[string]struct{})
	}
	c.claims[claimKey(signer, hash)] = struct{}{}
}

// Holds reports whether a claim exists for exactly this signer and hash.
func (c *VerifiedClaims) Holds(signer model.SignerKey, hash model.Bytes32) bool {
	if c == nil || c.claims == nil {
		return false
	}
	_, ok := c.claims[claimKey(signer, hash)]
	return ok
}

// Len returns the number of attached claims.
func (c *VerifiedClaims) Len() int {
	if c == nil {
		return 0
	}
	return len(c.claims)
}

// VerifySignature binds a submitted signature to the capability: the claim
// must name the submitted signer and the hash computed for this call.
// Absence or mismatch fails with model.ErrInvalidSignature.
func VerifySignature(c *VerifiedClaims, sig model.MessageSignature, messageHash model.Bytes32) error {
	if err := model.ValidateMessageHash(messageHash); err != nil {
		return err
	}
	if len(sig.Signer) == 0 || len(sig.Signature) == 0 {
		return model.ErrInvalidSignature
	}
	if !c.Holds(sig.Signer, messageHash) {
		return model.ErrInvalidSignature
	}
	return nil
}
