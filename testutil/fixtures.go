// Package testutil provides shared helpers for gateway tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/claims"
	"github.com/vialabs/message-gateway/pkg/handlers"
	"github.com/vialabs/message-gateway/pkg/model"
)

// Ed25519Signer is a test signer with a fresh ed25519 keypair.
type Ed25519Signer struct {
	Key  model.SignerKey
	priv ed25519.PrivateKey
}

// NewEd25519Signer generates a fresh ed25519 test signer.
func NewEd25519Signer(t *testing.T) *Ed25519Signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &Ed25519Signer{Key: model.SignerKey(pub), priv: priv}
}

// Sign produces the raw signature over the message hash.
func (s *Ed25519Signer) Sign(hash model.Bytes32) []byte {
	return ed25519.Sign(s.priv, hash[:])
}

// SignatureInput produces a submission-shaped signature over the hash.
func (s *Ed25519Signer) SignatureInput(hash model.Bytes32) handlers.SignatureInput {
	return handlers.SignatureInput{
		Scheme:    handlers.SchemeEd25519,
		Signer:    s.Key,
		Signature: model.ByteSlice(s.Sign(hash)),
	}
}

// Attach verifies and records the claim for hash, returning the verified
// signature ready for quorum validation.
func (s *Ed25519Signer) Attach(t *testing.T, c *claims.VerifiedClaims, hash model.Bytes32) model.MessageSignature {
	t.Helper()
	sig := s.Sign(hash)
	require.NoError(t, c.AttachEd25519(s.Key, sig, hash))
	return model.MessageSignature{Signer: s.Key, Signature: model.ByteSlice(sig)}
}

// ECDSASigner is a test signer with a fresh secp256k1 keypair. Key holds the
// 20-byte address recovered from its signatures.
type ECDSASigner struct {
	Key  model.SignerKey
	priv *ecdsa.PrivateKey
}

// NewECDSASigner generates a fresh secp256k1 test signer.
func NewECDSASigner(t *testing.T) *ECDSASigner {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &ECDSASigner{
		Key:  model.SignerKey(crypto.PubkeyToAddress(priv.PublicKey).Bytes()),
		priv: priv,
	}
}

// Sign produces the 65-byte R||S||V signature over the message hash.
func (s *ECDSASigner) Sign(t *testing.T, hash model.Bytes32) []byte {
	t.Helper()
	sig, err := crypto.Sign(hash[:], s.priv)
	require.NoError(t, err)
	return sig
}

// SignatureInput produces a submission-shaped signature over the hash. The
// signer field stays empty; recovery fills it in.
func (s *ECDSASigner) SignatureInput(t *testing.T, hash model.Bytes32) handlers.SignatureInput {
	t.Helper()
	return handlers.SignatureInput{
		Scheme:    handlers.SchemeECDSA,
		Signature: model.ByteSlice(s.Sign(t, hash)),
	}
}

// Attach verifies and records the claim for hash, returning the verified
// signature ready for quorum validation.
func (s *ECDSASigner) Attach(t *testing.T, c *claims.VerifiedClaims, hash model.Bytes32) model.MessageSignature {
	t.Helper()
	sig := s.Sign(t, hash)
	recovered, err := c.AttachECDSA(sig, hash)
	require.NoError(t, err)
	require.True(t, recovered.Equal(s.Key))
	return model.MessageSignature{Signer: recovered, Signature: model.ByteSlice(sig)}
}

// Envelope returns a valid message envelope with distinct field contents.
func Envelope(messageID uint64, source, dest model.ChainID) model.MessageEnvelope {
	return model.MessageEnvelope{
		MessageID:     model.NewMessageIDFromUint64(messageID),
		SourceChainID: source,
		DestChainID:   dest,
		Sender:        model.ByteSlice("sender-address"),
		Recipient:     model.ByteSlice("recipient-address"),
		OnChainData:   model.ByteSlice("on-chain payload"),
		OffChainData:  model.ByteSlice("off-chain payload"),
	}
}
