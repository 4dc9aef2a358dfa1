package claims_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/claims"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/testutil"
)

func testHash(seed byte) model.Bytes32 {
	var h model.Bytes32
	for i := range h {
		h[i] = seed
	}
	return h
}

func TestAttachEd25519_RecordsClaim(t *testing.T) {
	signer := testutil.NewEd25519Signer(t)
	hash := testHash(1)

	c := claims.NewVerifiedClaims()
	sig := signer.Attach(t, c, hash)

	require.True(t, c.Holds(signer.Key, hash))
	require.Equal(t, 1, c.Len())
	require.NoError(t, claims.VerifySignature(c, sig, hash))
}

func TestAttachEd25519_RejectsBadInputs(t *testing.T) {
	signer := testutil.NewEd25519Signer(t)
	hash := testHash(1)

	c := claims.NewVerifiedClaims()

	// Corrupted signature.
	sig := signer.Sign(hash)
	sig[0] ^= 0xff
	require.ErrorIs(t, c.AttachEd25519(signer.Key, sig, hash), model.ErrInvalidSignature)

	// Signature over a different hash.
	require.ErrorIs(t, c.AttachEd25519(signer.Key, signer.Sign(testHash(2)), hash), model.ErrInvalidSignature)

	// Truncated key and signature.
	require.ErrorIs(t, c.AttachEd25519(signer.Key[:16], signer.Sign(hash), hash), model.ErrInvalidSignature)
	require.ErrorIs(t, c.AttachEd25519(signer.Key, signer.Sign(hash)[:32], hash), model.ErrInvalidSignature)

	// Zero hash.
	require.Error(t, c.AttachEd25519(signer.Key, signer.Sign(hash), model.Bytes32{}))

	require.Zero(t, c.Len())
}

func TestAttachECDSA_RecoversSigner(t *testing.T) {
	signer := testutil.NewECDSASigner(t)
	hash := testHash(3)

	c := claims.NewVerifiedClaims()
	recovered, err := c.AttachECDSA(signer.Sign(t, hash), hash)
	require.NoError(t, err)
	require.True(t, recovered.Equal(signer.Key))
	require.True(t, c.Holds(recovered, hash))
}

func TestAttachECDSA_AcceptsLegacyRecoveryID(t *testing.T) {
	signer := testutil.NewECDSASigner(t)
	hash := testHash(4)

	sig := signer.Sign(t, hash)
	sig[64] += 27

	c := claims.NewVerifiedClaims()
	recovered, err := c.AttachECDSA(sig, hash)
	require.NoError(t, err)
	require.True(t, recovered.Equal(signer.Key))
}

func TestAttachECDSA_RejectsBadInputs(t *testing.T) {
	signer := testutil.NewECDSASigner(t)
	hash := testHash(5)

	c := claims.NewVerifiedClaims()

	_, err := c.AttachECDSA(signer.Sign(t, hash)[:64], hash)
	require.ErrorIs(t, err, model.ErrInvalidSignature)

	bad := signer.Sign(t, hash)
	bad[64] = 5
	_, err = c.AttachECDSA(bad, hash)
	require.ErrorIs(t, err, model.ErrInvalidSignature)

	_, err = c.AttachECDSA(signer.Sign(t, hash), model.Bytes32{})
	require.Error(t, err)
}

func TestVerifySignature_BlocksSubstitution(t *testing.T) {
	signer := testutil.NewEd25519Signer(t)
	other := testutil.NewEd25519Signer(t)
	hashA := testHash(6)
	hashB := testHash(7)

	c := claims.NewVerifiedClaims()
	sig := signer.Attach(t, c, hashA)

	// Valid claim replayed against a different message hash.
	require.ErrorIs(t, claims.VerifySignature(c, sig, hashB), model.ErrInvalidSignature)

	// Signer swapped out under a verified signature.
	forged := model.MessageSignature{Signer: other.Key, Signature: sig.Signature}
	require.ErrorIs(t, claims.VerifySignature(c, forged, hashA), model.ErrInvalidSignature)

	// Empty fields never pass.
	require.ErrorIs(t, claims.VerifySignature(c, model.MessageSignature{}, hashA), model.ErrInvalidSignature)
}

func TestVerifySignature_NilCapabilityHoldsNothing(t *testing.T) {
	signer := testutil.NewEd25519Signer(t)
	hash := testHash(8)
	sig := model.MessageSignature{Signer: signer.Key, Signature: model.ByteSlice(signer.Sign(hash))}

	require.ErrorIs(t, claims.VerifySignature(nil, sig, hash), model.ErrInvalidSignature)
	require.False(t, (*claims.VerifiedClaims)(nil).Holds(signer.Key, hash))
	require.Zero(t, (*claims.VerifiedClaims)(nil).Len())
}
