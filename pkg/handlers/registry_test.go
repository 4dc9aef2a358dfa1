package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/handlers"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/testutil"
)

func signerKeys(signers ...*testutil.Ed25519Signer) []model.SignerKey {
	keys := make([]model.SignerKey, len(signers))
	for i, s := range signers {
		keys[i] = s.Key
	}
	return keys
}

func initProjectRegistry(t *testing.T, f *gatewayFixture, signers []model.SignerKey, threshold uint8) *model.SignerRegistry {
	t.Helper()
	resp, err := f.registry.Initialize(t.Context(), &handlers.InitializeRegistryRequest{
		Layer:              model.LayerProject,
		ChainID:            sourceChain,
		Authority:          f.authority.Key,
		Signers:            signers,
		RequiredSignatures: threshold,
		Enabled:            true,
	})
	require.NoError(t, err)
	return resp.Registry
}

func TestRegistryInitialize(t *testing.T) {
	f := newGatewayFixture(t)
	signers := signerKeys(testutil.NewEd25519Signer(t), testutil.NewEd25519Signer(t))

	reg := initProjectRegistry(t, f, signers, 2)
	require.Equal(t, model.LayerProject, reg.Layer)
	require.Equal(t, uint8(2), reg.RequiredSignatures)

	// Same key cannot be re-initialized.
	_, err := f.registry.Initialize(t.Context(), &handlers.InitializeRegistryRequest{
		Layer:              model.LayerProject,
		ChainID:            sourceChain,
		Authority:          f.authority.Key,
		Signers:            signers,
		RequiredSignatures: 1,
		Enabled:            true,
	})
	require.ErrorIs(t, err, model.ErrDuplicateRegistry)
}

func TestRegistryInitialize_Validation(t *testing.T) {
	f := newGatewayFixture(t)
	signer := testutil.NewEd25519Signer(t)

	tests := []struct {
		name    string
		req     *handlers.InitializeRegistryRequest
		wantErr error
	}{
		{
			"threshold above signer count",
			&handlers.InitializeRegistryRequest{
				Layer: model.LayerProject, ChainID: sourceChain, Authority: f.authority.Key,
				Signers: signerKeys(signer), RequiredSignatures: 2, Enabled: true,
			},
			model.ErrThresholdTooHigh,
		},
		{
			"zero threshold",
			&handlers.InitializeRegistryRequest{
				Layer: model.LayerProject, ChainID: sourceChain, Authority: f.authority.Key,
				Signers: signerKeys(signer), RequiredSignatures: 0, Enabled: true,
			},
			model.ErrInvalidThreshold,
		},
		{
			"duplicate signers",
			&handlers.InitializeRegistryRequest{
				Layer: model.LayerProject, ChainID: sourceChain, Authority: f.authority.Key,
				Signers: []model.SignerKey{signer.Key, signer.Key}, RequiredSignatures: 1, Enabled: true,
			},
			model.ErrDuplicateSigner,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.registry.Initialize(t.Context(), tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegistryInitialize_RequiresGatewayAuthority(t *testing.T) {
	f := newGatewayFixture(t)
	attacker := testutil.NewEd25519Signer(t)

	// An unconfigured source chain must not let an arbitrary caller mint its
	// quorum: without the gate, one forged key as both via and chain registry
	// would finalize any message from that chain.
	for _, layer := range []model.SignerLayer{model.LayerVIA, model.LayerChain} {
		_, err := f.registry.Initialize(t.Context(), &handlers.InitializeRegistryRequest{
			Layer:              layer,
			ChainID:            9999,
			Authority:          attacker.Key,
			Signers:            signerKeys(attacker),
			RequiredSignatures: 1,
			Enabled:            true,
		})
		require.ErrorIs(t, err, model.ErrUnauthorizedAuthority)

		_, err = f.query.GetRegistry(t.Context(), model.RegistryKey{Layer: layer, ChainID: 9999})
		require.ErrorIs(t, err, model.ErrNotFound)
	}
}

func TestRegistryMutations_AuthorityGated(t *testing.T) {
	f := newGatewayFixture(t)
	attacker := testutil.NewEd25519Signer(t)
	newSigner := testutil.NewEd25519Signer(t)

	_, err := f.registry.AddSigner(t.Context(), &handlers.AddSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: attacker.Key, Signer: newSigner.Key,
	})
	require.ErrorIs(t, err, model.ErrUnauthorizedAuthority)

	_, err = f.registry.SetEnabled(t.Context(), &handlers.SetRegistryEnabledRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: attacker.Key, Enabled: false,
	})
	require.ErrorIs(t, err, model.ErrUnauthorizedAuthority)
}

func TestRegistryAddRemoveSigner(t *testing.T) {
	f := newGatewayFixture(t)
	extra := testutil.NewEd25519Signer(t)

	resp, err := f.registry.AddSigner(t.Context(), &handlers.AddSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signer: extra.Key,
	})
	require.NoError(t, err)
	require.Len(t, resp.Registry.Signers, 2)

	// Re-adding the same signer fails.
	_, err = f.registry.AddSigner(t.Context(), &handlers.AddSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signer: extra.Key,
	})
	require.ErrorIs(t, err, model.ErrDuplicateSigner)

	resp, err = f.registry.RemoveSigner(t.Context(), &handlers.RemoveSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signer: extra.Key,
	})
	require.NoError(t, err)
	require.Len(t, resp.Registry.Signers, 1)

	// Removing an absent signer fails.
	_, err = f.registry.RemoveSigner(t.Context(), &handlers.RemoveSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signer: extra.Key,
	})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegistryRemoveSigner_CannotBreakThreshold(t *testing.T) {
	f := newGatewayFixture(t)

	// The via registry has one signer and threshold one; removal would leave
	// the threshold unreachable.
	_, err := f.registry.RemoveSigner(t.Context(), &handlers.RemoveSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signer: f.viaSigner.Key,
	})
	require.ErrorIs(t, err, model.ErrThresholdTooHigh)
}

func TestRegistryAddSigner_RespectsCap(t *testing.T) {
	f := newGatewayFixture(t)

	for i := len(signerKeys(f.viaSigner)); i < model.MaxSignersPerRegistry; i++ {
		_, err := f.registry.AddSigner(t.Context(), &handlers.AddSignerRequest{
			Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key,
			Signer: testutil.NewEd25519Signer(t).Key,
		})
		require.NoError(t, err)
	}

	_, err := f.registry.AddSigner(t.Context(), &handlers.AddSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key,
		Signer: testutil.NewEd25519Signer(t).Key,
	})
	require.ErrorIs(t, err, model.ErrTooManySignatures)
}

func TestRegistryUpdateSigners(t *testing.T) {
	f := newGatewayFixture(t)
	replacement := signerKeys(testutil.NewEd25519Signer(t), testutil.NewEd25519Signer(t))

	resp, err := f.registry.UpdateSigners(t.Context(), &handlers.UpdateSignersRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signers: replacement,
	})
	require.NoError(t, err)
	require.Len(t, resp.Registry.Signers, 2)

	// A replacement smaller than the current threshold is rejected.
	_, err = f.registry.UpdateThreshold(t.Context(), &handlers.UpdateThresholdRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, RequiredSignatures: 2,
	})
	require.NoError(t, err)
	_, err = f.registry.UpdateSigners(t.Context(), &handlers.UpdateSignersRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key,
		Signers: signerKeys(testutil.NewEd25519Signer(t)),
	})
	require.ErrorIs(t, err, model.ErrThresholdTooHigh)
}

func TestRegistryUpdateThreshold(t *testing.T) {
	f := newGatewayFixture(t)
	extra := testutil.NewEd25519Signer(t)
	_, err := f.registry.AddSigner(t.Context(), &handlers.AddSignerRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Signer: extra.Key,
	})
	require.NoError(t, err)

	resp, err := f.registry.UpdateThreshold(t.Context(), &handlers.UpdateThresholdRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, RequiredSignatures: 2,
	})
	require.NoError(t, err)
	require.Equal(t, uint8(2), resp.Registry.RequiredSignatures)

	_, err = f.registry.UpdateThreshold(t.Context(), &handlers.UpdateThresholdRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, RequiredSignatures: 3,
	})
	require.ErrorIs(t, err, model.ErrThresholdTooHigh)

	_, err = f.registry.UpdateThreshold(t.Context(), &handlers.UpdateThresholdRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, RequiredSignatures: 0,
	})
	require.ErrorIs(t, err, model.ErrInvalidThreshold)
}

func TestRegistrySetEnabled_AffectsFinalization(t *testing.T) {
	f := newGatewayFixture(t)
	envelope := f.envelope(42)
	f.admitMessage(t, envelope)

	_, err := f.registry.SetEnabled(t.Context(), &handlers.SetRegistryEnabledRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Enabled: false,
	})
	require.NoError(t, err)

	_, err = f.finalize.Handle(t.Context(), &handlers.FinalizeMessageRequest{
		Envelope:   envelope,
		Signatures: f.quorumSignatures(t, envelope),
	})
	require.ErrorIs(t, err, model.ErrSignerRegistryDisabled)

	_, err = f.registry.SetEnabled(t.Context(), &handlers.SetRegistryEnabledRequest{
		Layer: model.LayerVIA, ChainID: localChain, Caller: f.authority.Key, Enabled: true,
	})
	require.NoError(t, err)
	_, err = f.finalize.Handle(t.Context(), &handlers.FinalizeMessageRequest{
		Envelope:   envelope,
		Signatures: f.quorumSignatures(t, envelope),
	})
	require.NoError(t, err)
}
