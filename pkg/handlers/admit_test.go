package handlers_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/handlers"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/testutil"
)

func TestAdmit_CreatesTicketAndRecordsMark(t *testing.T) {
	f := newGatewayFixture(t)
	envelope := f.envelope(42)

	resp := f.admitMessage(t, envelope)
	require.NotEqual(t, uuid.Nil, resp.TicketID)
	require.Equal(t, sourceChain, resp.SourceChainID)
	require.Equal(t, envelope.MessageID, resp.MessageID)
	require.False(t, resp.CreatedAt.IsZero())

	ticket, err := f.query.GetTicket(t.Context(), envelope.TicketKey())
	require.NoError(t, err)
	require.True(t, f.relayer.Equal(ticket.Ticket.Relayer))

	mark, err := f.query.GetHighWaterMark(t.Context(), sourceChain)
	require.NoError(t, err)
	require.Equal(t, envelope.MessageID, mark.HighWaterMark.HighestSeen)

	require.Len(t, f.eventsOfType("TicketAdmitted"), 1)
}

func TestAdmit_ReplayRejected(t *testing.T) {
	f := newGatewayFixture(t)
	envelope := f.envelope(42)
	f.admitMessage(t, envelope)

	_, err := f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    f.relayer,
		Signatures: f.quorumSignatures(t, envelope),
	})
	require.ErrorIs(t, err, model.ErrDuplicateTicket)
	require.Len(t, f.eventsOfType("TicketAdmitted"), 1)
}

func TestAdmit_FirstSignatureMustVerify(t *testing.T) {
	f := newGatewayFixture(t)
	envelope := f.envelope(42)
	hash, err := envelope.Hash()
	require.NoError(t, err)

	// Signature over a different envelope's hash.
	otherEnvelope := f.envelope(43)
	otherHash, err := otherEnvelope.Hash()
	require.NoError(t, err)
	sig := f.viaSigner.SignatureInput(otherHash)

	_, err = f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    f.relayer,
		Signatures: []handlers.SignatureInput{sig},
	})
	require.ErrorIs(t, err, model.ErrInvalidSignature)

	// Later entries are not verified at admission; a garbage trailing
	// signature scheme still fails fast, but a valid first entry carries.
	_, err = f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    f.relayer,
		Signatures: []handlers.SignatureInput{f.viaSigner.SignatureInput(hash), f.chainSigner.SignatureInput(hash)},
	})
	require.NoError(t, err)
}

func TestAdmit_SignerNeedNotBeRegistered(t *testing.T) {
	// Admission only proves someone signed this exact message; registry
	// membership is enforced at finalization.
	f := newGatewayFixture(t)
	envelope := f.envelope(42)
	hash, err := envelope.Hash()
	require.NoError(t, err)

	outsider := testutil.NewEd25519Signer(t)
	_, err = f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    f.relayer,
		Signatures: []handlers.SignatureInput{outsider.SignatureInput(hash)},
	})
	require.NoError(t, err)
}

func TestAdmit_RequestValidation(t *testing.T) {
	f := newGatewayFixture(t)
	envelope := f.envelope(42)

	_, err := f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Signatures: f.quorumSignatures(t, envelope),
	})
	require.Error(t, err, "missing relayer")

	_, err = f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope: envelope,
		Relayer:  f.relayer,
	})
	require.Error(t, err, "missing signatures")

	oversized := envelope
	oversized.Sender = make(model.ByteSlice, model.MaxSenderSize+1)
	_, err = f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   oversized,
		Relayer:    f.relayer,
		Signatures: f.quorumSignatures(t, envelope),
	})
	require.ErrorIs(t, err, model.ErrSenderTooLong)
}

func TestAdmit_BreakerGatingIsOptIn(t *testing.T) {
	f := newGatewayFixture(t)
	f.setBreaker(t, false)

	// Default: admission ignores the breaker.
	f.admitMessage(t, f.envelope(42))

	// Opt-in: admission is gated too.
	gated := newGatewayFixture(t)
	gated.setBreaker(t, false)
	envelope := gated.envelope(42)
	gated.admit = gatedAdmitHandler(t, gated)
	_, err := gated.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    gated.relayer,
		Signatures: gated.quorumSignatures(t, envelope),
	})
	require.ErrorIs(t, err, model.ErrSystemDisabled)

	gated.setBreaker(t, true)
	_, err = gated.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    gated.relayer,
		Signatures: gated.quorumSignatures(t, envelope),
	})
	require.NoError(t, err)
}
