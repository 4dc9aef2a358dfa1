package handlers_test

import (
	"testing"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/events"
	"github.com/vialabs/message-gateway/pkg/handlers"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/monitoring"
	"github.com/vialabs/message-gateway/pkg/quorum"
	"github.com/vialabs/message-gateway/pkg/storage/memory"
	"github.com/vialabs/message-gateway/testutil"
)

const (
	sourceChain model.ChainID = 7000
	localChain  model.ChainID = 7001
)

// gatewayFixture wires the full handler stack over in-memory storage: an
// enabled gateway context for the local chain, a via registry on the local
// chain and a chain registry on the source chain, each with a threshold of
// one.
type gatewayFixture struct {
	storage   *memory.InMemoryStorage
	feed      *events.Feed
	authority *testutil.Ed25519Signer
	relayer   model.SignerKey

	viaSigner   *testutil.Ed25519Signer
	chainSigner *testutil.Ed25519Signer

	admit     *handlers.AdmitMessageHandler
	finalize  *handlers.FinalizeMessageHandler
	send      *handlers.SendMessageHandler
	initGw    *handlers.InitializeGatewayHandler
	setSystem *handlers.SetSystemEnabledHandler
	registry  *handlers.RegistryAdminHandler
	query     *handlers.QueryHandler
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	l := logger.Sugared(logger.Test(t))
	store := memory.NewInMemoryStorage(common.NewRealTimeProvider())
	feed := events.NewFeed(0, common.NewRealTimeProvider())
	validator := quorum.NewThreeLayerValidator(l)
	noop := monitoring.NewNoopGatewayMonitoring()

	f := &gatewayFixture{
		storage:     store,
		feed:        feed,
		authority:   testutil.NewEd25519Signer(t),
		relayer:     model.SignerKey{0x11, 0x22},
		viaSigner:   testutil.NewEd25519Signer(t),
		chainSigner: testutil.NewEd25519Signer(t),
	}
	f.admit = handlers.NewAdmitMessageHandler(store, validator, noop, feed, localChain, false, l)
	f.finalize = handlers.NewFinalizeMessageHandler(store, validator, noop, feed, localChain, l)
	f.send = handlers.NewSendMessageHandler(store, noop, feed, localChain, l)
	f.initGw = handlers.NewInitializeGatewayHandler(store, l)
	f.setSystem = handlers.NewSetSystemEnabledHandler(store, noop, feed, l)
	f.registry = handlers.NewRegistryAdminHandler(store, localChain, l)
	f.query = handlers.NewQueryHandler(store, l)

	ctx := t.Context()
	require.NoError(t, store.CreateGateway(ctx, &model.GatewayContext{
		ChainID:       localChain,
		Authority:     f.authority.Key,
		SystemEnabled: true,
	}))
	for _, reg := range []*model.SignerRegistry{
		{Layer: model.LayerVIA, ChainID: localChain, Authority: f.authority.Key,
			Signers: []model.SignerKey{f.viaSigner.Key}, RequiredSignatures: 1, Enabled: true},
		{Layer: model.LayerChain, ChainID: sourceChain, Authority: f.authority.Key,
			Signers: []model.SignerKey{f.chainSigner.Key}, RequiredSignatures: 1, Enabled: true},
	} {
		require.NoError(t, store.CreateRegistry(ctx, reg))
	}
	return f
}

func (f *gatewayFixture) envelope(messageID uint64) model.MessageEnvelope {
	return testutil.Envelope(messageID, sourceChain, localChain)
}

// quorumSignatures signs the envelope with one via and one chain signer,
// enough for the default thresholds.
func (f *gatewayFixture) quorumSignatures(t *testing.T, envelope model.MessageEnvelope) []handlers.SignatureInput {
	t.Helper()
	hash, err := envelope.Hash()
	require.NoError(t, err)
	return []handlers.SignatureInput{
		f.viaSigner.SignatureInput(hash),
		f.chainSigner.SignatureInput(hash),
	}
}

func (f *gatewayFixture) admitMessage(t *testing.T, envelope model.MessageEnvelope) *handlers.AdmitMessageResponse {
	t.Helper()
	resp, err := f.admit.Handle(t.Context(), &handlers.AdmitMessageRequest{
		Envelope:   envelope,
		Relayer:    f.relayer,
		Signatures: f.quorumSignatures(t, envelope),
	})
	require.NoError(t, err)
	return resp
}

func (f *gatewayFixture) setBreaker(t *testing.T, enabled bool) {
	t.Helper()
	_, err := f.setSystem.Handle(t.Context(), &handlers.SetSystemEnabledRequest{
		ChainID: localChain,
		Caller:  f.authority.Key,
		Enabled: enabled,
	})
	require.NoError(t, err)
}

// gatedAdmitHandler builds an admission handler with the breaker applied to
// admission as well.
func gatedAdmitHandler(t *testing.T, f *gatewayFixture) *handlers.AdmitMessageHandler {
	t.Helper()
	l := logger.Sugared(logger.Test(t))
	return handlers.NewAdmitMessageHandler(f.storage, quorum.NewThreeLayerValidator(l),
		monitoring.NewNoopGatewayMonitoring(), f.feed, localChain, true, l)
}

// eventsOfType filters the feed by event type name.
func (f *gatewayFixture) eventsOfType(name string) []events.Entry {
	var out []events.Entry
	for _, entry := range f.feed.List(0) {
		if entry.Type == name {
			out = append(out, entry)
		}
	}
	return out
}
