package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
)

func newTestStorage() (*InMemoryStorage, *common.MockTimeProvider) {
	tp := common.NewMockTimeProvider(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	return NewInMemoryStorage(tp), tp
}

func ticket(source model.ChainID, messageID uint64) *model.PendingTicket {
	return &model.PendingTicket{
		TicketID:      uuid.New(),
		SourceChainID: source,
		MessageID:     model.NewMessageIDFromUint64(messageID),
		Relayer:       model.SignerKey{0x01, 0x02},
	}
}

func TestGatewayLifecycle(t *testing.T) {
	s, _ := newTestStorage()
	ctx := t.Context()

	gw := &model.GatewayContext{ChainID: 7000, Authority: model.SignerKey{0xaa}, SystemEnabled: true}
	require.NoError(t, s.CreateGateway(ctx, gw))
	require.ErrorIs(t, s.CreateGateway(ctx, gw), model.ErrDuplicateGateway)

	got, err := s.GetGateway(ctx, 7000)
	require.NoError(t, err)
	require.Equal(t, gw, got)

	// Reads return copies, not aliases.
	got.SystemEnabled = false
	again, err := s.GetGateway(ctx, 7000)
	require.NoError(t, err)
	require.True(t, again.SystemEnabled)

	got.ChainID = 7000
	require.NoError(t, s.UpdateGateway(ctx, got))
	updated, err := s.GetGateway(ctx, 7000)
	require.NoError(t, err)
	require.False(t, updated.SystemEnabled)

	_, err = s.GetGateway(ctx, 9999)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, s.UpdateGateway(ctx, &model.GatewayContext{ChainID: 9999}), model.ErrNotFound)
}

func TestRegistryLifecycle(t *testing.T) {
	s, _ := newTestStorage()
	ctx := t.Context()

	reg := &model.SignerRegistry{
		Layer:              model.LayerVIA,
		ChainID:            7000,
		Authority:          model.SignerKey{0xaa},
		Signers:            []model.SignerKey{{0x01}, {0x02}},
		RequiredSignatures: 1,
		Enabled:            true,
	}
	require.NoError(t, s.CreateRegistry(ctx, reg))
	require.ErrorIs(t, s.CreateRegistry(ctx, reg), model.ErrDuplicateRegistry)

	// Same chain, different layer is a distinct registry.
	chainReg := reg.Clone()
	chainReg.Layer = model.LayerChain
	require.NoError(t, s.CreateRegistry(ctx, chainReg))

	got, err := s.GetRegistry(ctx, reg.Key())
	require.NoError(t, err)
	require.Equal(t, reg, got)

	got.RequiredSignatures = 2
	require.NoError(t, s.UpdateRegistry(ctx, got))
	updated, err := s.GetRegistry(ctx, reg.Key())
	require.NoError(t, err)
	require.Equal(t, uint8(2), updated.RequiredSignatures)

	_, err = s.GetRegistry(ctx, model.RegistryKey{Layer: model.LayerProject, ChainID: 7000})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestTicket_ExactlyOnce(t *testing.T) {
	s, tp := newTestStorage()
	ctx := t.Context()

	tk := ticket(7000, 42)
	require.NoError(t, s.CreateTicket(ctx, tk))
	require.ErrorIs(t, s.CreateTicket(ctx, ticket(7000, 42)), model.ErrDuplicateTicket)

	got, err := s.GetTicket(ctx, tk.Key())
	require.NoError(t, err)
	require.Equal(t, tk.TicketID, got.TicketID)
	require.Equal(t, tp.Now(), got.CreatedAt)

	consumed, err := s.ConsumeTicket(ctx, tk.Key())
	require.NoError(t, err)
	require.Equal(t, tk.TicketID, consumed.TicketID)

	_, err = s.ConsumeTicket(ctx, tk.Key())
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetTicket(ctx, tk.Key())
	require.ErrorIs(t, err, model.ErrNotFound)

	// The key is free again after consumption.
	require.NoError(t, s.CreateTicket(ctx, ticket(7000, 42)))
}

func TestTicket_KeyIsSourceChainAndMessageID(t *testing.T) {
	s, _ := newTestStorage()
	ctx := t.Context()

	require.NoError(t, s.CreateTicket(ctx, ticket(7000, 42)))
	// Same message id from another source chain is a different ticket.
	require.NoError(t, s.CreateTicket(ctx, ticket(7001, 42)))
	require.NoError(t, s.CreateTicket(ctx, ticket(7000, 43)))
}

func TestTicket_ConcurrentCreate_SingleWinner(t *testing.T) {
	s, _ := newTestStorage()
	ctx := t.Context()

	const workers = 32
	var wg sync.WaitGroup
	var successes sync.Map
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.CreateTicket(ctx, ticket(7000, 42)); err == nil {
				successes.Store(i, struct{}{})
			}
		}(i)
	}
	wg.Wait()

	count := 0
	successes.Range(func(any, any) bool { count++; return true })
	require.Equal(t, 1, count)
}

func TestTicket_ConcurrentConsume_SingleWinner(t *testing.T) {
	s, _ := newTestStorage()
	ctx := t.Context()
	require.NoError(t, s.CreateTicket(ctx, ticket(7000, 42)))

	const workers = 32
	var wg sync.WaitGroup
	var wins sync.Map
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.ConsumeTicket(ctx, model.TicketKey{SourceChainID: 7000, MessageID: model.NewMessageIDFromUint64(42)}); err == nil {
				wins.Store(i, struct{}{})
			}
		}(i)
	}
	wg.Wait()

	count := 0
	wins.Range(func(any, any) bool { count++; return true })
	require.Equal(t, 1, count)
}

func TestHighWaterMark_MaxSemantics(t *testing.T) {
	s, _ := newTestStorage()
	ctx := t.Context()

	_, err := s.GetHighWaterMark(ctx, 7000)
	require.ErrorIs(t, err, model.ErrNotFound)

	steps := []struct {
		admit uint64
		want  uint64
	}{
		{100, 100},
		{50, 100},
		{200, 200},
		{75, 200},
	}
	for _, step := range steps {
		require.NoError(t, s.RecordAdmission(ctx, 7000, model.NewMessageIDFromUint64(step.admit)))
		mark, err := s.GetHighWaterMark(ctx, 7000)
		require.NoError(t, err)
		require.Equal(t, model.NewMessageIDFromUint64(step.want), mark.HighestSeen)
	}

	// Marks are tracked per source chain.
	require.NoError(t, s.RecordAdmission(ctx, 7001, model.NewMessageIDFromUint64(5)))
	mark, err := s.GetHighWaterMark(ctx, 7001)
	require.NoError(t, err)
	require.Equal(t, model.NewMessageIDFromUint64(5), mark.HighestSeen)
}

func TestHealthCheck(t *testing.T) {
	s, _ := newTestStorage()
	health := s.HealthCheck(t.Context())
	require.Equal(t, common.HealthStatusHealthy, health.Status)
	require.Equal(t, "storage-memory", health.Name)
}
