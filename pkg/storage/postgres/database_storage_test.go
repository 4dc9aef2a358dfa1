package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/testutil"
)

func setupStorage(t *testing.T) *DatabaseStorage {
	t.Helper()
	db := testutil.SetupTestPostgresDB(t)
	require.NoError(t, RunMigrations(db, "postgres"))
	return NewDatabaseStorage(db, logger.Sugared(logger.Test(t)))
}

func pgTicket(source model.ChainID, messageID uint64) *model.PendingTicket {
	return &model.PendingTicket{
		TicketID:      uuid.New(),
		SourceChainID: source,
		MessageID:     model.NewMessageIDFromUint64(messageID),
		Relayer:       model.SignerKey{0x01, 0x02, 0x03},
	}
}

func TestDatabaseStorage_GatewayLifecycle(t *testing.T) {
	s := setupStorage(t)
	ctx := t.Context()

	gw := &model.GatewayContext{ChainID: 7000, Authority: model.SignerKey{0xaa, 0xbb}, SystemEnabled: true}
	require.NoError(t, s.CreateGateway(ctx, gw))
	require.ErrorIs(t, s.CreateGateway(ctx, gw), model.ErrDuplicateGateway)

	got, err := s.GetGateway(ctx, 7000)
	require.NoError(t, err)
	require.Equal(t, gw.ChainID, got.ChainID)
	require.True(t, gw.Authority.Equal(got.Authority))
	require.True(t, got.SystemEnabled)

	got.SystemEnabled = false
	require.NoError(t, s.UpdateGateway(ctx, got))
	updated, err := s.GetGateway(ctx, 7000)
	require.NoError(t, err)
	require.False(t, updated.SystemEnabled)

	_, err = s.GetGateway(ctx, 9999)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, s.UpdateGateway(ctx, &model.GatewayContext{ChainID: 9999}), model.ErrNotFound)
}

func TestDatabaseStorage_RegistryLifecycle(t *testing.T) {
	s := setupStorage(t)
	ctx := t.Context()

	reg := &model.SignerRegistry{
		Layer:              model.LayerVIA,
		ChainID:            7000,
		Authority:          model.SignerKey{0xaa},
		Signers:            []model.SignerKey{{0x01}, {0x02}},
		RequiredSignatures: 2,
		Enabled:            true,
	}
	require.NoError(t, s.CreateRegistry(ctx, reg))
	require.ErrorIs(t, s.CreateRegistry(ctx, reg), model.ErrDuplicateRegistry)

	chainReg := reg.Clone()
	chainReg.Layer = model.LayerChain
	require.NoError(t, s.CreateRegistry(ctx, chainReg))

	got, err := s.GetRegistry(ctx, reg.Key())
	require.NoError(t, err)
	require.Equal(t, reg.Layer, got.Layer)
	require.Equal(t, reg.RequiredSignatures, got.RequiredSignatures)
	require.Len(t, got.Signers, 2)
	require.True(t, got.Signers[0].Equal(reg.Signers[0]))

	got.Enabled = false
	got.RequiredSignatures = 1
	require.NoError(t, s.UpdateRegistry(ctx, got))
	updated, err := s.GetRegistry(ctx, reg.Key())
	require.NoError(t, err)
	require.False(t, updated.Enabled)
	require.Equal(t, uint8(1), updated.RequiredSignatures)

	_, err = s.GetRegistry(ctx, model.RegistryKey{Layer: model.LayerProject, ChainID: 7000})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestDatabaseStorage_TicketExactlyOnce(t *testing.T) {
	s := setupStorage(t)
	ctx := t.Context()

	tk := pgTicket(7000, 42)
	require.NoError(t, s.CreateTicket(ctx, tk))
	require.ErrorIs(t, s.CreateTicket(ctx, pgTicket(7000, 42)), model.ErrDuplicateTicket)
	// Distinct keys are unaffected.
	require.NoError(t, s.CreateTicket(ctx, pgTicket(7001, 42)))

	got, err := s.GetTicket(ctx, tk.Key())
	require.NoError(t, err)
	require.Equal(t, tk.TicketID, got.TicketID)
	require.True(t, tk.Relayer.Equal(got.Relayer))
	require.False(t, got.CreatedAt.IsZero())

	consumed, err := s.ConsumeTicket(ctx, tk.Key())
	require.NoError(t, err)
	require.Equal(t, tk.TicketID, consumed.TicketID)

	_, err = s.ConsumeTicket(ctx, tk.Key())
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetTicket(ctx, tk.Key())
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.CreateTicket(ctx, pgTicket(7000, 42)))
}

func TestDatabaseStorage_HighWaterMark(t *testing.T) {
	s := setupStorage(t)
	ctx := t.Context()

	_, err := s.GetHighWaterMark(ctx, 7000)
	require.ErrorIs(t, err, model.ErrNotFound)

	for _, step := range []struct{ admit, want uint64 }{
		{100, 100}, {50, 100}, {200, 200}, {75, 200},
	} {
		require.NoError(t, s.RecordAdmission(ctx, 7000, model.NewMessageIDFromUint64(step.admit)))
		mark, err := s.GetHighWaterMark(ctx, 7000)
		require.NoError(t, err)
		require.Equal(t, model.NewMessageIDFromUint64(step.want), mark.HighestSeen)
	}
}

func TestDatabaseStorage_HighWaterMark_Wide128BitOrdering(t *testing.T) {
	s := setupStorage(t)
	ctx := t.Context()

	// A value above 64 bits must still order above any 64-bit value in the
	// stored fixed-width hex form.
	wide := model.MessageID{}
	wide[0] = 0x01
	require.NoError(t, s.RecordAdmission(ctx, 7000, model.NewMessageIDFromUint64(1<<62)))
	require.NoError(t, s.RecordAdmission(ctx, 7000, wide))
	require.NoError(t, s.RecordAdmission(ctx, 7000, model.NewMessageIDFromUint64(2)))

	mark, err := s.GetHighWaterMark(ctx, 7000)
	require.NoError(t, err)
	require.Equal(t, wide, mark.HighestSeen)
}

func TestDatabaseStorage_HealthCheck(t *testing.T) {
	s := setupStorage(t)
	health := s.HealthCheck(t.Context())
	require.Equal(t, common.HealthStatusHealthy, health.Status)
}

func TestDatabaseStorage_MigrationsAreIdempotent(t *testing.T) {
	t.Helper()
	db := testutil.SetupTestPostgresDB(t)
	require.NoError(t, RunMigrations(db, "postgres"))
	require.NoError(t, RunMigrations(db, "postgres"))
}
