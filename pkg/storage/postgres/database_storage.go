package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/smartcontractkit/chainlink-common/pkg/sqlutil"

	pkgcommon "github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// DatabaseStorage is the PostgreSQL-backed implementation of
// common.GatewayStorage. Exactly-once ticket semantics lean on the
// database: creation races resolve through the primary key, consumption
// through DELETE ... RETURNING.
type DatabaseStorage struct {
	ds   sqlutil.DataSource
	lggr logger.SugaredLogger
}

var _ pkgcommon.GatewayStorage = (*DatabaseStorage)(nil)

func NewDatabaseStorage(ds sqlutil.DataSource, lggr logger.SugaredLogger) *DatabaseStorage {
	return &DatabaseStorage{
		ds:   ds,
		lggr: lggr,
	}
}

func (d *DatabaseStorage) logger(ctx context.Context) logger.SugaredLogger {
	return scope.AugmentLogger(ctx, d.lggr)
}

func (d *DatabaseStorage) HealthCheck(ctx context.Context) *pkgcommon.ComponentHealth {
	result := &pkgcommon.ComponentHealth{
		Name:      "postgres_storage",
		Timestamp: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	err := d.ds.GetContext(ctx, &count, "SELECT 1")
	if err != nil {
		result.Status = pkgcommon.HealthStatusUnhealthy
		result.Message = fmt.Sprintf("query failed: %v", err)
		return result
	}

	result.Status = pkgcommon.HealthStatusHealthy
	result.Message = "connected and responsive"
	return result
}

func (d *DatabaseStorage) CreateGateway(ctx context.Context, gw *model.GatewayContext) error {
	stmt := `INSERT INTO gateway_contexts (chain_id, authority, system_enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (chain_id) DO NOTHING`

	result, err := d.ds.ExecContext(ctx, stmt, int64(gw.ChainID), []byte(gw.Authority), gw.SystemEnabled)
	if err != nil {
		return fmt.Errorf("failed to create gateway context: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrDuplicateGateway
	}
	return nil
}

func (d *DatabaseStorage) GetGateway(ctx context.Context, chainID model.ChainID) (*model.GatewayContext, error) {
	stmt := `SELECT chain_id, authority, system_enabled, created_at, updated_at
		FROM gateway_contexts WHERE chain_id = $1`

	var row gatewayContextRow
	err := d.ds.GetContext(ctx, &row, stmt, int64(chainID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get gateway context: %w", err)
	}
	return rowToGatewayContext(&row), nil
}

func (d *DatabaseStorage) UpdateGateway(ctx context.Context, gw *model.GatewayContext) error {
	stmt := `UPDATE gateway_contexts
		SET authority = $2, system_enabled = $3, updated_at = NOW()
		WHERE chain_id = $1`

	result, err := d.ds.ExecContext(ctx, stmt, int64(gw.ChainID), []byte(gw.Authority), gw.SystemEnabled)
	if err != nil {
		return fmt.Errorf("failed to update gateway context: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *DatabaseStorage) CreateRegistry(ctx context.Context, reg *model.SignerRegistry) error {
	signers, err := registrySignersToJSON(reg)
	if err != nil {
		return err
	}

	stmt := `INSERT INTO signer_registries (layer, chain_id, authority, signers, required_signatures, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (layer, chain_id) DO NOTHING`

	result, err := d.ds.ExecContext(ctx, stmt,
		int16(reg.Layer), int64(reg.ChainID), []byte(reg.Authority), signers, int16(reg.RequiredSignatures), reg.Enabled)
	if err != nil {
		return fmt.Errorf("failed to create signer registry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrDuplicateRegistry
	}
	return nil
}

func (d *DatabaseStorage) GetRegistry(ctx context.Context, key model.RegistryKey) (*model.SignerRegistry, error) {
	stmt := `SELECT layer, chain_id, authority, signers, required_signatures, enabled, created_at, updated_at
		FROM signer_registries WHERE layer = $1 AND chain_id = $2`

	var row signerRegistryRow
	err := d.ds.GetContext(ctx, &row, stmt, int16(key.Layer), int64(key.ChainID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get signer registry: %w", err)
	}
	return rowToSignerRegistry(&row)
}

func (d *DatabaseStorage) UpdateRegistry(ctx context.Context, reg *model.SignerRegistry) error {
	signers, err := registrySignersToJSON(reg)
	if err != nil {
		return err
	}

	stmt := `UPDATE signer_registries
		SET authority = $3, signers = $4, required_signatures = $5, enabled = $6, updated_at = NOW()
		WHERE layer = $1 AND chain_id = $2`

	result, err := d.ds.ExecContext(ctx, stmt,
		int16(reg.Layer), int64(reg.ChainID), []byte(reg.Authority), signers, int16(reg.RequiredSignatures), reg.Enabled)
	if err != nil {
		return fmt.Errorf("failed to update signer registry: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (d *DatabaseStorage) CreateTicket(ctx context.Context, ticket *model.PendingTicket) error {
	stmt := `INSERT INTO pending_tickets (ticket_id, source_chain_id, message_id, relayer)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_chain_id, message_id) DO NOTHING`

	result, err := d.ds.ExecContext(ctx, stmt,
		ticket.TicketID, int64(ticket.SourceChainID), messageIDToHex(ticket.MessageID), []byte(ticket.Relayer))
	if err != nil {
		return fmt.Errorf("failed to create pending ticket: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		d.logger(ctx).Infow("Duplicate ticket detected, skipping write", "key", ticket.Key())
		return model.ErrDuplicateTicket
	}
	return nil
}

func (d *DatabaseStorage) GetTicket(ctx context.Context, key model.TicketKey) (*model.PendingTicket, error) {
	stmt := `SELECT ticket_id, source_chain_id, message_id, relayer, created_at
		FROM pending_tickets WHERE source_chain_id = $1 AND message_id = $2`

	var row pendingTicketRow
	err := d.ds.GetContext(ctx, &row, stmt, int64(key.SourceChainID), messageIDToHex(key.MessageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending ticket: %w", err)
	}
	return rowToPendingTicket(&row)
}

func (d *DatabaseStorage) ConsumeTicket(ctx context.Context, key model.TicketKey) (*model.PendingTicket, error) {
	stmt := `DELETE FROM pending_tickets
		WHERE source_chain_id = $1 AND message_id = $2
		RETURNING ticket_id, source_chain_id, message_id, relayer, created_at`

	var row pendingTicketRow
	err := d.ds.GetContext(ctx, &row, stmt, int64(key.SourceChainID), messageIDToHex(key.MessageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume pending ticket: %w", err)
	}
	return rowToPendingTicket(&row)
}

func (d *DatabaseStorage) RecordAdmission(ctx context.Context, sourceChainID model.ChainID, messageID model.MessageID) error {
	stmt := `INSERT INTO high_water_marks (source_chain_id, highest_message_id)
		VALUES ($1, $2)
		ON CONFLICT (source_chain_id) DO UPDATE
		SET highest_message_id = GREATEST(high_water_marks.highest_message_id, EXCLUDED.highest_message_id),
		    updated_at = NOW()`

	_, err := d.ds.ExecContext(ctx, stmt, int64(sourceChainID), messageIDToHex(messageID))
	if err != nil {
		return fmt.Errorf("failed to record admission high-water mark: %w", err)
	}
	return nil
}

func (d *DatabaseStorage) GetHighWaterMark(ctx context.Context, sourceChainID model.ChainID) (*model.HighWaterMark, error) {
	stmt := `SELECT source_chain_id, highest_message_id, updated_at
		FROM high_water_marks WHERE source_chain_id = $1`

	var row highWaterMarkRow
	err := d.ds.GetContext(ctx, &row, stmt, int64(sourceChainID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get high-water mark: %w", err)
	}
	return rowToHighWaterMark(&row)
}
