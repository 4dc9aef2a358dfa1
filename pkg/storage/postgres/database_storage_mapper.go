package postgres

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vialabs/message-gateway/pkg/model"
)

type gatewayContextRow struct {
	ChainID       int64     `db:"chain_id"`
	Authority     []byte    `db:"authority"`
	SystemEnabled bool      `db:"system_enabled"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type signerRegistryRow struct {
	Layer              int16     `db:"layer"`
	ChainID            int64     `db:"chain_id"`
	Authority          []byte    `db:"authority"`
	Signers            []byte    `db:"signers"`
	RequiredSignatures int16     `db:"required_signatures"`
	Enabled            bool      `db:"enabled"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type pendingTicketRow struct {
	TicketID      uuid.UUID `db:"ticket_id"`
	SourceChainID int64     `db:"source_chain_id"`
	MessageID     string    `db:"message_id"`
	Relayer       []byte    `db:"relayer"`
	CreatedAt     time.Time `db:"created_at"`
}

type highWaterMarkRow struct {
	SourceChainID int64     `db:"source_chain_id"`
	MessageID     string    `db:"highest_message_id"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Message ids are stored as fixed-width lowercase hex of the big-endian
// 128-bit value so that lexicographic string comparison in SQL matches
// numeric comparison.
func messageIDToHex(id model.MessageID) string {
	return hex.EncodeToString(id[:])
}

func messageIDFromHex(s string) (model.MessageID, error) {
	var id model.MessageID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid message id hex: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("expected %d message id bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func rowToGatewayContext(row *gatewayContextRow) *model.GatewayContext {
	return &model.GatewayContext{
		ChainID:       model.ChainID(row.ChainID),
		Authority:     model.SignerKey(row.Authority),
		SystemEnabled: row.SystemEnabled,
	}
}

func rowToSignerRegistry(row *signerRegistryRow) (*model.SignerRegistry, error) {
	var signers []model.SignerKey
	if err := json.Unmarshal(row.Signers, &signers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signers: %w", err)
	}
	return &model.SignerRegistry{
		Layer:              model.SignerLayer(row.Layer),
		ChainID:            model.ChainID(row.ChainID),
		Authority:          model.SignerKey(row.Authority),
		Signers:            signers,
		RequiredSignatures: uint8(row.RequiredSignatures),
		Enabled:            row.Enabled,
	}, nil
}

func registrySignersToJSON(reg *model.SignerRegistry) ([]byte, error) {
	signers, err := json.Marshal(reg.Signers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signers: %w", err)
	}
	return signers, nil
}

func rowToPendingTicket(row *pendingTicketRow) (*model.PendingTicket, error) {
	messageID, err := messageIDFromHex(row.MessageID)
	if err != nil {
		return nil, err
	}
	return &model.PendingTicket{
		TicketID:      row.TicketID,
		SourceChainID: model.ChainID(row.SourceChainID),
		MessageID:     messageID,
		Relayer:       model.SignerKey(row.Relayer),
		CreatedAt:     row.CreatedAt,
	}, nil
}

func rowToHighWaterMark(row *highWaterMarkRow) (*model.HighWaterMark, error) {
	messageID, err := messageIDFromHex(row.MessageID)
	if err != nil {
		return nil, err
	}
	return &model.HighWaterMark{
		SourceChainID: model.ChainID(row.SourceChainID),
		HighestSeen:   messageID,
	}, nil
}
