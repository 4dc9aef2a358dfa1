package common

import (
	"context"

	"github.com/vialabs/message-gateway/pkg/model"
)

// Event is a gateway protocol event delivered to the sink.
type Event any

// SendRequested is emitted when an outbound message is accepted.
type SendRequested struct {
	MessageID     model.MessageID `json:"message_id"`
	Sender        model.SignerKey `json:"sender"`
	Recipient     model.ByteSlice `json:"recipient"`
	DestChainID   model.ChainID   `json:"dest_chain_id"`
	ChainData     model.ByteSlice `json:"chain_data"`
	Confirmations uint16          `json:"confirmations"`
}

// TicketAdmitted is emitted when a pending ticket is created.
type TicketAdmitted struct {
	MessageID     model.MessageID `json:"message_id"`
	SourceChainID model.ChainID   `json:"source_chain_id"`
}

// MessageFinalized is emitted when a message is applied and its ticket
// consumed.
type MessageFinalized struct {
	MessageID     model.MessageID `json:"message_id"`
	SourceChainID model.ChainID   `json:"source_chain_id"`
	Relayer       model.SignerKey `json:"relayer"`
}

// SystemStatusChanged is emitted when the circuit breaker flips.
type SystemStatusChanged struct {
	Enabled bool `json:"enabled"`
}

// Sink receives protocol events for off-process consumers (relayers poll
// these the way they poll chain events).
type Sink interface {
	Emit(ctx context.Context, event Event) error
}
