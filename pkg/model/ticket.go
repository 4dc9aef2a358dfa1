package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TicketKey identifies a pending ticket: one per (source chain, message id).
type TicketKey struct {
	SourceChainID ChainID   `json:"source_chain_id"`
	MessageID     MessageID `json:"message_id"`
}

func (k TicketKey) String() string {
	return fmt.Sprintf("%d/%s", uint64(k.SourceChainID), k.MessageID)
}

// PendingTicket records a single admitted, not-yet-finalized message. It
// stores no payload beyond the key and enough metadata to reconstruct the
// admission event. At most one ticket exists per key at any time; it is
// destroyed exactly once by finalization.
type PendingTicket struct {
	TicketID      uuid.UUID `json:"ticket_id"`
	SourceChainID ChainID   `json:"source_chain_id"`
	MessageID     MessageID `json:"message_id"`
	Relayer       SignerKey `json:"relayer"`
	CreatedAt     time.Time `json:"created_at"`
}

// Key returns the ticket's replay-guard key.
func (t *PendingTicket) Key() TicketKey {
	return TicketKey{SourceChainID: t.SourceChainID, MessageID: t.MessageID}
}

// HighWaterMark tracks the highest message id ever admitted from one source
// chain. It is an observability aid, never an ordering gate.
type HighWaterMark struct {
	SourceChainID ChainID   `json:"source_chain_id"`
	HighestSeen   MessageID `json:"highest_message_id_seen"`
}

// MessageSignature pairs a signature with the signer that produced it. The
// layer is not declared; it is inferred from registry membership.
type MessageSignature struct {
	Signer    SignerKey `json:"signer"`
	Signature ByteSlice `json:"signature"`
}

// FinalizeResult reports a successful finalization.
type FinalizeResult struct {
	TicketID          uuid.UUID `json:"ticket_id"`
	SourceChainID     ChainID   `json:"source_chain_id"`
	MessageID         MessageID `json:"message_id"`
	DepositReturnedTo SignerKey `json:"deposit_returned_to"`
	VIASignatures     uint8     `json:"via_signatures"`
	ChainSignatures   uint8     `json:"chain_signatures"`
	ProjectSignatures uint8     `json:"project_signatures"`
}

// SendReceipt reports an accepted outbound message.
type SendReceipt struct {
	MessageID   MessageID `json:"message_id"`
	DestChainID ChainID   `json:"dest_chain_id"`
}
