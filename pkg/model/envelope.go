package model

import (
	"bytes"
	"encoding/binary"
)

// Size bounds shared with every other gateway deployment. Oversized fields
// are rejected before hashing so the canonical encoding stays unambiguous.
const (
	MaxSenderSize       = 64
	MaxRecipientSize    = 64
	MaxOnChainDataSize  = 1024
	MaxOffChainDataSize = 1024

	// MaxSignaturesPerMessage bounds a single submission.
	MaxSignaturesPerMessage = 32
	// MinSignaturesRequired is the floor for any submission.
	MinSignaturesRequired = 1
)

// MessageEnvelope carries the parameters of one cross-chain message for the
// duration of a single admission or finalization call. It is never persisted.
type MessageEnvelope struct {
	MessageID     MessageID `json:"message_id"`
	SourceChainID ChainID   `json:"source_chain_id"`
	DestChainID   ChainID   `json:"dest_chain_id"`
	Sender        ByteSlice `json:"sender"`
	Recipient     ByteSlice `json:"recipient"`
	OnChainData   ByteSlice `json:"on_chain_data"`
	OffChainData  ByteSlice `json:"off_chain_data"`
}

// Validate checks the size bounds on the envelope's variable-length fields.
func (e *MessageEnvelope) Validate() error {
	if len(e.Sender) > MaxSenderSize {
		return ErrSenderTooLong
	}
	if len(e.Recipient) > MaxRecipientSize {
		return ErrRecipientTooLong
	}
	if len(e.OnChainData) > MaxOnChainDataSize {
		return ErrOnChainDataTooLarge
	}
	if len(e.OffChainData) > MaxOffChainDataSize {
		return ErrOffChainDataTooLarge
	}
	return nil
}

// CanonicalEncode returns the deterministic byte layout every signer commits
// to: message id as 16-byte little-endian, source and dest chain ids as
// 8-byte little-endian, then sender, recipient, on-chain data and off-chain
// data each prefixed with a 4-byte little-endian length.
func (e *MessageEnvelope) CanonicalEncode() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	_, _ = buf.Write(e.MessageID.LittleEndianBytes())

	if err := binary.Write(&buf, binary.LittleEndian, uint64(e.SourceChainID)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint64(e.DestChainID)); err != nil {
		return nil, err
	}

	for _, field := range [][]byte{e.Sender, e.Recipient, e.OnChainData, e.OffChainData} {
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(field))); err != nil { //nolint:gosec // G115: lengths bounded by Validate
			return nil, err
		}
		_, _ = buf.Write(field)
	}

	return buf.Bytes(), nil
}

// Hash returns the keccak-256 message hash of the canonical encoding. This
// is the exact 32-byte value every signer signs.
func (e *MessageEnvelope) Hash() (Bytes32, error) {
	encoded, err := e.CanonicalEncode()
	if err != nil {
		return Bytes32{}, err
	}
	return Keccak256(encoded), nil
}

// TicketKey returns the replay-guard key of this envelope.
func (e *MessageEnvelope) TicketKey() TicketKey {
	return TicketKey{SourceChainID: e.SourceChainID, MessageID: e.MessageID}
}

// ValidateMessageHash rejects the all-zero hash, which no well-formed
// envelope produces.
func ValidateMessageHash(hash Bytes32) error {
	if hash == (Bytes32{}) {
		return ErrInvalidMessageHash
	}
	return nil
}
