// Package handlers implements the gateway operations exposed over the API
// surface. Each handler owns one operation and is safe for concurrent use.
package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/vialabs/message-gateway/pkg/model"
)

// Signature schemes accepted on submissions.
const (
	SchemeEd25519 = "ed25519"
	SchemeECDSA   = "ecdsa"
)

// SignatureInput is one submitted signature. Ed25519 submissions carry the
// signer public key explicitly; ECDSA submissions recover the signer address
// from the signature itself.
type SignatureInput struct {
	Scheme    string          `json:"scheme"`
	Signer    model.SignerKey `json:"signer,omitempty"`
	Signature model.ByteSlice `json:"signature"`
}

// AdmitMessageRequest asks the gateway to open a pending ticket for an
// inbound message.
type AdmitMessageRequest struct {
	Envelope   model.MessageEnvelope `json:"envelope"`
	Relayer    model.SignerKey       `json:"relayer"`
	Signatures []SignatureInput      `json:"signatures"`
}

type AdmitMessageResponse struct {
	TicketID      uuid.UUID       `json:"ticket_id"`
	SourceChainID model.ChainID   `json:"source_chain_id"`
	MessageID     model.MessageID `json:"message_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FinalizeMessageRequest asks the gateway to verify and finalize an admitted
// message, consuming its ticket.
type FinalizeMessageRequest struct {
	Envelope   model.MessageEnvelope `json:"envelope"`
	Signatures []SignatureInput      `json:"signatures"`
}

type FinalizeMessageResponse struct {
	Result *model.FinalizeResult `json:"result"`
}

// SendMessageRequest asks the gateway to accept an outbound message.
type SendMessageRequest struct {
	Sender        model.SignerKey `json:"sender"`
	Recipient     model.ByteSlice `json:"recipient"`
	DestChainID   model.ChainID   `json:"dest_chain_id"`
	ChainData     model.ByteSlice `json:"chain_data"`
	Confirmations uint16          `json:"confirmations"`
}

type SendMessageResponse struct {
	Receipt *model.SendReceipt `json:"receipt"`
}

// InitializeGatewayRequest creates the administrative record for a chain.
// The submitted authority becomes the admin for all later mutations.
type InitializeGatewayRequest struct {
	ChainID   model.ChainID   `json:"chain_id"`
	Authority model.SignerKey `json:"authority"`
	Enabled   bool            `json:"enabled"`
}

type InitializeGatewayResponse struct {
	Gateway *model.GatewayContext `json:"gateway"`
}

// SetSystemEnabledRequest flips the circuit breaker.
type SetSystemEnabledRequest struct {
	ChainID model.ChainID   `json:"chain_id"`
	Caller  model.SignerKey `json:"caller"`
	Enabled bool            `json:"enabled"`
}

type SetSystemEnabledResponse struct {
	Gateway *model.GatewayContext `json:"gateway"`
}

// InitializeRegistryRequest creates a signer registry for one layer and
// chain.
type InitializeRegistryRequest struct {
	Layer              model.SignerLayer `json:"layer"`
	ChainID            model.ChainID     `json:"chain_id"`
	Authority          model.SignerKey   `json:"authority"`
	Signers            []model.SignerKey `json:"signers"`
	RequiredSignatures uint8             `json:"required_signatures"`
	Enabled            bool              `json:"enabled"`
}

// UpdateSignersRequest replaces a registry's signer set wholesale.
type UpdateSignersRequest struct {
	Layer   model.SignerLayer `json:"layer"`
	ChainID model.ChainID     `json:"chain_id"`
	Caller  model.SignerKey   `json:"caller"`
	Signers []model.SignerKey `json:"signers"`
}

// AddSignerRequest appends one signer to a registry.
type AddSignerRequest struct {
	Layer   model.SignerLayer `json:"layer"`
	ChainID model.ChainID     `json:"chain_id"`
	Caller  model.SignerKey   `json:"caller"`
	Signer  model.SignerKey   `json:"signer"`
}

// RemoveSignerRequest removes one signer from a registry.
type RemoveSignerRequest struct {
	Layer   model.SignerLayer `json:"layer"`
	ChainID model.ChainID     `json:"chain_id"`
	Caller  model.SignerKey   `json:"caller"`
	Signer  model.SignerKey   `json:"signer"`
}

// UpdateThresholdRequest changes a registry's required signature count.
type UpdateThresholdRequest struct {
	Layer              model.SignerLayer `json:"layer"`
	ChainID            model.ChainID     `json:"chain_id"`
	Caller             model.SignerKey   `json:"caller"`
	RequiredSignatures uint8             `json:"required_signatures"`
}

// SetRegistryEnabledRequest enables or disables a registry.
type SetRegistryEnabledRequest struct {
	Layer   model.SignerLayer `json:"layer"`
	ChainID model.ChainID     `json:"chain_id"`
	Caller  model.SignerKey   `json:"caller"`
	Enabled bool              `json:"enabled"`
}

type RegistryResponse struct {
	Registry *model.SignerRegistry `json:"registry"`
}

type GetGatewayResponse struct {
	Gateway *model.GatewayContext `json:"gateway"`
}

type GetTicketResponse struct {
	Ticket *model.PendingTicket `json:"ticket"`
}

type GetHighWaterMarkResponse struct {
	HighWaterMark *model.HighWaterMark `json:"high_water_mark"`
}
