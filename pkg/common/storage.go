// Package common provides shared interfaces for the gateway service.
package common

import (
	"context"

	"github.com/vialabs/message-gateway/pkg/model"
)

// GatewayStore holds the administrative record per local chain id.
type GatewayStore interface {
	// CreateGateway persists a new gateway context. Returns
	// model.ErrDuplicateGateway if one already exists for the chain id.
	CreateGateway(ctx context.Context, gw *model.GatewayContext) error
	// GetGateway retrieves the gateway context for a chain id. Returns
	// model.ErrNotFound if absent.
	GetGateway(ctx context.Context, chainID model.ChainID) (*model.GatewayContext, error)
	// UpdateGateway replaces the stored gateway context.
	UpdateGateway(ctx context.Context, gw *model.GatewayContext) error
}

// RegistryStore holds signer registries keyed by (layer, chain id).
type RegistryStore interface {
	// CreateRegistry persists a new registry. Returns
	// model.ErrDuplicateRegistry if one already exists for the key.
	CreateRegistry(ctx context.Context, reg *model.SignerRegistry) error
	// GetRegistry retrieves a registry. Returns model.ErrNotFound if absent.
	GetRegistry(ctx context.Context, key model.RegistryKey) (*model.SignerRegistry, error)
	// UpdateRegistry replaces the stored registry snapshot.
	UpdateRegistry(ctx context.Context, reg *model.SignerRegistry) error
}

// TicketStore is the replay guard: at most one pending ticket per
// (source chain id, message id) at any time.
type TicketStore interface {
	// CreateTicket persists a pending ticket. Exactly one concurrent caller
	// per key succeeds; the rest get model.ErrDuplicateTicket.
	CreateTicket(ctx context.Context, ticket *model.PendingTicket) error
	// GetTicket retrieves a pending ticket. Returns model.ErrNotFound if
	// absent.
	GetTicket(ctx context.Context, key model.TicketKey) (*model.PendingTicket, error)
	// ConsumeTicket atomically removes and returns the ticket. Exactly one
	// concurrent caller per key succeeds; the rest get model.ErrNotFound.
	ConsumeTicket(ctx context.Context, key model.TicketKey) (*model.PendingTicket, error)
}

// HighWaterMarkStore tracks the highest message id admitted per source
// chain. Observability only; it never gates admission.
type HighWaterMarkStore interface {
	// RecordAdmission raises the mark to max(current, messageID), creating
	// it on first admission for the source chain.
	RecordAdmission(ctx context.Context, sourceChainID model.ChainID, messageID model.MessageID) error
	// GetHighWaterMark retrieves the mark for a source chain. Returns
	// model.ErrNotFound if no message was ever admitted from it.
	GetHighWaterMark(ctx context.Context, sourceChainID model.ChainID) (*model.HighWaterMark, error)
}

// GatewayStorage combines all stores for production use.
type GatewayStorage interface {
	GatewayStore
	RegistryStore
	TicketStore
	HighWaterMarkStore
}
