package model

import "errors"

// Protocol errors. Every failure of a gateway operation maps onto exactly
// one of these; operations are side-effect-free on failure.
var (
	// ErrSystemDisabled is returned when the circuit breaker is off.
	ErrSystemDisabled = errors.New("system is disabled")

	// ErrUnauthorizedAuthority is returned when the caller of an admin
	// operation is not the gateway authority.
	ErrUnauthorizedAuthority = errors.New("unauthorized authority")

	// ErrDuplicateGateway is returned when a gateway context already exists
	// for the chain id.
	ErrDuplicateGateway = errors.New("gateway already initialized for chain")

	// ErrDuplicateRegistry is returned when a signer registry already exists
	// for the (layer, chain id) pair.
	ErrDuplicateRegistry = errors.New("signer registry already initialized")

	// ErrDuplicateTicket is returned when a pending ticket already exists
	// for the (source chain id, message id) pair.
	ErrDuplicateTicket = errors.New("pending ticket already exists")

	// ErrNotFound is returned when a ticket, registry, gateway context or
	// high-water mark does not exist.
	ErrNotFound = errors.New("not found")

	// Validation errors.
	ErrInvalidDestChain     = errors.New("invalid destination chain")
	ErrSenderTooLong        = errors.New("sender address too long")
	ErrRecipientTooLong     = errors.New("recipient address too long")
	ErrOnChainDataTooLarge  = errors.New("on-chain data too large")
	ErrOffChainDataTooLarge = errors.New("off-chain data too large")
	ErrEmptyRecipient       = errors.New("empty recipient address")
	ErrEmptyChainData       = errors.New("empty chain data")

	// Signature validation errors.
	ErrInvalidSignature   = errors.New("invalid signature provided")
	ErrDuplicateSigner    = errors.New("duplicate signer detected")
	ErrUnauthorizedSigner = errors.New("unauthorized signer")
	ErrTooManySignatures  = errors.New("too many signatures provided")
	ErrTooFewSignatures   = errors.New("too few signatures provided")
	ErrInvalidMessageHash = errors.New("invalid message hash")

	// Threshold errors.
	ErrInsufficientVIASignatures     = errors.New("VIA signature threshold not met")
	ErrInsufficientChainSignatures   = errors.New("chain signature threshold not met")
	ErrInsufficientProjectSignatures = errors.New("project signature threshold not met")
	ErrSignerRegistryDisabled        = errors.New("signer registry is disabled")
	ErrInvalidThreshold              = errors.New("invalid threshold configuration")
	ErrThresholdTooHigh              = errors.New("threshold too high for signer count")
)
