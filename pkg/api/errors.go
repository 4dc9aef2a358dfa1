package api

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/vialabs/message-gateway/pkg/model"
)

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForError maps protocol errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateGateway),
		errors.Is(err, model.ErrDuplicateRegistry),
		errors.Is(err, model.ErrDuplicateTicket):
		return http.StatusConflict
	case errors.Is(err, model.ErrUnauthorizedAuthority),
		errors.Is(err, model.ErrUnauthorizedSigner):
		return http.StatusForbidden
	case errors.Is(err, model.ErrSystemDisabled),
		errors.Is(err, model.ErrSignerRegistryDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrInsufficientVIASignatures),
		errors.Is(err, model.ErrInsufficientChainSignatures),
		errors.Is(err, model.ErrInsufficientProjectSignatures):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidDestChain),
		errors.Is(err, model.ErrSenderTooLong),
		errors.Is(err, model.ErrRecipientTooLong),
		errors.Is(err, model.ErrOnChainDataTooLarge),
		errors.Is(err, model.ErrOffChainDataTooLarge),
		errors.Is(err, model.ErrEmptyRecipient),
		errors.Is(err, model.ErrEmptyChainData),
		errors.Is(err, model.ErrInvalidSignature),
		errors.Is(err, model.ErrDuplicateSigner),
		errors.Is(err, model.ErrTooManySignatures),
		errors.Is(err, model.ErrTooFewSignatures),
		errors.Is(err, model.ErrInvalidMessageHash),
		errors.Is(err, model.ErrInvalidThreshold),
		errors.Is(err, model.ErrThresholdTooHigh):
		return http.StatusBadRequest
	}

	var validationErrs validation.Errors
	var validationErr validation.Error
	if errors.As(err, &validationErrs) || errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
