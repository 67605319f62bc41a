package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/xp-network/xpnet-go/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeInvalidNft       ErrorCode = "invalid_nft"
	ErrCodeUnsupported      ErrorCode = "unsupported"
	ErrCodeConflict         ErrorCode = "conflict"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeDatabaseError ErrorCode = "database_error"
	ErrCodeChainError    ErrorCode = "chain_error"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewDatabaseError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// FromError maps a bridge error to its HTTP status and API error.
// Errors that are already an APIError keep their code.
func FromError(err error) (int, *APIError) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return statusOf(apiErr.Code), apiErr
	}

	detail := err.Error()
	switch {
	case errors.Is(err, domain.ErrChainNotConfigured):
		return http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: "Chain not configured", Details: detail}
	case errors.Is(err, domain.ErrInvalidDestination):
		return http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: "Invalid destination", Details: detail}
	case errors.Is(err, domain.ErrMissingMintArgument):
		return http.StatusBadRequest, &APIError{Code: ErrCodeValidationFailed, Message: "Missing mint argument", Details: detail}
	case errors.Is(err, domain.ErrDecode):
		return http.StatusUnprocessableEntity, &APIError{Code: ErrCodeInvalidNft, Message: "NFT could not be decoded", Details: detail}
	case errors.Is(err, domain.ErrUnsupportedCapability):
		return http.StatusNotImplemented, &APIError{Code: ErrCodeUnsupported, Message: "Operation not supported by chain", Details: detail}
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, &APIError{Code: ErrCodeConflict, Message: "Transfer already in flight", Details: detail}
	case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrSubmissionFailure):
		return http.StatusBadGateway, &APIError{Code: ErrCodeChainError, Message: "Chain rejected the request", Details: detail}
	}

	var chainErr *domain.ChainError
	if errors.As(err, &chainErr) {
		return http.StatusBadGateway, &APIError{Code: ErrCodeChainError, Message: "Chain request failed", Details: detail}
	}
	return http.StatusInternalServerError, NewInternalError("Internal server error")
}

func statusOf(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidNft:
		return http.StatusUnprocessableEntity
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeChainError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
