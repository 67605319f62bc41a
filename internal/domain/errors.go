package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDestination is returned when a transfer targets its own source chain or an empty receiver
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrMissingMintArgument is returned when a mint is missing a field its chain family requires
	ErrMissingMintArgument = errors.New("missing mint argument")

	// ErrInsufficientBalance is returned when the sender cannot cover the asset or the fee
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSubmissionFailure is returned when the source chain rejected or failed the submission
	ErrSubmissionFailure = errors.New("submission failure")

	// ErrConcurrencyConflict is returned when the same sender already has a transfer of the same NFT in flight
	ErrConcurrencyConflict = errors.New("concurrent transfer in flight")

	// ErrDecode is returned when wrapped or raw NFT bytes cannot be decoded
	ErrDecode = errors.New("decode error")

	// ErrUnsupportedCapability is returned when a backend does not implement the requested operation
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrChainNotConfigured is returned when no parameters were supplied for a chain nonce
	ErrChainNotConfigured = errors.New("chain not configured")
)

// ChainError attaches the chain and operation to an underlying error
type ChainError struct {
	Nonce ChainNonce
	Op    string
	Err   error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s (%d): %s: %v", e.Nonce, uint16(e.Nonce), e.Op, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// NewChainError wraps err with chain context. It returns nil for a nil error.
func NewChainError(nonce ChainNonce, op string, err error) error {
	if err == nil {
		return nil
	}
	return &ChainError{Nonce: nonce, Op: op, Err: err}
}

// Decode wraps a decoding failure so that it matches ErrDecode
func Decode(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}
