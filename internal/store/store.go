package store

import (
	"context"

	"github.com/xp-network/xpnet-go/internal/domain"
)

// TransferFilter narrows ListTransfers
type TransferFilter struct {
	Sender    string
	FromChain *domain.ChainNonce
	Limit     int
	Offset    int
}

// Store defines the interface for the transfer journal
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// SaveTransfer records a submitted transfer. Saving the same (from chain, event id) twice is a no-op.
	SaveTransfer(ctx context.Context, event *domain.TransferEvent) error
	// GetTransferByEventID returns the transfer with the given source event, or nil when none exists
	GetTransferByEventID(ctx context.Context, fromChain domain.ChainNonce, eventID string) (*domain.TransferEvent, error)
	// ListTransfers returns transfers newest first
	ListTransfers(ctx context.Context, filter TransferFilter) ([]domain.TransferEvent, error)
}
