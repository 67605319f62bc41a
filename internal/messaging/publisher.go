package messaging

import (
	"context"

	"github.com/xp-network/xpnet-go/internal/domain"
)

// Publisher defines the interface for announcing submitted transfers to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishTransfer publishes a transfer accepted by its source chain
	PublishTransfer(ctx context.Context, event *domain.TransferEvent) error
	// Close closes the connection
	Close()
}
