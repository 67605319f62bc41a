package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/messaging"
)

// SubjectPrefix is the root of every transfer subject: transfers.{from}.{to}
const SubjectPrefix = "transfers"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// NewPublisher connects to NATS, makes sure the transfer stream exists and
// returns a publisher for it
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	err = js.CreateOrUpdateStream(ctx, natsjs.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{SubjectPrefix + ".>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// PublishTransfer publishes a submitted transfer. The message id makes
// JetStream drop duplicates of the same source event.
func (p *publisher) PublishTransfer(ctx context.Context, event *domain.TransferEvent) error {
	logger.DebugCtx(ctx, "Publishing transfer", zap.String("eventID", event.EventID), zap.Stringer("from", event.FromChain))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer: %w", err)
	}

	_, err = p.js.Publish(ctx, BuildSubject(event), data, natsjs.WithMsgID(MessageID(event)))
	if err != nil {
		return fmt.Errorf("failed to publish transfer: %w", err)
	}

	return nil
}

// BuildSubject returns transfers.{fromNonce}.{toNonce}
func BuildSubject(event *domain.TransferEvent) string {
	return fmt.Sprintf("%s.%d.%d", SubjectPrefix, event.FromChain, event.ToChain)
}

// MessageID identifies a transfer uniquely across chains
func MessageID(event *domain.TransferEvent) string {
	return fmt.Sprintf("%d:%s", event.FromChain, event.EventID)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
