// Package factory resolves chain nonces to backends and exposes the bridge
// operations over them: mint, list, URI resolution, fee estimation and the
// orchestrated transfer.
package factory

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/guard"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/messaging"
	"github.com/xp-network/xpnet-go/internal/metrics"
	"github.com/xp-network/xpnet-go/internal/nftlist"
	"github.com/xp-network/xpnet-go/internal/providers/elrond"
	"github.com/xp-network/xpnet-go/internal/providers/tron"
	"github.com/xp-network/xpnet-go/internal/providers/web3"
	"github.com/xp-network/xpnet-go/internal/registry"
	"github.com/xp-network/xpnet-go/internal/store"
)

const defaultHTTPTimeout = 30 * time.Second

// Deps are the clients the built-in backends are constructed with
type Deps struct {
	Dialer adapter.EthClientDialer
	HTTP   adapter.HTTPClient
	JCS    adapter.JCS

	Web3   []web3.Option
	Elrond []elrond.Option
	Tron   []tron.Option
}

// Factory is the entry point of the bridge. It is safe for concurrent use.
type Factory struct {
	registry registry.ChainRegistry
	inflight *guard.InFlight
	deps     Deps

	lister    nftlist.Lister
	publisher messaging.Publisher
	journal   store.Store
	recorder  metrics.Recorder
	clock     adapter.Clock

	entropyMu sync.Mutex
	entropy   io.Reader
}

// Option customizes a Factory
type Option func(*Factory)

// WithLister sets the NFT list indexer used by NftList
func WithLister(l nftlist.Lister) Option {
	return func(f *Factory) { f.lister = l }
}

// WithPublisher announces every submitted transfer
func WithPublisher(p messaging.Publisher) Option {
	return func(f *Factory) { f.publisher = p }
}

// WithJournal records every submitted transfer
func WithJournal(s store.Store) Option {
	return func(f *Factory) { f.journal = s }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(f *Factory) { f.recorder = r }
}

func WithClock(c adapter.Clock) Option {
	return func(f *Factory) { f.clock = c }
}

// WithDeps replaces the clients handed to the built-in backends. Nil fields keep their defaults.
func WithDeps(d Deps) Option {
	return func(f *Factory) {
		if d.Dialer != nil {
			f.deps.Dialer = d.Dialer
		}
		if d.HTTP != nil {
			f.deps.HTTP = d.HTTP
		}
		if d.JCS != nil {
			f.deps.JCS = d.JCS
		}
		f.deps.Web3 = append(f.deps.Web3, d.Web3...)
		f.deps.Elrond = append(f.deps.Elrond, d.Elrond...)
		f.deps.Tron = append(f.deps.Tron, d.Tron...)
	}
}

// withRegistry swaps the backend arena; used by tests
func withRegistry(r registry.ChainRegistry) Option {
	return func(f *Factory) { f.registry = r }
}

// New returns a factory serving the chains present in params. Backends are
// built on first use.
func New(params ChainParams, opts ...Option) *Factory {
	f := &Factory{
		registry: registry.NewChainRegistry(),
		inflight: guard.NewInFlight(),
		deps: Deps{
			Dialer: adapter.NewEthClientDialer(),
			HTTP:   adapter.NewHTTPClient(defaultHTTPTimeout),
			JCS:    adapter.NewJCS(),
		},
		recorder: metrics.NoopRecorder{},
		clock:    adapter.NewClock(),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(f)
	}

	params.register(f)
	logger.Info("Bridge factory created", zap.Int("chains", len(f.registry.Nonces())))
	return f
}

// Nonces returns the configured chains in ascending order
func (f *Factory) Nonces() []domain.ChainNonce {
	return f.registry.Nonces()
}

// Helper returns the backend of nonce without its static type. Callers
// dispatch on the concrete backend type.
func (f *Factory) Helper(ctx context.Context, nonce domain.ChainNonce) (interface{}, error) {
	return f.registry.Get(ctx, nonce)
}

// Close releases every backend and the publisher
func (f *Factory) Close() {
	f.registry.Close()
	if f.publisher != nil {
		f.publisher.Close()
	}
}

// newAttemptID returns a sortable id for one transfer attempt
func (f *Factory) newAttemptID() string {
	f.entropyMu.Lock()
	defer f.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(f.clock.Now()), f.entropy).String()
}
