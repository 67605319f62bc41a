package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
)

// BuildFunc constructs a chain backend from its parameters
type BuildFunc func(ctx context.Context, params interface{}) (interface{}, error)

// ChainRegistry holds at most one live backend per chain nonce and builds it
// lazily on first use
//
//go:generate mockgen -source=chains.go -destination=../mocks/chain_registry.go -package=mocks -mock_names=ChainRegistry=MockChainRegistry
type ChainRegistry interface {
	// Configure sets the parameters and builder for nonce. A backend built
	// from earlier parameters is dropped from the registry but stays usable
	// by callers already holding it.
	Configure(nonce domain.ChainNonce, params interface{}, build BuildFunc)

	// Get returns the backend for nonce, building it if needed. Concurrent
	// callers for the same nonce share a single construction.
	Get(ctx context.Context, nonce domain.ChainNonce) (interface{}, error)

	// Params returns the current parameters of nonce
	Params(nonce domain.ChainNonce) (interface{}, bool)

	// Nonces returns the configured nonces in ascending order
	Nonces() []domain.ChainNonce

	// Close releases every backend ever built by the registry
	Close()
}

type entry struct {
	params     interface{}
	build      BuildFunc
	generation uint64
	instance   interface{}
	built      bool
}

type closer interface {
	Close()
}

type chainRegistry struct {
	mu      sync.Mutex
	entries map[domain.ChainNonce]*entry
	retired []interface{}
	group   singleflight.Group
}

// NewChainRegistry creates an empty registry
func NewChainRegistry() ChainRegistry {
	return &chainRegistry{
		entries: make(map[domain.ChainNonce]*entry),
	}
}

func (r *chainRegistry) Configure(nonce domain.ChainNonce, params interface{}, build BuildFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[nonce]
	if !ok {
		e = &entry{}
		r.entries[nonce] = e
	}

	if e.built {
		r.retired = append(r.retired, e.instance)
	}

	e.generation++
	e.params = params
	if build != nil {
		e.build = build
	}
	e.instance = nil
	e.built = false

	logger.Debug("Chain configured", zap.Stringer("chain", nonce), zap.Uint64("generation", e.generation))
}

func (r *chainRegistry) Get(ctx context.Context, nonce domain.ChainNonce) (interface{}, error) {
	r.mu.Lock()
	e, ok := r.entries[nonce]
	if !ok || e.build == nil {
		r.mu.Unlock()
		return nil, domain.NewChainError(nonce, "resolve", domain.ErrChainNotConfigured)
	}
	if e.built {
		instance := e.instance
		r.mu.Unlock()
		return instance, nil
	}
	generation, params, build := e.generation, e.params, e.build
	r.mu.Unlock()

	key := fmt.Sprintf("%d/%d", nonce, generation)
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// The construction is shared, so one caller's cancellation must not fail the others
		instance, err := build(context.WithoutCancel(ctx), params)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		current := r.entries[nonce]
		if current != nil && current.generation == generation && !current.built {
			current.instance = instance
			current.built = true
		} else {
			// Parameters changed while building: serve this snapshot to its callers only
			r.retired = append(r.retired, instance)
		}

		logger.DebugCtx(ctx, "Chain backend built", zap.Stringer("chain", nonce), zap.Uint64("generation", generation))
		return instance, nil
	})
	if err != nil {
		return nil, domain.NewChainError(nonce, "build", err)
	}

	return v, nil
}

func (r *chainRegistry) Params(nonce domain.ChainNonce) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[nonce]
	if !ok {
		return nil, false
	}
	return e.params, true
}

func (r *chainRegistry) Nonces() []domain.ChainNonce {
	r.mu.Lock()
	defer r.mu.Unlock()

	nonces := make([]domain.ChainNonce, 0, len(r.entries))
	for n := range r.entries {
		nonces = append(nonces, n)
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })
	return nonces
}

func (r *chainRegistry) Close() {
	r.mu.Lock()
	instances := r.retired
	r.retired = nil
	for _, e := range r.entries {
		if e.built {
			instances = append(instances, e.instance)
			e.instance = nil
			e.built = false
		}
	}
	r.mu.Unlock()

	for _, instance := range instances {
		if c, ok := instance.(closer); ok {
			c.Close()
		}
	}
}
