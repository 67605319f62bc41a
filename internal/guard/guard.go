// Package guard rejects a transfer while an identical one is still being submitted.
package guard

import (
	"fmt"
	"sync"

	"github.com/xp-network/xpnet-go/internal/domain"
)

// Key identifies a transfer for duplicate detection
type Key struct {
	Sender    string
	FromChain domain.ChainNonce
	Asset     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Sender, k.FromChain, k.Asset)
}

// InFlight is a set of transfers currently being submitted
type InFlight struct {
	mu      sync.Mutex
	pending map[Key]struct{}
}

// NewInFlight creates an empty set
func NewInFlight() *InFlight {
	return &InFlight{pending: make(map[Key]struct{})}
}

// Acquire marks key as in flight. It fails with domain.ErrConcurrencyConflict
// when key is already held. The returned release func is idempotent.
func (g *InFlight) Acquire(key Key) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.pending[key]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConcurrencyConflict, key)
	}
	g.pending[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.pending, key)
			g.mu.Unlock()
		})
	}, nil
}

// Len returns the number of transfers in flight
func (g *InFlight) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
