package guard_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/guard"
)

func TestInFlight_Acquire(t *testing.T) {
	g := guard.NewInFlight()
	key := guard.Key{Sender: "0xabc", FromChain: domain.ChainBsc, Asset: "0xdef:1"}

	release, err := g.Acquire(key)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())

	_, err = g.Acquire(key)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// A different asset, sender or chain is independent
	otherRelease, err := g.Acquire(guard.Key{Sender: "0xabc", FromChain: domain.ChainBsc, Asset: "0xdef:2"})
	require.NoError(t, err)
	otherRelease()

	other, err := g.Acquire(guard.Key{Sender: "0xabc", FromChain: domain.ChainPolygon, Asset: "0xdef:1"})
	require.NoError(t, err)
	other()

	release()
	release()
	assert.Equal(t, 0, g.Len())

	again, err := g.Acquire(key)
	require.NoError(t, err)
	again()
}

func TestInFlight_ConcurrentAcquireAdmitsOne(t *testing.T) {
	g := guard.NewInFlight()
	key := guard.Key{Sender: "erd1sender", FromChain: domain.ChainElrond, Asset: "XPNFT-abcdef-01"}

	const callers = 64
	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := g.Acquire(key); err != nil {
				assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
				rejected.Add(1)
				return
			}
			admitted.Add(1)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, int32(callers-1), rejected.Load())
}
