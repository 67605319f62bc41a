package factory_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/factory"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/metrics"
	"github.com/xp-network/xpnet-go/internal/mocks"
	"github.com/xp-network/xpnet-go/internal/nftlist"
	"github.com/xp-network/xpnet-go/internal/providers/elrond"
	"github.com/xp-network/xpnet-go/internal/providers/web3"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	bsc     = fakeHandle(domain.ChainBsc, nil)
	polygon = fakeHandle(domain.ChainPolygon, nil)
	heco    = fakeHandle(domain.ChainHeco, nil)
)

func testWeb3Params(provider string) web3.Params {
	return web3.Params{
		Provider:    provider,
		MinterAddr:  "0x1111111111111111111111111111111111111111",
		Erc1155Addr: "0x2222222222222222222222222222222222222222",
		Erc721Addr:  "0x3333333333333333333333333333333333333333",
		Validators:  []string{"0x4444444444444444444444444444444444444444"},
	}
}

// setupFakes registers bsc, polygon and heco fakes and returns their backends
func setupFakes(t *testing.T, opts ...factory.Option) (*factory.Factory, *fakeChain, *fakeChain, *fakeChain) {
	t.Helper()
	f := factory.New(factory.ChainParams{}, opts...)
	t.Cleanup(f.Close)

	factory.Register(f, bsc, fakeParams{Fee: 100})
	factory.Register(f, polygon, fakeParams{Fee: 200})
	factory.Register(f, heco, fakeParams{Fee: 300})

	ctx := context.Background()
	from, err := factory.Inner(ctx, f, bsc)
	require.NoError(t, err)
	to, err := factory.Inner(ctx, f, polygon)
	require.NoError(t, err)
	other, err := factory.Inner(ctx, f, heco)
	require.NoError(t, err)
	return f, from, to, other
}

// wrapOnto marks id as a wrapped NFT on c whose original lives on origin as native
func wrapOnto(c *fakeChain, id string, origin domain.ChainNonce, native string) domain.NftInfo[fakeNft] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrapped[id] = domain.WrappedNft{ChainNonce: origin, Data: []byte(native)}
	return domain.NftInfo[fakeNft]{Native: fakeNft{ID: id}}
}

func native(id string) domain.NftInfo[fakeNft] {
	return domain.NftInfo[fakeNft]{Native: fakeNft{ID: id}}
}

func TestNew_ConfiguresOnlyPresentChains(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// nothing is dialed until a backend is requested
	dialer := mocks.NewMockEthClientDialer(ctrl)
	bscParams := testWeb3Params("https://bsc.test")
	f := factory.New(factory.ChainParams{
		Bsc:    &bscParams,
		Elrond: &elrond.Params{NodeURI: "https://gateway.test"},
	}, factory.WithDeps(factory.Deps{Dialer: dialer}))
	defer f.Close()

	assert.Equal(t, []domain.ChainNonce{domain.ChainElrond, domain.ChainBsc}, f.Nonces())

	params, ok := factory.Params(f, factory.Bsc)
	require.True(t, ok)
	assert.Equal(t, "https://bsc.test", params.Provider)

	_, ok = factory.Params(f, factory.Polygon)
	assert.False(t, ok)
}

func TestInner_Unconfigured(t *testing.T) {
	f := factory.New(factory.ChainParams{})
	defer f.Close()

	_, err := factory.Inner(context.Background(), f, factory.Tron)
	assert.ErrorIs(t, err, domain.ErrChainNotConfigured)

	_, err = f.Helper(context.Background(), domain.ChainCelo)
	assert.ErrorIs(t, err, domain.ErrChainNotConfigured)
}

func TestInner_MemoizedUntilParamsUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dialer := mocks.NewMockEthClientDialer(ctrl)
	client := mocks.NewMockEthClient(ctrl)
	client.EXPECT().Close().AnyTimes()

	dialer.EXPECT().Dial(gomock.Any(), "https://bsc.test").Return(client, nil).Times(1)
	dialer.EXPECT().Dial(gomock.Any(), "https://bsc-2.test").Return(client, nil).Times(1)

	params := testWeb3Params("https://bsc.test")
	f := factory.New(factory.ChainParams{Bsc: &params}, factory.WithDeps(factory.Deps{Dialer: dialer}))
	defer f.Close()

	ctx := context.Background()
	var (
		wg        sync.WaitGroup
		instances [8]*web3.Helper
	)
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := factory.Inner(ctx, f, factory.Bsc)
			assert.NoError(t, err)
			instances[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range instances[1:] {
		assert.Same(t, instances[0], h)
	}
	assert.Equal(t, domain.ChainBsc, instances[0].GetNonce())

	factory.UpdateParams(f, factory.Bsc, testWeb3Params("https://bsc-2.test"))
	updated, err := factory.Inner(ctx, f, factory.Bsc)
	require.NoError(t, err)
	assert.NotSame(t, instances[0], updated)

	again, err := factory.Inner(ctx, f, factory.Bsc)
	require.NoError(t, err)
	assert.Same(t, updated, again)

	// the dynamic lookup serves the same backend
	v, err := f.Helper(ctx, domain.ChainBsc)
	require.NoError(t, err)
	assert.Same(t, updated, v)
}

func TestInner_InvalidParamsDoNotDial(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dialer := mocks.NewMockEthClientDialer(ctrl)
	params := testWeb3Params("https://bsc.test")
	params.MinterAddr = "not-an-address"

	f := factory.New(factory.ChainParams{Bsc: &params}, factory.WithDeps(factory.Deps{Dialer: dialer}))
	defer f.Close()

	_, err := factory.Inner(context.Background(), f, factory.Bsc)
	assert.ErrorContains(t, err, "minter_addr")
}

func TestNewChain_BuildsOncePerParams(t *testing.T) {
	var builds atomic.Int32
	handle := fakeHandle(domain.ChainNonce(42), &builds)

	f := factory.New(factory.ChainParams{})
	defer f.Close()
	factory.Register(f, handle, fakeParams{Fee: 1})

	ctx := context.Background()
	first, err := factory.Inner(ctx, f, handle)
	require.NoError(t, err)
	second, err := factory.Inner(ctx, f, handle)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, builds.Load())

	factory.UpdateParams(f, handle, fakeParams{Fee: 2})
	third, err := factory.Inner(ctx, f, handle)
	require.NoError(t, err)
	assert.EqualValues(t, 2, builds.Load())
	assert.EqualValues(t, 2, third.params.Fee)
	assert.EqualValues(t, 1, first.params.Fee)
	assert.Equal(t, "42", handle.String())
}

func TestMint(t *testing.T) {
	f, from, _, _ := setupFakes(t)
	ctx := context.Background()

	_, err := factory.Mint[fakeSigner, string](ctx, f, from, fakeSigner{Addr: "alice"}, domain.NftMintArgs{URIs: []string{"ipfs://a"}})
	assert.ErrorIs(t, err, domain.ErrMissingMintArgument)

	_, err = factory.Mint[fakeSigner, string](ctx, f, from, fakeSigner{Addr: "alice"}, domain.NftMintArgs{Contract: "0xc"})
	assert.ErrorIs(t, err, domain.ErrMissingMintArgument)
	assert.Zero(t, from.mintCalls)

	id, err := factory.Mint[fakeSigner, string](ctx, f, from, fakeSigner{Addr: "alice"}, domain.NftMintArgs{Contract: "0xc", URIs: []string{"ipfs://a"}})
	require.NoError(t, err)
	assert.Equal(t, "minted-ipfs://a", id)
	assert.Equal(t, 1, from.mintCalls)
}

func TestNftList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	lister := mocks.NewMockLister(ctrl)
	f, from, _, _ := setupFakes(t, factory.WithLister(lister))
	ctx := context.Background()

	lister.EXPECT().List(gomock.Any(), domain.ChainBsc, "alice").Return([]nftlist.RawNft{
		{URI: "ipfs://3", Data: []byte("c")},
		{URI: "ipfs://1", Data: []byte("a")},
		{URI: "ipfs://2", Data: []byte("b")},
	}, nil)

	nfts, err := factory.NftList[fakeNft](ctx, f, from, "alice")
	require.NoError(t, err)
	require.Len(t, nfts, 3)
	assert.Equal(t, "c", nfts[0].Native.ID)
	assert.Equal(t, "ipfs://3", nfts[0].URI)
	assert.Equal(t, "a", nfts[1].Native.ID)
	assert.Equal(t, "b", nfts[2].Native.ID)

	lister.EXPECT().List(gomock.Any(), domain.ChainBsc, "bob").Return(nil, nil)
	nfts, err = factory.NftList[fakeNft](ctx, f, from, "bob")
	require.NoError(t, err)
	assert.Empty(t, nfts)

	lister.EXPECT().List(gomock.Any(), domain.ChainBsc, "carol").Return([]nftlist.RawNft{{URI: "x"}}, nil)
	_, err = factory.NftList[fakeNft](ctx, f, from, "carol")
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestNftList_NoIndexer(t *testing.T) {
	f, from, _, _ := setupFakes(t)

	_, err := factory.NftList[fakeNft](context.Background(), f, from, "alice")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCapability)
}

func TestNftUri(t *testing.T) {
	f, from, to, _ := setupFakes(t)
	ctx := context.Background()

	from.uris["n1"] = "ipfs://native"
	bare, err := factory.NftUri[fakeNft](ctx, f, from, native("n1"))
	require.NoError(t, err)
	assert.Equal(t, domain.BareNft{ChainID: "4", URI: "ipfs://native"}, bare)

	// a wrapped nft resolves through its origin chain
	to.uris["orig-1"] = "ipfs://origin"
	wrapped := wrapOnto(from, "w1", domain.ChainPolygon, "orig-1")
	bare, err = factory.NftUri[fakeNft](ctx, f, from, wrapped)
	require.NoError(t, err)
	assert.Equal(t, domain.BareNft{ChainID: "7", URI: "ipfs://origin"}, bare)

	missing := wrapOnto(from, "w2", domain.ChainCelo, "orig-2")
	_, err = factory.NftUri[fakeNft](ctx, f, from, missing)
	assert.ErrorIs(t, err, domain.ErrChainNotConfigured)

	var chainErr *domain.ChainError
	_, err = factory.NftUri[fakeNft](ctx, f, from, native("unknown"))
	require.ErrorAs(t, err, &chainErr)
	assert.Equal(t, domain.ChainBsc, chainErr.Nonce)
}

func TestEstimateFees(t *testing.T) {
	f, from, to, other := setupFakes(t)
	ctx := context.Background()

	packed, err := codec.Pack(domain.ChainBsc, []byte("n1"))
	require.NoError(t, err)

	fee, err := factory.EstimateFees[fakeNft, fakeNft](ctx, f, from, to, native("n1"), "bob")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200+int64(len(packed))), fee)

	again, err := factory.EstimateFees[fakeNft, fakeNft](ctx, f, from, to, native("n1"), "bob")
	require.NoError(t, err)
	assert.Equal(t, fee, again)

	// returning home only pays the unfreeze validation
	wrapped := wrapOnto(from, "w1", domain.ChainPolygon, "orig-1")
	fee, err = factory.EstimateFees[fakeNft, fakeNft](ctx, f, from, to, wrapped, "bob")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), fee)

	fee, err = factory.EstimateFees[fakeNft, fakeNft](ctx, f, from, other, wrapped, "bob")
	require.NoError(t, err)
	assert.Greater(t, fee.Int64(), int64(300))

	_, err = factory.EstimateFees[fakeNft, fakeNft](ctx, f, from, to, native("n1"), "invalid")
	assert.ErrorIs(t, err, domain.ErrInvalidDestination)
}

func TestTransferNft_SameChainRejected(t *testing.T) {
	f := factory.New(factory.ChainParams{})
	defer f.Close()
	ctx := context.Background()

	for _, nonce := range domain.KnownChainNonces() {
		c := newFakeChain(nonce, fakeParams{Fee: 1})
		_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](ctx, f, c, c, native("n1"), fakeSigner{Addr: "alice"}, "bob")
		assert.ErrorIs(t, err, domain.ErrInvalidDestination, nonce.String())

		freeze, unfreeze := c.counts()
		assert.Zero(t, freeze+unfreeze)

		_, err = factory.EstimateFees[fakeNft, fakeNft](ctx, f, c, c, native("n1"), "bob")
		assert.ErrorIs(t, err, domain.ErrInvalidDestination, nonce.String())
	}
}

func TestTransferNft_EmptyReceiver(t *testing.T) {
	f, from, to, _ := setupFakes(t)

	_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{Addr: "alice"}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidDestination)

	freeze, unfreeze := from.counts()
	assert.Zero(t, freeze+unfreeze)
}

func TestTransferNft_Freeze(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := mocks.NewMockPublisher(ctrl)
	journal := mocks.NewMockStore(ctrl)
	f, from, to, _ := setupFakes(t, factory.WithPublisher(publisher), factory.WithJournal(journal))
	publisher.EXPECT().Close()

	from.eventID = "17"

	var published *domain.TransferEvent
	publisher.EXPECT().PublishTransfer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event *domain.TransferEvent) error {
			published = event
			return nil
		})
	journal.EXPECT().SaveTransfer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event *domain.TransferEvent) error {
			assert.Same(t, published, event)
			return nil
		})

	tx, eventID, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{Addr: "alice"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "17", eventID)
	assert.Equal(t, "freeze-n1", tx.Hash)

	freeze, unfreeze := from.counts()
	assert.Equal(t, 1, freeze)
	assert.Zero(t, unfreeze)
	assert.Equal(t, domain.ChainPolygon, from.lastTo)

	expectedFee, err := factory.EstimateFees[fakeNft, fakeNft](context.Background(), f, from, to, native("n1"), "bob")
	require.NoError(t, err)
	assert.Equal(t, expectedFee, from.lastFee)

	require.NotNil(t, published)
	assert.NotEmpty(t, published.AttemptID)
	assert.Equal(t, domain.TransferKindFreeze, published.Kind)
	assert.Equal(t, domain.ChainBsc, published.FromChain)
	assert.Equal(t, domain.ChainPolygon, published.ToChain)
	assert.Equal(t, "alice", published.Sender)
	assert.Equal(t, "bob", published.Receiver)
	assert.Equal(t, "n1", published.NftIdentity)
	assert.Equal(t, "freeze-n1", published.TxHash)
	assert.Equal(t, "17", published.EventID)
	assert.Equal(t, expectedFee.String(), published.Fee)
	assert.False(t, published.SubmittedAt.IsZero())
}

type recordedLatency struct {
	name     string
	duration time.Duration
	labels   map[string]string
}

type fakeRecorder struct {
	mu        sync.Mutex
	counters  map[string]int
	latencies []recordedLatency
}

func (r *fakeRecorder) IncCounter(name string, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counters == nil {
		r.counters = make(map[string]int)
	}
	r.counters[name]++
}

func (r *fakeRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies = append(r.latencies, recordedLatency{name: name, duration: d, labels: labels})
}

func TestTransferNft_ClockAndMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()
	clock.EXPECT().Since(now).Return(2 * time.Second).Times(1)

	journal := mocks.NewMockStore(ctrl)
	var saved *domain.TransferEvent
	journal.EXPECT().SaveTransfer(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, event *domain.TransferEvent) error {
			saved = event
			return nil
		})

	recorder := &fakeRecorder{}
	f, from, to, _ := setupFakes(t, factory.WithClock(clock), factory.WithRecorder(recorder), factory.WithJournal(journal))

	_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{Addr: "alice"}, "bob")
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, now.UTC(), saved.SubmittedAt)
	assert.Equal(t, time.UTC, saved.SubmittedAt.Location())

	assert.Equal(t, 1, recorder.counters[metrics.TransferSubmitted])
	require.Len(t, recorder.latencies, 1)
	assert.Equal(t, metrics.TransferLatency, recorder.latencies[0].name)
	assert.Equal(t, 2*time.Second, recorder.latencies[0].duration)
	assert.Equal(t, map[string]string{"from_chain": "bsc", "to_chain": "polygon"}, recorder.latencies[0].labels)

	// a rejected duplicate is counted but never timed
	from.gate = make(chan struct{})
	from.entered = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n2"), fakeSigner{Addr: "alice"}, "bob")
		done <- err
	}()
	<-from.entered

	_, _, err = factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n2"), fakeSigner{Addr: "alice"}, "bob")
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 1, recorder.counters[metrics.TransferRejected])

	clock.EXPECT().Since(now).Return(time.Second)
	journal.EXPECT().SaveTransfer(gomock.Any(), gomock.Any()).Return(nil)
	close(from.gate)
	require.NoError(t, <-done)
}

func TestTransferNft_Unfreeze(t *testing.T) {
	f, from, to, _ := setupFakes(t)
	wrapped := wrapOnto(from, "w1", domain.ChainPolygon, "orig-1")

	tx, eventID, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, wrapped, fakeSigner{Addr: "alice"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "1", eventID)
	assert.Equal(t, "unfreeze-w1", tx.Hash)

	freeze, unfreeze := from.counts()
	assert.Zero(t, freeze)
	assert.Equal(t, 1, unfreeze)
	assert.Equal(t, big.NewInt(200), from.lastFee)
}

func TestTransferNft_WrappedToOtherChainIsFrozen(t *testing.T) {
	f, from, _, other := setupFakes(t)
	wrapped := wrapOnto(from, "w1", domain.ChainPolygon, "orig-1")

	_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, other, wrapped, fakeSigner{Addr: "alice"}, "bob")
	require.NoError(t, err)

	freeze, unfreeze := from.counts()
	assert.Equal(t, 1, freeze)
	assert.Zero(t, unfreeze)
	assert.Equal(t, domain.ChainHeco, from.lastTo)
}

func TestTransferNft_ConcurrentDuplicateRejected(t *testing.T) {
	f, from, to, _ := setupFakes(t)
	from.gate = make(chan struct{})
	from.entered = make(chan struct{}, 1)

	ctx := context.Background()
	sender := fakeSigner{Addr: "alice"}

	type result struct {
		eventID string
		err     error
	}
	done := make(chan result, 1)
	go func() {
		_, eventID, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](ctx, f, from, to, native("n1"), sender, "bob")
		done <- result{eventID, err}
	}()
	<-from.entered

	const duplicates = 5
	var wg sync.WaitGroup
	var conflicts atomic.Int32
	for i := 0; i < duplicates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](ctx, f, from, to, native("n1"), sender, "bob")
			if errors.Is(err, domain.ErrConcurrencyConflict) {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, duplicates, conflicts.Load())

	close(from.gate)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "1", res.eventID)

	freeze, _ := from.counts()
	assert.Equal(t, 1, freeze)

	// the guard is released once the first transfer returned
	from.entered = nil
	_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](ctx, f, from, to, native("n1"), sender, "bob")
	require.NoError(t, err)
}

func TestTransferNft_DifferentAssetsProceed(t *testing.T) {
	f, from, to, _ := setupFakes(t)
	from.gate = make(chan struct{})
	from.entered = make(chan struct{}, 2)

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"n1", "n2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, _, errs[i] = factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](ctx, f, from, to, native(id), fakeSigner{Addr: "alice"}, "bob")
		}(i, id)
	}
	<-from.entered
	<-from.entered
	close(from.gate)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestTransferNft_SubmissionErrors(t *testing.T) {
	testCases := []struct {
		name        string
		eventID     string
		transferErr error
		expected    error
	}{
		{
			name:     "missing event id",
			eventID:  "",
			expected: domain.ErrSubmissionFailure,
		},
		{
			name:        "insufficient balance",
			eventID:     "1",
			transferErr: domain.ErrInsufficientBalance,
			expected:    domain.ErrInsufficientBalance,
		},
		{
			name:        "chain error",
			eventID:     "1",
			transferErr: errors.New("execution reverted"),
			expected:    domain.ErrSubmissionFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, from, to, _ := setupFakes(t)
			from.eventID = tc.eventID
			from.transferErr = tc.transferErr

			_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{Addr: "alice"}, "bob")
			assert.ErrorIs(t, err, tc.expected)

			var chainErr *domain.ChainError
			require.ErrorAs(t, err, &chainErr)
			assert.Equal(t, domain.ChainBsc, chainErr.Nonce)

			// a failed attempt releases the guard
			from.eventID = "2"
			from.transferErr = nil
			_, eventID, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{Addr: "alice"}, "bob")
			require.NoError(t, err)
			assert.Equal(t, "2", eventID)
		})
	}
}

func TestTransferNft_SinkFailureIsNotReturned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	publisher := mocks.NewMockPublisher(ctrl)
	journal := mocks.NewMockStore(ctrl)
	f, from, to, _ := setupFakes(t, factory.WithPublisher(publisher), factory.WithJournal(journal))
	publisher.EXPECT().Close()

	publisher.EXPECT().PublishTransfer(gomock.Any(), gomock.Any()).Return(errors.New("nats: timeout"))
	journal.EXPECT().SaveTransfer(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	_, eventID, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{Addr: "alice"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "1", eventID)
}

func TestTransferNft_SignerWithoutAddress(t *testing.T) {
	f, from, to, _ := setupFakes(t)

	_, _, err := factory.TransferNft[fakeSigner, fakeNft, fakeTx, fakeNft](context.Background(), f, from, to, native("n1"), fakeSigner{}, "bob")
	assert.ErrorContains(t, err, "signer has no address")
}
