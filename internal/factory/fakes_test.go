package factory_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/xp-network/xpnet-go/internal/chain"
	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/factory"
)

type fakeNft struct {
	ID string
}

type fakeSigner struct {
	Addr string
}

type fakeTx struct {
	Hash string
}

type fakeParams struct {
	Fee int64
}

// fakeChain is an in-memory backend. NFTs whose id starts with "w:" are
// wrapped; their envelope is kept in wrapped.
type fakeChain struct {
	nonce  domain.ChainNonce
	params fakeParams

	mu            sync.Mutex
	wrapped       map[string]domain.WrappedNft
	uris          map[string]string
	freezeCalls   int
	unfreezeCalls int
	mintCalls     int
	lastFee       *big.Int
	lastTo        domain.ChainNonce

	// gate blocks submissions until closed when set
	gate        chan struct{}
	entered     chan struct{}
	eventID     string
	transferErr error
}

var (
	_ chain.FullChain[fakeSigner, fakeNft, fakeTx] = (*fakeChain)(nil)
	_ chain.MintNft[fakeSigner, string]             = (*fakeChain)(nil)
	_ chain.RawNftResolver                          = (*fakeChain)(nil)
)

func newFakeChain(nonce domain.ChainNonce, params fakeParams) *fakeChain {
	return &fakeChain{
		nonce:   nonce,
		params:  params,
		wrapped: make(map[string]domain.WrappedNft),
		uris:    make(map[string]string),
		eventID: "1",
	}
}

// fakeHandle declares a chain whose backends are built by newFakeChain and counted in builds
func fakeHandle(nonce domain.ChainNonce, builds *atomic.Int32) factory.Chain[*fakeChain, fakeParams] {
	return factory.NewChain(nonce, func(ctx context.Context, deps factory.Deps, params fakeParams) (*fakeChain, error) {
		if builds != nil {
			builds.Add(1)
		}
		return newFakeChain(nonce, params), nil
	})
}

func (c *fakeChain) GetNonce() domain.ChainNonce {
	return c.nonce
}

func (c *fakeChain) IsWrappedNft(nft domain.NftInfo[fakeNft]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.wrapped[nft.Native.ID]
	return ok
}

func (c *fakeChain) DecodeWrappedNft(ctx context.Context, nft domain.NftInfo[fakeNft]) (domain.WrappedNft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.wrapped[nft.Native.ID]
	if !ok {
		return domain.WrappedNft{}, domain.Decode("%s is not wrapped", nft.Native.ID)
	}
	return w, nil
}

func (c *fakeChain) WrapNftForTransfer(nft domain.NftInfo[fakeNft]) ([]byte, error) {
	return codec.Pack(c.nonce, []byte(nft.Native.ID))
}

func (c *fakeChain) DecodeNftFromRaw(ctx context.Context, data []byte) (domain.NftInfo[fakeNft], error) {
	if len(data) == 0 {
		return domain.NftInfo[fakeNft]{}, domain.Decode("empty nft")
	}
	return domain.NftInfo[fakeNft]{Native: fakeNft{ID: string(data)}}, nil
}

func (c *fakeChain) PopulateNft(ctx context.Context, nft domain.NftInfo[fakeNft]) (domain.BareNft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	uri, ok := c.uris[nft.Native.ID]
	if !ok {
		return domain.BareNft{}, fmt.Errorf("unknown nft %s", nft.Native.ID)
	}
	return domain.BareNft{ChainID: strconv.Itoa(int(c.nonce)), URI: uri}, nil
}

func (c *fakeChain) ResolveRawNft(ctx context.Context, data []byte) (domain.BareNft, error) {
	return chain.ResolveRawNft[fakeNft](ctx, c, data)
}

// EstimateValidateTransferNft charges the configured fee plus one unit per packed byte
func (c *fakeChain) EstimateValidateTransferNft(ctx context.Context, to string, data []byte) (*big.Int, error) {
	if to == "invalid" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDestination, to)
	}
	return big.NewInt(c.params.Fee + int64(len(data))), nil
}

// EstimateValidateUnfreezeNft charges the configured fee only
func (c *fakeChain) EstimateValidateUnfreezeNft(ctx context.Context, to string, nft domain.NftInfo[fakeNft]) (*big.Int, error) {
	return big.NewInt(c.params.Fee), nil
}

func (c *fakeChain) TransferNftToForeign(ctx context.Context, sender fakeSigner, chainNonce domain.ChainNonce, to string, nft domain.NftInfo[fakeNft], txFees *big.Int) (fakeTx, string, error) {
	c.wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.freezeCalls++
	c.lastFee = txFees
	c.lastTo = chainNonce
	if c.transferErr != nil {
		return fakeTx{}, "", c.transferErr
	}
	return fakeTx{Hash: "freeze-" + nft.Native.ID}, c.eventID, nil
}

func (c *fakeChain) UnfreezeWrappedNft(ctx context.Context, sender fakeSigner, to string, nft domain.NftInfo[fakeNft], txFees *big.Int) (fakeTx, string, error) {
	c.wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.unfreezeCalls++
	c.lastFee = txFees
	if c.transferErr != nil {
		return fakeTx{}, "", c.transferErr
	}
	return fakeTx{Hash: "unfreeze-" + nft.Native.ID}, c.eventID, nil
}

func (c *fakeChain) wait() {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.gate != nil {
		<-c.gate
	}
}

func (c *fakeChain) SignerAddress(sender fakeSigner) (string, error) {
	if sender.Addr == "" {
		return "", errors.New("signer has no address")
	}
	return sender.Addr, nil
}

func (c *fakeChain) NftIdentity(nft domain.NftInfo[fakeNft]) string {
	return nft.Native.ID
}

func (c *fakeChain) TxHash(tx fakeTx) string {
	return tx.Hash
}

func (c *fakeChain) MintRequirements() []domain.MintField {
	return []domain.MintField{domain.MintFieldContract, domain.MintFieldURIs}
}

func (c *fakeChain) MintNft(ctx context.Context, owner fakeSigner, args domain.NftMintArgs) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mintCalls++
	return "minted-" + args.URIs[0], nil
}

func (c *fakeChain) counts() (freeze, unfreeze int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freezeCalls, c.unfreezeCalls
}
