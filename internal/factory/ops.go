package factory

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/chain"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/metrics"
	"github.com/xp-network/xpnet-go/internal/providers/elrond"
	"github.com/xp-network/xpnet-go/internal/providers/tron"
	"github.com/xp-network/xpnet-go/internal/providers/web3"
)

// Register configures c with params. It is how both the built-in chains and
// NewChain handles enter the factory.
func Register[T any, P any](f *Factory, c Chain[T, P], params P) {
	f.registry.Configure(c.nonce, params, func(ctx context.Context, raw interface{}) (interface{}, error) {
		p, ok := raw.(P)
		if !ok {
			return nil, fmt.Errorf("params of %s have type %T", c.nonce, raw)
		}
		backend, err := c.build(ctx, f.deps, p)
		if err != nil {
			return nil, err
		}
		return backend, nil
	})
}

// UpdateParams replaces the params of c. Later Inner calls build a fresh
// backend; backends already handed out keep the params they were built with.
func UpdateParams[T any, P any](f *Factory, c Chain[T, P], params P) {
	Register(f, c, params)
	logger.Info("Chain params updated", zap.Stringer("chain", c.nonce))
}

// Params returns the current params of c
func Params[T any, P any](f *Factory, c Chain[T, P]) (P, bool) {
	var zero P
	raw, ok := f.registry.Params(c.nonce)
	if !ok {
		return zero, false
	}
	p, ok := raw.(P)
	return p, ok
}

// Inner returns the backend of c, building it on first use. Repeated calls
// return the same instance until the params of c are updated.
func Inner[T any, P any](ctx context.Context, f *Factory, c Chain[T, P]) (T, error) {
	var zero T
	v, err := f.registry.Get(ctx, c.nonce)
	if err != nil {
		return zero, err
	}

	backend, ok := v.(T)
	if !ok {
		return zero, domain.NewChainError(c.nonce, "resolve", fmt.Errorf("backend has type %T", v))
	}
	return backend, nil
}

// Mint checks args against the requirements of backend before delegating to it
func Mint[S any, I any](ctx context.Context, f *Factory, backend chain.MintNft[S, I], owner S, args domain.NftMintArgs) (I, error) {
	var zero I
	if err := args.Validate(backend.MintRequirements()...); err != nil {
		return zero, err
	}

	logger.DebugCtx(ctx, "Minting nft", zap.Int("uris", len(args.URIs)), zap.String("contract", args.Contract), zap.String("identifier", args.Identifier))
	return backend.MintNft(ctx, owner, args)
}

// NftList returns the NFTs owner holds on backend's chain, decoded, in the
// order the indexer reports them
func NftList[R any](ctx context.Context, f *Factory, backend chain.ListChain[R], owner string) ([]domain.NftInfo[R], error) {
	nonce := backend.GetNonce()
	if f.lister == nil {
		return nil, domain.NewChainError(nonce, "nft list", fmt.Errorf("%w: no nft list indexer configured", domain.ErrUnsupportedCapability))
	}

	raws, err := f.lister.List(ctx, nonce, owner)
	if err != nil {
		return nil, domain.NewChainError(nonce, "nft list", err)
	}

	nfts := make([]domain.NftInfo[R], 0, len(raws))
	for _, raw := range raws {
		nft, err := backend.DecodeNftFromRaw(ctx, raw.Data)
		if err != nil {
			return nil, domain.NewChainError(nonce, "nft list", err)
		}
		nft.URI = raw.URI
		nfts = append(nfts, nft)
	}
	return nfts, nil
}

// NftUri resolves the metadata location of nft. A wrapped NFT resolves
// through the backend of the chain it originated on.
func NftUri[R any](ctx context.Context, f *Factory, backend chain.NftUriChain[R], nft domain.NftInfo[R]) (domain.BareNft, error) {
	nonce := backend.GetNonce()
	if !backend.IsWrappedNft(nft) {
		bare, err := backend.PopulateNft(ctx, nft)
		return bare, domain.NewChainError(nonce, "nft uri", err)
	}

	wrapped, err := backend.DecodeWrappedNft(ctx, nft)
	if err != nil {
		return domain.BareNft{}, domain.NewChainError(nonce, "nft uri", err)
	}
	return f.resolveRaw(ctx, wrapped)
}

// resolveRaw decodes a wrapped payload with the backend of its origin chain
func (f *Factory) resolveRaw(ctx context.Context, wrapped domain.WrappedNft) (domain.BareNft, error) {
	origin, err := f.registry.Get(ctx, wrapped.ChainNonce)
	if err != nil {
		return domain.BareNft{}, err
	}

	var bare domain.BareNft
	switch b := origin.(type) {
	case *web3.Helper:
		bare, err = chain.ResolveRawNft[web3.Nft](ctx, b, wrapped.Data)
	case *elrond.Helper:
		bare, err = chain.ResolveRawNft[elrond.Nft](ctx, b, wrapped.Data)
	case *tron.Helper:
		bare, err = chain.ResolveRawNft[tron.Nft](ctx, b, wrapped.Data)
	case chain.RawNftResolver:
		bare, err = b.ResolveRawNft(ctx, wrapped.Data)
	default:
		err = fmt.Errorf("%w: %T cannot resolve raw nfts", domain.ErrUnsupportedCapability, origin)
	}
	return bare, domain.NewChainError(wrapped.ChainNonce, "resolve raw nft", err)
}

// EstimateFees prices a transfer of nft from one chain to another. The fee is
// the cost of validating the transfer on the destination, in its smallest unit.
func EstimateFees[RF any, RT any](ctx context.Context, f *Factory, from chain.SourceChain[RF], to chain.DestinationChain[RT], nft domain.NftInfo[RF], receiver string) (*big.Int, error) {
	start := f.clock.Now()
	p, err := planTransfer(ctx, from, to, nft, receiver)
	if err != nil {
		return nil, err
	}

	f.recorder.ObserveLatency(metrics.EstimateLatency, f.clock.Since(start), chainLabels(from.GetNonce(), to.GetNonce()))
	return p.fee, nil
}

func chainLabels(from, to domain.ChainNonce) map[string]string {
	return map[string]string{
		"from_chain": from.String(),
		"to_chain":   to.String(),
	}
}
