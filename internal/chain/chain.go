// Package chain defines the capabilities a chain backend can offer to the
// bridge. Backends implement the subset matching their role; the factory
// composes them.
//
// Type parameters: S is the signer, R the native NFT representation, T the
// transaction handle returned by submissions.
package chain

import (
	"context"
	"math/big"

	"github.com/xp-network/xpnet-go/internal/domain"
)

// ChainNonceGet returns the nonce a backend serves
type ChainNonceGet interface {
	GetNonce() domain.ChainNonce
}

// TransferNftForeign locks a native NFT on the source chain for transfer to chainNonce
type TransferNftForeign[S, R, T any] interface {
	// TransferNftToForeign returns the source transaction and the event id the relay keys on
	TransferNftToForeign(ctx context.Context, sender S, chainNonce domain.ChainNonce, to string, nft domain.NftInfo[R], txFees *big.Int) (T, string, error)
}

// UnfreezeForeignNft burns a wrapped NFT and releases the original on its origin chain.
// The origin is derived from the wrapped asset itself.
type UnfreezeForeignNft[S, R, T any] interface {
	UnfreezeWrappedNft(ctx context.Context, sender S, to string, nft domain.NftInfo[R], txFees *big.Int) (T, string, error)
}

type BalanceCheck interface {
	Balance(ctx context.Context, address string) (*big.Int, error)
}

// WrappedBalanceCheck returns the balance of the wrapped currency of chainNonce held by address
type WrappedBalanceCheck interface {
	BalanceWrapped(ctx context.Context, address string, chainNonce domain.ChainNonce) (*big.Int, error)
}

// BatchWrappedBalanceCheck returns one entry per distinct requested nonce
type BatchWrappedBalanceCheck interface {
	BalanceWrappedBatch(ctx context.Context, address string, chainNonces []domain.ChainNonce) (map[domain.ChainNonce]*big.Int, error)
}

// MintNft mints a new NFT on a chain. MintRequirements lists the NftMintArgs
// fields the chain needs; MintNft fails with domain.ErrMissingMintArgument
// when one of them is absent.
type MintNft[S, I any] interface {
	MintRequirements() []domain.MintField
	MintNft(ctx context.Context, owner S, args domain.NftMintArgs) (I, error)
}

type WrappedNftCheck[R any] interface {
	IsWrappedNft(nft domain.NftInfo[R]) bool
}

// PackNft serializes an NFT into the bytes carried to the destination chain
type PackNft[R any] interface {
	WrapNftForTransfer(nft domain.NftInfo[R]) ([]byte, error)
}

type DecodeWrappedNft[R any] interface {
	DecodeWrappedNft(ctx context.Context, nft domain.NftInfo[R]) (domain.WrappedNft, error)
}

// DecodeRawNft decodes native bytes into an NftInfo whose URI is left empty
type DecodeRawNft[R any] interface {
	DecodeNftFromRaw(ctx context.Context, data []byte) (domain.NftInfo[R], error)
}

// PopulateDecodedNft resolves the metadata URI of a decoded NFT
type PopulateDecodedNft[R any] interface {
	PopulateNft(ctx context.Context, nft domain.NftInfo[R]) (domain.BareNft, error)
}

// EstimateTxFees prices the validation a destination chain performs for an
// incoming transfer (data is the packed NFT) or unfreeze (nft is the decoded original)
type EstimateTxFees[R any] interface {
	EstimateValidateTransferNft(ctx context.Context, to string, data []byte) (*big.Int, error)
	EstimateValidateUnfreezeNft(ctx context.Context, to string, nft domain.NftInfo[R]) (*big.Int, error)
}

// Identifier renders the chain-specific values the bridge uses as keys
type Identifier[S, R, T any] interface {
	SignerAddress(sender S) (string, error)
	NftIdentity(nft domain.NftInfo[R]) string
	TxHash(tx T) string
}

// NftUriChain can resolve the URI of any NFT it hosts, wrapped or native
type NftUriChain[R any] interface {
	ChainNonceGet
	WrappedNftCheck[R]
	DecodeWrappedNft[R]
	DecodeRawNft[R]
	PopulateDecodedNft[R]
}

// ListChain can decode the raw NFTs served by the NFT list indexer
type ListChain[R any] interface {
	ChainNonceGet
	DecodeRawNft[R]
}

// SourceChain is what the bridge needs from the sending side to price a transfer
type SourceChain[R any] interface {
	ChainNonceGet
	WrappedNftCheck[R]
	DecodeWrappedNft[R]
	PackNft[R]
}

// DestinationChain is what the bridge needs from the receiving side
type DestinationChain[R any] interface {
	ChainNonceGet
	DecodeRawNft[R]
	EstimateTxFees[R]
}

// FullChain is a backend able to act as the source of a transfer
type FullChain[S, R, T any] interface {
	NftUriChain[R]
	PackNft[R]
	EstimateTxFees[R]
	TransferNftForeign[S, R, T]
	UnfreezeForeignNft[S, R, T]
	Identifier[S, R, T]
}

// RawNftResolver lets a backend outside the built-in families take part in
// wrapped NFT resolution. data is the payload decoded from a wrapped NFT that
// originated on this backend's chain.
type RawNftResolver interface {
	ChainNonceGet
	ResolveRawNft(ctx context.Context, data []byte) (domain.BareNft, error)
}

// ResolveRawNft decodes data with c and resolves its URI
func ResolveRawNft[R any](ctx context.Context, c interface {
	DecodeRawNft[R]
	PopulateDecodedNft[R]
}, data []byte) (domain.BareNft, error) {
	nft, err := c.DecodeNftFromRaw(ctx, data)
	if err != nil {
		return domain.BareNft{}, err
	}
	return c.PopulateNft(ctx, nft)
}
