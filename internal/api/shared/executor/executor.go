package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/api/shared/constants"
	"github.com/xp-network/xpnet-go/internal/api/shared/dto"
	apierrors "github.com/xp-network/xpnet-go/internal/api/shared/errors"
	"github.com/xp-network/xpnet-go/internal/chain"
	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/factory"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/providers/elrond"
	"github.com/xp-network/xpnet-go/internal/providers/tron"
	"github.com/xp-network/xpnet-go/internal/providers/web3"
	"github.com/xp-network/xpnet-go/internal/store"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// ListChains returns the configured chains
	ListChains(ctx context.Context) *dto.ChainListResponse

	// GetBalance returns the native balance of address
	GetBalance(ctx context.Context, chainNonce domain.ChainNonce, address string) (*dto.BalanceResponse, error)

	// GetWrappedBalances returns the balances of the wrapped currencies of origins held by address
	GetWrappedBalances(ctx context.Context, chainNonce domain.ChainNonce, address string, origins []domain.ChainNonce) (*dto.WrappedBalancesResponse, error)

	// ListNfts returns the NFTs owned by owner, resolving missing URIs
	ListNfts(ctx context.Context, chainNonce domain.ChainNonce, owner string) (*dto.NftListResponse, error)

	// GetNftUri resolves the metadata location of an NFT
	GetNftUri(ctx context.Context, chainNonce domain.ChainNonce, nft dto.NftRequest) (*dto.NftUriResponse, error)

	// EstimateFees prices a transfer
	EstimateFees(ctx context.Context, fromChain domain.ChainNonce, toChain domain.ChainNonce, nft dto.NftRequest, receiver string) (*dto.FeeEstimateResponse, error)

	// GetTransfer returns a journaled transfer, nil when unknown
	GetTransfer(ctx context.Context, fromChain domain.ChainNonce, eventID string) (*dto.TransferResponse, error)

	// ListTransfers returns journaled transfers, newest first
	ListTransfers(ctx context.Context, sender string, fromChain *domain.ChainNonce, limit int, offset int) (*dto.TransferListResponse, error)
}

type executor struct {
	factory *factory.Factory
	journal store.Store
}

// NewExecutor creates an executor over the bridge factory. journal may be nil.
func NewExecutor(f *factory.Factory, journal store.Store) Executor {
	return &executor{factory: f, journal: journal}
}

func (e *executor) ListChains(ctx context.Context) *dto.ChainListResponse {
	nonces := e.factory.Nonces()
	chains := make([]dto.ChainResponse, 0, len(nonces))
	for _, n := range nonces {
		family, _ := n.Family()
		chains = append(chains, dto.ChainResponse{
			Nonce:    n,
			Name:     n.String(),
			Family:   family,
			Decimals: decimals(n),
		})
	}
	return &dto.ChainListResponse{Chains: chains}
}

func (e *executor) GetBalance(ctx context.Context, chainNonce domain.ChainNonce, address string) (*dto.BalanceResponse, error) {
	if err := validateAddress(chainNonce, address); err != nil {
		return nil, err
	}

	backend, err := e.factory.Helper(ctx, chainNonce)
	if err != nil {
		return nil, err
	}
	b, ok := backend.(chain.BalanceCheck)
	if !ok {
		return nil, unsupported(chainNonce, "balance", backend)
	}

	balance, err := b.Balance(ctx, address)
	if err != nil {
		return nil, domain.NewChainError(chainNonce, "balance", err)
	}

	return &dto.BalanceResponse{
		ChainNonce: chainNonce,
		Address:    address,
		Balance:    dto.NewAmount(balance, decimals(chainNonce)),
	}, nil
}

func (e *executor) GetWrappedBalances(ctx context.Context, chainNonce domain.ChainNonce, address string, origins []domain.ChainNonce) (*dto.WrappedBalancesResponse, error) {
	if err := validateAddress(chainNonce, address); err != nil {
		return nil, err
	}
	if len(origins) > constants.MAX_WRAPPED_BALANCE_CHAINS {
		return nil, apierrors.NewValidationError(fmt.Sprintf("at most %d chains per request", constants.MAX_WRAPPED_BALANCE_CHAINS))
	}

	backend, err := e.factory.Helper(ctx, chainNonce)
	if err != nil {
		return nil, err
	}
	b, ok := backend.(chain.BatchWrappedBalanceCheck)
	if !ok {
		return nil, unsupported(chainNonce, "wrapped balances", backend)
	}

	balances, err := b.BalanceWrappedBatch(ctx, address, origins)
	if err != nil {
		return nil, domain.NewChainError(chainNonce, "wrapped balances", err)
	}

	resp := &dto.WrappedBalancesResponse{
		ChainNonce: chainNonce,
		Address:    address,
		Balances:   make([]dto.WrappedBalance, 0, len(balances)),
	}
	for origin, balance := range balances {
		resp.Balances = append(resp.Balances, dto.WrappedBalance{
			OriginChain: origin,
			Balance:     dto.NewAmount(balance, decimals(origin)),
		})
	}
	sort.Slice(resp.Balances, func(i, j int) bool {
		return resp.Balances[i].OriginChain < resp.Balances[j].OriginChain
	})
	return resp, nil
}

func (e *executor) ListNfts(ctx context.Context, chainNonce domain.ChainNonce, owner string) (*dto.NftListResponse, error) {
	if err := validateAddress(chainNonce, owner); err != nil {
		return nil, err
	}

	backend, err := e.factory.Helper(ctx, chainNonce)
	if err != nil {
		return nil, err
	}

	var nfts []dto.NftResponse
	switch b := backend.(type) {
	case *web3.Helper:
		nfts, err = listNfts[web3.Nft](ctx, e.factory, b, owner)
	case *elrond.Helper:
		nfts, err = listNfts[elrond.Nft](ctx, e.factory, b, owner)
	case *tron.Helper:
		nfts, err = listNfts[tron.Nft](ctx, e.factory, b, owner)
	default:
		err = unsupported(chainNonce, "nft list", backend)
	}
	if err != nil {
		return nil, err
	}

	return &dto.NftListResponse{ChainNonce: chainNonce, Owner: owner, Nfts: nfts}, nil
}

func (e *executor) GetNftUri(ctx context.Context, chainNonce domain.ChainNonce, nft dto.NftRequest) (*dto.NftUriResponse, error) {
	backend, err := e.factory.Helper(ctx, chainNonce)
	if err != nil {
		return nil, err
	}

	var bare domain.BareNft
	switch b := backend.(type) {
	case *web3.Helper:
		bare, err = nftUri[web3.Nft](ctx, e.factory, b, nft)
	case *elrond.Helper:
		bare, err = nftUri[elrond.Nft](ctx, e.factory, b, nft)
	case *tron.Helper:
		bare, err = nftUri[tron.Nft](ctx, e.factory, b, nft)
	default:
		err = unsupported(chainNonce, "nft uri", backend)
	}
	if err != nil {
		return nil, err
	}

	return &dto.NftUriResponse{ChainID: bare.ChainID, URI: bare.URI}, nil
}

func (e *executor) EstimateFees(ctx context.Context, fromChain domain.ChainNonce, toChain domain.ChainNonce, nft dto.NftRequest, receiver string) (*dto.FeeEstimateResponse, error) {
	if err := validateAddress(toChain, receiver); err != nil {
		return nil, err
	}

	from, err := e.factory.Helper(ctx, fromChain)
	if err != nil {
		return nil, err
	}
	to, err := e.factory.Helper(ctx, toChain)
	if err != nil {
		return nil, err
	}

	var fee *big.Int
	switch b := from.(type) {
	case *web3.Helper:
		fee, err = estimateFrom[web3.Nft](ctx, e.factory, b, nft, to, receiver)
	case *elrond.Helper:
		fee, err = estimateFrom[elrond.Nft](ctx, e.factory, b, nft, to, receiver)
	case *tron.Helper:
		fee, err = estimateFrom[tron.Nft](ctx, e.factory, b, nft, to, receiver)
	default:
		err = unsupported(fromChain, "estimate fees", from)
	}
	if err != nil {
		return nil, err
	}

	return &dto.FeeEstimateResponse{
		FromChain: fromChain,
		ToChain:   toChain,
		Fee:       dto.NewAmount(fee, decimals(toChain)),
	}, nil
}

func (e *executor) GetTransfer(ctx context.Context, fromChain domain.ChainNonce, eventID string) (*dto.TransferResponse, error) {
	if e.journal == nil {
		return nil, fmt.Errorf("%w: no transfer journal configured", domain.ErrUnsupportedCapability)
	}

	event, err := e.journal.GetTransferByEventID(ctx, fromChain, eventID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get transfer: %v", err))
	}
	if event == nil {
		return nil, nil
	}

	transfer := dto.MapTransferToDTO(*event)
	return &transfer, nil
}

func (e *executor) ListTransfers(ctx context.Context, sender string, fromChain *domain.ChainNonce, limit int, offset int) (*dto.TransferListResponse, error) {
	if e.journal == nil {
		return nil, fmt.Errorf("%w: no transfer journal configured", domain.ErrUnsupportedCapability)
	}

	if limit <= 0 {
		limit = constants.DEFAULT_TRANSFERS_LIMIT
	}
	if limit > constants.MAX_PAGE_SIZE {
		limit = constants.MAX_PAGE_SIZE
	}
	if offset < 0 {
		offset = constants.DEFAULT_OFFSET
	}

	events, err := e.journal.ListTransfers(ctx, store.TransferFilter{
		Sender:    sender,
		FromChain: fromChain,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list transfers: %v", err))
	}

	transfers := make([]dto.TransferResponse, len(events))
	for i, event := range events {
		transfers[i] = dto.MapTransferToDTO(event)
	}
	return &dto.TransferListResponse{Transfers: transfers, Offset: offset, Limit: limit}, nil
}

// listNfts lists the NFTs of owner and resolves the URIs the indexer left empty
func listNfts[R any](ctx context.Context, f *factory.Factory, backend chain.NftUriChain[R], owner string) ([]dto.NftResponse, error) {
	nfts, err := factory.NftList[R](ctx, f, backend, owner)
	if err != nil {
		return nil, err
	}
	if len(nfts) == 0 {
		return []dto.NftResponse{}, nil
	}

	pool := pond.NewResultPool[dto.NftResponse](constants.NFT_URI_CONCURRENCY, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, nft := range nfts {
		nft := nft
		group.SubmitErr(func() (dto.NftResponse, error) {
			if nft.URI == "" {
				bare, err := factory.NftUri[R](ctx, f, backend, nft)
				if err != nil {
					// one unresolvable NFT must not hide the rest of the listing
					logger.WarnCtx(ctx, "Failed to resolve nft uri", zap.Stringer("chain", backend.GetNonce()), zap.Error(err))
				} else {
					nft.URI = bare.URI
				}
			}
			return mapNft(nft)
		})
	}

	return group.Wait()
}

func nftUri[R any](ctx context.Context, f *factory.Factory, backend chain.NftUriChain[R], req dto.NftRequest) (domain.BareNft, error) {
	nft, err := decodeNft[R](ctx, backend, req)
	if err != nil {
		return domain.BareNft{}, err
	}
	return factory.NftUri[R](ctx, f, backend, nft)
}

type sourceBackend[R any] interface {
	chain.SourceChain[R]
	chain.DecodeRawNft[R]
}

// estimateFrom resolves the destination's static type and prices the transfer
func estimateFrom[RF any](ctx context.Context, f *factory.Factory, from sourceBackend[RF], req dto.NftRequest, to interface{}, receiver string) (*big.Int, error) {
	nft, err := decodeNft[RF](ctx, from, req)
	if err != nil {
		return nil, err
	}

	switch b := to.(type) {
	case *web3.Helper:
		return factory.EstimateFees[RF, web3.Nft](ctx, f, from, b, nft, receiver)
	case *elrond.Helper:
		return factory.EstimateFees[RF, elrond.Nft](ctx, f, from, b, nft, receiver)
	case *tron.Helper:
		return factory.EstimateFees[RF, tron.Nft](ctx, f, from, b, nft, receiver)
	}

	nonce := domain.ChainNonce(0)
	if n, ok := to.(chain.ChainNonceGet); ok {
		nonce = n.GetNonce()
	}
	return nil, unsupported(nonce, "estimate fees", to)
}

// decodeNft turns the hex native representation of a request into an NftInfo
func decodeNft[R any](ctx context.Context, backend chain.DecodeRawNft[R], req dto.NftRequest) (domain.NftInfo[R], error) {
	raw, err := req.NativeBytes()
	if err != nil {
		return domain.NftInfo[R]{}, apierrors.NewValidationError(err.Error())
	}

	nft, err := backend.DecodeNftFromRaw(ctx, raw)
	if err != nil {
		return domain.NftInfo[R]{}, err
	}
	nft.URI = req.URI
	return nft, nil
}

func mapNft[R any](nft domain.NftInfo[R]) (dto.NftResponse, error) {
	native, err := codec.EncodeNative(nft.Native)
	if err != nil {
		return dto.NftResponse{}, err
	}
	details, err := json.Marshal(nft.Native)
	if err != nil {
		return dto.NftResponse{}, fmt.Errorf("failed to marshal nft: %w", err)
	}

	return dto.NftResponse{
		URI:     nft.URI,
		Native:  fmt.Sprintf("0x%x", native),
		Details: details,
	}, nil
}

// validateAddress checks address against the format of the chain's family
func validateAddress(chainNonce domain.ChainNonce, address string) error {
	if address == "" {
		return apierrors.NewValidationError("address is required")
	}

	family, _ := chainNonce.Family()
	var err error
	switch family {
	case domain.FamilyWeb3:
		if !common.IsHexAddress(address) {
			err = fmt.Errorf("invalid evm address %q", address)
		}
	case domain.FamilyElrond:
		_, err = elrond.DecodeAddress(address)
	case domain.FamilyTron:
		_, err = tron.DecodeAddress(address)
	}
	if err != nil {
		return apierrors.NewValidationError(err.Error())
	}
	return nil
}

func decimals(chainNonce domain.ChainNonce) int32 {
	family, _ := chainNonce.Family()
	switch family {
	case domain.FamilyElrond:
		return domain.ELROND_NATIVE_DECIMALS
	case domain.FamilyTron:
		return domain.TRON_NATIVE_DECIMALS
	default:
		return domain.WEB3_NATIVE_DECIMALS
	}
}

func unsupported(chainNonce domain.ChainNonce, op string, backend interface{}) error {
	return domain.NewChainError(chainNonce, op, fmt.Errorf("%w: %T", domain.ErrUnsupportedCapability, backend))
}
