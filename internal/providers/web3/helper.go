// Package web3 is the bridge backend for EVM chains. NFTs are locked in and
// released from the bridge minter contract; wrapped NFTs are minted into the
// bridge's ERC721 collection with the packed origin NFT as their URI.
package web3

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/contracts"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
)

// Nft is the native representation of an NFT on an EVM chain
type Nft struct {
	Std      domain.ChainStandard `json:"std"`
	Contract string               `json:"contract"`
	TokenID  string               `json:"token_id"`
}

func (n Nft) tokenID() (*big.Int, error) {
	id, ok := new(big.Int).SetString(n.TokenID, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid token id %q", n.TokenID)
	}
	return id, nil
}

func (n Nft) contract() (common.Address, error) {
	if !common.IsHexAddress(n.Contract) {
		return common.Address{}, fmt.Errorf("invalid contract address %q", n.Contract)
	}
	return common.HexToAddress(n.Contract), nil
}

// Signer signs and pays for EVM transactions
type Signer = *bind.TransactOpts

// sampleActionID stands in for the relay-assigned action id when pricing validations
var sampleActionID = new(big.Int).Lsh(big.NewInt(1), 127)

// Helper implements the bridge capabilities for one EVM chain
type Helper struct {
	nonce  domain.ChainNonce
	addrs  addresses
	client *client
}

// Option customizes a Helper
type Option func(*Helper)

// WithReceiptPolling sets how often and how many times a receipt is polled for
func WithReceiptPolling(interval time.Duration, attempts uint64) Option {
	return func(h *Helper) {
		h.client.receiptInterval = interval
		h.client.receiptAttempts = attempts
	}
}

// NewHelper dials params.Provider and returns the backend for nonce
func NewHelper(ctx context.Context, nonce domain.ChainNonce, params Params, dialer adapter.EthClientDialer, opts ...Option) (*Helper, error) {
	addrs, err := params.addresses()
	if err != nil {
		return nil, fmt.Errorf("invalid params for %s: %w", nonce, err)
	}

	eth, err := dialer.Dial(ctx, params.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", nonce, err)
	}

	h := &Helper{
		nonce:  nonce,
		addrs:  addrs,
		client: newClient(nonce, eth),
	}
	for _, opt := range opts {
		opt(h)
	}

	logger.InfoCtx(ctx, "Web3 helper created", zap.Stringer("chain", nonce), zap.String("minter", addrs.minter.Hex()))
	return h, nil
}

func (h *Helper) GetNonce() domain.ChainNonce {
	return h.nonce
}

func (h *Helper) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}
	return h.client.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
}

func (h *Helper) BalanceWrapped(ctx context.Context, address string, chainNonce domain.ChainNonce) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}

	var balance *big.Int
	err := h.client.call(ctx, contracts.ERC1155, h.addrs.erc1155, "balanceOf", &balance,
		common.HexToAddress(address), new(big.Int).SetUint64(uint64(chainNonce)))
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// BalanceWrappedBatch reads every balance with a single balanceOfBatch call
func (h *Helper) BalanceWrappedBatch(ctx context.Context, address string, chainNonces []domain.ChainNonce) (map[domain.ChainNonce]*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}

	unique := uniqueNonces(chainNonces)
	result := make(map[domain.ChainNonce]*big.Int, len(unique))
	if len(unique) == 0 {
		return result, nil
	}

	owner := common.HexToAddress(address)
	accounts := make([]common.Address, len(unique))
	ids := make([]*big.Int, len(unique))
	for i, n := range unique {
		accounts[i] = owner
		ids[i] = new(big.Int).SetUint64(uint64(n))
	}

	var balances []*big.Int
	if err := h.client.call(ctx, contracts.ERC1155, h.addrs.erc1155, "balanceOfBatch", &balances, accounts, ids); err != nil {
		return nil, err
	}
	if len(balances) != len(unique) {
		return nil, fmt.Errorf("balanceOfBatch returned %d balances for %d ids", len(balances), len(unique))
	}

	for i, n := range unique {
		result[n] = balances[i]
	}
	return result, nil
}

func (h *Helper) MintRequirements() []domain.MintField {
	return []domain.MintField{domain.MintFieldContract, domain.MintFieldURIs}
}

// MintNft mints args.URIs[0] on the user collection args.Contract
func (h *Helper) MintNft(ctx context.Context, owner Signer, args domain.NftMintArgs) (*types.Transaction, error) {
	if err := args.Validate(h.MintRequirements()...); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(args.Contract) {
		return nil, fmt.Errorf("invalid contract address %q", args.Contract)
	}

	data, err := contracts.ERC721.Pack("mint", args.URIs[0])
	if err != nil {
		return nil, fmt.Errorf("failed to pack mint: %w", err)
	}

	tx, _, err := h.client.send(ctx, owner, common.HexToAddress(args.Contract), nil, data)
	return tx, err
}

func (h *Helper) IsWrappedNft(nft domain.NftInfo[Nft]) bool {
	return common.IsHexAddress(nft.Native.Contract) &&
		common.HexToAddress(nft.Native.Contract) == h.addrs.erc721
}

func (h *Helper) WrapNftForTransfer(nft domain.NftInfo[Nft]) ([]byte, error) {
	native, err := codec.EncodeNative(nft.Native)
	if err != nil {
		return nil, err
	}
	return codec.Pack(h.nonce, native)
}

// DecodeWrappedNft reads the envelope from the wrapped NFT's URI, fetching it
// from the collection when the handle does not carry one
func (h *Helper) DecodeWrappedNft(ctx context.Context, nft domain.NftInfo[Nft]) (domain.WrappedNft, error) {
	if !h.IsWrappedNft(nft) {
		return domain.WrappedNft{}, domain.Decode("%s is not a wrapped nft contract on %s", nft.Native.Contract, h.nonce)
	}

	uri := nft.URI
	if uri == "" {
		id, err := nft.Native.tokenID()
		if err != nil {
			return domain.WrappedNft{}, domain.Decode("%v", err)
		}
		if err := h.client.call(ctx, contracts.ERC721, h.addrs.erc721, "tokenURI", &uri, id); err != nil {
			return domain.WrappedNft{}, err
		}
	}

	return codec.UnpackURI(uri)
}

func (h *Helper) DecodeNftFromRaw(ctx context.Context, data []byte) (domain.NftInfo[Nft], error) {
	var native Nft
	if err := codec.DecodeNative(data, &native); err != nil {
		return domain.NftInfo[Nft]{}, err
	}
	if _, err := native.contract(); err != nil {
		return domain.NftInfo[Nft]{}, domain.Decode("%v", err)
	}
	if _, err := native.tokenID(); err != nil {
		return domain.NftInfo[Nft]{}, domain.Decode("%v", err)
	}
	if native.Std == "" {
		native.Std = domain.StandardERC721
	}

	return domain.NftInfo[Nft]{Native: native}, nil
}

func (h *Helper) PopulateNft(ctx context.Context, nft domain.NftInfo[Nft]) (domain.BareNft, error) {
	addr, err := nft.Native.contract()
	if err != nil {
		return domain.BareNft{}, err
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return domain.BareNft{}, err
	}

	var uri string
	if nft.Native.Std == domain.StandardERC1155 {
		if err := h.client.call(ctx, contracts.ERC1155, addr, "uri", &uri, id); err != nil {
			return domain.BareNft{}, err
		}
		// ERC1155 metadata URIs may use the {id} substitution
		uri = strings.ReplaceAll(uri, "{id}", fmt.Sprintf("%064x", id))
	} else {
		if err := h.client.call(ctx, contracts.ERC721, addr, "tokenURI", &uri, id); err != nil {
			return domain.BareNft{}, err
		}
	}

	return domain.BareNft{
		ChainID: strconv.FormatUint(uint64(h.nonce), 10),
		URI:     uri,
	}, nil
}

// EstimateValidateTransferNft prices the validators minting the wrapped copy of data on this chain
func (h *Helper) EstimateValidateTransferNft(ctx context.Context, to string, data []byte) (*big.Int, error) {
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("%w: invalid receiver %q", domain.ErrInvalidDestination, to)
	}

	call, err := contracts.Minter.Pack("validateTransferNft", sampleActionID, common.HexToAddress(to), codec.FormatURI(data))
	if err != nil {
		return nil, fmt.Errorf("failed to pack validateTransferNft: %w", err)
	}

	return h.estimateValidation(ctx, call)
}

// EstimateValidateUnfreezeNft prices the validators releasing nft on this chain
func (h *Helper) EstimateValidateUnfreezeNft(ctx context.Context, to string, nft domain.NftInfo[Nft]) (*big.Int, error) {
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("%w: invalid receiver %q", domain.ErrInvalidDestination, to)
	}
	addr, err := nft.Native.contract()
	if err != nil {
		return nil, err
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return nil, err
	}

	call, err := contracts.Minter.Pack("validateUnfreezeNft", sampleActionID, common.HexToAddress(to), id, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to pack validateUnfreezeNft: %w", err)
	}

	return h.estimateValidation(ctx, call)
}

func (h *Helper) estimateValidation(ctx context.Context, call []byte) (*big.Int, error) {
	fee, err := h.client.estimate(ctx, h.addrs.validators[0], h.addrs.minter, call)
	if err != nil {
		return nil, err
	}
	return fee.Mul(fee, big.NewInt(int64(len(h.addrs.validators)))), nil
}

// TransferNftToForeign locks nft in the minter for chainNonce. The minter is
// approved for the collection first when needed.
func (h *Helper) TransferNftToForeign(ctx context.Context, sender Signer, chainNonce domain.ChainNonce, to string, nft domain.NftInfo[Nft], txFees *big.Int) (*types.Transaction, string, error) {
	addr, err := nft.Native.contract()
	if err != nil {
		return nil, "", err
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return nil, "", err
	}

	var (
		call  []byte
		event string
	)
	if nft.Native.Std == domain.StandardERC1155 {
		call, err = contracts.Minter.Pack("freezeErc1155", addr, id, big.NewInt(1), uint64(chainNonce), to)
		event = "TransferErc1155"
	} else {
		call, err = contracts.Minter.Pack("freezeErc721", addr, id, uint64(chainNonce), to)
		event = "TransferErc721"
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to pack freeze: %w", err)
	}

	if err := h.ensureApproval(ctx, sender, addr); err != nil {
		return nil, "", err
	}

	tx, receipt, err := h.client.send(ctx, sender, h.addrs.minter, txFees, call)
	if err != nil {
		return tx, "", err
	}

	eventID, err := h.actionID(receipt, event)
	return tx, eventID, err
}

// UnfreezeWrappedNft burns a wrapped NFT held by sender; the minter emits the
// origin chain from the wrapped token's payload
func (h *Helper) UnfreezeWrappedNft(ctx context.Context, sender Signer, to string, nft domain.NftInfo[Nft], txFees *big.Int) (*types.Transaction, string, error) {
	if !h.IsWrappedNft(nft) {
		return nil, "", domain.Decode("%s is not a wrapped nft contract on %s", nft.Native.Contract, h.nonce)
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return nil, "", err
	}

	call, err := contracts.Minter.Pack("withdrawNft", id, to)
	if err != nil {
		return nil, "", fmt.Errorf("failed to pack withdrawNft: %w", err)
	}

	tx, receipt, err := h.client.send(ctx, sender, h.addrs.minter, txFees, call)
	if err != nil {
		return tx, "", err
	}

	eventID, err := h.actionID(receipt, "UnfreezeNft")
	return tx, eventID, err
}

func (h *Helper) ensureApproval(ctx context.Context, sender Signer, collection common.Address) error {
	if sender == nil {
		return fmt.Errorf("%w: signer is required", domain.ErrSubmissionFailure)
	}

	var approved bool
	if err := h.client.call(ctx, contracts.ERC721, collection, "isApprovedForAll", &approved, sender.From, h.addrs.minter); err != nil {
		return err
	}
	if approved {
		return nil
	}

	call, err := contracts.ERC721.Pack("setApprovalForAll", h.addrs.minter, true)
	if err != nil {
		return fmt.Errorf("failed to pack setApprovalForAll: %w", err)
	}

	logger.InfoCtx(ctx, "Approving minter", zap.Stringer("chain", h.nonce), zap.String("collection", collection.Hex()))
	_, _, err = h.client.send(ctx, sender, collection, nil, call)
	return err
}

// actionID extracts the relay action id from the minter event in receipt
func (h *Helper) actionID(receipt *types.Receipt, event string) (string, error) {
	ev := contracts.Minter.Events[event]
	for _, l := range receipt.Logs {
		if l.Address != h.addrs.minter || len(l.Topics) == 0 || l.Topics[0] != ev.ID {
			continue
		}

		values := make(map[string]interface{})
		if err := contracts.Minter.UnpackIntoMap(values, event, l.Data); err != nil {
			return "", fmt.Errorf("%w: malformed %s event: %v", domain.ErrSubmissionFailure, event, err)
		}
		id, ok := values["actionId"].(*big.Int)
		if !ok {
			return "", fmt.Errorf("%w: %s event without action id", domain.ErrSubmissionFailure, event)
		}
		return id.String(), nil
	}

	return "", fmt.Errorf("%w: no %s event in transaction %s", domain.ErrSubmissionFailure, event, receipt.TxHash.Hex())
}

func (h *Helper) SignerAddress(sender Signer) (string, error) {
	if sender == nil {
		return "", fmt.Errorf("signer is required")
	}
	return sender.From.Hex(), nil
}

// NftIdentity keys an NFT by its parsed contract and token id so that
// equivalent spellings map to the same asset
func (h *Helper) NftIdentity(nft domain.NftInfo[Nft]) string {
	contract := strings.ToLower(nft.Native.Contract)
	if addr, err := nft.Native.contract(); err == nil {
		contract = strings.ToLower(addr.Hex())
	}
	id := nft.Native.TokenID
	if v, err := nft.Native.tokenID(); err == nil {
		id = v.String()
	}
	return contract + ":" + id
}

func (h *Helper) TxHash(tx *types.Transaction) string {
	if tx == nil {
		return ""
	}
	return tx.Hash().Hex()
}

// Close closes the RPC connection
func (h *Helper) Close() {
	h.client.Close()
}

func uniqueNonces(nonces []domain.ChainNonce) []domain.ChainNonce {
	seen := make(map[domain.ChainNonce]struct{}, len(nonces))
	unique := make([]domain.ChainNonce, 0, len(nonces))
	for _, n := range nonces {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return unique
}
