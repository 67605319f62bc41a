// Package tron is the bridge backend for Tron. The bridge contracts are the
// Solidity ones deployed on EVM chains; calls are built and broadcast through
// the full node HTTP API.
package tron

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/contracts"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultPollAttempts = 40
)

// Nft is the native representation of a TRC721 token
type Nft struct {
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
}

func (n Nft) tokenID() (*big.Int, error) {
	id, ok := new(big.Int).SetString(n.TokenID, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid token id %q", n.TokenID)
	}
	return id, nil
}

// sampleActionID stands in for the relay-assigned action id when pricing validations
var sampleActionID = new(big.Int).Lsh(big.NewInt(1), 127)

// Helper implements the bridge capabilities for Tron
type Helper struct {
	nonce  domain.ChainNonce
	params Params
	addrs  addresses
	node   *node
}

// Option customizes a Helper
type Option func(*Helper)

// WithPolling sets how often and how many times a broadcast transaction is polled for
func WithPolling(interval time.Duration, attempts uint64) Option {
	return func(h *Helper) {
		h.node.pollInterval = interval
		h.node.pollAttempts = attempts
	}
}

// NewHelper returns the Tron backend for nonce
func NewHelper(nonce domain.ChainNonce, params Params, httpClient adapter.HTTPClient, opts ...Option) (*Helper, error) {
	addrs, err := params.addresses()
	if err != nil {
		return nil, fmt.Errorf("invalid params for %s: %w", nonce, err)
	}

	h := &Helper{
		nonce:  nonce,
		params: params,
		addrs:  addrs,
		node: &node{
			provider:     strings.TrimRight(params.Provider, "/"),
			http:         httpClient,
			pollInterval: defaultPollInterval,
			pollAttempts: defaultPollAttempts,
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

func (h *Helper) GetNonce() domain.ChainNonce {
	return h.nonce
}

func (h *Helper) Balance(ctx context.Context, address string) (*big.Int, error) {
	if _, err := DecodeAddress(address); err != nil {
		return nil, err
	}

	acct, err := h.node.account(ctx, address)
	if err != nil {
		return nil, err
	}
	return big.NewInt(acct.Balance), nil
}

func (h *Helper) BalanceWrapped(ctx context.Context, address string, chainNonce domain.ChainNonce) (*big.Int, error) {
	owner, err := DecodeAddress(address)
	if err != nil {
		return nil, err
	}

	var balance *big.Int
	if err := h.call(ctx, contracts.ERC1155, h.addrs.erc1155, "balanceOf", &balance, owner, new(big.Int).SetUint64(uint64(chainNonce))); err != nil {
		return nil, err
	}
	return balance, nil
}

func (h *Helper) BalanceWrappedBatch(ctx context.Context, address string, chainNonces []domain.ChainNonce) (map[domain.ChainNonce]*big.Int, error) {
	owner, err := DecodeAddress(address)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.ChainNonce]struct{}, len(chainNonces))
	var unique []domain.ChainNonce
	for _, n := range chainNonces {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			unique = append(unique, n)
		}
	}

	result := make(map[domain.ChainNonce]*big.Int, len(unique))
	if len(unique) == 0 {
		return result, nil
	}

	accounts := make([]common.Address, len(unique))
	ids := make([]*big.Int, len(unique))
	for i, n := range unique {
		accounts[i] = owner
		ids[i] = new(big.Int).SetUint64(uint64(n))
	}

	var balances []*big.Int
	if err := h.call(ctx, contracts.ERC1155, h.addrs.erc1155, "balanceOfBatch", &balances, accounts, ids); err != nil {
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
func (h *Helper) MintNft(ctx context.Context, owner Signer, args domain.NftMintArgs) (*Transaction, error) {
	if err := args.Validate(h.MintRequirements()...); err != nil {
		return nil, err
	}
	collection, err := DecodeAddress(args.Contract)
	if err != nil {
		return nil, err
	}

	tx, _, err := h.send(ctx, owner, contracts.ERC721, collection, nil, "mint", args.URIs[0])
	return tx, err
}

func (h *Helper) IsWrappedNft(nft domain.NftInfo[Nft]) bool {
	addr, err := DecodeAddress(nft.Native.Contract)
	return err == nil && addr == h.addrs.erc721
}

func (h *Helper) WrapNftForTransfer(nft domain.NftInfo[Nft]) ([]byte, error) {
	native, err := codec.EncodeNative(nft.Native)
	if err != nil {
		return nil, err
	}
	return codec.Pack(h.nonce, native)
}

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
		if err := h.call(ctx, contracts.ERC721, h.addrs.erc721, "tokenURI", &uri, id); err != nil {
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
	if _, err := DecodeAddress(native.Contract); err != nil {
		return domain.NftInfo[Nft]{}, domain.Decode("%v", err)
	}
	if _, err := native.tokenID(); err != nil {
		return domain.NftInfo[Nft]{}, domain.Decode("%v", err)
	}
	return domain.NftInfo[Nft]{Native: native}, nil
}

func (h *Helper) PopulateNft(ctx context.Context, nft domain.NftInfo[Nft]) (domain.BareNft, error) {
	addr, err := DecodeAddress(nft.Native.Contract)
	if err != nil {
		return domain.BareNft{}, err
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return domain.BareNft{}, err
	}

	var uri string
	if err := h.call(ctx, contracts.ERC721, addr, "tokenURI", &uri, id); err != nil {
		return domain.BareNft{}, err
	}

	return domain.BareNft{
		ChainID: strconv.FormatUint(uint64(h.nonce), 10),
		URI:     uri,
	}, nil
}

// EstimateValidateTransferNft prices the validators minting the wrapped copy of data here
func (h *Helper) EstimateValidateTransferNft(ctx context.Context, to string, data []byte) (*big.Int, error) {
	receiver, err := DecodeAddress(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDestination, err)
	}

	req, err := callRequest(contracts.Minter, "validateTransferNft", h.addrs.validators[0], h.addrs.minter,
		sampleActionID, receiver, codec.FormatURI(data))
	if err != nil {
		return nil, err
	}
	return h.estimateValidation(ctx, req)
}

// EstimateValidateUnfreezeNft prices the validators releasing nft here
func (h *Helper) EstimateValidateUnfreezeNft(ctx context.Context, to string, nft domain.NftInfo[Nft]) (*big.Int, error) {
	receiver, err := DecodeAddress(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDestination, err)
	}
	collection, err := DecodeAddress(nft.Native.Contract)
	if err != nil {
		return nil, err
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return nil, err
	}

	req, err := callRequest(contracts.Minter, "validateUnfreezeNft", h.addrs.validators[0], h.addrs.minter,
		sampleActionID, receiver, id, collection)
	if err != nil {
		return nil, err
	}
	return h.estimateValidation(ctx, req)
}

// estimateValidation prices the energy of one validation, paid by every validator
func (h *Helper) estimateValidation(ctx context.Context, req triggerRequest) (*big.Int, error) {
	resp, err := h.node.constant(ctx, req)
	if err != nil {
		return nil, err
	}

	fee := big.NewInt(resp.EnergyUsed)
	fee.Mul(fee, big.NewInt(h.params.energyPrice()))
	return fee.Mul(fee, big.NewInt(int64(len(h.addrs.validators)))), nil
}

// TransferNftToForeign locks nft in the minter for chainNonce, approving the
// minter for the collection first when needed
func (h *Helper) TransferNftToForeign(ctx context.Context, sender Signer, chainNonce domain.ChainNonce, to string, nft domain.NftInfo[Nft], txFees *big.Int) (*Transaction, string, error) {
	collection, err := DecodeAddress(nft.Native.Contract)
	if err != nil {
		return nil, "", err
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return nil, "", err
	}

	if err := h.ensureApproval(ctx, sender, collection); err != nil {
		return nil, "", err
	}

	tx, info, err := h.send(ctx, sender, contracts.Minter, h.addrs.minter, txFees, "freezeErc721", collection, id, uint64(chainNonce), to)
	if err != nil {
		return tx, "", err
	}

	eventID, err := h.actionID(info, "TransferErc721")
	return tx, eventID, err
}

func (h *Helper) UnfreezeWrappedNft(ctx context.Context, sender Signer, to string, nft domain.NftInfo[Nft], txFees *big.Int) (*Transaction, string, error) {
	if !h.IsWrappedNft(nft) {
		return nil, "", domain.Decode("%s is not a wrapped nft contract on %s", nft.Native.Contract, h.nonce)
	}
	id, err := nft.Native.tokenID()
	if err != nil {
		return nil, "", err
	}

	tx, info, err := h.send(ctx, sender, contracts.Minter, h.addrs.minter, txFees, "withdrawNft", id, to)
	if err != nil {
		return tx, "", err
	}

	eventID, err := h.actionID(info, "UnfreezeNft")
	return tx, eventID, err
}

func (h *Helper) ensureApproval(ctx context.Context, sender Signer, collection common.Address) error {
	if sender == nil {
		return fmt.Errorf("%w: signer is required", domain.ErrSubmissionFailure)
	}
	owner, err := DecodeAddress(sender.Address())
	if err != nil {
		return err
	}

	var approved bool
	if err := h.call(ctx, contracts.ERC721, collection, "isApprovedForAll", &approved, owner, h.addrs.minter); err != nil {
		return err
	}
	if approved {
		return nil
	}

	logger.InfoCtx(ctx, "Approving minter", zap.Stringer("chain", h.nonce), zap.String("collection", EncodeAddress(collection)))
	_, _, err = h.send(ctx, sender, contracts.ERC721, collection, nil, "setApprovalForAll", h.addrs.minter, true)
	return err
}

// call runs a read-only method and unpacks its single output into out
func (h *Helper) call(ctx context.Context, contract abi.ABI, addr common.Address, method string, out interface{}, args ...interface{}) error {
	req, err := callRequest(contract, method, h.addrs.minter, addr, args...)
	if err != nil {
		return err
	}

	resp, err := h.node.constant(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.ConstantResult) == 0 {
		return fmt.Errorf("call %s on %s returned no result", method, EncodeAddress(addr))
	}

	data, err := hex.DecodeString(resp.ConstantResult[0])
	if err != nil {
		return fmt.Errorf("invalid %s result: %w", method, err)
	}
	if err := contract.UnpackIntoInterface(out, method, data); err != nil {
		return fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return nil
}

// send builds, signs and broadcasts a contract call, then waits for it to be confirmed
func (h *Helper) send(ctx context.Context, signer Signer, contract abi.ABI, to common.Address, value *big.Int, method string, args ...interface{}) (*Transaction, txInfo, error) {
	if signer == nil {
		return nil, txInfo{}, fmt.Errorf("%w: signer is required", domain.ErrSubmissionFailure)
	}
	owner, err := DecodeAddress(signer.Address())
	if err != nil {
		return nil, txInfo{}, err
	}

	req, err := callRequest(contract, method, owner, to, args...)
	if err != nil {
		return nil, txInfo{}, err
	}
	req.FeeLimit = h.params.feeLimit()
	if value != nil {
		if !value.IsInt64() || value.Sign() < 0 {
			return nil, txInfo{}, fmt.Errorf("%w: call value %s out of range", domain.ErrSubmissionFailure, value)
		}
		req.CallValue = value.Int64()
	}

	tx, err := h.node.trigger(ctx, req)
	if err != nil {
		return nil, txInfo{}, err
	}

	sig, err := signer.Sign(ctx, tx)
	if err != nil {
		return nil, txInfo{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Signature = []string{sig}

	if err := h.node.broadcast(ctx, tx); err != nil {
		return nil, txInfo{}, err
	}
	logger.InfoCtx(ctx, "Transaction sent", zap.Stringer("chain", h.nonce), zap.String("txHash", tx.TxID), zap.String("method", method))

	info, err := h.node.waitConfirmed(ctx, tx.TxID)
	if err != nil {
		return tx, txInfo{}, fmt.Errorf("%w: transaction %s: %v", domain.ErrSubmissionFailure, tx.TxID, err)
	}
	return tx, info, nil
}

// actionID extracts the relay action id from the minter event in info
func (h *Helper) actionID(info txInfo, event string) (string, error) {
	ev := contracts.Minter.Events[event]
	for _, l := range info.Log {
		if logAddress(l.Address) != h.addrs.minter || len(l.Topics) == 0 || common.HexToHash(l.Topics[0]) != ev.ID {
			continue
		}

		data, err := hex.DecodeString(l.Data)
		if err != nil {
			return "", fmt.Errorf("%w: malformed %s event: %v", domain.ErrSubmissionFailure, event, err)
		}
		values := make(map[string]interface{})
		if err := contracts.Minter.UnpackIntoMap(values, event, data); err != nil {
			return "", fmt.Errorf("%w: malformed %s event: %v", domain.ErrSubmissionFailure, event, err)
		}
		id, ok := values["actionId"].(*big.Int)
		if !ok {
			return "", fmt.Errorf("%w: %s event without action id", domain.ErrSubmissionFailure, event)
		}
		return id.String(), nil
	}

	return "", fmt.Errorf("%w: no %s event in transaction %s", domain.ErrSubmissionFailure, event, info.ID)
}

// logAddress parses a log address, which the node renders as hex with or
// without the 41 prefix
func logAddress(s string) common.Address {
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 2*(common.AddressLength+1) {
		s = s[2:]
	}
	return common.HexToAddress(s)
}

func (h *Helper) SignerAddress(sender Signer) (string, error) {
	if sender == nil {
		return "", fmt.Errorf("signer is required")
	}
	return sender.Address(), nil
}

// NftIdentity keys an NFT by its re-encoded contract and parsed token id
func (h *Helper) NftIdentity(nft domain.NftInfo[Nft]) string {
	contract := nft.Native.Contract
	if addr, err := DecodeAddress(contract); err == nil {
		contract = EncodeAddress(addr)
	}
	id := nft.Native.TokenID
	if v, err := nft.Native.tokenID(); err == nil {
		id = v.String()
	}
	return contract + ":" + id
}

func (h *Helper) TxHash(tx *Transaction) string {
	if tx == nil {
		return ""
	}
	return tx.TxID
}
