// Package elrond is the bridge backend for Elrond. NFTs are ESDT tokens moved
// into the bridge minter with a multi-token transfer that also carries the fee.
package elrond

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
)

const (
	endpointFreeze   = "freezeSendNft"
	endpointWithdraw = "withdrawNft"

	egldIdentifier = "EGLD-000000"

	defaultPollInterval = 2 * time.Second
	defaultPollAttempts = 60
	defaultConcurrency  = 4
)

// Nft is the native representation of an ESDT NFT
type Nft struct {
	Collection string `json:"collection"`
	Nonce      uint64 `json:"nonce"`
}

// Identifier returns the token identifier, e.g. XPNFT-abcdef-0a
func (n Nft) Identifier() string {
	return n.Collection + "-" + hexUint(n.Nonce)
}

// Signer signs gateway transactions for one account
type Signer interface {
	Address() string
	Sign(ctx context.Context, tx *Transaction) (string, error)
}

// Helper implements the bridge capabilities for Elrond
type Helper struct {
	nonce       domain.ChainNonce
	params      Params
	minterPub   []byte
	gw          *gateway
	jcs         adapter.JCS
	base64      adapter.Base64
	concurrency int
}

// Option customizes a Helper
type Option func(*Helper)

// WithPolling sets how often and how many times a sent transaction is polled for its result
func WithPolling(interval time.Duration, attempts uint64) Option {
	return func(h *Helper) {
		h.gw.pollInterval = interval
		h.gw.pollAttempts = attempts
	}
}

// WithConcurrency bounds the parallel gateway queries of batch operations
func WithConcurrency(n int) Option {
	return func(h *Helper) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// NewHelper returns the Elrond backend for nonce
func NewHelper(nonce domain.ChainNonce, params Params, httpClient adapter.HTTPClient, jcs adapter.JCS, opts ...Option) (*Helper, error) {
	minterPub, err := DecodeAddress(params.MinterAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid params for %s: minter_address: %w", nonce, err)
	}
	if params.EsdtNft == "" || params.Esdt == "" {
		return nil, fmt.Errorf("invalid params for %s: esdt and esdt_nft are required", nonce)
	}
	if params.ValidatorCount < 1 {
		params.ValidatorCount = 1
	}

	h := &Helper{
		nonce:     nonce,
		params:    params,
		minterPub: minterPub,
		gw: &gateway{
			nodeURI:      strings.TrimRight(params.NodeURI, "/"),
			apiURI:       strings.TrimRight(params.APIURI, "/"),
			http:         httpClient,
			pollInterval: defaultPollInterval,
			pollAttempts: defaultPollAttempts,
		},
		jcs:         jcs,
		base64:      adapter.NewBase64(),
		concurrency: defaultConcurrency,
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

	acct, err := h.gw.account(ctx, address)
	if err != nil {
		return nil, err
	}
	return parseAmount(acct.Account.Balance)
}

func (h *Helper) BalanceWrapped(ctx context.Context, address string, chainNonce domain.ChainNonce) (*big.Int, error) {
	if _, err := DecodeAddress(address); err != nil {
		return nil, err
	}

	td, err := h.gw.token(ctx, address, h.params.Esdt, uint64(chainNonce))
	if err != nil {
		return nil, err
	}
	return parseAmount(td.TokenData.Balance)
}

// BalanceWrappedBatch queries each distinct nonce concurrently
func (h *Helper) BalanceWrappedBatch(ctx context.Context, address string, chainNonces []domain.ChainNonce) (map[domain.ChainNonce]*big.Int, error) {
	if _, err := DecodeAddress(address); err != nil {
		return nil, err
	}

	seen := make(map[domain.ChainNonce]struct{}, len(chainNonces))
	unique := make([]domain.ChainNonce, 0, len(chainNonces))
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

	pool := pond.NewResultPool[*big.Int](h.concurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, n := range unique {
		n := n
		group.SubmitErr(func() (*big.Int, error) {
			return h.BalanceWrapped(ctx, address, n)
		})
	}

	balances, err := group.Wait()
	if err != nil {
		return nil, err
	}
	for i, n := range unique {
		result[n] = balances[i]
	}
	return result, nil
}

func (h *Helper) MintRequirements() []domain.MintField {
	return []domain.MintField{domain.MintFieldIdentifier, domain.MintFieldURIs}
}

// MintNft creates an NFT in the owner's collection args.Identifier. The owner
// must hold the create role for that collection.
func (h *Helper) MintNft(ctx context.Context, owner Signer, args domain.NftMintArgs) (*Transaction, error) {
	if err := args.Validate(h.MintRequirements()...); err != nil {
		return nil, err
	}

	hash := args.Hash
	if hash == "" && args.Attrs != "" {
		hash = h.attributesHash(args.Attrs)
	}

	parts := []string{
		"ESDTNFTCreate",
		hexString(args.Identifier),
		hexUint(args.EffectiveQuantity()),
		hexString(args.Name),
		hexUint(uint64(args.Royalties)),
		hexString(hash),
		hexString(args.Attrs),
	}
	for _, uri := range args.URIs {
		parts = append(parts, hexString(uri))
	}

	return h.submit(ctx, owner, strings.Join(parts, "@"), mintExecutionGas)
}

// attributesHash hashes the canonical JSON form of attrs, or attrs as-is when it is not JSON
func (h *Helper) attributesHash(attrs string) string {
	canonical, err := h.jcs.Transform([]byte(attrs))
	if err != nil {
		canonical = []byte(attrs)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func (h *Helper) IsWrappedNft(nft domain.NftInfo[Nft]) bool {
	return nft.Native.Collection == h.params.EsdtNft
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
		return domain.WrappedNft{}, domain.Decode("%s is not a wrapped nft collection on %s", nft.Native.Collection, h.nonce)
	}

	uri := nft.URI
	if uri == "" {
		var err error
		if uri, err = h.fetchURI(ctx, nft.Native); err != nil {
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
	if !strings.Contains(native.Collection, "-") || native.Nonce == 0 {
		return domain.NftInfo[Nft]{}, domain.Decode("invalid esdt nft %q nonce %d", native.Collection, native.Nonce)
	}
	return domain.NftInfo[Nft]{Native: native}, nil
}

func (h *Helper) PopulateNft(ctx context.Context, nft domain.NftInfo[Nft]) (domain.BareNft, error) {
	uri, err := h.fetchURI(ctx, nft.Native)
	if err != nil {
		return domain.BareNft{}, err
	}

	return domain.BareNft{
		ChainID: strconv.FormatUint(uint64(h.nonce), 10),
		URI:     uri,
	}, nil
}

func (h *Helper) fetchURI(ctx context.Context, native Nft) (string, error) {
	doc, err := h.gw.nft(ctx, native.Identifier())
	if err != nil {
		return "", err
	}

	if len(doc.URIs) > 0 {
		uri, err := h.base64.Decode(doc.URIs[0])
		if err != nil {
			return "", domain.Decode("invalid uri encoding for %s: %v", native.Identifier(), err)
		}
		return string(uri), nil
	}
	if doc.URL != "" {
		return doc.URL, nil
	}

	return "", fmt.Errorf("nft %s has no uri", native.Identifier())
}

// EstimateValidateTransferNft prices the validators minting the wrapped copy of data here
func (h *Helper) EstimateValidateTransferNft(ctx context.Context, to string, data []byte) (*big.Int, error) {
	pub, err := DecodeAddress(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDestination, err)
	}

	call := strings.Join([]string{
		"validateSendNft",
		sampleActionID,
		hex.EncodeToString(pub),
		hexString(codec.FormatURI(data)),
	}, "@")
	return h.validationFee(call), nil
}

// EstimateValidateUnfreezeNft prices the validators releasing nft here
func (h *Helper) EstimateValidateUnfreezeNft(ctx context.Context, to string, nft domain.NftInfo[Nft]) (*big.Int, error) {
	pub, err := DecodeAddress(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDestination, err)
	}

	call := strings.Join([]string{
		"validateUnfreezeNft",
		sampleActionID,
		hex.EncodeToString(pub),
		hexString(nft.Native.Collection),
		hexUint(nft.Native.Nonce),
	}, "@")
	return h.validationFee(call), nil
}

func (h *Helper) validationFee(call string) *big.Int {
	fee := new(big.Int).SetUint64(gasLimit(call, validateExecutionGas))
	fee.Mul(fee, new(big.Int).SetUint64(h.params.gasPrice()))
	return fee.Mul(fee, big.NewInt(int64(h.params.ValidatorCount)))
}

func (h *Helper) TransferNftToForeign(ctx context.Context, sender Signer, chainNonce domain.ChainNonce, to string, nft domain.NftInfo[Nft], txFees *big.Int) (*Transaction, string, error) {
	data := h.transferToMinter(nft.Native, txFees, endpointFreeze, hexUint(uint64(chainNonce)), hexString(to))

	tx, err := h.submit(ctx, sender, data, freezeExecutionGas)
	if err != nil {
		return tx, "", err
	}

	eventID, err := h.actionID(ctx, tx.Hash, endpointFreeze)
	return tx, eventID, err
}

func (h *Helper) UnfreezeWrappedNft(ctx context.Context, sender Signer, to string, nft domain.NftInfo[Nft], txFees *big.Int) (*Transaction, string, error) {
	if !h.IsWrappedNft(nft) {
		return nil, "", domain.Decode("%s is not a wrapped nft collection on %s", nft.Native.Collection, h.nonce)
	}

	data := h.transferToMinter(nft.Native, txFees, endpointWithdraw, hexString(to))

	tx, err := h.submit(ctx, sender, data, freezeExecutionGas)
	if err != nil {
		return tx, "", err
	}

	eventID, err := h.actionID(ctx, tx.Hash, endpointWithdraw)
	return tx, eventID, err
}

// transferToMinter builds a MultiESDTNFTTransfer of the NFT (and the fee in
// EGLD when non-zero) to the minter, calling endpoint with args
func (h *Helper) transferToMinter(nft Nft, fee *big.Int, endpoint string, args ...string) string {
	transfers := []string{hexString(nft.Collection), hexUint(nft.Nonce), "01"}
	if fee != nil && fee.Sign() > 0 {
		transfers = append(transfers, hexString(egldIdentifier), "", hex.EncodeToString(fee.Bytes()))
	}

	parts := []string{
		"MultiESDTNFTTransfer",
		hex.EncodeToString(h.minterPub),
		hexUint(uint64(len(transfers) / 3)),
	}
	parts = append(parts, transfers...)
	parts = append(parts, hexString(endpoint))
	parts = append(parts, args...)

	return strings.Join(parts, "@")
}

// submit signs and sends a self-addressed transaction carrying data
func (h *Helper) submit(ctx context.Context, signer Signer, data string, execution uint64) (*Transaction, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: signer is required", domain.ErrSubmissionFailure)
	}

	acct, err := h.gw.account(ctx, signer.Address())
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		Nonce:    acct.Account.Nonce,
		Value:    "0",
		Receiver: signer.Address(),
		Sender:   signer.Address(),
		GasPrice: h.params.gasPrice(),
		GasLimit: gasLimit(data, execution),
		Data:     h.base64.Encode([]byte(data)),
		ChainID:  h.params.ChainID,
		Version:  1,
	}

	if tx.Signature, err = signer.Sign(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if tx.Hash, err = h.gw.send(ctx, tx); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Transaction sent", zap.Stringer("chain", h.nonce), zap.String("txHash", tx.Hash), zap.String("from", tx.Sender))
	return tx, nil
}

// actionID waits for hash to execute and reads the action id from the minter event
func (h *Helper) actionID(ctx context.Context, hash string, endpoint string) (string, error) {
	status, err := h.gw.waitExecuted(ctx, hash)
	if err != nil {
		return "", fmt.Errorf("%w: transaction %s: %v", domain.ErrSubmissionFailure, hash, err)
	}

	for _, ev := range status.Transaction.Logs.Events {
		if ev.Identifier != endpoint || len(ev.Topics) == 0 {
			continue
		}
		raw, err := h.base64.Decode(ev.Topics[0])
		if err != nil {
			return "", fmt.Errorf("%w: malformed %s event: %v", domain.ErrSubmissionFailure, endpoint, err)
		}
		return new(big.Int).SetBytes(raw).String(), nil
	}

	return "", fmt.Errorf("%w: no %s event in transaction %s", domain.ErrSubmissionFailure, endpoint, hash)
}

func (h *Helper) SignerAddress(sender Signer) (string, error) {
	if sender == nil {
		return "", fmt.Errorf("signer is required")
	}
	return sender.Address(), nil
}

func (h *Helper) NftIdentity(nft domain.NftInfo[Nft]) string {
	return nft.Native.Identifier()
}

func (h *Helper) TxHash(tx *Transaction) string {
	if tx == nil {
		return ""
	}
	return tx.Hash
}

// sampleActionID stands in for the relay-assigned action id when pricing validations
var sampleActionID = hexUint(1 << 62)

func hexString(s string) string {
	return hex.EncodeToString([]byte(s))
}

// hexUint encodes n as even-length big-endian hex; zero is the empty argument
func hexUint(n uint64) string {
	return hex.EncodeToString(new(big.Int).SetUint64(n).Bytes())
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
