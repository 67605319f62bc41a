package web3

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/logger"
)

const (
	defaultReceiptInterval = 3 * time.Second
	defaultReceiptAttempts = 100
)

// client wraps an EthClient with the contract calls and transaction
// submission the backend needs
type client struct {
	nonce           domain.ChainNonce
	eth             adapter.EthClient
	receiptInterval time.Duration
	receiptAttempts uint64
}

func newClient(nonce domain.ChainNonce, eth adapter.EthClient) *client {
	return &client{
		nonce:           nonce,
		eth:             eth,
		receiptInterval: defaultReceiptInterval,
		receiptAttempts: defaultReceiptAttempts,
	}
}

// call executes a read-only contract method and unpacks its single output into out
func (c *client) call(ctx context.Context, contract abi.ABI, addr common.Address, method string, out interface{}, args ...interface{}) error {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to call %s on %s: %w", method, addr.Hex(), err)
	}

	if err := contract.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack %s: %w", method, err)
	}

	return nil
}

// estimate prices a call as gas * current gas price
func (c *client) estimate(ctx context.Context, from, to common.Address, data []byte) (*big.Int, error) {
	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	return new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice), nil
}

// send signs and submits a transaction from opts.From and waits for its receipt.
// The account nonce is always read from the pending state; opts.Nonce is ignored.
func (c *client) send(ctx context.Context, opts *bind.TransactOpts, to common.Address, value *big.Int, data []byte) (*types.Transaction, *types.Receipt, error) {
	if opts == nil || opts.Signer == nil {
		return nil, nil, fmt.Errorf("%w: signer is required", domain.ErrSubmissionFailure)
	}
	if value == nil {
		value = new(big.Int)
	}

	gasPrice := opts.GasPrice
	if gasPrice == nil {
		var err error
		if gasPrice, err = c.eth.SuggestGasPrice(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to get gas price: %w", err)
		}
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		var err error
		gasLimit, err = c.eth.EstimateGas(ctx, ethereum.CallMsg{
			From:     opts.From,
			To:       &to,
			GasPrice: gasPrice,
			Value:    value,
			Data:     data,
		})
		if err != nil {
			return nil, nil, classifySendError("estimate gas", err)
		}
	}

	accountNonce, err := c.eth.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending nonce: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    accountNonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &to,
		Value:    value,
		Data:     data,
	})

	signed, err := opts.Signer(opts.From, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, nil, classifySendError("send transaction", err)
	}

	logger.InfoCtx(ctx, "Transaction sent",
		zap.Stringer("chain", c.nonce),
		zap.String("txHash", signed.Hash().Hex()),
		zap.String("from", opts.From.Hex()),
		zap.String("to", to.Hex()))

	receipt, err := c.waitMined(ctx, signed.Hash())
	if err != nil {
		return signed, nil, fmt.Errorf("%w: transaction %s sent but not confirmed: %v", domain.ErrSubmissionFailure, signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return signed, receipt, fmt.Errorf("%w: transaction %s reverted", domain.ErrSubmissionFailure, signed.Hash().Hex())
	}

	return signed, receipt, nil
}

// waitMined polls for the receipt of hash until it is mined, the attempts are exhausted or ctx ends
func (c *client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	operation := func() error {
		r, err := c.eth.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.receiptInterval), c.receiptAttempts)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}

	return receipt, nil
}

// classifySendError maps node rejections to bridge errors
func classifySendError(stage string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "insufficient funds") {
		return fmt.Errorf("%w: %s: %v", domain.ErrInsufficientBalance, stage, err)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrSubmissionFailure, stage, err)
}

func (c *client) Close() {
	c.eth.Close()
}
