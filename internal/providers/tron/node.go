package tron

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/domain"
)

// Transaction is a transaction built by the node. Signature is filled in
// before it is broadcast.
type Transaction struct {
	TxID       string          `json:"txID"`
	RawData    json.RawMessage `json:"raw_data"`
	RawDataHex string          `json:"raw_data_hex"`
	Visible    bool            `json:"visible"`
	Signature  []string        `json:"signature,omitempty"`
}

type triggerRequest struct {
	OwnerAddress     string `json:"owner_address"`
	ContractAddress  string `json:"contract_address"`
	FunctionSelector string `json:"function_selector"`
	Parameter        string `json:"parameter,omitempty"`
	FeeLimit         int64  `json:"fee_limit,omitempty"`
	CallValue        int64  `json:"call_value,omitempty"`
	Visible          bool   `json:"visible"`
}

type returnResult struct {
	Result  bool   `json:"result"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// err decodes the node message, which is hex encoded text
func (r returnResult) err() error {
	if r.Result {
		return nil
	}
	msg := r.Message
	if b, err := hex.DecodeString(msg); err == nil {
		msg = string(b)
	}
	return fmt.Errorf("node error %s: %s", r.Code, msg)
}

type triggerResponse struct {
	Result         returnResult `json:"result"`
	EnergyUsed     int64        `json:"energy_used"`
	ConstantResult []string     `json:"constant_result"`
	Transaction    *Transaction `json:"transaction"`
}

type broadcastResponse struct {
	Result  bool   `json:"result"`
	Code    string `json:"code"`
	TxID    string `json:"txid"`
	Message string `json:"message"`
}

type txLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

type txInfo struct {
	ID      string `json:"id"`
	Fee     int64  `json:"fee"`
	Receipt struct {
		Result string `json:"result"`
	} `json:"receipt"`
	Log []txLog `json:"log"`
}

type accountResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

// node talks to the full node HTTP API
type node struct {
	provider     string
	http         adapter.HTTPClient
	pollInterval time.Duration
	pollAttempts uint64
}

func (n *node) account(ctx context.Context, address string) (accountResponse, error) {
	var resp accountResponse
	req := map[string]interface{}{"address": address, "visible": true}
	if err := n.http.PostJSON(ctx, n.provider+"/wallet/getaccount", req, &resp); err != nil {
		return accountResponse{}, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return resp, nil
}

// trigger asks the node to build a state changing contract call
func (n *node) trigger(ctx context.Context, req triggerRequest) (*Transaction, error) {
	var resp triggerResponse
	if err := n.http.PostJSON(ctx, n.provider+"/wallet/triggersmartcontract", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to trigger %s: %w", req.FunctionSelector, err)
	}
	if err := resp.Result.err(); err != nil {
		return nil, classifySendError(err)
	}
	if resp.Transaction == nil || resp.Transaction.TxID == "" {
		return nil, fmt.Errorf("%w: node built no transaction for %s", domain.ErrSubmissionFailure, req.FunctionSelector)
	}
	return resp.Transaction, nil
}

// constant runs a read-only contract call
func (n *node) constant(ctx context.Context, req triggerRequest) (triggerResponse, error) {
	var resp triggerResponse
	if err := n.http.PostJSON(ctx, n.provider+"/wallet/triggerconstantcontract", req, &resp); err != nil {
		return triggerResponse{}, fmt.Errorf("failed to call %s: %w", req.FunctionSelector, err)
	}
	if err := resp.Result.err(); err != nil {
		return triggerResponse{}, fmt.Errorf("failed to call %s: %w", req.FunctionSelector, err)
	}
	return resp, nil
}

func (n *node) broadcast(ctx context.Context, tx *Transaction) error {
	var resp broadcastResponse
	if err := n.http.PostJSON(ctx, n.provider+"/wallet/broadcasttransaction", tx, &resp); err != nil {
		return classifySendError(err)
	}
	if !resp.Result {
		return classifySendError(returnResult{Code: resp.Code, Message: resp.Message}.err())
	}
	return nil
}

// waitConfirmed polls the transaction info until the transaction is in a block
func (n *node) waitConfirmed(ctx context.Context, txID string) (txInfo, error) {
	var result txInfo
	operation := func() error {
		var info txInfo
		if err := n.http.PostJSON(ctx, n.provider+"/wallet/gettransactioninfobyid", map[string]string{"value": txID}, &info); err != nil {
			return backoff.Permanent(err)
		}
		if info.ID == "" {
			return fmt.Errorf("transaction %s not confirmed", txID)
		}
		if info.Receipt.Result != "" && info.Receipt.Result != "SUCCESS" {
			return backoff.Permanent(fmt.Errorf("transaction %s result %s", txID, info.Receipt.Result))
		}
		result = info
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(n.pollInterval), n.pollAttempts)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return txInfo{}, err
	}
	return result, nil
}

// callRequest encodes method of contract with args for the node
func callRequest(contract abi.ABI, method string, owner, to common.Address, args ...interface{}) (triggerRequest, error) {
	m, ok := contract.Methods[method]
	if !ok {
		return triggerRequest{}, fmt.Errorf("method %s not found", method)
	}
	params, err := m.Inputs.Pack(args...)
	if err != nil {
		return triggerRequest{}, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	return triggerRequest{
		OwnerAddress:     EncodeAddress(owner),
		ContractAddress:  EncodeAddress(to),
		FunctionSelector: m.Sig,
		Parameter:        hex.EncodeToString(params),
		Visible:          true,
	}, nil
}

func classifySendError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "balance is not sufficient") || strings.Contains(msg, "insufficient") {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientBalance, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrSubmissionFailure, err)
}
