package dto

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xp-network/xpnet-go/internal/domain"
)

// ChainResponse describes a configured chain
type ChainResponse struct {
	Nonce    domain.ChainNonce  `json:"nonce"`
	Name     string             `json:"name"`
	Family   domain.ChainFamily `json:"family,omitempty"`
	Decimals int32              `json:"decimals"`
}

// ChainListResponse lists the configured chains in ascending nonce order
type ChainListResponse struct {
	Chains []ChainResponse `json:"chains"`
}

// Amount is a balance or fee in the smallest unit of a chain, with its
// display value in whole coins
type Amount struct {
	Raw      string `json:"raw"`
	Display  string `json:"display"`
	Decimals int32  `json:"decimals"`
}

// NewAmount renders value with the given number of decimals
func NewAmount(value *big.Int, decimals int32) Amount {
	if value == nil {
		value = new(big.Int)
	}
	return Amount{
		Raw:      value.String(),
		Display:  decimal.NewFromBigInt(value, -decimals).String(),
		Decimals: decimals,
	}
}

// BalanceResponse is the native balance of an address
type BalanceResponse struct {
	ChainNonce domain.ChainNonce `json:"chain_nonce"`
	Address    string            `json:"address"`
	Balance    Amount            `json:"balance"`
}

// WrappedBalance is the balance of the wrapped currency of one origin chain
type WrappedBalance struct {
	OriginChain domain.ChainNonce `json:"origin_chain"`
	Balance     Amount            `json:"balance"`
}

// WrappedBalancesResponse lists wrapped balances in ascending origin order
type WrappedBalancesResponse struct {
	ChainNonce domain.ChainNonce `json:"chain_nonce"`
	Address    string            `json:"address"`
	Balances   []WrappedBalance  `json:"balances"`
}

// NftResponse is an NFT as served by the API. Native is the hex encoded
// native representation accepted back by the NFT endpoints; Details is the
// same representation as JSON.
type NftResponse struct {
	URI     string          `json:"uri"`
	Native  string          `json:"native"`
	Details json.RawMessage `json:"details"`
}

// NftListResponse lists the NFTs of an owner in indexer order
type NftListResponse struct {
	ChainNonce domain.ChainNonce `json:"chain_nonce"`
	Owner      string            `json:"owner"`
	Nfts       []NftResponse     `json:"nfts"`
}

// NftUriResponse is the resolved metadata location of an NFT
type NftUriResponse struct {
	ChainID string `json:"chain_id"`
	URI     string `json:"uri"`
}

// FeeEstimateResponse is the fee of a transfer, in the destination chain's unit
type FeeEstimateResponse struct {
	FromChain domain.ChainNonce `json:"from_chain"`
	ToChain   domain.ChainNonce `json:"to_chain"`
	Fee       Amount            `json:"fee"`
}

// TransferResponse is a journaled transfer
type TransferResponse struct {
	AttemptID   string              `json:"attempt_id"`
	Kind        domain.TransferKind `json:"kind"`
	FromChain   domain.ChainNonce   `json:"from_chain"`
	ToChain     domain.ChainNonce   `json:"to_chain"`
	Sender      string              `json:"sender"`
	Receiver    string              `json:"receiver"`
	NftIdentity string              `json:"nft_identity"`
	TxHash      string              `json:"tx_hash"`
	EventID     string              `json:"event_id"`
	Fee         string              `json:"fee"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// TransferListResponse is a page of journaled transfers, newest first
type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
	Offset    int                `json:"offset"`
	Limit     int                `json:"limit"`
}

// MapTransferToDTO converts a journaled transfer
func MapTransferToDTO(event domain.TransferEvent) TransferResponse {
	return TransferResponse{
		AttemptID:   event.AttemptID,
		Kind:        event.Kind,
		FromChain:   event.FromChain,
		ToChain:     event.ToChain,
		Sender:      event.Sender,
		Receiver:    event.Receiver,
		NftIdentity: event.NftIdentity,
		TxHash:      event.TxHash,
		EventID:     event.EventID,
		Fee:         event.Fee,
		SubmittedAt: event.SubmittedAt,
	}
}
