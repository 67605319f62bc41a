package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ChainNonce is the bridge-wide identifier of a chain. It is the only way one
// chain refers to another.
type ChainNonce uint16

const (
	ChainElrond    ChainNonce = 2
	ChainHeco      ChainNonce = 3
	ChainBsc       ChainNonce = 4
	ChainRopsten   ChainNonce = 5
	ChainAvalanche ChainNonce = 6
	ChainPolygon   ChainNonce = 7
	ChainFantom    ChainNonce = 8
	ChainTron      ChainNonce = 9
	ChainCelo      ChainNonce = 11
	ChainHarmony   ChainNonce = 12
	ChainOntology  ChainNonce = 13
)

// ChainFamily groups chains that share a backend implementation
type ChainFamily string

const (
	FamilyElrond ChainFamily = "elrond"
	FamilyTron   ChainFamily = "tron"
	FamilyWeb3   ChainFamily = "web3"
)

var chainNames = map[ChainNonce]string{
	ChainElrond:    "elrond",
	ChainHeco:      "heco",
	ChainBsc:       "bsc",
	ChainRopsten:   "ropsten",
	ChainAvalanche: "avalanche",
	ChainPolygon:   "polygon",
	ChainFantom:    "fantom",
	ChainTron:      "tron",
	ChainCelo:      "celo",
	ChainHarmony:   "harmony",
	ChainOntology:  "ontology",
}

// String returns the chain name for known nonces and the decimal nonce otherwise
func (n ChainNonce) String() string {
	if name, ok := chainNames[n]; ok {
		return name
	}
	return strconv.FormatUint(uint64(n), 10)
}

// Family returns the backend family of a known nonce
func (n ChainNonce) Family() (ChainFamily, bool) {
	switch n {
	case ChainElrond:
		return FamilyElrond, true
	case ChainTron:
		return FamilyTron, true
	case ChainHeco, ChainBsc, ChainRopsten, ChainAvalanche, ChainPolygon,
		ChainFantom, ChainCelo, ChainHarmony, ChainOntology:
		return FamilyWeb3, true
	default:
		return "", false
	}
}

// KnownChainNonces returns every nonce with a built-in backend, ascending
func KnownChainNonces() []ChainNonce {
	return []ChainNonce{
		ChainElrond, ChainHeco, ChainBsc, ChainRopsten, ChainAvalanche, ChainPolygon,
		ChainFantom, ChainTron, ChainCelo, ChainHarmony, ChainOntology,
	}
}

// ParseChainNonce accepts either a chain name ("bsc") or a decimal nonce ("4")
func ParseChainNonce(s string) (ChainNonce, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for n, name := range chainNames {
		if name == s {
			return n, nil
		}
	}

	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid chain nonce %q: %w", s, err)
	}
	return ChainNonce(v), nil
}

// ChainStandard represents token standards on EVM-style chains
type ChainStandard string

const (
	StandardERC721  ChainStandard = "erc721"
	StandardERC1155 ChainStandard = "erc1155"
)

// NftInfo is a chain-agnostic NFT handle. Native is interpreted only by the
// backend that produced it; URI may be empty until it has been resolved.
type NftInfo[R any] struct {
	URI    string `json:"uri"`
	Native R      `json:"native"`
}

// WrappedNft is the decoded payload of a wrapped NFT: the chain the asset
// originated from and the packed native representation on that chain.
type WrappedNft struct {
	ChainNonce ChainNonce `json:"chain_nonce"`
	Data       []byte     `json:"data"`
}

// BareNft is an NFT reduced to its resolved metadata location
type BareNft struct {
	ChainID string `json:"chain_id"`
	URI     string `json:"uri"`
}

// TransferKind tells whether a submission locked a native asset or released a
// wrapped one back to its origin
type TransferKind string

const (
	TransferKindFreeze   TransferKind = "freeze"
	TransferKindUnfreeze TransferKind = "unfreeze"
)

// TransferEvent describes a transfer that was accepted by the source chain
type TransferEvent struct {
	AttemptID   string       `json:"attempt_id"`
	Kind        TransferKind `json:"kind"`
	FromChain   ChainNonce   `json:"from_chain"`
	ToChain     ChainNonce   `json:"to_chain"`
	Sender      string       `json:"sender"`
	Receiver    string       `json:"receiver"`
	NftIdentity string       `json:"nft_identity"`
	TxHash      string       `json:"tx_hash"`
	EventID     string       `json:"event_id"`
	Fee         string       `json:"fee"`
	SubmittedAt time.Time    `json:"submitted_at"`
}
