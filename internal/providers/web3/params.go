package web3

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Params configures the backend of one EVM chain
type Params struct {
	// Provider is the JSON-RPC endpoint
	Provider string `mapstructure:"provider" validate:"required,url"`
	// MinterAddr is the bridge minter contract
	MinterAddr string `mapstructure:"minter_addr" validate:"required,eth_addr"`
	// Erc1155Addr holds wrapped currencies, one token id per origin chain nonce
	Erc1155Addr string `mapstructure:"erc1155_addr" validate:"required,eth_addr"`
	// Erc721Addr is the collection of wrapped NFTs minted by the bridge
	Erc721Addr string `mapstructure:"erc721_addr" validate:"required,eth_addr"`
	// Validators sign incoming transfers; each one pays for a validation transaction
	Validators []string `mapstructure:"validators" validate:"required,min=1,dive,eth_addr"`
}

type addresses struct {
	minter     common.Address
	erc1155    common.Address
	erc721     common.Address
	validators []common.Address
}

func (p Params) addresses() (addresses, error) {
	var a addresses
	for _, f := range []struct {
		name  string
		value string
		dst   *common.Address
	}{
		{"minter_addr", p.MinterAddr, &a.minter},
		{"erc1155_addr", p.Erc1155Addr, &a.erc1155},
		{"erc721_addr", p.Erc721Addr, &a.erc721},
	} {
		if !common.IsHexAddress(f.value) {
			return a, fmt.Errorf("invalid %s %q", f.name, f.value)
		}
		*f.dst = common.HexToAddress(f.value)
	}

	if len(p.Validators) == 0 {
		return a, fmt.Errorf("at least one validator is required")
	}
	for _, v := range p.Validators {
		if !common.IsHexAddress(v) {
			return a, fmt.Errorf("invalid validator address %q", v)
		}
		a.validators = append(a.validators, common.HexToAddress(v))
	}

	return a, nil
}
