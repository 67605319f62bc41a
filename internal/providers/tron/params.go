package tron

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Params configures the Tron backend. Addresses are base58 (T...).
type Params struct {
	// Provider is the full node HTTP API, e.g. https://api.trongrid.io
	Provider    string   `mapstructure:"provider" validate:"required,url"`
	MinterAddr  string   `mapstructure:"minter_addr" validate:"required,startswith=T"`
	Erc1155Addr string   `mapstructure:"erc1155_addr" validate:"required,startswith=T"`
	Erc721Addr  string   `mapstructure:"erc721_addr" validate:"required,startswith=T"`
	Validators  []string `mapstructure:"validators" validate:"required,min=1,dive,startswith=T"`
	// EnergyPrice in sun per unit of energy
	EnergyPrice int64 `mapstructure:"energy_price"`
	// FeeLimit caps the TRX burnt by one contract call, in sun
	FeeLimit int64 `mapstructure:"fee_limit"`
}

const (
	defaultEnergyPrice = 420
	defaultFeeLimit    = 150_000_000
)

type addresses struct {
	minter     common.Address
	erc1155    common.Address
	erc721     common.Address
	validators []common.Address
}

func (p Params) addresses() (addresses, error) {
	var (
		a   addresses
		err error
	)
	if a.minter, err = DecodeAddress(p.MinterAddr); err != nil {
		return a, fmt.Errorf("minter_addr: %w", err)
	}
	if a.erc1155, err = DecodeAddress(p.Erc1155Addr); err != nil {
		return a, fmt.Errorf("erc1155_addr: %w", err)
	}
	if a.erc721, err = DecodeAddress(p.Erc721Addr); err != nil {
		return a, fmt.Errorf("erc721_addr: %w", err)
	}
	if len(p.Validators) == 0 {
		return a, fmt.Errorf("validators: at least one validator is required")
	}
	for i, v := range p.Validators {
		addr, err := DecodeAddress(v)
		if err != nil {
			return a, fmt.Errorf("validators[%d]: %w", i, err)
		}
		a.validators = append(a.validators, addr)
	}
	return a, nil
}

func (p Params) energyPrice() int64 {
	if p.EnergyPrice <= 0 {
		return defaultEnergyPrice
	}
	return p.EnergyPrice
}

func (p Params) feeLimit() int64 {
	if p.FeeLimit <= 0 {
		return defaultFeeLimit
	}
	return p.FeeLimit
}
