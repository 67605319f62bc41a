package tron

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
)

// addressPrefix is the version byte of every mainnet and testnet account
const addressPrefix byte = 0x41

// DecodeAddress returns the 20-byte account of a base58check T... address
func DecodeAddress(addr string) (common.Address, error) {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if version != addressPrefix {
		return common.Address{}, fmt.Errorf("invalid address %q: unexpected version 0x%02x", addr, version)
	}
	if len(payload) != common.AddressLength {
		return common.Address{}, fmt.Errorf("invalid address %q: %d byte account", addr, len(payload))
	}
	return common.BytesToAddress(payload), nil
}

// EncodeAddress returns the base58check form of a 20-byte account
func EncodeAddress(addr common.Address) string {
	return base58.CheckEncode(addr.Bytes(), addressPrefix)
}
