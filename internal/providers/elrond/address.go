package elrond

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

const addressHRP = "erd"

// DecodeAddress returns the 32-byte public key of a bech32 erd1 address
func DecodeAddress(addr string) ([]byte, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if hrp != addressHRP {
		return nil, fmt.Errorf("invalid address %q: unexpected prefix %q", addr, hrp)
	}

	pub, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if len(pub) != 32 {
		return nil, fmt.Errorf("invalid address %q: public key has %d bytes", addr, len(pub))
	}

	return pub, nil
}

// EncodeAddress returns the bech32 erd1 address of a 32-byte public key
func EncodeAddress(pub []byte) (string, error) {
	if len(pub) != 32 {
		return "", fmt.Errorf("public key has %d bytes", len(pub))
	}

	data, err := bech32.ConvertBits(pub, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(addressHRP, data)
}
