// Package codec implements the envelope that carries a packed native NFT from
// its origin chain to the chain holding the wrapped copy.
//
// Layout: rlp([version, chainNonce, data]) || keccak256(rlp(...))[:4]
package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/xp-network/xpnet-go/internal/domain"
)

const (
	// Version is the only envelope version produced and accepted
	Version uint8 = 1

	checksumLen = 4
)

type envelope struct {
	Version    uint8
	ChainNonce uint16
	Data       []byte
}

// Pack encodes the native payload of an NFT originating on nonce
func Pack(nonce domain.ChainNonce, native []byte) ([]byte, error) {
	body, err := rlp.EncodeToBytes(envelope{
		Version:    Version,
		ChainNonce: uint16(nonce),
		Data:       native,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	return append(body, checksum(body)...), nil
}

// Unpack decodes an envelope produced by Pack
func Unpack(b []byte) (domain.WrappedNft, error) {
	if len(b) <= checksumLen {
		return domain.WrappedNft{}, domain.Decode("envelope too short (%d bytes)", len(b))
	}

	body, sum := b[:len(b)-checksumLen], b[len(b)-checksumLen:]
	if !bytes.Equal(checksum(body), sum) {
		return domain.WrappedNft{}, domain.Decode("envelope checksum mismatch")
	}

	var env envelope
	if err := rlp.DecodeBytes(body, &env); err != nil {
		return domain.WrappedNft{}, domain.Decode("malformed envelope: %v", err)
	}
	if env.Version != Version {
		return domain.WrappedNft{}, domain.Decode("unsupported envelope version %d", env.Version)
	}

	return domain.WrappedNft{
		ChainNonce: domain.ChainNonce(env.ChainNonce),
		Data:       env.Data,
	}, nil
}

// Repack is the inverse of Unpack
func Repack(w domain.WrappedNft) ([]byte, error) {
	return Pack(w.ChainNonce, w.Data)
}

// FormatURI renders an envelope as the URI of a wrapped NFT
func FormatURI(env []byte) string {
	return domain.WrappedURIScheme + hexutil.Encode(env)
}

// IsWrappedURI reports whether uri carries an envelope
func IsWrappedURI(uri string) bool {
	return strings.HasPrefix(uri, domain.WrappedURIScheme)
}

// ParseURI extracts the envelope bytes from a wrapped NFT URI
func ParseURI(uri string) ([]byte, error) {
	if !IsWrappedURI(uri) {
		return nil, domain.Decode("not a wrapped nft uri: %q", uri)
	}

	b, err := hexutil.Decode(strings.TrimPrefix(uri, domain.WrappedURIScheme))
	if err != nil {
		return nil, domain.Decode("invalid wrapped nft uri: %v", err)
	}
	return b, nil
}

// UnpackURI decodes the envelope carried by a wrapped NFT URI
func UnpackURI(uri string) (domain.WrappedNft, error) {
	env, err := ParseURI(uri)
	if err != nil {
		return domain.WrappedNft{}, err
	}
	return Unpack(env)
}

// EncodeNative serializes a backend's native NFT representation
func EncodeNative(v interface{}) ([]byte, error) {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode native nft: %w", err)
	}
	return b, nil
}

// DecodeNative is the inverse of EncodeNative
func DecodeNative(b []byte, v interface{}) error {
	if err := rlp.DecodeBytes(b, v); err != nil {
		return domain.Decode("malformed native nft: %v", err)
	}
	return nil
}

func checksum(body []byte) []byte {
	return crypto.Keccak256(body)[:checksumLen]
}
