package tron

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs node-built transactions for one account
type Signer interface {
	Address() string
	Sign(ctx context.Context, tx *Transaction) (string, error)
}

// KeySigner signs with a local secp256k1 key
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewKeySigner returns a signer for the hex encoded private key
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &KeySigner{
		key:     key,
		address: EncodeAddress(crypto.PubkeyToAddress(key.PublicKey)),
	}, nil
}

func (s *KeySigner) Address() string {
	return s.address
}

// Sign signs the transaction id, which is the sha256 of its raw data
func (s *KeySigner) Sign(ctx context.Context, tx *Transaction) (string, error) {
	id, err := hex.DecodeString(tx.TxID)
	if err != nil || len(id) != 32 {
		return "", fmt.Errorf("invalid transaction id %q", tx.TxID)
	}

	sig, err := crypto.Sign(id, s.key)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig), nil
}
