package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainNonceFamily(t *testing.T) {
	tests := []struct {
		name     string
		nonce    ChainNonce
		expected ChainFamily
		ok       bool
	}{
		{name: "elrond", nonce: ChainElrond, expected: FamilyElrond, ok: true},
		{name: "tron", nonce: ChainTron, expected: FamilyTron, ok: true},
		{name: "bsc", nonce: ChainBsc, expected: FamilyWeb3, ok: true},
		{name: "ontology", nonce: ChainOntology, expected: FamilyWeb3, ok: true},
		{name: "unassigned nonce", nonce: ChainNonce(10), ok: false},
		{name: "zero", nonce: ChainNonce(0), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, ok := tt.nonce.Family()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, family)
		})
	}
}

func TestKnownChainNoncesHaveFamilies(t *testing.T) {
	nonces := KnownChainNonces()
	assert.Len(t, nonces, 11)
	for i, n := range nonces {
		_, ok := n.Family()
		assert.True(t, ok, "nonce %d", n)
		if i > 0 {
			assert.Less(t, nonces[i-1], n)
		}
	}
}

func TestParseChainNonce(t *testing.T) {
	tests := []struct {
		input       string
		expected    ChainNonce
		expectError bool
	}{
		{input: "bsc", expected: ChainBsc},
		{input: " Elrond ", expected: ChainElrond},
		{input: "9", expected: ChainTron},
		{input: "42", expected: ChainNonce(42)},
		{input: "solana", expectError: true},
		{input: "70000", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := ParseChainNonce(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestChainNonceString(t *testing.T) {
	assert.Equal(t, "polygon", ChainPolygon.String())
	assert.Equal(t, "99", ChainNonce(99).String())
}

func TestNftMintArgsValidate(t *testing.T) {
	tests := []struct {
		name     string
		args     NftMintArgs
		required []MintField
		missing  string
	}{
		{
			name:     "contract present",
			args:     NftMintArgs{Contract: "0xabc", URIs: []string{"ipfs://a"}},
			required: []MintField{MintFieldContract, MintFieldURIs},
		},
		{
			name:     "contract missing",
			args:     NftMintArgs{URIs: []string{"ipfs://a"}},
			required: []MintField{MintFieldContract, MintFieldURIs},
			missing:  "contract",
		},
		{
			name:     "identifier missing",
			args:     NftMintArgs{Contract: "0xabc", URIs: []string{"ipfs://a"}},
			required: []MintField{MintFieldIdentifier},
			missing:  "identifier",
		},
		{
			name:     "empty uri",
			args:     NftMintArgs{Identifier: "XPNFT-abcdef", URIs: []string{""}},
			required: []MintField{MintFieldIdentifier, MintFieldURIs},
			missing:  "uris",
		},
		{
			name: "nothing required",
			args: NftMintArgs{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Validate(tt.required...)
			if tt.missing == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrMissingMintArgument)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestNftMintArgsEffectiveQuantity(t *testing.T) {
	assert.Equal(t, uint64(1), NftMintArgs{}.EffectiveQuantity())
	assert.Equal(t, uint64(5), NftMintArgs{Quantity: 5}.EffectiveQuantity())
}

func TestChainError(t *testing.T) {
	assert.NoError(t, NewChainError(ChainBsc, "transfer", nil))

	err := NewChainError(ChainBsc, "transfer", fmt.Errorf("send: %w", ErrSubmissionFailure))
	assert.ErrorIs(t, err, ErrSubmissionFailure)
	assert.Equal(t, "bsc (4): transfer: send: submission failure", err.Error())

	var chainErr *ChainError
	require.True(t, errors.As(err, &chainErr))
	assert.Equal(t, ChainBsc, chainErr.Nonce)
}

func TestDecode(t *testing.T) {
	err := Decode("bad checksum %x", []byte{1, 2})
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, "decode error: bad checksum 0102", err.Error())
}
