package domain

import "fmt"

// MintField names an optional field of NftMintArgs
type MintField string

const (
	MintFieldContract   MintField = "contract"
	MintFieldIdentifier MintField = "identifier"
	MintFieldURIs       MintField = "uris"
)

// NftMintArgs are the chain-agnostic mint parameters. Each chain family
// declares which of the optional fields it requires.
type NftMintArgs struct {
	// Contract is the collection contract (EVM and Tron)
	Contract string `json:"contract,omitempty"`
	// Identifier is the collection token identifier (Elrond)
	Identifier string   `json:"identifier,omitempty"`
	URIs       []string `json:"uris"`
	// Quantity defaults to 1 when zero
	Quantity  uint64 `json:"quantity,omitempty"`
	Name      string `json:"name,omitempty"`
	Royalties uint32 `json:"royalties,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Attrs     string `json:"attrs,omitempty"`
}

// Validate checks that every required field is present
func (a NftMintArgs) Validate(required ...MintField) error {
	for _, field := range required {
		var present bool
		switch field {
		case MintFieldContract:
			present = a.Contract != ""
		case MintFieldIdentifier:
			present = a.Identifier != ""
		case MintFieldURIs:
			present = len(a.URIs) > 0 && a.URIs[0] != ""
		default:
			return fmt.Errorf("unknown mint field %q", field)
		}

		if !present {
			return fmt.Errorf("%w: %s", ErrMissingMintArgument, field)
		}
	}
	return nil
}

// EffectiveQuantity returns the quantity to mint
func (a NftMintArgs) EffectiveQuantity() uint64 {
	if a.Quantity == 0 {
		return 1
	}
	return a.Quantity
}
