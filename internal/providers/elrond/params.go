package elrond

// Params configures the Elrond backend
type Params struct {
	// NodeURI is the gateway (proxy) used for accounts and transactions
	NodeURI string `mapstructure:"node_uri" validate:"required,url"`
	// APIURI is the indexing API used for NFT metadata
	APIURI string `mapstructure:"api_uri" validate:"required,url"`
	// MinterAddress is the bridge minter contract (bech32)
	MinterAddress string `mapstructure:"minter_address" validate:"required,startswith=erd1"`
	// EsdtNft is the collection of wrapped NFTs minted by the bridge
	EsdtNft string `mapstructure:"esdt_nft" validate:"required"`
	// Esdt is the semi-fungible collection of wrapped currencies; the token nonce is the origin chain nonce
	Esdt string `mapstructure:"esdt" validate:"required"`
	// ChainID is the network chain id ("1", "D", "T")
	ChainID string `mapstructure:"chain_id" validate:"required"`
	// GasPrice in the smallest denomination
	GasPrice uint64 `mapstructure:"gas_price"`
	// ValidatorCount is the number of validators paying for each incoming transfer
	ValidatorCount int `mapstructure:"validator_count" validate:"omitempty,min=1"`
}

const (
	defaultGasPrice = 1_000_000_000

	minGasLimit    = 50_000
	gasPerDataByte = 1_500

	// execution budgets of the minter endpoints
	freezeExecutionGas   = 60_000_000
	validateExecutionGas = 80_000_000
	mintExecutionGas     = 6_000_000
)

func (p Params) gasPrice() uint64 {
	if p.GasPrice == 0 {
		return defaultGasPrice
	}
	return p.GasPrice
}

// gasLimit returns the gas budget for a transaction with the given data
func gasLimit(data string, execution uint64) uint64 {
	return minGasLimit + gasPerDataByte*uint64(len(data)) + execution
}
