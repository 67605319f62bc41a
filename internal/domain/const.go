package domain

const (
	// WrappedURIScheme prefixes the URI of every NFT minted by the bridge as a wrapped copy
	WrappedURIScheme = "xpwrap:"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Display decimals of the native currency per family
	WEB3_NATIVE_DECIMALS   = 18
	ELROND_NATIVE_DECIMALS = 18
	TRON_NATIVE_DECIMALS   = 6
)
