package constants

const (
	MAX_PAGE_SIZE              = 500
	DEFAULT_TRANSFERS_LIMIT    = 50
	DEFAULT_OFFSET             = 0
	MAX_WRAPPED_BALANCE_CHAINS = 32

	// NFT_URI_CONCURRENCY bounds the URI lookups made while listing NFTs
	NFT_URI_CONCURRENCY = 8
)
