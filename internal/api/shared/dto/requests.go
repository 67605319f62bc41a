package dto

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NftRequest identifies an NFT by the hex encoded native representation
// returned in NftResponse.Native
type NftRequest struct {
	URI    string `json:"uri"`
	Native string `json:"native" binding:"required"`
}

// NativeBytes decodes the native representation
func (r NftRequest) NativeBytes() ([]byte, error) {
	native := strings.TrimSpace(r.Native)
	if !strings.HasPrefix(native, "0x") {
		native = "0x" + native
	}
	b, err := hexutil.Decode(native)
	if err != nil {
		return nil, fmt.Errorf("invalid native nft %q: %w", r.Native, err)
	}
	return b, nil
}

// NftUriRequest is the body of POST /chains/:chain/nfts/uri
type NftUriRequest struct {
	Nft NftRequest `json:"nft" binding:"required"`
}

// EstimateFeesRequest is the body of POST /fees/estimate
type EstimateFeesRequest struct {
	FromChain string     `json:"from_chain" binding:"required"`
	ToChain   string     `json:"to_chain" binding:"required"`
	Receiver  string     `json:"receiver" binding:"required"`
	Nft       NftRequest `json:"nft" binding:"required"`
}
