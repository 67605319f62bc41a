// Package nftlist is the client of the NFT list indexer, which tracks the NFTs
// each account holds on every bridged chain
package nftlist

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/domain"
)

// RawNft is an NFT as served by the indexer: the packed native form plus the
// metadata URI when the indexer knows it
type RawNft struct {
	URI  string
	Data []byte
}

// Lister lists the NFTs held by an owner on a chain
//
//go:generate mockgen -source=nftlist.go -destination=../mocks/nftlist.go -package=mocks -mock_names=Lister=MockLister
type Lister interface {
	List(ctx context.Context, chainNonce domain.ChainNonce, owner string) ([]RawNft, error)
}

type item struct {
	URI    string `json:"uri"`
	Native string `json:"native"`
}

type listResponse struct {
	Data  []item `json:"data"`
	Error string `json:"error,omitempty"`
}

type client struct {
	baseURL string
	http    adapter.HTTPClient
}

// NewClient returns a Lister for the indexer at baseURL
func NewClient(baseURL string, httpClient adapter.HTTPClient) Lister {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// List returns the owner's NFTs in indexer order
func (c *client) List(ctx context.Context, chainNonce domain.ChainNonce, owner string) ([]RawNft, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}

	endpoint := fmt.Sprintf("%s/nfts/%d/%s", c.baseURL, uint16(chainNonce), url.PathEscape(owner))

	var resp listResponse
	if err := c.http.Get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to list nfts of %s on %s: %w", owner, chainNonce, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("nft list indexer: %s", resp.Error)
	}

	nfts := make([]RawNft, 0, len(resp.Data))
	for i, it := range resp.Data {
		data, err := hexutil.Decode(it.Native)
		if err != nil {
			return nil, domain.Decode("nft %d of %s: %v", i, owner, err)
		}
		nfts = append(nfts, RawNft{URI: it.URI, Data: data})
	}
	return nfts, nil
}
