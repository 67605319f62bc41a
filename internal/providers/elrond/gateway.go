package elrond

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/domain"
)

// Transaction is a gateway transaction. Hash is set once it has been sent.
type Transaction struct {
	Nonce     uint64 `json:"nonce"`
	Value     string `json:"value"`
	Receiver  string `json:"receiver"`
	Sender    string `json:"sender"`
	GasPrice  uint64 `json:"gasPrice"`
	GasLimit  uint64 `json:"gasLimit"`
	Data      string `json:"data,omitempty"`
	ChainID   string `json:"chainID"`
	Version   uint32 `json:"version"`
	Signature string `json:"signature,omitempty"`
	Hash      string `json:"-"`
}

type gatewayResponse[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (r gatewayResponse[T]) err() error {
	if r.Code != "" && r.Code != "successful" {
		return fmt.Errorf("gateway error %s: %s", r.Code, r.Error)
	}
	return nil
}

type accountData struct {
	Account struct {
		Address string `json:"address"`
		Nonce   uint64 `json:"nonce"`
		Balance string `json:"balance"`
	} `json:"account"`
}

type tokenData struct {
	TokenData struct {
		Balance         string   `json:"balance"`
		TokenIdentifier string   `json:"tokenIdentifier"`
		Nonce           uint64   `json:"nonce"`
		URIs            []string `json:"uris"`
	} `json:"tokenData"`
}

type sendData struct {
	TxHash string `json:"txHash"`
}

type txEvent struct {
	Address    string   `json:"address"`
	Identifier string   `json:"identifier"`
	Topics     []string `json:"topics"`
}

type txStatusData struct {
	Transaction struct {
		Status string `json:"status"`
		Logs   struct {
			Events []txEvent `json:"events"`
		} `json:"logs"`
	} `json:"transaction"`
}

// apiNft is the NFT document served by the indexing API
type apiNft struct {
	Identifier string   `json:"identifier"`
	Collection string   `json:"collection"`
	Nonce      uint64   `json:"nonce"`
	URL        string   `json:"url"`
	URIs       []string `json:"uris"`
}

// gateway talks to the Elrond proxy and API over HTTP
type gateway struct {
	nodeURI      string
	apiURI       string
	http         adapter.HTTPClient
	pollInterval time.Duration
	pollAttempts uint64
}

func (g *gateway) account(ctx context.Context, address string) (accountData, error) {
	var resp gatewayResponse[accountData]
	if err := g.http.Get(ctx, g.nodeURI+"/address/"+url.PathEscape(address), &resp); err != nil {
		return accountData{}, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return resp.Data, resp.err()
}

func (g *gateway) token(ctx context.Context, address, collection string, nonce uint64) (tokenData, error) {
	endpoint := fmt.Sprintf("%s/address/%s/nft/%s/nonce/%d", g.nodeURI, url.PathEscape(address), url.PathEscape(collection), nonce)

	var resp gatewayResponse[tokenData]
	if err := g.http.Get(ctx, endpoint, &resp); err != nil {
		return tokenData{}, fmt.Errorf("failed to get token %s-%d of %s: %w", collection, nonce, address, err)
	}
	return resp.Data, resp.err()
}

func (g *gateway) nft(ctx context.Context, identifier string) (apiNft, error) {
	var nft apiNft
	if err := g.http.Get(ctx, g.apiURI+"/nfts/"+url.PathEscape(identifier), &nft); err != nil {
		return apiNft{}, fmt.Errorf("failed to get nft %s: %w", identifier, err)
	}
	return nft, nil
}

func (g *gateway) send(ctx context.Context, tx *Transaction) (string, error) {
	var resp gatewayResponse[sendData]
	if err := g.http.PostJSON(ctx, g.nodeURI+"/transaction/send", tx, &resp); err != nil {
		return "", classifySendError(err)
	}
	if err := resp.err(); err != nil {
		return "", classifySendError(err)
	}
	if resp.Data.TxHash == "" {
		return "", fmt.Errorf("%w: gateway returned no transaction hash", domain.ErrSubmissionFailure)
	}
	return resp.Data.TxHash, nil
}

// waitExecuted polls the transaction until it leaves the pending state
func (g *gateway) waitExecuted(ctx context.Context, hash string) (txStatusData, error) {
	var result txStatusData
	operation := func() error {
		var resp gatewayResponse[txStatusData]
		if err := g.http.Get(ctx, g.nodeURI+"/transaction/"+url.PathEscape(hash)+"?withResults=true", &resp); err != nil {
			return backoff.Permanent(err)
		}
		if err := resp.err(); err != nil {
			return backoff.Permanent(err)
		}

		switch resp.Data.Transaction.Status {
		case "success", "executed":
			result = resp.Data
			return nil
		case "fail", "invalid":
			return backoff.Permanent(fmt.Errorf("transaction %s status %s", hash, resp.Data.Transaction.Status))
		default:
			return fmt.Errorf("transaction %s pending", hash)
		}
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(g.pollInterval), g.pollAttempts)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return txStatusData{}, err
	}
	return result, nil
}

func classifySendError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
		return fmt.Errorf("%w: %v", domain.ErrInsufficientBalance, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrSubmissionFailure, err)
}
