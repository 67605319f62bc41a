package ratelimit

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/url"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xp-network/xpnet-go/internal/adapter"
	"github.com/xp-network/xpnet-go/internal/logger"
)

// Config throttles the requests sent to a single endpoint
type Config struct {
	RequestsPerSecond float64
	Burst             int
	// MaxQueueTime bounds how long a request waits for a token
	MaxQueueTime time.Duration
}

// Limiters hands out one token bucket per endpoint host
type Limiters struct {
	config   Config
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates the limiter set. Burst defaults to the rate and MaxQueueTime to 30s.
func New(cfg Config) (*Limiters, error) {
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests_per_second must be positive")
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(int(cfg.RequestsPerSecond), 1)
	}
	if cfg.MaxQueueTime <= 0 {
		cfg.MaxQueueTime = 30 * time.Second
	}

	logger.Info("Rate limiter initialized",
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
	)

	return &Limiters{config: cfg, limiters: make(map[string]*rate.Limiter)}, nil
}

func (l *Limiters) get(endpoint string) *rate.Limiter {
	key := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		key = u.Host
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Wait blocks until endpoint may be called again
func (l *Limiters) Wait(ctx context.Context, endpoint string) error {
	queueCtx, cancel := context.WithTimeout(ctx, l.config.MaxQueueTime)
	defer cancel()

	if err := l.get(endpoint).Wait(queueCtx); err != nil {
		return fmt.Errorf("rate limit for %s: %w", endpoint, err)
	}
	return nil
}

// Request runs fn once a token for endpoint is available. A nil limiter runs fn directly.
func Request[T any](ctx context.Context, l *Limiters, endpoint string, fn func(ctx context.Context) (T, error)) (T, error) {
	if l == nil {
		return fn(ctx)
	}

	var zero T
	if err := l.Wait(ctx, endpoint); err != nil {
		return zero, err
	}
	return fn(ctx)
}

// Do is Request for calls without a result
func Do(ctx context.Context, l *Limiters, endpoint string, fn func(ctx context.Context) error) error {
	_, err := Request(ctx, l, endpoint, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

type ethClientDialer struct {
	dialer   adapter.EthClientDialer
	limiters *Limiters
}

// NewEthClientDialer throttles every client dialed through dialer
func NewEthClientDialer(dialer adapter.EthClientDialer, limiters *Limiters) adapter.EthClientDialer {
	return &ethClientDialer{dialer: dialer, limiters: limiters}
}

func (d *ethClientDialer) Dial(ctx context.Context, rawurl string) (adapter.EthClient, error) {
	client, err := d.dialer.Dial(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return &ethClient{client: client, endpoint: rawurl, limiters: d.limiters}, nil
}

type ethClient struct {
	client   adapter.EthClient
	endpoint string
	limiters *Limiters
}

func (c *ethClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return Request(ctx, c.limiters, c.endpoint, func(ctx context.Context) (*big.Int, error) {
		return c.client.BalanceAt(ctx, account, blockNumber)
	})
}

func (c *ethClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return Request(ctx, c.limiters, c.endpoint, func(ctx context.Context) ([]byte, error) {
		return c.client.CallContract(ctx, msg, blockNumber)
	})
}

func (c *ethClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return Request(ctx, c.limiters, c.endpoint, func(ctx context.Context) (uint64, error) {
		return c.client.EstimateGas(ctx, msg)
	})
}

func (c *ethClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return Request(ctx, c.limiters, c.endpoint, c.client.SuggestGasPrice)
}

func (c *ethClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return Request(ctx, c.limiters, c.endpoint, func(ctx context.Context) (uint64, error) {
		return c.client.PendingNonceAt(ctx, account)
	})
}

func (c *ethClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return Do(ctx, c.limiters, c.endpoint, func(ctx context.Context) error {
		return c.client.SendTransaction(ctx, tx)
	})
}

func (c *ethClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return Request(ctx, c.limiters, c.endpoint, func(ctx context.Context) (*types.Receipt, error) {
		return c.client.TransactionReceipt(ctx, txHash)
	})
}

func (c *ethClient) Close() {
	c.client.Close()
}

type httpClient struct {
	client   adapter.HTTPClient
	limiters *Limiters
}

// NewHTTPClient throttles client per request host
func NewHTTPClient(client adapter.HTTPClient, limiters *Limiters) adapter.HTTPClient {
	return &httpClient{client: client, limiters: limiters}
}

func (c *httpClient) Get(ctx context.Context, url string, result interface{}) error {
	return Do(ctx, c.limiters, url, func(ctx context.Context) error {
		return c.client.Get(ctx, url, result)
	})
}

func (c *httpClient) Post(ctx context.Context, url string, contentType string, body io.Reader) ([]byte, error) {
	return Request(ctx, c.limiters, url, func(ctx context.Context) ([]byte, error) {
		return c.client.Post(ctx, url, contentType, body)
	})
}

func (c *httpClient) PostJSON(ctx context.Context, url string, body interface{}, result interface{}) error {
	return Do(ctx, c.limiters, url, func(ctx context.Context) error {
		return c.client.PostJSON(ctx, url, body, result)
	})
}
