package factory

import (
	"context"
	"fmt"

	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/providers/elrond"
	"github.com/xp-network/xpnet-go/internal/providers/tron"
	"github.com/xp-network/xpnet-go/internal/providers/web3"
)

// Chain is the typed handle of a chain: its nonce, the backend type T it
// resolves to and the params type P it is configured with
type Chain[T any, P any] struct {
	nonce domain.ChainNonce
	build func(ctx context.Context, deps Deps, params P) (T, error)
}

// NewChain declares a chain served by a backend outside the built-in families
func NewChain[T any, P any](nonce domain.ChainNonce, build func(ctx context.Context, deps Deps, params P) (T, error)) Chain[T, P] {
	return Chain[T, P]{nonce: nonce, build: build}
}

func (c Chain[T, P]) Nonce() domain.ChainNonce {
	return c.nonce
}

func (c Chain[T, P]) String() string {
	return c.nonce.String()
}

type (
	Web3Chain   = Chain[*web3.Helper, web3.Params]
	ElrondChain = Chain[*elrond.Helper, elrond.Params]
	TronChain   = Chain[*tron.Helper, tron.Params]
)

func web3Chain(nonce domain.ChainNonce) Web3Chain {
	return Web3Chain{
		nonce: nonce,
		build: func(ctx context.Context, deps Deps, params web3.Params) (*web3.Helper, error) {
			return web3.NewHelper(ctx, nonce, params, deps.Dialer, deps.Web3...)
		},
	}
}

var (
	Elrond = ElrondChain{
		nonce: domain.ChainElrond,
		build: func(ctx context.Context, deps Deps, params elrond.Params) (*elrond.Helper, error) {
			return elrond.NewHelper(domain.ChainElrond, params, deps.HTTP, deps.JCS, deps.Elrond...)
		},
	}
	Tron = TronChain{
		nonce: domain.ChainTron,
		build: func(ctx context.Context, deps Deps, params tron.Params) (*tron.Helper, error) {
			return tron.NewHelper(domain.ChainTron, params, deps.HTTP, deps.Tron...)
		},
	}

	Heco      = web3Chain(domain.ChainHeco)
	Bsc       = web3Chain(domain.ChainBsc)
	Ropsten   = web3Chain(domain.ChainRopsten)
	Avalanche = web3Chain(domain.ChainAvalanche)
	Polygon   = web3Chain(domain.ChainPolygon)
	Fantom    = web3Chain(domain.ChainFantom)
	Celo      = web3Chain(domain.ChainCelo)
	Harmony   = web3Chain(domain.ChainHarmony)
	Ontology  = web3Chain(domain.ChainOntology)
)

// Web3Chains returns the handles of every built-in EVM chain
func Web3Chains() []Web3Chain {
	return []Web3Chain{Heco, Bsc, Ropsten, Avalanche, Polygon, Fantom, Celo, Harmony, Ontology}
}

// Web3ChainOf returns the handle of an EVM chain nonce
func Web3ChainOf(nonce domain.ChainNonce) (Web3Chain, error) {
	for _, c := range Web3Chains() {
		if c.nonce == nonce {
			return c, nil
		}
	}
	return Web3Chain{}, fmt.Errorf("%s is not an evm chain", nonce)
}

// ChainParams configures the built-in chains. A nil entry leaves the chain unconfigured.
type ChainParams struct {
	Elrond    *elrond.Params `mapstructure:"elrond"`
	Heco      *web3.Params   `mapstructure:"heco"`
	Bsc       *web3.Params   `mapstructure:"bsc"`
	Ropsten   *web3.Params   `mapstructure:"ropsten"`
	Avalanche *web3.Params   `mapstructure:"avalanche"`
	Polygon   *web3.Params   `mapstructure:"polygon"`
	Fantom    *web3.Params   `mapstructure:"fantom"`
	Tron      *tron.Params   `mapstructure:"tron"`
	Celo      *web3.Params   `mapstructure:"celo"`
	Harmony   *web3.Params   `mapstructure:"harmony"`
	Ontology  *web3.Params   `mapstructure:"ontology"`
}

func (p ChainParams) web3() map[domain.ChainNonce]*web3.Params {
	return map[domain.ChainNonce]*web3.Params{
		domain.ChainHeco:      p.Heco,
		domain.ChainBsc:       p.Bsc,
		domain.ChainRopsten:   p.Ropsten,
		domain.ChainAvalanche: p.Avalanche,
		domain.ChainPolygon:   p.Polygon,
		domain.ChainFantom:    p.Fantom,
		domain.ChainCelo:      p.Celo,
		domain.ChainHarmony:   p.Harmony,
		domain.ChainOntology:  p.Ontology,
	}
}

func (p ChainParams) register(f *Factory) {
	if p.Elrond != nil {
		Register(f, Elrond, *p.Elrond)
	}
	if p.Tron != nil {
		Register(f, Tron, *p.Tron)
	}
	web3Params := p.web3()
	for _, c := range Web3Chains() {
		if params := web3Params[c.nonce]; params != nil {
			Register(f, c, *params)
		}
	}
}
