package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xp-network/xpnet-go/internal/api/shared/dto"
	"github.com/xp-network/xpnet-go/internal/api/shared/executor"
	"github.com/xp-network/xpnet-go/internal/domain"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// ListChains returns the configured chains
	// GET /api/v1/chains
	ListChains(c *gin.Context)

	// GetBalance returns the native balance of an address
	// GET /api/v1/chains/:chain/balances/:address
	GetBalance(c *gin.Context)

	// GetWrappedBalances returns the wrapped currency balances of an address
	// GET /api/v1/chains/:chain/wrapped-balances/:address?origins=<chain1>,<chain2>
	GetWrappedBalances(c *gin.Context)

	// ListNfts returns the NFTs of an owner
	// GET /api/v1/chains/:chain/nfts/:owner
	ListNfts(c *gin.Context)

	// GetNftUri resolves the metadata location of an NFT, following wrapped NFTs to their origin
	// POST /api/v1/chains/:chain/nfts/uri
	GetNftUri(c *gin.Context)

	// EstimateFees prices a transfer on its destination chain
	// POST /api/v1/fees/estimate
	EstimateFees(c *gin.Context)

	// GetTransfer returns a journaled transfer by its source chain and event id
	// GET /api/v1/transfers/:chain/:event_id
	GetTransfer(c *gin.Context)

	// ListTransfers returns journaled transfers
	// GET /api/v1/transfers?sender=<address>&from_chain=<chain>&limit=<limit>&offset=<offset>
	ListTransfers(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{executor: exec}
}

func (h *handler) ListChains(c *gin.Context) {
	c.JSON(http.StatusOK, h.executor.ListChains(c.Request.Context()))
}

func (h *handler) GetBalance(c *gin.Context) {
	chainNonce, err := ParseChainParam(c, "chain")
	if err != nil {
		respondBadRequest(c, "Invalid chain", err.Error())
		return
	}

	balance, err := h.executor.GetBalance(c.Request.Context(), chainNonce, c.Param("address"))
	if err != nil {
		respondError(c, err, "Failed to get balance")
		return
	}

	c.JSON(http.StatusOK, balance)
}

func (h *handler) GetWrappedBalances(c *gin.Context) {
	chainNonce, err := ParseChainParam(c, "chain")
	if err != nil {
		respondBadRequest(c, "Invalid chain", err.Error())
		return
	}

	configured := h.executor.ListChains(c.Request.Context())
	nonces := make([]domain.ChainNonce, len(configured.Chains))
	for i, chain := range configured.Chains {
		nonces[i] = chain.Nonce
	}

	origins, err := ParseWrappedBalancesQuery(c, nonces, chainNonce)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	balances, err := h.executor.GetWrappedBalances(c.Request.Context(), chainNonce, c.Param("address"), origins)
	if err != nil {
		respondError(c, err, "Failed to get wrapped balances")
		return
	}

	c.JSON(http.StatusOK, balances)
}

func (h *handler) ListNfts(c *gin.Context) {
	chainNonce, err := ParseChainParam(c, "chain")
	if err != nil {
		respondBadRequest(c, "Invalid chain", err.Error())
		return
	}

	nfts, err := h.executor.ListNfts(c.Request.Context(), chainNonce, c.Param("owner"))
	if err != nil {
		respondError(c, err, "Failed to list nfts")
		return
	}

	c.JSON(http.StatusOK, nfts)
}

func (h *handler) GetNftUri(c *gin.Context) {
	chainNonce, err := ParseChainParam(c, "chain")
	if err != nil {
		respondBadRequest(c, "Invalid chain", err.Error())
		return
	}

	var req dto.NftUriRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	uri, err := h.executor.GetNftUri(c.Request.Context(), chainNonce, req.Nft)
	if err != nil {
		respondError(c, err, "Failed to resolve nft uri")
		return
	}

	c.JSON(http.StatusOK, uri)
}

func (h *handler) EstimateFees(c *gin.Context) {
	var req dto.EstimateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	fromChain, err := domain.ParseChainNonce(req.FromChain)
	if err != nil {
		respondBadRequest(c, "Invalid from_chain", err.Error())
		return
	}
	toChain, err := domain.ParseChainNonce(req.ToChain)
	if err != nil {
		respondBadRequest(c, "Invalid to_chain", err.Error())
		return
	}

	fee, err := h.executor.EstimateFees(c.Request.Context(), fromChain, toChain, req.Nft, req.Receiver)
	if err != nil {
		respondError(c, err, "Failed to estimate fees")
		return
	}

	c.JSON(http.StatusOK, fee)
}

func (h *handler) GetTransfer(c *gin.Context) {
	chainNonce, err := ParseChainParam(c, "chain")
	if err != nil {
		respondBadRequest(c, "Invalid chain", err.Error())
		return
	}

	eventID := c.Param("event_id")
	if eventID == "" {
		respondBadRequest(c, "event_id is required")
		return
	}

	transfer, err := h.executor.GetTransfer(c.Request.Context(), chainNonce, eventID)
	if err != nil {
		respondError(c, err, "Failed to get transfer")
		return
	}
	if transfer == nil {
		respondNotFound(c, "Transfer not found")
		return
	}

	c.JSON(http.StatusOK, transfer)
}

func (h *handler) ListTransfers(c *gin.Context) {
	params, fromChain, err := ParseListTransfersQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	transfers, err := h.executor.ListTransfers(c.Request.Context(), params.Sender, fromChain, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list transfers")
		return
	}

	c.JSON(http.StatusOK, transfers)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "xpnet-bridge-api",
	})
}
