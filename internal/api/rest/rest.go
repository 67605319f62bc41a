package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Chain endpoints
		v1.GET("/chains", handler.ListChains)
		v1.GET("/chains/:chain/balances/:address", handler.GetBalance)
		v1.GET("/chains/:chain/wrapped-balances/:address", handler.GetWrappedBalances)

		// NFT endpoints
		v1.GET("/chains/:chain/nfts/:owner", handler.ListNfts)
		v1.POST("/chains/:chain/nfts/uri", handler.GetNftUri)

		// Fee estimation
		v1.POST("/fees/estimate", handler.EstimateFees)

		// Transfer journal
		v1.GET("/transfers", handler.ListTransfers)
		v1.GET("/transfers/:chain/:event_id", handler.GetTransfer)
	}
}
