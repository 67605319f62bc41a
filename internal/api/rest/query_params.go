package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xp-network/xpnet-go/internal/api/shared/constants"
	"github.com/xp-network/xpnet-go/internal/domain"
)

// WrappedBalancesQueryParams holds query parameters for GET /chains/:chain/wrapped-balances/:address
type WrappedBalancesQueryParams struct {
	// Origins is a comma separated list of chain names or nonces
	Origins string `form:"origins"`
}

// ListTransfersQueryParams holds query parameters for GET /transfers
type ListTransfersQueryParams struct {
	Sender    string `form:"sender"`
	FromChain string `form:"from_chain"`

	// Pagination
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ParseChainParam reads the :chain path parameter as a name or a nonce
func ParseChainParam(c *gin.Context, name string) (domain.ChainNonce, error) {
	return domain.ParseChainNonce(c.Param(name))
}

// ParseWrappedBalancesQuery parses the origin chains. Without origins every
// configured chain but the queried one is used.
func ParseWrappedBalancesQuery(c *gin.Context, configured []domain.ChainNonce, self domain.ChainNonce) ([]domain.ChainNonce, error) {
	var params WrappedBalancesQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.Origins) == "" {
		origins := make([]domain.ChainNonce, 0, len(configured))
		for _, n := range configured {
			if n != self {
				origins = append(origins, n)
			}
		}
		return origins, nil
	}

	var origins []domain.ChainNonce
	for _, s := range strings.Split(params.Origins, ",") {
		n, err := domain.ParseChainNonce(s)
		if err != nil {
			return nil, err
		}
		origins = append(origins, n)
	}
	return origins, nil
}

// ParseListTransfersQuery parses query parameters for GET /transfers
func ParseListTransfersQuery(c *gin.Context) (*ListTransfersQueryParams, *domain.ChainNonce, error) {
	var params ListTransfersQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, nil, err
	}

	if params.Limit < 1 || params.Limit > constants.MAX_PAGE_SIZE {
		return nil, nil, fmt.Errorf("limit must be between 1 and %d", constants.MAX_PAGE_SIZE)
	}
	if params.Offset < 0 {
		return nil, nil, fmt.Errorf("offset must not be negative")
	}

	var fromChain *domain.ChainNonce
	if params.FromChain != "" {
		n, err := domain.ParseChainNonce(params.FromChain)
		if err != nil {
			return nil, nil, err
		}
		fromChain = &n
	}
	return &params, fromChain, nil
}
