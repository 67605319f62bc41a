package contracts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xp-network/xpnet-go/internal/contracts"
)

func TestMethodSignatures(t *testing.T) {
	assert.Equal(t, "freezeErc721(address,uint256,uint64,string)", contracts.Minter.Methods["freezeErc721"].Sig)
	assert.Equal(t, "freezeErc1155(address,uint256,uint256,uint64,string)", contracts.Minter.Methods["freezeErc1155"].Sig)
	assert.Equal(t, "withdrawNft(uint256,string)", contracts.Minter.Methods["withdrawNft"].Sig)
	assert.Equal(t, "validateTransferNft(uint128,address,string)", contracts.Minter.Methods["validateTransferNft"].Sig)
	assert.Equal(t, "validateUnfreezeNft(uint128,address,uint256,address)", contracts.Minter.Methods["validateUnfreezeNft"].Sig)
	assert.Equal(t, "mint(string)", contracts.ERC721.Methods["mint"].Sig)
	assert.Equal(t, "balanceOfBatch(address[],uint256[])", contracts.ERC1155.Methods["balanceOfBatch"].Sig)
}

func TestEvents(t *testing.T) {
	for _, name := range []string{"TransferErc721", "TransferErc1155", "UnfreezeNft"} {
		ev, ok := contracts.Minter.Events[name]
		assert.True(t, ok, name)
		assert.Equal(t, "actionId", ev.Inputs[0].Name)
	}
}
