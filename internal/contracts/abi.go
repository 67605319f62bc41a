// Package contracts holds the ABIs of the bridge contracts deployed on EVM
// chains and on Tron (which shares the Solidity ABI encoding).
package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MinterABI is the bridge minter: it locks native NFTs, burns wrapped ones and
// is where validators confirm incoming transfers
const MinterABI = `[
	{"type":"function","name":"freezeErc721","stateMutability":"payable","inputs":[
		{"name":"erc721Contract","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"chainNonce","type":"uint64"},
		{"name":"to","type":"string"}],"outputs":[]},
	{"type":"function","name":"freezeErc1155","stateMutability":"payable","inputs":[
		{"name":"erc1155Contract","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"amount","type":"uint256"},
		{"name":"chainNonce","type":"uint64"},
		{"name":"to","type":"string"}],"outputs":[]},
	{"type":"function","name":"withdrawNft","stateMutability":"payable","inputs":[
		{"name":"id","type":"uint256"},
		{"name":"to","type":"string"}],"outputs":[]},
	{"type":"function","name":"validateTransferNft","stateMutability":"nonpayable","inputs":[
		{"name":"actionId","type":"uint128"},
		{"name":"to","type":"address"},
		{"name":"mintWith","type":"string"}],"outputs":[]},
	{"type":"function","name":"validateUnfreezeNft","stateMutability":"nonpayable","inputs":[
		{"name":"actionId","type":"uint128"},
		{"name":"to","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"contractAddr","type":"address"}],"outputs":[]},
	{"type":"event","name":"TransferErc721","anonymous":false,"inputs":[
		{"name":"actionId","type":"uint128","indexed":false},
		{"name":"chainNonce","type":"uint64","indexed":false},
		{"name":"txFees","type":"uint256","indexed":false},
		{"name":"to","type":"string","indexed":false},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"contractAddr","type":"address","indexed":false}]},
	{"type":"event","name":"TransferErc1155","anonymous":false,"inputs":[
		{"name":"actionId","type":"uint128","indexed":false},
		{"name":"chainNonce","type":"uint64","indexed":false},
		{"name":"txFees","type":"uint256","indexed":false},
		{"name":"to","type":"string","indexed":false},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"contractAddr","type":"address","indexed":false}]},
	{"type":"event","name":"UnfreezeNft","anonymous":false,"inputs":[
		{"name":"actionId","type":"uint128","indexed":false},
		{"name":"chainNonce","type":"uint64","indexed":false},
		{"name":"txFees","type":"uint256","indexed":false},
		{"name":"to","type":"string","indexed":false},
		{"name":"data","type":"string","indexed":false}]}
]`

// ERC721ABI covers the metadata, approval and user-mint calls the bridge makes
const ERC721ABI = `[
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[
		{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[
		{"name":"owner","type":"address"},
		{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[
		{"name":"operator","type":"address"},
		{"name":"approved","type":"bool"}],"outputs":[]},
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[
		{"name":"uri","type":"string"}],"outputs":[]}
]`

// ERC1155ABI covers metadata, approval and balance calls. The bridge's wrapped
// currency contract is an ERC1155 whose token id is the origin chain nonce.
const ERC1155ABI = `[
	{"type":"function","name":"uri","stateMutability":"view","inputs":[
		{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[
		{"name":"account","type":"address"},
		{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOfBatch","stateMutability":"view","inputs":[
		{"name":"accounts","type":"address[]"},
		{"name":"ids","type":"uint256[]"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"isApprovedForAll","stateMutability":"view","inputs":[
		{"name":"account","type":"address"},
		{"name":"operator","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"setApprovalForAll","stateMutability":"nonpayable","inputs":[
		{"name":"operator","type":"address"},
		{"name":"approved","type":"bool"}],"outputs":[]}
]`

var (
	Minter  = mustParse(MinterABI)
	ERC721  = mustParse(ERC721ABI)
	ERC1155 = mustParse(ERC1155ABI)
)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
