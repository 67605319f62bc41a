package tron_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xp-network/xpnet-go/internal/codec"
	"github.com/xp-network/xpnet-go/internal/contracts"
	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/guard"
	"github.com/xp-network/xpnet-go/internal/logger"
	"github.com/xp-network/xpnet-go/internal/mocks"
	"github.com/xp-network/xpnet-go/internal/providers/tron"
)

const provider = "https://node.test"

var (
	minterAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	erc1155Addr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	erc721Addr  = common.HexToAddress("0x3333333333333333333333333333333333333333")
	validator1  = common.HexToAddress("0x4444444444444444444444444444444444444444")
	validator2  = common.HexToAddress("0x5555555555555555555555555555555555555555")
	userNft     = common.HexToAddress("0x6666666666666666666666666666666666666666")
	receiver    = common.HexToAddress("0x7777777777777777777777777777777777777777")
	senderAddr  = common.HexToAddress("0x8888888888888888888888888888888888888888")
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeSigner struct{}

func (fakeSigner) Address() string {
	return tron.EncodeAddress(senderAddr)
}

func (fakeSigner) Sign(ctx context.Context, tx *tron.Transaction) (string, error) {
	return "51", nil
}

type testTronMocks struct {
	ctrl   *gomock.Controller
	http   *mocks.MockHTTPClient
	helper *tron.Helper
}

func setupTest(t *testing.T) *testTronMocks {
	ctrl := gomock.NewController(t)
	tm := &testTronMocks{
		ctrl: ctrl,
		http: mocks.NewMockHTTPClient(ctrl),
	}

	h, err := tron.NewHelper(domain.ChainTron, tron.Params{
		Provider:    provider + "/",
		MinterAddr:  tron.EncodeAddress(minterAddr),
		Erc1155Addr: tron.EncodeAddress(erc1155Addr),
		Erc721Addr:  tron.EncodeAddress(erc721Addr),
		Validators:  []string{tron.EncodeAddress(validator1), tron.EncodeAddress(validator2)},
	}, tm.http, tron.WithPolling(time.Millisecond, 5))
	require.NoError(t, err)
	tm.helper = h

	return tm
}

func tearDownTest(tm *testTronMocks) {
	tm.ctrl.Finish()
}

// expectPost expects one POST to path and answers it with body
func (tm *testTronMocks) expectPost(path string, body string) *gomock.Call {
	return tm.http.EXPECT().
		PostJSON(gomock.Any(), provider+path, gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, req interface{}, result interface{}) error {
			return json.Unmarshal([]byte(body), result)
		})
}

func constantResult(t *testing.T, method interface{ Pack(...interface{}) ([]byte, error) }, values ...interface{}) string {
	out, err := method.Pack(values...)
	require.NoError(t, err)
	return fmt.Sprintf(`{"result":{"result":true},"constant_result":["%s"],"energy_used":100}`, hex.EncodeToString(out))
}

func TestNewHelper_InvalidParams(t *testing.T) {
	_, err := tron.NewHelper(domain.ChainTron, tron.Params{
		Provider:    provider,
		MinterAddr:  "0x1111111111111111111111111111111111111111",
		Erc1155Addr: tron.EncodeAddress(erc1155Addr),
		Erc721Addr:  tron.EncodeAddress(erc721Addr),
		Validators:  []string{tron.EncodeAddress(validator1)},
	}, nil)
	assert.ErrorContains(t, err, "minter_addr")

	_, err = tron.NewHelper(domain.ChainTron, tron.Params{
		Provider:    provider,
		MinterAddr:  tron.EncodeAddress(minterAddr),
		Erc1155Addr: tron.EncodeAddress(erc1155Addr),
		Erc721Addr:  tron.EncodeAddress(erc721Addr),
	}, nil)
	assert.ErrorContains(t, err, "validators")
}

func TestBalance(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	tm.expectPost("/wallet/getaccount", `{"address":"x","balance":1500000}`)
	balance, err := tm.helper.Balance(context.Background(), tron.EncodeAddress(senderAddr))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1500000), balance)

	tm.expectPost("/wallet/getaccount", `{}`)
	balance, err = tm.helper.Balance(context.Background(), tron.EncodeAddress(receiver))
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())
}

func TestBalanceWrappedBatch(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	outputs := contracts.ERC1155.Methods["balanceOfBatch"].Outputs
	tm.http.EXPECT().
		PostJSON(gomock.Any(), provider+"/wallet/triggerconstantcontract", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, req interface{}, result interface{}) error {
			body, err := json.Marshal(req)
			require.NoError(t, err)
			assert.Contains(t, string(body), `"function_selector":"balanceOfBatch(address[],uint256[])"`)
			return json.Unmarshal([]byte(constantResult(t, outputs, []*big.Int{big.NewInt(7), big.NewInt(0)})), result)
		})

	balances, err := tm.helper.BalanceWrappedBatch(context.Background(), tron.EncodeAddress(senderAddr),
		[]domain.ChainNonce{domain.ChainBsc, domain.ChainElrond, domain.ChainBsc})
	require.NoError(t, err)
	assert.Equal(t, map[domain.ChainNonce]*big.Int{
		domain.ChainBsc:    big.NewInt(7),
		domain.ChainElrond: big.NewInt(0),
	}, balances)
}

func TestMintNft_MissingContract(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	_, err := tm.helper.MintNft(context.Background(), fakeSigner{}, domain.NftMintArgs{Identifier: "X-1", URIs: []string{"ipfs://a"}})
	assert.ErrorIs(t, err, domain.ErrMissingMintArgument)
}

func TestEstimateValidateTransferNft(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	tm.http.EXPECT().
		PostJSON(gomock.Any(), provider+"/wallet/triggerconstantcontract", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, req interface{}, result interface{}) error {
			body, err := json.Marshal(req)
			require.NoError(t, err)
			assert.Contains(t, string(body), `"owner_address":"`+tron.EncodeAddress(validator1)+`"`)
			assert.Contains(t, string(body), `"contract_address":"`+tron.EncodeAddress(minterAddr)+`"`)
			assert.Contains(t, string(body), `"function_selector":"validateTransferNft(uint128,address,string)"`)
			return json.Unmarshal([]byte(`{"result":{"result":true},"energy_used":1000}`), result)
		})

	packed, err := codec.Pack(domain.ChainBsc, []byte("native"))
	require.NoError(t, err)

	fee, err := tm.helper.EstimateValidateTransferNft(context.Background(), tron.EncodeAddress(receiver), packed)
	require.NoError(t, err)
	// energy * default energy price * validators
	assert.Equal(t, big.NewInt(1000*420*2), fee)

	_, err = tm.helper.EstimateValidateTransferNft(context.Background(), "0xnottron", packed)
	assert.ErrorIs(t, err, domain.ErrInvalidDestination)
}

func freezeLog(t *testing.T, actionID int64) string {
	ev := contracts.Minter.Events["TransferErc721"]
	data, err := ev.Inputs.Pack(big.NewInt(actionID), uint64(domain.ChainBsc), big.NewInt(10), "0xabc", big.NewInt(5), userNft)
	require.NoError(t, err)

	return fmt.Sprintf(`{"id":"aa","receipt":{"result":"SUCCESS"},"log":[
		{"address":"%s","topics":["%s"],"data":""},
		{"address":"41%s","topics":["%s"],"data":"%s"}]}`,
		hex.EncodeToString(userNft.Bytes()), hex.EncodeToString(ev.ID.Bytes()),
		hex.EncodeToString(minterAddr.Bytes()), hex.EncodeToString(ev.ID.Bytes()), hex.EncodeToString(data))
}

func TestTransferNftToForeign(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	approved := contracts.ERC721.Methods["isApprovedForAll"].Outputs
	gomock.InOrder(
		tm.expectPost("/wallet/triggerconstantcontract", constantResult(t, approved, true)),
		tm.http.EXPECT().
			PostJSON(gomock.Any(), provider+"/wallet/triggersmartcontract", gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, url string, req interface{}, result interface{}) error {
				body, err := json.Marshal(req)
				require.NoError(t, err)
				assert.Contains(t, string(body), `"function_selector":"freezeErc721(address,uint256,uint64,string)"`)
				assert.Contains(t, string(body), `"call_value":250`)
				assert.Contains(t, string(body), `"fee_limit":150000000`)
				return json.Unmarshal([]byte(`{"result":{"result":true},"transaction":{"txID":"aa","raw_data_hex":"0a"}}`), result)
			}),
		tm.http.EXPECT().
			PostJSON(gomock.Any(), provider+"/wallet/broadcasttransaction", gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, url string, req interface{}, result interface{}) error {
				assert.Equal(t, []string{"51"}, req.(*tron.Transaction).Signature)
				return json.Unmarshal([]byte(`{"result":true,"txid":"aa"}`), result)
			}),
		tm.expectPost("/wallet/gettransactioninfobyid", `{}`),
		tm.expectPost("/wallet/gettransactioninfobyid", freezeLog(t, 99)),
	)

	nft := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tron.EncodeAddress(userNft), TokenID: "5"}}
	tx, eventID, err := tm.helper.TransferNftToForeign(context.Background(), fakeSigner{}, domain.ChainBsc, "0xabc", nft, big.NewInt(250))
	require.NoError(t, err)
	assert.Equal(t, "99", eventID)
	assert.Equal(t, "aa", tm.helper.TxHash(tx))
	assert.Equal(t, tron.EncodeAddress(userNft)+":5", tm.helper.NftIdentity(nft))
}

func TestTransferNftToForeign_InsufficientBalance(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	approved := contracts.ERC721.Methods["isApprovedForAll"].Outputs
	tm.expectPost("/wallet/triggerconstantcontract", constantResult(t, approved, true))
	tm.expectPost("/wallet/triggersmartcontract", `{"result":{"result":true},"transaction":{"txID":"aa"}}`)
	tm.expectPost("/wallet/broadcasttransaction", fmt.Sprintf(`{"result":false,"code":"CONTRACT_VALIDATE_ERROR","message":"%s"}`,
		hex.EncodeToString([]byte("Validate TransferContract error, balance is not sufficient."))))

	nft := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tron.EncodeAddress(userNft), TokenID: "5"}}
	_, _, err := tm.helper.TransferNftToForeign(context.Background(), fakeSigner{}, domain.ChainBsc, "0xabc", nft, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestUnfreezeWrappedNft_Reverted(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	tm.expectPost("/wallet/triggersmartcontract", `{"result":{"result":true},"transaction":{"txID":"bb"}}`)
	tm.expectPost("/wallet/broadcasttransaction", `{"result":true,"txid":"bb"}`)
	tm.expectPost("/wallet/gettransactioninfobyid", `{"id":"bb","receipt":{"result":"REVERT"}}`)

	wrapped := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tron.EncodeAddress(erc721Addr), TokenID: "3"}}
	_, _, err := tm.helper.UnfreezeWrappedNft(context.Background(), fakeSigner{}, "0xabc", wrapped, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrSubmissionFailure)

	native := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tron.EncodeAddress(userNft), TokenID: "3"}}
	_, _, err = tm.helper.UnfreezeWrappedNft(context.Background(), fakeSigner{}, "0xabc", native, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestDecodeWrappedNft(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	packed, err := codec.Pack(domain.ChainElrond, []byte("elrond-native"))
	require.NoError(t, err)
	tokenURI := contracts.ERC721.Methods["tokenURI"].Outputs
	tm.expectPost("/wallet/triggerconstantcontract", constantResult(t, tokenURI, codec.FormatURI(packed)))

	wrapped := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tron.EncodeAddress(erc721Addr), TokenID: "1"}}
	require.True(t, tm.helper.IsWrappedNft(wrapped))

	decoded, err := tm.helper.DecodeWrappedNft(context.Background(), wrapped)
	require.NoError(t, err)
	assert.Equal(t, domain.ChainElrond, decoded.ChainNonce)
	assert.Equal(t, []byte("elrond-native"), decoded.Data)
}

func TestRawRoundTrip(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	nft := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tron.EncodeAddress(userNft), TokenID: "12"}}
	packed, err := tm.helper.WrapNftForTransfer(nft)
	require.NoError(t, err)

	w, err := codec.Unpack(packed)
	require.NoError(t, err)
	assert.Equal(t, domain.ChainTron, w.ChainNonce)

	raw, err := tm.helper.DecodeNftFromRaw(context.Background(), w.Data)
	require.NoError(t, err)
	assert.Equal(t, nft.Native, raw.Native)

	tokenURI := contracts.ERC721.Methods["tokenURI"].Outputs
	tm.expectPost("/wallet/triggerconstantcontract", constantResult(t, tokenURI, "ipfs://QmTron"))
	bare, err := tm.helper.PopulateNft(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, domain.BareNft{ChainID: "9", URI: "ipfs://QmTron"}, bare)

	bad, err := codec.EncodeNative(tron.Nft{Contract: "0x66", TokenID: "1"})
	require.NoError(t, err)
	_, err = tm.helper.DecodeNftFromRaw(context.Background(), bad)
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestNftIdentity_EquivalentSpellings(t *testing.T) {
	tm := setupTest(t)
	defer tearDownTest(tm)

	contract := tron.EncodeAddress(userNft)
	tests := []struct {
		name     string
		contract string
		tokenID  string
		want     string
	}{
		{name: "canonical", contract: contract, tokenID: "5", want: contract + ":5"},
		{name: "leading zeros", contract: contract, tokenID: "0005", want: contract + ":5"},
		{name: "explicit sign", contract: contract, tokenID: "+5", want: contract + ":5"},
		{name: "unparsable kept raw", contract: "not-an-address", tokenID: "x5", want: "not-an-address:x5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nft := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: tt.contract, TokenID: tt.tokenID}}
			assert.Equal(t, tt.want, tm.helper.NftIdentity(nft))
		})
	}

	inFlight := guard.NewInFlight()
	first := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: contract, TokenID: "5"}}
	release, err := inFlight.Acquire(guard.Key{Sender: fakeSigner{}.Address(), FromChain: domain.ChainTron, Asset: tm.helper.NftIdentity(first)})
	require.NoError(t, err)
	defer release()

	second := domain.NftInfo[tron.Nft]{Native: tron.Nft{Contract: contract, TokenID: "05"}}
	_, err = inFlight.Acquire(guard.Key{Sender: fakeSigner{}.Address(), FromChain: domain.ChainTron, Asset: tm.helper.NftIdentity(second)})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}
