package nftlist_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/mocks"
	"github.com/xp-network/xpnet-go/internal/nftlist"
)

func TestList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		httpErr error
		want    []nftlist.RawNft
		wantErr error
	}{
		{
			name: "preserves indexer order",
			body: `{"data":[{"uri":"ipfs://b","native":"0x0b"},{"native":"0x0a01"}]}`,
			want: []nftlist.RawNft{
				{URI: "ipfs://b", Data: []byte{0x0b}},
				{Data: []byte{0x0a, 0x01}},
			},
		},
		{
			name: "empty list",
			body: `{"data":[]}`,
			want: []nftlist.RawNft{},
		},
		{
			name:    "malformed native",
			body:    `{"data":[{"native":"zz"}]}`,
			wantErr: domain.ErrDecode,
		},
		{
			name:    "transport failure",
			httpErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Get(gomock.Any(), "https://nftlist.test/nfts/4/0xowner", gomock.Any()).
				DoAndReturn(func(ctx context.Context, url string, result interface{}) error {
					if tt.httpErr != nil {
						return tt.httpErr
					}
					return json.Unmarshal([]byte(tt.body), result)
				})

			lister := nftlist.NewClient("https://nftlist.test/", httpClient)
			got, err := lister.List(context.Background(), domain.ChainBsc, "0xowner")

			if tt.wantErr != nil || tt.httpErr != nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_EmptyOwner(t *testing.T) {
	lister := nftlist.NewClient("https://nftlist.test", nil)
	_, err := lister.List(context.Background(), domain.ChainBsc, "")
	assert.Error(t, err)
}
