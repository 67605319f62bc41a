package factory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xp-network/xpnet-go/internal/domain"
	"github.com/xp-network/xpnet-go/internal/factory"
	"github.com/xp-network/xpnet-go/internal/mocks"
	"github.com/xp-network/xpnet-go/internal/providers/web3"
)

func setupRegistryMock(t *testing.T, params factory.ChainParams, opts ...factory.Option) (*factory.Factory, *mocks.MockChainRegistry) {
	t.Helper()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockChainRegistry(ctrl)

	if params.Bsc != nil {
		reg.EXPECT().Configure(domain.ChainBsc, *params.Bsc, gomock.Any())
	}
	reg.EXPECT().Nonces().Return([]domain.ChainNonce{domain.ChainBsc})

	f := factory.New(params, append([]factory.Option{factory.WithRegistry(reg)}, opts...)...)
	return f, reg
}

func TestFactory_ConfiguresRegistry(t *testing.T) {
	params := testWeb3Params("http://bsc.test")
	f, reg := setupRegistryMock(t, factory.ChainParams{Bsc: &params})

	reg.EXPECT().Nonces().Return([]domain.ChainNonce{domain.ChainBsc})
	assert.Equal(t, []domain.ChainNonce{domain.ChainBsc}, f.Nonces())

	reg.EXPECT().Params(domain.ChainBsc).Return(params, true)
	got, ok := factory.Params(f, factory.Bsc)
	require.True(t, ok)
	assert.Equal(t, params, got)

	reg.EXPECT().Params(domain.ChainPolygon).Return(nil, false)
	_, ok = factory.Params(f, factory.Polygon)
	assert.False(t, ok)

	updated := testWeb3Params("http://bsc-2.test")
	reg.EXPECT().Configure(domain.ChainBsc, updated, gomock.Any())
	factory.UpdateParams(f, factory.Bsc, updated)
}

func TestInner_RegistryResults(t *testing.T) {
	f, reg := setupRegistryMock(t, factory.ChainParams{})
	ctx := context.Background()

	t.Run("build failure", func(t *testing.T) {
		reg.EXPECT().Get(gomock.Any(), domain.ChainPolygon).Return(nil, domain.ErrChainNotConfigured)
		_, err := factory.Inner(ctx, f, factory.Polygon)
		assert.ErrorIs(t, err, domain.ErrChainNotConfigured)
	})

	t.Run("backend of another type", func(t *testing.T) {
		reg.EXPECT().Get(gomock.Any(), domain.ChainBsc).Return(&web3.Params{}, nil)
		_, err := factory.Inner(ctx, f, factory.Bsc)
		require.Error(t, err)

		var chainErr *domain.ChainError
		require.True(t, errors.As(err, &chainErr))
		assert.Equal(t, domain.ChainBsc, chainErr.Nonce)
		assert.Equal(t, "resolve", chainErr.Op)
	})

	t.Run("untyped helper", func(t *testing.T) {
		backend := &web3.Helper{}
		reg.EXPECT().Get(gomock.Any(), domain.ChainBsc).Return(backend, nil)
		got, err := f.Helper(ctx, domain.ChainBsc)
		require.NoError(t, err)
		assert.Same(t, backend, got)
	})
}

func TestFactory_CloseReleasesRegistryAndPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	f, reg := setupRegistryMock(t, factory.ChainParams{}, factory.WithPublisher(publisher))

	gomock.InOrder(
		reg.EXPECT().Close(),
		publisher.EXPECT().Close(),
	)
	f.Close()
}
