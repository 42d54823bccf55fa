package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lending/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPriceStatic(t *testing.T) {
	s := New(&core.Config{
		PriceOracle: core.PriceOracle{
			Static: map[string]core.OraclePrice{
				"usdc": {Price: 1},
			},
		},
	})

	p, err := s.GetPrice(context.Background(), "usdc")
	require.Nil(t, err)
	assert.Equal(t, uint64(1), p.Price)

	_, err = s.GetPrice(context.Background(), "sol")
	assert.True(t, errors.Is(err, core.ErrInvalidOraclePrice))
}

func TestGetPriceEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/prices/sol":
			_, _ = w.Write([]byte(`{"price":2150,"expo":-2}`))
		case "/prices/dead":
			_, _ = w.Write([]byte(`{"price":0,"expo":0}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := New(&core.Config{
		PriceOracle: core.PriceOracle{EndPoint: srv.URL},
	})
	ctx := context.Background()

	p, err := s.GetPrice(ctx, "sol")
	require.Nil(t, err)
	assert.Equal(t, core.OraclePrice{Price: 2150, Expo: -2}, *p)

	_, err = s.GetPrice(ctx, "dead")
	assert.True(t, errors.Is(err, core.ErrInvalidOraclePrice))

	_, err = s.GetPrice(ctx, "missing")
	assert.NotNil(t, err)
}
