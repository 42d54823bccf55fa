package market

import (
	"context"
	"errors"
	"math"
	"testing"

	"lending/core"
	"lending/internal/testenv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	env := testenv.New()
	s := New(env.Markets, env.Slots)
	ctx := context.Background()

	m, err := s.Init(ctx, core.InitMarketParams{Signer: "owner", QuoteCurrency: "USD"})
	require.Nil(t, err)
	assert.Equal(t, "owner", m.Owner)
	assert.Equal(t, "owner", m.RiskAuthority)
	assert.Equal(t, "owner", m.FeeAuthority)
	assert.Empty(t, m.WhitelistedLiquidator)
	assert.Equal(t, uint64(1), m.RateLimiter.Config.WindowDuration)
	assert.Equal(t, uint64(math.MaxUint64), m.RateLimiter.Config.MaxOutflow)

	stored, err := env.Markets.Find(ctx, m.ID)
	require.Nil(t, err)
	assert.Equal(t, m.QuoteCurrency, stored.QuoteCurrency)

	m, err = s.Init(ctx, core.InitMarketParams{Signer: "owner", QuoteCurrency: "USD", FeeAuthority: "fees"})
	require.Nil(t, err)
	assert.Equal(t, "fees", m.FeeAuthority)

	_, err = s.Init(ctx, core.InitMarketParams{Signer: "owner"})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	_, err = s.Init(ctx, core.InitMarketParams{Signer: "owner", QuoteCurrency: "a currency symbol far longer than 32 bytes"})
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))
}

func TestSetOwnerAndConfig(t *testing.T) {
	env := testenv.New()
	s := New(env.Markets, env.Slots)
	ctx := context.Background()

	m, err := s.Init(ctx, core.InitMarketParams{Signer: "owner", QuoteCurrency: "USD"})
	require.Nil(t, err)

	params := core.SetMarketOwnerAndConfigParams{
		Signer:                "stranger",
		MarketID:              m.ID,
		NewOwner:              "next",
		RateLimiter:           core.RateLimiterConfig{WindowDuration: 10, MaxOutflow: 100},
		WhitelistedLiquidator: "liquidator",
		RiskAuthority:         "risk",
	}

	_, err = s.SetOwnerAndConfig(ctx, params)
	assert.True(t, errors.Is(err, core.ErrUnauthorized))

	env.Advance(25)
	params.Signer = "owner"
	m, err = s.SetOwnerAndConfig(ctx, params)
	require.Nil(t, err)
	assert.Equal(t, "next", m.Owner)
	assert.Equal(t, "risk", m.RiskAuthority)
	assert.Equal(t, "liquidator", m.WhitelistedLiquidator)
	assert.Equal(t, params.RateLimiter, m.RateLimiter.Config)
	assert.Equal(t, uint64(20), m.RateLimiter.WindowStart)

	// the previous owner lost control
	_, err = s.SetOwnerAndConfig(ctx, params)
	assert.True(t, errors.Is(err, core.ErrUnauthorized))

	params.MarketID = "missing"
	_, err = s.SetOwnerAndConfig(ctx, params)
	assert.True(t, errors.Is(err, core.ErrMarketNotFound))
}
