package reserve

import (
	"context"
	"errors"
	"testing"

	"lending/core"
	"lending/internal/testenv"
	"lending/pkg/number"
	"lending/service/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env     *testenv.Env
	markets core.IMarketService
	srv     core.IReserveService
	market  *core.LendingMarket
	reserve *core.Reserve
}

// newFixture market owned by "owner" with fee authority "fees" and risk
// authority "risk", holding a usdc reserve seeded with 100 by "lp"
func newFixture(t *testing.T, cfg core.ReserveConfig) *fixture {
	env := testenv.New()
	env.SetPrice("usdc", 1)
	env.Ledger.Credit("usdc", "lp", 1000)

	f := &fixture{
		env:     env,
		markets: market.New(env.Markets, env.Slots),
		srv:     New(env.Markets, env.Reserves, env.Ledger, env.Oracle, env.Slots, env.Transactor),
	}

	ctx := context.Background()
	m, err := f.markets.Init(ctx, core.InitMarketParams{Signer: "owner", QuoteCurrency: "USD", FeeAuthority: "fees"})
	require.Nil(t, err)

	f.market, err = f.markets.SetOwnerAndConfig(ctx, core.SetMarketOwnerAndConfigParams{
		Signer:        "owner",
		MarketID:      m.ID,
		NewOwner:      "owner",
		RateLimiter:   core.DefaultRateLimiterConfig(),
		RiskAuthority: "risk",
	})
	require.Nil(t, err)

	f.reserve, err = f.srv.Init(ctx, core.InitReserveParams{
		Signer:           "owner",
		MarketID:         m.ID,
		LiquidityMintID:  "usdc",
		OracleFeedID:     "usdc",
		Config:           cfg,
		Source:           "lp",
		Destination:      "lp-c",
		InitialLiquidity: 100,
	})
	require.Nil(t, err)

	return f
}

func (f *fixture) balance(t *testing.T, mint, account string) uint64 {
	v, err := f.env.Ledger.Balance(context.Background(), mint, account)
	require.Nil(t, err)
	return v
}

func (f *fixture) find(t *testing.T) *core.Reserve {
	r, err := f.env.Reserves.Find(context.Background(), f.reserve.ID)
	require.Nil(t, err)
	return r
}

func TestInit(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())
	r := f.find(t)

	assert.Equal(t, f.market.ID, r.MarketID)
	assert.Equal(t, uint64(100), r.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(100), r.Collateral.MintTotalSupply)
	assert.True(t, r.Liquidity.MarketPrice.Equal(number.One()))
	assert.True(t, r.Liquidity.CumulativeBorrowRate.Equal(number.One()))
	assert.NotEmpty(t, r.Config.FeeReceiver)

	assert.Equal(t, uint64(900), f.balance(t, "usdc", "lp"))
	assert.Equal(t, uint64(100), f.balance(t, "usdc", r.Liquidity.SupplyID))
	assert.Equal(t, uint64(100), f.balance(t, r.Collateral.MintID, "lp-c"))

	ctx := context.Background()
	params := core.InitReserveParams{
		Signer:          "stranger",
		MarketID:        f.market.ID,
		LiquidityMintID: "usdc",
		OracleFeedID:    "usdc",
		Config:          testenv.ReserveConfig(),
	}

	_, err := f.srv.Init(ctx, params)
	assert.True(t, errors.Is(err, core.ErrUnauthorized))

	params.Signer = "owner"
	params.Config.LoanToValueRatio = 100
	_, err = f.srv.Init(ctx, params)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	params.Config = testenv.ReserveConfig()
	params.OracleFeedID = "unknown"
	_, err = f.srv.Init(ctx, params)
	assert.True(t, errors.Is(err, core.ErrInvalidOraclePrice))

	all, err := f.env.Reserves.All(ctx)
	require.Nil(t, err)
	assert.Len(t, all, 1)
}

func TestDepositLiquidity(t *testing.T) {
	cfg := testenv.ReserveConfig()
	cfg.DepositLimit = 200
	f := newFixture(t, cfg)
	ctx := context.Background()

	params := core.ReserveLiquidityParams{
		Signer:      "lp",
		ReserveID:   f.reserve.ID,
		Source:      "lp",
		Destination: "lp-c",
		Amount:      50,
	}

	collateral, err := f.srv.DepositLiquidity(ctx, params)
	require.Nil(t, err)
	assert.Equal(t, uint64(50), collateral)

	r := f.find(t)
	assert.Equal(t, uint64(150), r.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(150), r.Collateral.MintTotalSupply)
	assert.True(t, r.LastUpdate.Stale)
	assert.Equal(t, uint64(150), f.balance(t, r.Collateral.MintID, "lp-c"))

	// 150 + 60 is over the limit of 200, nothing moves
	params.Amount = 60
	_, err = f.srv.DepositLiquidity(ctx, params)
	assert.True(t, errors.Is(err, core.ErrDepositedOverLimit))

	after := f.find(t)
	assert.Equal(t, r.Version, after.Version)
	assert.Equal(t, uint64(150), after.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(850), f.balance(t, "usdc", "lp"))

	params.Amount = 0
	_, err = f.srv.DepositLiquidity(ctx, params)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))

	params.Amount = 10
	params.Source = r.Liquidity.SupplyID
	_, err = f.srv.DepositLiquidity(ctx, params)
	assert.True(t, errors.Is(err, core.ErrInvalidArgument))

	// the ledger rejects the transfer and the reserve is restored
	f.env.Ledger.Credit("usdc", "poor", 10)
	params.Source = "poor"
	params.Amount = 50
	_, err = f.srv.DepositLiquidity(ctx, params)
	assert.True(t, errors.Is(err, core.ErrInsufficientBalance))
	assert.Equal(t, uint64(150), f.find(t).Liquidity.AvailableAmount)
}

func TestRedeemCollateral(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())
	ctx := context.Background()

	params := core.ReserveLiquidityParams{
		Signer:      "lp",
		ReserveID:   f.reserve.ID,
		Source:      "lp-c",
		Destination: "lp",
		Amount:      40,
	}

	liquidity, err := f.srv.RedeemCollateral(ctx, params)
	require.Nil(t, err)
	assert.Equal(t, uint64(40), liquidity)

	r := f.find(t)
	assert.Equal(t, uint64(60), r.Liquidity.AvailableAmount)
	assert.Equal(t, uint64(60), r.Collateral.MintTotalSupply)
	assert.Equal(t, uint64(60), f.balance(t, r.Collateral.MintID, "lp-c"))
	assert.Equal(t, uint64(940), f.balance(t, "usdc", "lp"))

	params.Amount = 61
	_, err = f.srv.RedeemCollateral(ctx, params)
	assert.NotNil(t, err)
	assert.Equal(t, uint64(60), f.balance(t, r.Collateral.MintID, "lp-c"))
}

func TestRedeemCollateralRateLimited(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())
	ctx := context.Background()

	_, err := f.markets.SetOwnerAndConfig(ctx, core.SetMarketOwnerAndConfigParams{
		Signer:        "owner",
		MarketID:      f.market.ID,
		NewOwner:      "owner",
		RateLimiter:   core.RateLimiterConfig{WindowDuration: 10, MaxOutflow: 30},
		RiskAuthority: "risk",
	})
	require.Nil(t, err)

	params := core.ReserveLiquidityParams{
		Signer:      "lp",
		ReserveID:   f.reserve.ID,
		Source:      "lp-c",
		Destination: "lp",
		Amount:      40,
	}

	_, err = f.srv.RedeemCollateral(ctx, params)
	assert.True(t, errors.Is(err, core.ErrRateLimitReached))
	assert.Equal(t, uint64(100), f.balance(t, f.reserve.Collateral.MintID, "lp-c"))
	assert.Equal(t, uint64(100), f.find(t).Liquidity.AvailableAmount)

	params.Amount = 30
	_, err = f.srv.RedeemCollateral(ctx, params)
	require.Nil(t, err)

	m, err := f.env.Markets.Find(ctx, f.market.ID)
	require.Nil(t, err)
	assert.True(t, m.RateLimiter.CurQty.Equal(number.FromInteger(30)))
}

func TestRedeemCollateralValuedAtCurrentPrice(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())
	ctx := context.Background()

	_, err := f.markets.SetOwnerAndConfig(ctx, core.SetMarketOwnerAndConfigParams{
		Signer:        "owner",
		MarketID:      f.market.ID,
		NewOwner:      "owner",
		RateLimiter:   core.RateLimiterConfig{WindowDuration: 10, MaxOutflow: 30},
		RiskAuthority: "risk",
	})
	require.Nil(t, err)

	params := core.ReserveLiquidityParams{
		Signer:      "lp",
		ReserveID:   f.reserve.ID,
		Source:      "lp-c",
		Destination: "lp",
		Amount:      20,
	}

	// no refresh since the move, 20 usdc at 2 is 40 of outflow
	f.env.SetPrice("usdc", 2)
	_, err = f.srv.RedeemCollateral(ctx, params)
	assert.True(t, errors.Is(err, core.ErrRateLimitReached))
	assert.Equal(t, uint64(100), f.balance(t, f.reserve.Collateral.MintID, "lp-c"))

	delete(f.env.Config.PriceOracle.Static, "usdc")
	_, err = f.srv.RedeemCollateral(ctx, params)
	assert.True(t, errors.Is(err, core.ErrInvalidOraclePrice))
	assert.Equal(t, uint64(100), f.find(t).Liquidity.AvailableAmount)

	f.env.SetPrice("usdc", 2)
	params.Amount = 15
	_, err = f.srv.RedeemCollateral(ctx, params)
	require.Nil(t, err)

	m, err := f.env.Markets.Find(ctx, f.market.ID)
	require.Nil(t, err)
	assert.True(t, m.RateLimiter.CurQty.Equal(number.FromInteger(30)))
}

func TestUpdateConfig(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())
	ctx := context.Background()

	update := func(signer string, cfg core.ReserveConfig, limiter core.RateLimiterConfig) (*core.Reserve, error) {
		return f.srv.UpdateConfig(ctx, core.UpdateReserveConfigParams{
			Signer:      signer,
			MarketID:    f.market.ID,
			ReserveID:   f.reserve.ID,
			Config:      cfg,
			RateLimiter: limiter,
		})
	}

	current := f.find(t).Config

	t.Run("fee authority changes fees only", func(t *testing.T) {
		cfg := current
		cfg.Fees.BorrowFeeWad = number.WAD / 100
		cfg.LoanToValueRatio = 40

		r, err := update("fees", cfg, core.RateLimiterConfig{})
		require.Nil(t, err)
		assert.Equal(t, number.WAD/100, r.Config.Fees.BorrowFeeWad)
		assert.Equal(t, uint8(50), r.Config.LoanToValueRatio)
		assert.True(t, r.LastUpdate.Stale)
		current = r.Config
	})

	t.Run("owner cannot touch fees", func(t *testing.T) {
		cfg := current
		cfg.ProtocolTakeRate = 20

		_, err := update("owner", cfg, core.RateLimiterConfig{})
		assert.True(t, errors.Is(err, core.ErrUnauthorizedFeeChange))
	})

	t.Run("owner changes risk parameters and rate limiter", func(t *testing.T) {
		cfg := current
		cfg.LoanToValueRatio = 40
		limiter := core.RateLimiterConfig{WindowDuration: 10, MaxOutflow: 500}

		r, err := update("owner", cfg, limiter)
		require.Nil(t, err)
		assert.Equal(t, uint8(40), r.Config.LoanToValueRatio)
		assert.Equal(t, limiter, r.RateLimiter.Config)
		current = r.Config
	})

	t.Run("risk authority only tightens", func(t *testing.T) {
		cfg := current
		cfg.DepositLimit = 500
		cfg.BorrowLimit = 2_000_000
		cfg.LoanToValueRatio = 10

		r, err := update("risk", cfg, core.RateLimiterConfig{WindowDuration: 10, MaxOutflow: 1000})
		require.Nil(t, err)
		assert.Equal(t, uint64(500), r.Config.DepositLimit)
		assert.Equal(t, uint64(1_000_000), r.Config.BorrowLimit)
		assert.Equal(t, uint8(40), r.Config.LoanToValueRatio)
		assert.Equal(t, uint64(500), r.RateLimiter.Config.MaxOutflow)

		r, err = update("risk", cfg, core.RateLimiterConfig{WindowDuration: 10, MaxOutflow: 0})
		require.Nil(t, err)
		assert.Equal(t, uint64(0), r.RateLimiter.Config.MaxOutflow)
	})

	t.Run("rejected", func(t *testing.T) {
		_, err := update("stranger", current, core.RateLimiterConfig{})
		assert.True(t, errors.Is(err, core.ErrUnauthorized))

		cfg := current
		cfg.MaxUtilizationRate = 70
		_, err = update("owner", cfg, core.RateLimiterConfig{})
		assert.True(t, errors.Is(err, core.ErrInvalidConfig))

		other, err := f.markets.Init(ctx, core.InitMarketParams{Signer: "owner", QuoteCurrency: "USD"})
		require.Nil(t, err)
		_, err = f.srv.UpdateConfig(ctx, core.UpdateReserveConfigParams{
			Signer:    "owner",
			MarketID:  other.ID,
			ReserveID: f.reserve.ID,
			Config:    current,
		})
		assert.True(t, errors.Is(err, core.ErrInvalidReserveLendingMarketMatch))
	})
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())
	ctx := context.Background()

	f.env.Advance(3)
	f.env.SetPrice("usdc", 2)

	r, err := f.srv.Refresh(ctx, f.reserve.ID)
	require.Nil(t, err)
	assert.Equal(t, uint64(3), r.LastUpdate.Slot)
	assert.False(t, r.LastUpdate.Stale)
	assert.True(t, r.Liquidity.MarketPrice.Equal(number.FromInteger(2)))

	again, err := f.srv.Refresh(ctx, f.reserve.ID)
	require.Nil(t, err)
	assert.Equal(t, r.Liquidity, again.Liquidity)
	assert.Equal(t, r.LastUpdate, again.LastUpdate)

	_, err = f.srv.Refresh(ctx, "missing")
	assert.True(t, errors.Is(err, core.ErrReserveNotFound))
}

func TestRedeemFeesEmpty(t *testing.T) {
	f := newFixture(t, testenv.ReserveConfig())

	amount, err := f.srv.RedeemFees(context.Background(), f.reserve.ID)
	require.Nil(t, err)
	assert.Zero(t, amount)
}
